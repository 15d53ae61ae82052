package middleware

import (
	"github.com/gin-gonic/gin"
)

var secureHeaders = map[string]string{
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Referrer-Policy":           "no-referrer",
	// price responses depend on live upstream data
	"Cache-Control": "no-store",
}

func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		for name, value := range secureHeaders {
			c.Header(name, value)
		}
		c.Next()
	}
}
