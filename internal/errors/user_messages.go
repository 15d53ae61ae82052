package errors

// User-facing messages. Every 5xx uses MsgInternalError, which clients treat
// as the "keep the previous map" signal.
const (
	MsgInvalidParameters = "The provided parameters are invalid. Send a JSON body with numeric lat and long."
	MsgRateLimited       = "Too many requests. Please wait a moment and try again."
	MsgCacheUnavailable  = "Cache unavailable"
	MsgInternalError     = "Internal Server Error"
)
