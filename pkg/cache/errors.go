package cache

import (
	"errors"
	"fmt"
)

// CacheError wraps a failed store operation. Retryable is set for transport
// failures and cleared for encoding failures that would fail again.
type CacheError struct {
	Operation string
	Err       error
	Retryable bool
}

func NewCacheError(operation string, err error, retryable bool) *CacheError {
	return &CacheError{
		Operation: operation,
		Err:       err,
		Retryable: retryable,
	}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Operation, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a CacheError worth retrying.
func IsRetryable(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr) && cacheErr.Retryable
}
