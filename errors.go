package hxblog

import (
	"errors"
	"net/http"
)

// Sentinel errors for island requests.
var (
	ErrNotFound         = errors.New("hxblog: resource not found")
	ErrDecryptFailed    = errors.New("hxblog: props decryption failed")
	ErrSignatureInvalid = errors.New("hxblog: props signature verification failed")
	ErrInvalidFormat    = errors.New("hxblog: invalid props format")
	ErrHydrationFailed  = errors.New("hxblog: hydration failed")
	ErrMethodNotAllowed = errors.New("hxblog: method not allowed")
)

// IsNotFound checks if err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDecryptionError checks if err is a decryption, signature or format error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrInvalidFormat)
}

// StatusCode maps an error to the HTTP status the registry responds with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case IsDecryptionError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
