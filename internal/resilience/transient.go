package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// StatusError marks an HTTP failure with its status code so the retry layer
// can distinguish a 429 or 5xx (retry) from a 4xx (give up).
type StatusError struct {
	Err        error
	StatusCode int
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// NewStatusError wraps err with its HTTP status code.
func NewStatusError(err error, statusCode int) *StatusError {
	return &StatusError{Err: err, StatusCode: statusCode}
}

// RetryableStatus reports whether an HTTP status is worth retrying. A 429 is
// retried like any other transient failure.
func RetryableStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// IsTransient reports whether err looks like a temporary fetch failure:
// a retryable HTTP status, a network timeout, or a dropped connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return RetryableStatus(se.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
