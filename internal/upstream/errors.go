package upstream

import "errors"

var (
	// ErrSourceUnavailable covers transport failures, non-success statuses and an open breaker.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrNotFound is a 404; paginated callers treat it as the end of the list.
	ErrNotFound = errors.New("not found")
	// ErrMalformedPayload is a body that is not JSON.
	ErrMalformedPayload = errors.New("malformed payload")
)
