package transport

import (
	"errors"
	"fmt"
)

// TransportError wraps a failure to complete an HTTP exchange: request
// construction, network failure, timeout, context cancellation. HTTP error
// statuses are not TransportErrors; they come back as RawResponses.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body that does not match its declared or
// detected format. Body carries the raw bytes for diagnostics.
type DecodeError struct {
	Format string
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	ok := errors.As(err, &te)
	return te, ok
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	ok := errors.As(err, &de)
	return de, ok
}
