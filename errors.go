package binga

import (
	"errors"
	"fmt"

	"github.com/moudarir/binga/internal/config"
	"github.com/moudarir/binga/internal/transport"
)

// The four failure kinds a call can surface, as distinct inspectable types.
// None are retried internally; the gateway's answer is authoritative per
// call.

// ConfigError reports a missing or invalid credential at construction.
type ConfigError = config.ConfigError

// TransportError reports a network-level failure to complete a call.
type TransportError = transport.TransportError

// DecodeError reports a response body that does not match its format. Its
// Body field carries the raw bytes for diagnostics.
type DecodeError = transport.DecodeError

// GatewayError is a well-formed gateway response whose result discriminator
// is "error", or an HTTP error status with an empty body (then Code is the
// status and Message the reason phrase).
type GatewayError struct {
	Code    int
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("binga: gateway error %d: %s", e.Code, e.Message)
}

// ErrNoContent is returned by single-order operations when the gateway
// answers 2xx with an empty body.
var ErrNoContent = errors.New("binga: empty response body")

// IsConfigError reports whether err is, or wraps, a ConfigError.
func IsConfigError(err error) (*ConfigError, bool) {
	return config.IsConfigError(err)
}

// IsTransportError reports whether err is, or wraps, a TransportError.
func IsTransportError(err error) (*TransportError, bool) {
	return transport.IsTransportError(err)
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) (*DecodeError, bool) {
	return transport.IsDecodeError(err)
}

// IsGatewayError reports whether err is, or wraps, a GatewayError.
func IsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	ok := errors.As(err, &ge)
	return ge, ok
}
