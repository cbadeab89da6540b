package tinkoff

import "fmt"

// ErrorCodeInternal is the reserved code carried by InternalError when a
// gateway response cannot be decoded at all. It never originates from the
// gateway itself.
const ErrorCodeInternal = 9999

// ValidationError reports a request parameter that violates the bounds the
// gateway imposes. It is raised locally, before any network I/O, and is
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "tinkoff: " + e.Message
}

// GatewayError is the gateway's own rejection: the response parsed and its
// Success discriminant was false. Code is the numeric gateway error code,
// Details is optional extra diagnostics.
type GatewayError struct {
	Code    int
	Message string
	Details string
}

func (e *GatewayError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("tinkoff: gateway error %d: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("tinkoff: gateway error %d: %s", e.Code, e.Message)
}

// InternalError indicates a contract mismatch between client and gateway:
// the response body parsed as neither the expected success shape nor the
// generic error shape. Message carries the decoder's diagnostic text.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("tinkoff: internal error %d: %s", ErrorCodeInternal, e.Message)
}
