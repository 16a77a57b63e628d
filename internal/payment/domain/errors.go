package domain

import "errors"

var (
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrAuthenticationMissing = errors.New("authentication_missing")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrMalformedPayload      = errors.New("malformed_payload")
	ErrGateway               = errors.New("gateway_error")
	ErrGatewayNotConfigured  = errors.New("gateway_not_configured")
	ErrStore                 = errors.New("store_error")
)

// GatewayError wraps a failure reported by the payment gateway. Its message is
// the gateway's own and is safe to return to the caller.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	if e == nil || e.Err == nil {
		return ErrGateway.Error()
	}
	return e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }
