package phemex

import (
	"errors"
	"fmt"
)

var (
	// ErrCredential is returned when the exchange rejects a call because
	// the API key lacks sufficient privilege, e.g. placing an order with a
	// read-only key. Retrying with the same credentials cannot succeed.
	ErrCredential = errors.New("phemex: insufficient API key privilege")

	// ErrAuthentication is returned when the exchange rejects the request
	// signature or its expiry. Indicates clock skew, a bad secret, or a
	// signing bug.
	ErrAuthentication = errors.New("phemex: authentication failed")

	// ErrUnsupportedPlaceable reports a caller contract violation: a
	// Placeable variant this placer does not know how to submit.
	ErrUnsupportedPlaceable = errors.New("phemex: unsupported placeable variant")

	// ErrForeignHandle reports an OrderHandle that was not created by this
	// provider.
	ErrForeignHandle = errors.New("phemex: order handle belongs to another provider")
)

// APIError is any exchange response code above the success threshold that
// has no dedicated error. The code is kept for caller inspection.
type APIError struct {
	Code int64
	Msg  string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("phemex: api error code %d", e.Code)
	}
	return fmt.Sprintf("phemex: api error code %d: %s", e.Code, e.Msg)
}

// checkCode classifies the envelope code of a response. Codes at or below
// 200 are success.
func checkCode(code int64, msg string) error {
	switch {
	case code <= 200:
		return nil
	case code == 401:
		return ErrCredential
	case code == 10500:
		return ErrAuthentication
	default:
		return &APIError{Code: code, Msg: msg}
	}
}
