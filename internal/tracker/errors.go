package tracker

import (
	"context"
	"errors"
	"fmt"
)

// Reason classifies a failed geolocation request.
type Reason string

const (
	ReasonPermissionDenied    Reason = "permission-denied"
	ReasonTimeout             Reason = "timeout"
	ReasonPositionUnavailable Reason = "position-unavailable"
	ReasonUnknown             Reason = "unknown"
)

// GeolocationError is the failure value of a location request.
type GeolocationError struct {
	Reason Reason
	Err    error
}

func (e *GeolocationError) Error() string {
	if e.Err == nil {
		return "geolocation failed: " + string(e.Reason)
	}
	return fmt.Sprintf("geolocation failed: %s: %v", e.Reason, e.Err)
}

func (e *GeolocationError) Unwrap() error {
	return e.Err
}

// Classify wraps err in a GeolocationError. Errors that already carry a
// reason keep it; context deadlines become timeouts.
func Classify(err error) *GeolocationError {
	if err == nil {
		return nil
	}
	var ge *GeolocationError
	if errors.As(err, &ge) {
		return ge
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &GeolocationError{Reason: ReasonTimeout, Err: err}
	}
	return &GeolocationError{Reason: ReasonUnknown, Err: err}
}
