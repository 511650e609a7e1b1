package model

import "errors"

// RejectReason identifies which policy precondition failed.
type RejectReason string

const (
	RejectNotClockedIn       RejectReason = "not_clocked_in"
	RejectAlreadyOngoing     RejectReason = "already_ongoing"
	RejectAllowanceExhausted RejectReason = "allowance_exhausted"
	RejectNoActivity         RejectReason = "no_activity"
	RejectReadOnlyDay        RejectReason = "read_only_day"
	RejectUnknownAction      RejectReason = "unknown_action"
)

// ValidationError is a policy rejection. It is surfaced to the caller as a
// user-visible message and never mutates state.
type ValidationError struct {
	Reason  RejectReason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AsValidation unwraps a ValidationError if err is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
