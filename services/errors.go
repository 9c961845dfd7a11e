package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the common failure classes. Controllers match these
// with errors.Is / errors.As and map them to 4xx responses.
var (
	ErrRuleNotFound     = errors.New("no applicable commission rule")
	ErrDuplicateInvoice = errors.New("invoice already exists for this lead")
)

// PreconditionError reports a lead or configuration state that makes the
// requested operation impossible: wrong lead status, unresolvable franchise,
// missing or mistyped commission limit.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// InvalidCommissionError reports a zero/negative commission percentage or a
// waterfall share that came out non-positive.
type InvalidCommissionError struct {
	Reason string
}

func (e *InvalidCommissionError) Error() string {
	return "invalid commission: " + e.Reason
}

// InvalidStateTransitionError reports a lifecycle operation attempted from an
// incompatible invoice status, or with a missing required justification.
type InvalidStateTransitionError struct {
	From      string
	Operation string
	Reason    string
}

func (e *InvalidStateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s invoice in status %q: %s", e.Operation, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s invoice in status %q", e.Operation, e.From)
}
