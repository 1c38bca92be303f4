package types

import (
	"errors"
	"fmt"
)

const (
	ErrInvalidInput    = "Invalid input"
	ErrDatabaseError   = "Database error"
	ErrBlockchainError = "Blockchain error"
	ErrUnauthorized    = "Unauthorized access"
	ErrInternalError   = "internal server error"
)

// ErrRunInProgress is returned when a payroll run is requested for a
// company that already has one in flight.
var ErrRunInProgress = errors.New("payroll run already in progress")

// InvalidScheduleError marks an unknown payment cadence string.
type InvalidScheduleError struct {
	Schedule string
}

func (e *InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid payment schedule: %s", e.Schedule)
}

// NotFoundError marks a missing record in one of the entity tables.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// PaymentFailedError marks a chain-level rejection of a single payment
// submission. It is contained within a batch run and never aborts it.
type PaymentFailedError struct {
	ToAddress string
	Reason    string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment to %s failed: %s", e.ToAddress, e.Reason)
}

// InvalidTransitionError marks a disallowed payment status change, for
// example out of a terminal state.
type InvalidTransitionError struct {
	PaymentID string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("payment %s cannot transition from %s to %s", e.PaymentID, e.From, e.To)
}

// NotCancellableError marks a cancel attempt on a payment that is not
// in scheduled state.
type NotCancellableError struct {
	PaymentID string
	Status    string
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("payment %s is %s and cannot be cancelled", e.PaymentID, e.Status)
}
