package models

import (
	"fmt"

	"rentspace/constants"
)

// BookingState guards booking status transitions. Each method mutates the
// booking status on success and leaves it untouched on error.
type BookingState interface {
	Confirm(b *Booking) error
	Reject(b *Booking, reason string) error
	Cancel(b *Booking) error
	Complete(b *Booking) error
}

func transitionError(status, action string) error {
	return fmt.Errorf("cannot %s a %s booking", action, status)
}

// PendingState awaits the landlord's decision.
type PendingState struct{}

func (s *PendingState) Confirm(b *Booking) error {
	b.Status = constants.BookingStatusConfirmed
	return nil
}

func (s *PendingState) Reject(b *Booking, reason string) error {
	b.Status = constants.BookingStatusRejected
	b.RejectionReason = reason
	return nil
}

func (s *PendingState) Cancel(b *Booking) error {
	b.Status = constants.BookingStatusCancelled
	return nil
}

func (s *PendingState) Complete(b *Booking) error {
	return transitionError(b.Status, "complete")
}

// ConfirmedState is paid for and blocks its dates.
type ConfirmedState struct{}

func (s *ConfirmedState) Confirm(b *Booking) error {
	return transitionError(b.Status, "confirm")
}

func (s *ConfirmedState) Reject(b *Booking, _ string) error {
	return transitionError(b.Status, "reject")
}

func (s *ConfirmedState) Cancel(b *Booking) error {
	b.Status = constants.BookingStatusCancelled
	return nil
}

func (s *ConfirmedState) Complete(b *Booking) error {
	b.Status = constants.BookingStatusCompleted
	return nil
}

// FinalState covers rejected, cancelled and completed bookings.
type FinalState struct{}

func (s *FinalState) Confirm(b *Booking) error {
	return transitionError(b.Status, "confirm")
}

func (s *FinalState) Reject(b *Booking, _ string) error {
	return transitionError(b.Status, "reject")
}

func (s *FinalState) Cancel(b *Booking) error {
	return transitionError(b.Status, "cancel")
}

func (s *FinalState) Complete(b *Booking) error {
	return transitionError(b.Status, "complete")
}

// GetBookingState returns the state for a booking status.
func GetBookingState(status string) BookingState {
	switch status {
	case constants.BookingStatusPending:
		return &PendingState{}
	case constants.BookingStatusConfirmed:
		return &ConfirmedState{}
	default:
		return &FinalState{}
	}
}
