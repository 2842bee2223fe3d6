package models

import (
	"fmt"

	"rentspace/constants"
)

// ApplicationTransition is an action on a rental application.
type ApplicationTransition string

const (
	TransitionApprove             ApplicationTransition = "approve"
	TransitionReject              ApplicationTransition = "reject"
	TransitionPropose             ApplicationTransition = "propose_modification"
	TransitionApproveModification ApplicationTransition = "approve_modification"
	TransitionRejectModification  ApplicationTransition = "reject_modification"
	TransitionExpire              ApplicationTransition = "expire"
)

var applicationTransitions = map[string]map[ApplicationTransition]string{
	constants.ApplicationStatusPending: {
		TransitionApprove: constants.ApplicationStatusApproved,
		TransitionReject:  constants.ApplicationStatusRejected,
		TransitionPropose: constants.ApplicationStatusModifiedPending,
		TransitionExpire:  constants.ApplicationStatusRejected,
	},
	constants.ApplicationStatusApproved: {
		TransitionPropose: constants.ApplicationStatusModifiedPending,
	},
	constants.ApplicationStatusModifiedPending: {
		TransitionApproveModification: constants.ApplicationStatusModifiedApproved,
	},
	constants.ApplicationStatusModifiedApproved: {
		TransitionPropose: constants.ApplicationStatusModifiedPending,
	},
}

// NextApplicationStatus returns the status reached from status by t.
// Rejecting a modification is not in the table: it reverts to the status
// recorded on the modification.
func NextApplicationStatus(status string, t ApplicationTransition) (string, error) {
	if next, ok := applicationTransitions[status][t]; ok {
		return next, nil
	}
	return "", fmt.Errorf("cannot %s an application in status %s", t, status)
}

// Apply moves the application through t.
func (a *RentalApplication) Apply(t ApplicationTransition) error {
	next, err := NextApplicationStatus(a.Status, t)
	if err != nil {
		return err
	}
	a.Status = next
	return nil
}

// ProposeModification snapshots the application into m and marks the
// application as awaiting a decision on it.
func (a *RentalApplication) ProposeModification(m *RentalApplicationModification) error {
	previous := a.Status
	if err := a.Apply(TransitionPropose); err != nil {
		return err
	}
	m.RentalApplicationID = a.ID
	m.PreviousCheckIn = a.CheckIn
	m.PreviousCheckOut = a.CheckOut
	m.PreviousMessage = a.Message
	m.PreviousStatus = previous
	m.Status = constants.ModificationStatusPending
	return nil
}

// ApproveModification copies the proposed values onto the application.
func (a *RentalApplication) ApproveModification(m *RentalApplicationModification) error {
	if m.Status != constants.ModificationStatusPending {
		return fmt.Errorf("modification is already %s", m.Status)
	}
	if err := a.Apply(TransitionApproveModification); err != nil {
		return err
	}
	a.CheckIn = m.CheckIn
	a.CheckOut = m.CheckOut
	a.Message = m.Message
	m.Status = constants.ModificationStatusApproved
	return nil
}

// RejectModification reverts the application to its status before the
// proposal. Dates and message are left untouched.
func (a *RentalApplication) RejectModification(m *RentalApplicationModification) error {
	if m.Status != constants.ModificationStatusPending {
		return fmt.Errorf("modification is already %s", m.Status)
	}
	if a.Status != constants.ApplicationStatusModifiedPending {
		return fmt.Errorf("cannot %s an application in status %s", TransitionRejectModification, a.Status)
	}
	a.Status = m.PreviousStatus
	m.Status = constants.ModificationStatusRejected
	return nil
}
