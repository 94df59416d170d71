package scheduling

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means the appointment id does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrTerminalStatus means the appointment is already done or canceled
	// and cannot move to another status.
	ErrTerminalStatus = errors.New("appointment is already done or canceled")
)

// ConflictError reports a double-booking: another scheduled appointment at
// the exact same timestamp sharing the patient and/or the dentist.
// Routes translate it to a 409 with the structured details.
type ConflictError struct {
	ConflictID        uint64    `json:"conflictId"`
	IsPatientConflict bool      `json:"isPatientConflict"`
	IsDentistConflict bool      `json:"isDentistConflict"`
	ScheduledAt       time.Time `json:"scheduledAt"`
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("conflict detected with appointment ID %d.", e.ConflictID)
	switch {
	case e.IsPatientConflict && e.IsDentistConflict:
		msg += " Both patient and dentist have appointments at that time."
	case e.IsDentistConflict:
		msg += " Dentist is already scheduled at that time."
	case e.IsPatientConflict:
		msg += " Patient is already scheduled at that time."
	}
	return msg
}

// RoleError reports a patient_id/dentist_id that is missing or points at a
// user with the wrong role. Missing maps to 404, wrong role to 400.
type RoleError struct {
	Field   string // "patient_id" or "dentist_id"
	UserID  uint64
	Missing bool
	Actual  string // the actual role when Missing is false
}

func (e *RoleError) Error() string {
	if e.Missing {
		return fmt.Sprintf("user with ID %d does not exist", e.UserID)
	}
	want := "patient"
	if e.Field == "dentist_id" {
		want = "dentist"
	}
	return fmt.Sprintf("user with ID %d is not a %s, but rather a %s", e.UserID, want, e.Actual)
}
