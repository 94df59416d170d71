package scheduling

import (
	"errors"
	"time"

	"dentalclinic-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckConflict looks for another scheduled appointment at the exact same
// timestamp where the patient or the dentist matches. The clinic books in
// fixed slots, so matching is on the exact timestamp, no duration window.
// excludeID skips the appointment's own row on updates (0 for creates).
func CheckConflict(tx *gorm.DB, patientID, dentistID uint64, at time.Time, excludeID uint64) error {
	var conflict models.Appointment
	err := tx.
		Where("scheduled_at = ? AND status = ?", at, models.StatusScheduled).
		Where("id <> ?", excludeID).
		Where("patient_id = ? OR dentist_id = ?", patientID, dentistID).
		First(&conflict).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return &ConflictError{
		ConflictID:        conflict.ID,
		IsPatientConflict: conflict.PatientID == patientID,
		IsDentistConflict: conflict.DentistID == dentistID,
		ScheduledAt:       conflict.ScheduledAt,
	}
}

// ValidateRoles checks that patientID points at a patient and dentistID at
// a dentist. Run inside the booking transaction so the user rows are the
// same ones lockParties pinned.
func ValidateRoles(tx *gorm.DB, patientID, dentistID uint64) error {
	var patient models.User
	if err := tx.First(&patient, patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RoleError{Field: "patient_id", UserID: patientID, Missing: true}
		}
		return err
	}
	if patient.Role != models.RolePatient {
		return &RoleError{Field: "patient_id", UserID: patientID, Actual: patient.Role}
	}

	var dentist models.User
	if err := tx.First(&dentist, dentistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &RoleError{Field: "dentist_id", UserID: dentistID, Missing: true}
		}
		return err
	}
	if dentist.Role != models.RoleDentist {
		return &RoleError{Field: "dentist_id", UserID: dentistID, Actual: dentist.Role}
	}

	return nil
}

// lockParties takes FOR UPDATE locks on the patient and dentist user rows.
// Two concurrent bookings for the same patient or dentist serialize on these
// locks, which closes the read-then-insert race in the conflict check: the
// second transaction cannot run its conflict query until the first commits.
func lockParties(tx *gorm.DB, patientID, dentistID uint64) error {
	var users []models.User
	return forUpdate(tx).
		Where("id IN ?", []uint64{patientID, dentistID}).
		Find(&users).Error
}

// forUpdate adds a FOR UPDATE clause. SQLite (used in tests) has no row
// locks and a single writer, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
