package scheduling

import (
	"errors"
	"time"

	"dentalclinic-backend/internal/models"

	"gorm.io/gorm"
)

// ErrPriceRequired means a booking has no treatment and no explicit price,
// so there is nothing to lock the price from.
var ErrPriceRequired = errors.New("locked_price is required when no treatment is given")

// ErrTreatmentNotFound means the referenced treatment id does not exist.
var ErrTreatmentNotFound = errors.New("treatment not found")

// Book creates a new appointment. Inside one transaction it locks the
// patient and dentist rows, validates their roles, snapshots the treatment
// price into locked_price and runs the conflict check before inserting.
func Book(db *gorm.DB, in models.CreateAppointmentInput) (*models.Appointment, error) {
	var appt models.Appointment

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockParties(tx, in.PatientID, in.DentistID); err != nil {
			return err
		}
		if err := ValidateRoles(tx, in.PatientID, in.DentistID); err != nil {
			return err
		}

		price, err := resolveLockedPrice(tx, in.TreatmentID, in.LockedPrice)
		if err != nil {
			return err
		}

		if err := CheckConflict(tx, in.PatientID, in.DentistID, in.ScheduledAt, 0); err != nil {
			return err
		}

		appt = models.Appointment{
			PatientID:          in.PatientID,
			DentistID:          in.DentistID,
			TreatmentID:        in.TreatmentID,
			ProblemDescription: in.ProblemDescription,
			LockedPrice:        price,
			ScheduledAt:        in.ScheduledAt,
			Status:             models.StatusScheduled,
		}
		return tx.Create(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// UpdateBooking edits a scheduled appointment. Changing the patient, dentist
// or timestamp re-runs role validation and the conflict check (excluding the
// appointment itself); other field edits skip both. Terminal appointments
// reject every edit.
func UpdateBooking(db *gorm.DB, id uint64, in models.UpdateAppointmentInput) (*models.Appointment, error) {
	var appt models.Appointment

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&appt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if appt.Status != models.StatusScheduled {
			return ErrTerminalStatus
		}

		reValidate := false
		if in.PatientID != nil && *in.PatientID != appt.PatientID {
			appt.PatientID = *in.PatientID
			reValidate = true
		}
		if in.DentistID != nil && *in.DentistID != appt.DentistID {
			appt.DentistID = *in.DentistID
			reValidate = true
		}
		if in.ScheduledAt != nil && !in.ScheduledAt.Equal(appt.ScheduledAt) {
			appt.ScheduledAt = *in.ScheduledAt
			reValidate = true
		}
		if in.TreatmentID != nil {
			var treatment models.Treatment
			if err := tx.First(&treatment, *in.TreatmentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTreatmentNotFound
				}
				return err
			}
			appt.TreatmentID = in.TreatmentID
		}
		if in.ProblemDescription != nil {
			appt.ProblemDescription = *in.ProblemDescription
		}

		if reValidate {
			if err := lockParties(tx, appt.PatientID, appt.DentistID); err != nil {
				return err
			}
			if err := ValidateRoles(tx, appt.PatientID, appt.DentistID); err != nil {
				return err
			}
			if err := CheckConflict(tx, appt.PatientID, appt.DentistID, appt.ScheduledAt, appt.ID); err != nil {
				return err
			}
		}

		return tx.Save(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Complete moves a scheduled appointment to done and creates its payment
// in the same transaction. Exactly one payment per completion: the amount
// is the locked price and paid_at is the completion time. Either both the
// status write and the payment insert commit, or neither does.
func Complete(db *gorm.DB, id uint64) (*models.Payment, error) {
	var payment models.Payment

	err := db.Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := forUpdate(tx).First(&appt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if appt.Status != models.StatusScheduled {
			return ErrTerminalStatus
		}

		appt.Status = models.StatusDone
		if err := tx.Save(&appt).Error; err != nil {
			return err
		}

		payment = models.Payment{
			AppointmentID: appt.ID,
			Amount:        appt.LockedPrice,
			PaidAt:        time.Now(),
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Cancel moves a scheduled appointment to canceled. No conflict check runs:
// cancellation frees the slot. Canceling twice is a no-op; a done
// appointment cannot be canceled (its payment already exists).
func Cancel(db *gorm.DB, id uint64) (*models.Appointment, error) {
	var appt models.Appointment

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&appt, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if appt.Status == models.StatusCanceled {
			return nil
		}
		if appt.Status == models.StatusDone {
			return ErrTerminalStatus
		}

		appt.Status = models.StatusCanceled
		return tx.Save(&appt).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func resolveLockedPrice(tx *gorm.DB, treatmentID *uint64, explicit *float64) (float64, error) {
	if treatmentID == nil {
		if explicit == nil {
			return 0, ErrPriceRequired
		}
		return *explicit, nil
	}

	var treatment models.Treatment
	if err := tx.First(&treatment, *treatmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTreatmentNotFound
		}
		return 0, err
	}
	if explicit != nil {
		return *explicit, nil
	}
	return treatment.Price, nil
}
