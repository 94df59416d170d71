package scheduling

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"dentalclinic-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.PatientProfile{},
		&models.DentistProfile{},
		&models.Treatment{},
		&models.Appointment{},
		&models.Payment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	user := models.User{
		Name:         name,
		PhoneNumber:  fmt.Sprintf("+62%d", time.Now().UnixNano()),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	return &user
}

func seedTreatment(t *testing.T, db *gorm.DB, name string, price float64) *models.Treatment {
	t.Helper()
	treatment := models.Treatment{Name: name, Price: price}
	if err := db.Create(&treatment).Error; err != nil {
		t.Fatalf("failed to seed treatment: %v", err)
	}
	return &treatment
}

func priceOf(v float64) *float64 { return &v }

var slot = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func TestBookDetectsPatientConflict(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentistA := seedUser(t, db, "Dentist A", models.RoleDentist)
	dentistB := seedUser(t, db, "Dentist B", models.RoleDentist)

	first, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentistA.ID,
		ProblemDescription: "toothache",
		LockedPrice:        priceOf(100000),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err = Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentistB.ID,
		ProblemDescription: "second opinion",
		LockedPrice:        priceOf(100000),
		ScheduledAt:        slot,
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !conflict.IsPatientConflict {
		t.Error("expected IsPatientConflict to be true")
	}
	if conflict.IsDentistConflict {
		t.Error("expected IsDentistConflict to be false")
	}
	if conflict.ConflictID != first.ID {
		t.Errorf("ConflictID = %d, want %d", conflict.ConflictID, first.ID)
	}
	if !conflict.ScheduledAt.Equal(slot) {
		t.Errorf("ScheduledAt = %v, want %v", conflict.ScheduledAt, slot)
	}
}

func TestBookDetectsDentistConflict(t *testing.T) {
	db := testDB(t)
	patientA := seedUser(t, db, "Patient A", models.RolePatient)
	patientB := seedUser(t, db, "Patient B", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	if _, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patientA.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	_, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patientB.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot,
	})

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !conflict.IsDentistConflict || conflict.IsPatientConflict {
		t.Errorf("got patient=%v dentist=%v, want dentist-only conflict",
			conflict.IsPatientConflict, conflict.IsDentistConflict)
	}
}

func TestBookDetectsDoubleConflict(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	if _, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	// Same pair, same slot: both sides collide.
	_, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "duplicate",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot,
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if !conflict.IsPatientConflict || !conflict.IsDentistConflict {
		t.Errorf("got patient=%v dentist=%v, want both true",
			conflict.IsPatientConflict, conflict.IsDentistConflict)
	}
}

func TestBookDifferentSlotNoConflict(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	if _, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "cleaning",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	if _, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "follow-up",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot.Add(time.Hour),
	}); err != nil {
		t.Fatalf("booking a different slot should not conflict: %v", err)
	}
}

func TestUpdateBookingExcludesSelf(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	appt, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "filling",
		LockedPrice:        priceOf(250000),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	// Rebooking the same slot for itself must not self-collide.
	updated, err := UpdateBooking(db, appt.ID, models.UpdateAppointmentInput{
		ScheduledAt: &slot,
	})
	if err != nil {
		t.Fatalf("update at own slot should succeed: %v", err)
	}
	if !updated.ScheduledAt.Equal(slot) {
		t.Errorf("ScheduledAt = %v, want %v", updated.ScheduledAt, slot)
	}
}

func TestUpdateBookingIntoConflict(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentistA := seedUser(t, db, "Dentist A", models.RoleDentist)
	dentistB := seedUser(t, db, "Dentist B", models.RoleDentist)

	if _, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentistA.ID,
		ProblemDescription: "extraction",
		LockedPrice:        priceOf(300000),
		ScheduledAt:        slot,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	other, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentistB.ID,
		ProblemDescription: "cleaning",
		LockedPrice:        priceOf(50000),
		ScheduledAt:        slot.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("second booking failed: %v", err)
	}

	_, err = UpdateBooking(db, other.ID, models.UpdateAppointmentInput{
		ScheduledAt: &slot,
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError moving into a taken slot, got %v", err)
	}
}

func TestUpdateNonCollidingFieldsSkipsConflictCheck(t *testing.T) {
	db := testDB(t)
	patientA := seedUser(t, db, "Patient A", models.RolePatient)
	patientB := seedUser(t, db, "Patient B", models.RolePatient)
	dentistA := seedUser(t, db, "Dentist A", models.RoleDentist)
	dentistB := seedUser(t, db, "Dentist B", models.RoleDentist)

	// Two bookings at the same time with disjoint parties.
	if _, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patientA.ID,
		DentistID:          dentistA.ID,
		ProblemDescription: "a",
		LockedPrice:        priceOf(10),
		ScheduledAt:        slot,
	}); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	second, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patientB.ID,
		DentistID:          dentistB.ID,
		ProblemDescription: "b",
		LockedPrice:        priceOf(10),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("disjoint booking failed: %v", err)
	}

	desc := "updated description"
	if _, err := UpdateBooking(db, second.ID, models.UpdateAppointmentInput{
		ProblemDescription: &desc,
	}); err != nil {
		t.Fatalf("description edit must not run conflict validation: %v", err)
	}
}

func TestCancelFreesSlot(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentistA := seedUser(t, db, "Dentist A", models.RoleDentist)
	dentistB := seedUser(t, db, "Dentist B", models.RoleDentist)

	first, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentistA.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(100000),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("first booking failed: %v", err)
	}

	retry := models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentistB.ID,
		ProblemDescription: "second opinion",
		LockedPrice:        priceOf(100000),
		ScheduledAt:        slot,
	}
	if _, err := Book(db, retry); err == nil {
		t.Fatal("expected conflict before cancellation")
	}

	canceled, err := Cancel(db, first.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != models.StatusCanceled {
		t.Errorf("status = %s, want %s", canceled.Status, models.StatusCanceled)
	}

	if _, err := Book(db, retry); err != nil {
		t.Fatalf("slot should be free after cancel: %v", err)
	}
}

func TestCancelIsIdempotentAndDoneIsTerminal(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	appt, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(100000),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	if _, err := Cancel(db, appt.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := Cancel(db, appt.ID); err != nil {
		t.Fatalf("second cancel should be a no-op: %v", err)
	}

	done, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(100000),
		ScheduledAt:        slot.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := Complete(db, done.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if _, err := Cancel(db, done.ID); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("canceling a done appointment should fail, got %v", err)
	}
}

func TestCompleteCreatesExactlyOnePayment(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	appt, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "root canal",
		LockedPrice:        priceOf(500000),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	payment, err := Complete(db, appt.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if payment.Amount != 500000 {
		t.Errorf("payment amount = %v, want 500000", payment.Amount)
	}
	if payment.Note != nil {
		t.Errorf("payment note = %v, want nil", *payment.Note)
	}

	var reloaded models.Appointment
	if err := db.First(&reloaded, appt.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != models.StatusDone {
		t.Errorf("status = %s, want %s", reloaded.Status, models.StatusDone)
	}

	// A second completion must fail and must not mint a second payment.
	if _, err := Complete(db, appt.ID); !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("second complete should fail with ErrTerminalStatus, got %v", err)
	}

	var count int64
	db.Model(&models.Payment{}).Where("appointment_id = ?", appt.ID).Count(&count)
	if count != 1 {
		t.Errorf("payment count = %d, want exactly 1", count)
	}
}

func TestBookValidatesRoles(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)
	receptionist := seedUser(t, db, "Receptionist", models.RoleReceptionist)

	// missing dentist
	_, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          99999,
		ProblemDescription: "x",
		LockedPrice:        priceOf(10),
		ScheduledAt:        slot,
	})
	var roleErr *RoleError
	if !errors.As(err, &roleErr) || !roleErr.Missing || roleErr.Field != "dentist_id" {
		t.Fatalf("expected missing-dentist RoleError, got %v", err)
	}

	// wrong role in the dentist seat
	_, err = Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          receptionist.ID,
		ProblemDescription: "x",
		LockedPrice:        priceOf(10),
		ScheduledAt:        slot,
	})
	if !errors.As(err, &roleErr) || roleErr.Missing || roleErr.Actual != models.RoleReceptionist {
		t.Fatalf("expected wrong-role RoleError, got %v", err)
	}

	// wrong role in the patient seat
	_, err = Book(db, models.CreateAppointmentInput{
		PatientID:          dentist.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "x",
		LockedPrice:        priceOf(10),
		ScheduledAt:        slot,
	})
	if !errors.As(err, &roleErr) || roleErr.Field != "patient_id" {
		t.Fatalf("expected patient_id RoleError, got %v", err)
	}
}

func TestBookLocksTreatmentPrice(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)
	treatment := seedTreatment(t, db, "Scaling", 150000)

	appt, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		TreatmentID:        &treatment.ID,
		ProblemDescription: "plaque",
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if appt.LockedPrice != 150000 {
		t.Fatalf("locked price = %v, want 150000", appt.LockedPrice)
	}

	// A later catalog change must not touch the booking.
	if err := db.Model(treatment).Update("price", 999999).Error; err != nil {
		t.Fatalf("price update failed: %v", err)
	}
	var reloaded models.Appointment
	db.First(&reloaded, appt.ID)
	if reloaded.LockedPrice != 150000 {
		t.Errorf("locked price changed to %v after catalog edit", reloaded.LockedPrice)
	}
}

func TestBookWithoutPriceOrTreatmentFails(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	_, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "ad hoc",
		ScheduledAt:        slot,
	})
	if !errors.Is(err, ErrPriceRequired) {
		t.Fatalf("expected ErrPriceRequired, got %v", err)
	}
}

func TestUpdateTerminalAppointmentRejected(t *testing.T) {
	db := testDB(t)
	patient := seedUser(t, db, "Patient", models.RolePatient)
	dentist := seedUser(t, db, "Dentist", models.RoleDentist)

	appt, err := Book(db, models.CreateAppointmentInput{
		PatientID:          patient.ID,
		DentistID:          dentist.ID,
		ProblemDescription: "checkup",
		LockedPrice:        priceOf(10),
		ScheduledAt:        slot,
	})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if _, err := Cancel(db, appt.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	later := slot.Add(time.Hour)
	_, err = UpdateBooking(db, appt.ID, models.UpdateAppointmentInput{ScheduledAt: &later})
	if !errors.Is(err, ErrTerminalStatus) {
		t.Fatalf("expected ErrTerminalStatus editing a canceled appointment, got %v", err)
	}
}
