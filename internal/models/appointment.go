package models

import "time"

// Appointment status values. A "pending" value exists in an older schema of
// the clinic but never had transition rules, so it is not modeled here.
const (
	StatusScheduled = "scheduled"
	StatusDone      = "done"
	StatusCanceled  = "canceled"
)

// Appointment is the central booking record. locked_price is the treatment
// price captured at booking time and is immutable through the normal flow.
type Appointment struct {
	ID                 uint64    `gorm:"primaryKey" json:"id"`
	PatientID          uint64    `gorm:"not null;index" json:"patient_id"`
	DentistID          uint64    `gorm:"not null;index" json:"dentist_id"`
	TreatmentID        *uint64   `json:"treatment_id"` // nullable: ad hoc visits allowed
	ProblemDescription string    `gorm:"type:text;not null" json:"problem_description"`
	LockedPrice        float64   `gorm:"type:decimal(10,2);not null" json:"locked_price"`
	ScheduledAt        time.Time `gorm:"not null;index" json:"scheduled_at"`
	Status             string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Patient   *User      `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Dentist   *User      `gorm:"foreignKey:DentistID" json:"dentist,omitempty"`
	Treatment *Treatment `gorm:"foreignKey:TreatmentID" json:"treatment,omitempty"`
	Payments  []Payment  `gorm:"foreignKey:AppointmentID" json:"payments,omitempty"`
}

type CreateAppointmentInput struct {
	PatientID          uint64    `json:"patient_id" binding:"required"`
	DentistID          uint64    `json:"dentist_id" binding:"required"`
	TreatmentID        *uint64   `json:"treatment_id"`
	ProblemDescription string    `json:"problem_description" binding:"required"`
	LockedPrice        *float64  `json:"locked_price" binding:"omitempty,min=0"`
	ScheduledAt        time.Time `json:"scheduled_at" binding:"required"`
}

// UpdateAppointmentInput deliberately has no status or locked_price field:
// status moves through the cancel/complete endpoints only, and the locked
// price is frozen at booking time.
type UpdateAppointmentInput struct {
	PatientID          *uint64    `json:"patient_id"`
	DentistID          *uint64    `json:"dentist_id"`
	TreatmentID        *uint64    `json:"treatment_id"`
	ProblemDescription *string    `json:"problem_description"`
	ScheduledAt        *time.Time `json:"scheduled_at"`
}
