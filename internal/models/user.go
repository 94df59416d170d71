package models

import "time"

// Role values stored on users.role
const (
	RoleManager      = "manager"
	RoleReceptionist = "receptionist"
	RoleDentist      = "dentist"
	RolePatient      = "patient"
)

// ValidRole reports whether s is one of the four known roles.
func ValidRole(s string) bool {
	switch s {
	case RoleManager, RoleReceptionist, RoleDentist, RolePatient:
		return true
	}
	return false
}

// User is the identity record for everyone in the clinic: staff, dentists
// and patients alike. Role-specific data lives in the profile tables below,
// so a receptionist row can never carry an insurance number.
type User struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:100;not null" json:"name"`
	PhoneNumber  string     `gorm:"size:20;uniqueIndex;not null" json:"phone_number"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:20;not null;default:'patient'" json:"role"`
	IsActive     bool       `gorm:"default:true;not null" json:"is_active"`
	FCMToken     string     `gorm:"column:fcm_token;size:255" json:"-"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	PatientProfile *PatientProfile `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
	DentistProfile *DentistProfile `gorm:"foreignKey:UserID" json:"dentist_profile,omitempty"`
}

// PatientProfile holds the patient-only fields. InsuranceNumber is a
// pointer so patients without insurance don't collide on the unique index.
type PatientProfile struct {
	ID                uint64  `gorm:"primaryKey" json:"id"`
	UserID            uint64  `gorm:"uniqueIndex;not null" json:"user_id"`
	Age               int     `json:"age"`
	InsuranceNumber   *string `gorm:"size:50;uniqueIndex" json:"insurance_number"`
	InsuranceProvider string  `gorm:"size:100" json:"insurance_provider"`
	MedicalNotes      string  `gorm:"type:text" json:"medical_notes"`
}

// DentistProfile holds the dentist-only fields.
type DentistProfile struct {
	ID             uint64 `gorm:"primaryKey" json:"id"`
	UserID         uint64 `gorm:"uniqueIndex;not null" json:"user_id"`
	Specialization string `gorm:"size:100" json:"specialization"`
}

type CreateUserInput struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	Role        string `json:"role" binding:"required,oneof=manager receptionist dentist patient"`

	// Patient-only fields
	Age               int    `json:"age" binding:"omitempty,min=0,max=150"`
	InsuranceNumber   string `json:"insurance_number"`
	InsuranceProvider string `json:"insurance_provider"`
	MedicalNotes      string `json:"medical_notes"`

	// Dentist-only field
	Specialization string `json:"specialization"`
}

type UpdateUserInput struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role" binding:"omitempty,oneof=manager receptionist dentist patient"`
	IsActive    *bool   `json:"is_active"`

	Age               *int    `json:"age" binding:"omitempty,min=0,max=150"`
	InsuranceNumber   *string `json:"insurance_number"`
	InsuranceProvider *string `json:"insurance_provider"`
	MedicalNotes      *string `json:"medical_notes"`
	Specialization    *string `json:"specialization"`
}

type LoginInput struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FCMToken    string `json:"fcm_token"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}
