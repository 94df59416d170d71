package models

import (
	"encoding/json"
	"time"
)

// Payment is created exactly once, when its appointment is completed.
// After creation only the note may ever change; amount, appointment linkage
// and paid_at are frozen.
type Payment struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	AppointmentID uint64    `gorm:"not null;index" json:"appointment_id"`
	Amount        float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Note          *string   `gorm:"size:255" json:"note"`
	PaidAt        time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt     time.Time `json:"created_at"`

	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

// ParseNoteOnlyUpdate inspects a raw payment update body and enforces the
// freeze: every key other than "note" is collected and reported back.
// Returns the new note value when the body is legal.
func ParseNoteOnlyUpdate(body []byte) (note *string, invalidFields []string, err error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, err
	}

	for key, val := range raw {
		if key != "note" {
			invalidFields = append(invalidFields, key)
			continue
		}
		if err := json.Unmarshal(val, &note); err != nil {
			return nil, nil, err
		}
	}
	return note, invalidFields, nil
}
