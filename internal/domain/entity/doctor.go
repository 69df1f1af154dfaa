package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Doctor represents a bookable practitioner
type Doctor struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string             `gorm:"type:varchar(255);not null" json:"name"`
	Email           string             `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Specialization  string             `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Location        string             `gorm:"type:varchar(255)" json:"location,omitempty"`
	Experience      int                `gorm:"not null;default:0" json:"experience"`
	ConsultationFee decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"consultation_fee"`
	Availability    WeeklyAvailability `gorm:"type:jsonb" json:"availability"`
	AppointmentIDs  UUIDList           `gorm:"type:jsonb" json:"-"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// WeeklyAvailability maps a lower-case weekday name to the slots offered that day.
// Treated as an immutable snapshot once resolved.
type WeeklyAvailability map[string][]TimeSlot

// SlotsOn returns a copy of the slots for the weekday
func (w WeeklyAvailability) SlotsOn(weekday string) []TimeSlot {
	slots := w[weekday]
	if len(slots) == 0 {
		return []TimeSlot{}
	}
	out := make([]TimeSlot, len(slots))
	copy(out, slots)
	return out
}

// Clone returns a deep copy
func (w WeeklyAvailability) Clone() WeeklyAvailability {
	if w == nil {
		return nil
	}
	out := make(WeeklyAvailability, len(w))
	for day, slots := range w {
		out[day] = append([]TimeSlot(nil), slots...)
	}
	return out
}

// Value implements driver.Valuer for JSONB storage
func (w WeeklyAvailability) Value() (driver.Value, error) {
	if w == nil {
		return json.Marshal(map[string][]TimeSlot{})
	}
	return json.Marshal(map[string][]TimeSlot(w))
}

// Scan implements sql.Scanner for JSONB storage
func (w *WeeklyAvailability) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil || bytes == nil {
		return err
	}
	result := map[string][]TimeSlot{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*w = WeeklyAvailability(result)
	return nil
}

// DoctorFilter is a domain-level filter for searching doctors
type DoctorFilter struct {
	Specialization string
	Location       string
	MaxFee         *decimal.Decimal
	Search         string
	SortBy         string // fee | experience
	Page           int
	Limit          int
}

// Doctor sort keys
const (
	DoctorSortFee        = "fee"
	DoctorSortExperience = "experience"
)

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}
}
