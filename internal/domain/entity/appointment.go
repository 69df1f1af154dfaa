package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// IsTerminal reports whether no further transition is allowed from the status
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

// Appointment represents a patient booking of a doctor slot
type Appointment struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID           uuid.UUID           `gorm:"type:uuid;not null;index" json:"doctor_id"`
	AppointmentDate    time.Time           `gorm:"type:date;not null" json:"appointment_date"`
	AppointmentTime    TimeSlot            `gorm:"type:varchar(5);not null" json:"appointment_time"`
	Status             AppointmentStatus   `gorm:"type:varchar(16);not null;default:'Pending';index" json:"status"`
	ConsultationFee    decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"consultation_fee"`
	ConsultationReport *ConsultationReport `gorm:"type:jsonb" json:"consultation_report,omitempty"`
	CreatedAt          time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment is still open for changes
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsCompleted checks if appointment is completed
func (a *Appointment) IsCompleted() bool {
	return a.Status == AppointmentStatusCompleted
}

// OwnedBy reports whether the requester is the patient or treating doctor on the appointment
func (a *Appointment) OwnedBy(requester Requester) bool {
	switch requester.Role {
	case RolePatient:
		return a.PatientID == requester.ID
	case RoleDoctor:
		return a.DoctorID == requester.ID
	}
	return false
}

// ConsultationReport is written by the treating doctor once the appointment is completed
type ConsultationReport struct {
	Name         string   `json:"name,omitempty"`
	Age          *int     `json:"age,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Comment      string   `json:"comment,omitempty"`
	Diagnosis    string   `json:"diagnosis,omitempty"`
	Prescription string   `json:"prescription,omitempty"`
}

// Value implements driver.Valuer for JSONB storage
func (r ConsultationReport) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for JSONB storage
func (r *ConsultationReport) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil || bytes == nil {
		return err
	}
	return json.Unmarshal(bytes, r)
}
