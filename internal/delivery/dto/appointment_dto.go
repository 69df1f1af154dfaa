package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	Date      string    `json:"date" validate:"required,isodate"`
	Time      string    `json:"time" validate:"required,timeslot"`
}

// RescheduleAppointmentRequest keeps the current value for any field left nil
type RescheduleAppointmentRequest struct {
	Date *string `json:"date,omitempty" validate:"omitempty,isodate"`
	Time *string `json:"time,omitempty" validate:"omitempty,timeslot"`
}

type ConsultationReportRequest struct {
	Name         string   `json:"name" validate:"omitempty,max=100"`
	Age          *int     `json:"age" validate:"omitempty,gte=0,lte=150"`
	Weight       *float64 `json:"weight" validate:"omitempty,gt=0"`
	Height       *float64 `json:"height" validate:"omitempty,gt=0"`
	Comment      string   `json:"comment" validate:"omitempty,max=2000"`
	Diagnosis    string   `json:"diagnosis" validate:"omitempty,max=2000"`
	Prescription string   `json:"prescription" validate:"omitempty,max=2000"`
}

// Response DTOs

type ConsultationReportResponse struct {
	Name         string   `json:"name,omitempty"`
	Age          *int     `json:"age,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Height       *float64 `json:"height,omitempty"`
	Comment      string   `json:"comment,omitempty"`
	Diagnosis    string   `json:"diagnosis,omitempty"`
	Prescription string   `json:"prescription,omitempty"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID                   `json:"id"`
	PatientID          uuid.UUID                   `json:"patient_id"`
	DoctorID           uuid.UUID                   `json:"doctor_id"`
	Date               string                      `json:"date"`
	Time               string                      `json:"time"`
	Status             string                      `json:"status"`
	ConsultationFee    decimal.Decimal             `json:"consultation_fee"`
	ConsultationReport *ConsultationReportResponse `json:"consultation_report,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
