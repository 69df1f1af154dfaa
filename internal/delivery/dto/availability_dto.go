package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type AvailabilityRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	Date     string    `json:"date" validate:"required,isodate"`
}

type NextAvailabilityRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	From     string    `json:"from" validate:"required,isodate"`
	Days     int       `json:"days" validate:"required,min=1,max=90"`
}

// Response DTOs

type AvailabilityResponse struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	Date           string    `json:"date"`
	Weekday        string    `json:"weekday"`
	AvailableSlots []string  `json:"available_slots"`
	TotalSlots     int       `json:"total_slots"`
	BookedSlots    int       `json:"booked_slots"`
}
