package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type SearchDoctorsRequest struct {
	Specialization string `json:"specialization" validate:"omitempty"`
	Location       string `json:"location" validate:"omitempty"`
	MaxFee         string `json:"max_fee" validate:"omitempty,numeric"`
	Search         string `json:"search" validate:"omitempty"`
	SortBy         string `json:"sort_by" validate:"omitempty,oneof=fee experience"`
	Page           int    `json:"page" validate:"omitempty,min=1"`
	Limit          int    `json:"limit" validate:"omitempty,min=1,max=100"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID           `json:"id"`
	Name            string              `json:"name"`
	Email           string              `json:"email"`
	Specialization  string              `json:"specialization"`
	Location        string              `json:"location"`
	Experience      int                 `json:"experience"`
	ConsultationFee decimal.Decimal     `json:"consultation_fee"`
	Availability    map[string][]string `json:"availability"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}
