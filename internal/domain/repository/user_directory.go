package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// UserDirectory resolves patient and doctor identities. Lookups return nil, nil when absent.
type UserDirectory interface {
	ResolveDoctor(ctx context.Context, id uuid.UUID) (*entity.Doctor, error)
	ResolvePatient(ctx context.Context, id uuid.UUID) (*entity.Patient, error)
	SearchDoctors(ctx context.Context, filter *entity.DoctorFilter) ([]entity.Doctor, int64, error)
}

// BackReferenceIndex maintains the denormalized appointment id lists on patients and doctors.
type BackReferenceIndex interface {
	AppendAppointment(ctx context.Context, role entity.Role, ownerID, appointmentID uuid.UUID) error
}
