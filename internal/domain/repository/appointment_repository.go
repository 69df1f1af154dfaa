package repository

import (
	"context"
	"errors"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrSlotConflict is returned by writes that would create a second active
	// appointment for the same doctor, date and time.
	ErrSlotConflict = errors.New("slot already held by an active appointment")
	// ErrStatusMismatch is returned by conditional updates when the stored status
	// no longer matches the expected one.
	ErrStatusMismatch = errors.New("appointment status does not match")
)

// AppointmentStore is the persistence boundary of the booking engine.
// Lookups return nil, nil when the record does not exist.
type AppointmentStore interface {
	FindConflicting(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.TimeSlot, excludeID *uuid.UUID) (*entity.Appointment, error)
	// Insert re-checks the slot inside the write and fails with ErrSlotConflict.
	Insert(ctx context.Context, appointment *entity.Appointment) error
	// Reschedule moves a Pending appointment. Fails with ErrSlotConflict or ErrStatusMismatch.
	Reschedule(ctx context.Context, id uuid.UUID, date time.Time, slot entity.TimeSlot) error
	// TransitionStatus moves id from one status to another, optionally attaching a report.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.AppointmentStatus, report *entity.ConsultationReport) error
	// UpdateReport replaces the report of a Completed appointment.
	UpdateReport(ctx context.Context, id uuid.UUID, report *entity.ConsultationReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error)
	// BookedTimes lists the slots held by non-cancelled appointments on date.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeSlot, error)
}
