package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentEventRepository interface {
	Create(ctx context.Context, event *entity.AppointmentEvent) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]entity.AppointmentEvent, error)
}
