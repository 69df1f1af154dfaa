package repository

import (
	"context"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentEventRepository struct {
	db *gorm.DB
}

func NewAppointmentEventRepository(db *gorm.DB) domainRepo.AppointmentEventRepository {
	return &appointmentEventRepository{db: db}
}

func (r *appointmentEventRepository) Create(ctx context.Context, event *entity.AppointmentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *appointmentEventRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]entity.AppointmentEvent, error) {
	var events []entity.AppointmentEvent
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
