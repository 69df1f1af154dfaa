package memory

import (
	"context"
	"sync"
	"time"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
)

// AppointmentEventRepository is an append-only in-memory event log
type AppointmentEventRepository struct {
	mu     sync.RWMutex
	events []entity.AppointmentEvent
}

func NewAppointmentEventRepository() *AppointmentEventRepository {
	return &AppointmentEventRepository{}
}

var _ domainRepo.AppointmentEventRepository = (*AppointmentEventRepository)(nil)

func (r *AppointmentEventRepository) Create(_ context.Context, event *entity.AppointmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = int64(len(r.events) + 1)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *AppointmentEventRepository) ListByAppointment(_ context.Context, appointmentID uuid.UUID) ([]entity.AppointmentEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.AppointmentEvent
	for _, event := range r.events {
		if event.AppointmentID == appointmentID {
			out = append(out, event)
		}
	}
	return out, nil
}
