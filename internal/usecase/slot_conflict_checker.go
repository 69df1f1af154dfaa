package usecase

import (
	"context"
	"time"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
)

// SlotConflictChecker looks for an active appointment already holding a slot
type SlotConflictChecker struct {
	store repository.AppointmentStore
}

func NewSlotConflictChecker(store repository.AppointmentStore) *SlotConflictChecker {
	return &SlotConflictChecker{store: store}
}

// HasConflict reports whether a non-cancelled appointment other than excludeID
// occupies (doctorID, date, slot). Callers that write afterwards must hold the
// doctor lock across both steps.
func (c *SlotConflictChecker) HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.TimeSlot, excludeID *uuid.UUID) (bool, error) {
	existing, err := c.store.FindConflicting(ctx, doctorID, date, slot, excludeID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
