package converter

import (
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// AvailabilityToResponse builds the free-slot view of one doctor day
func AvailabilityToResponse(doctorID uuid.UUID, date time.Time, free []entity.TimeSlot, total, booked int) *dto.AvailabilityResponse {
	slots := make([]string, len(free))
	for i, slot := range free {
		slots[i] = slot.String()
	}

	return &dto.AvailabilityResponse{
		DoctorID:       doctorID,
		Date:           date.Format(entity.DateLayout),
		Weekday:        entity.WeekdayName(date.Weekday()),
		AvailableSlots: slots,
		TotalSlots:     total,
		BookedSlots:    booked,
	}
}
