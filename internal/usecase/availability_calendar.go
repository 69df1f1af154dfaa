package usecase

import (
	"slices"
	"time"

	"go-medical-booking/internal/domain/entity"
)

// AvailabilityCalendar resolves calendar dates against a doctor's weekly
// template. Weekdays are computed in one canonical zone.
type AvailabilityCalendar struct {
	loc *time.Location
}

func NewAvailabilityCalendar(loc *time.Location) *AvailabilityCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityCalendar{loc: loc}
}

// Location returns the canonical zone
func (c *AvailabilityCalendar) Location() *time.Location {
	return c.loc
}

// Normalize truncates t to midnight of its day in the canonical zone
func (c *AvailabilityCalendar) Normalize(t time.Time) time.Time {
	return entity.NormalizeDate(t, c.loc)
}

// StoredDay maps a date read from storage back to midnight in the canonical zone.
// Stored dates carry only year, month and day.
func (c *AvailabilityCalendar) StoredDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// ParseDate parses YYYY-MM-DD in the canonical zone
func (c *AvailabilityCalendar) ParseDate(value string) (time.Time, error) {
	return entity.ParseDate(value, c.loc)
}

// ResolveWeekday returns the template key for the date's day of week
func (c *AvailabilityCalendar) ResolveWeekday(date time.Time) string {
	return entity.WeekdayName(date.In(c.loc).Weekday())
}

// SlotsFor returns the slots the doctor offers on date, empty when the doctor does not work that day
func (c *AvailabilityCalendar) SlotsFor(doctor *entity.Doctor, date time.Time) []entity.TimeSlot {
	if doctor == nil {
		return []entity.TimeSlot{}
	}
	return doctor.Availability.SlotsOn(c.ResolveWeekday(date))
}

// Offers reports whether slot is in the doctor's template for date
func (c *AvailabilityCalendar) Offers(doctor *entity.Doctor, date time.Time, slot entity.TimeSlot) bool {
	return slot.IsValid() && slices.Contains(c.SlotsFor(doctor, date), slot)
}
