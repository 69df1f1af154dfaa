package entity

import (
	"fmt"
	"strings"
	"time"
)

// TimeSlot is a fixed-width time-of-day label such as "09:15"
type TimeSlot string

// TimeSlots is the full bookable vocabulary, in chronological order
var TimeSlots = []TimeSlot{
	"09:00", "09:15", "09:30",
	"10:00", "10:15", "10:30",
	"11:00", "11:15", "11:30",
	"13:00", "13:15", "13:30",
	"14:00", "14:15", "14:30",
	"15:00", "15:15", "15:30",
	"16:00", "16:15", "16:30",
	"17:00", "17:15", "17:30",
}

var timeSlotIndex = func() map[TimeSlot]int {
	index := make(map[TimeSlot]int, len(TimeSlots))
	for i, slot := range TimeSlots {
		index[slot] = i
	}
	return index
}()

// IsValid reports whether the label belongs to the vocabulary
func (t TimeSlot) IsValid() bool {
	_, ok := timeSlotIndex[t]
	return ok
}

// Order returns the chronological position of the label, or -1 when unknown
func (t TimeSlot) Order() int {
	if i, ok := timeSlotIndex[t]; ok {
		return i
	}
	return -1
}

func (t TimeSlot) String() string {
	return string(t)
}

// Weekday names used as keys of a doctor's weekly template
const (
	WeekdaySunday    = "sunday"
	WeekdayMonday    = "monday"
	WeekdayTuesday   = "tuesday"
	WeekdayWednesday = "wednesday"
	WeekdayThursday  = "thursday"
	WeekdayFriday    = "friday"
	WeekdaySaturday  = "saturday"
)

// WeekdayName maps a time.Weekday to its template key
func WeekdayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}

// DateLayout is the canonical calendar date format
const DateLayout = "2006-01-02"

// NormalizeDate truncates t to midnight in loc
func NormalizeDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD date at midnight in loc
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", value, err)
	}
	return date, nil
}

// CalendarDate returns the calendar day of t as midnight UTC, the form stored in date columns
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
