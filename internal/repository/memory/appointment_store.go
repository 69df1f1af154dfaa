// Package memory provides in-process implementations of the booking repositories.
// They enforce the same active-slot uniqueness as the Postgres schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
)

type slotKey struct {
	doctorID uuid.UUID
	date     string
	time     entity.TimeSlot
}

func keyOf(doctorID uuid.UUID, date time.Time, slot entity.TimeSlot) slotKey {
	return slotKey{doctorID: doctorID, date: date.Format(entity.DateLayout), time: slot}
}

// AppointmentStore keeps appointments in a map guarded by a mutex
type AppointmentStore struct {
	mu           sync.RWMutex
	appointments map[uuid.UUID]*entity.Appointment
	active       map[slotKey]uuid.UUID
	now          func() time.Time
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{
		appointments: make(map[uuid.UUID]*entity.Appointment),
		active:       make(map[slotKey]uuid.UUID),
		now:          time.Now,
	}
}

var _ domainRepo.AppointmentStore = (*AppointmentStore)(nil)

func (s *AppointmentStore) FindConflicting(_ context.Context, doctorID uuid.UUID, date time.Time, slot entity.TimeSlot, excludeID *uuid.UUID) (*entity.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.active[keyOf(doctorID, date, slot)]
	if !ok || (excludeID != nil && id == *excludeID) {
		return nil, nil
	}
	return clone(s.appointments[id]), nil
}

func (s *AppointmentStore) Insert(_ context.Context, appointment *entity.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appointment.AppointmentDate = entity.CalendarDate(appointment.AppointmentDate)
	key := keyOf(appointment.DoctorID, appointment.AppointmentDate, appointment.AppointmentTime)
	if appointment.Status != entity.AppointmentStatusCancelled {
		if _, taken := s.active[key]; taken {
			return domainRepo.ErrSlotConflict
		}
	}

	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := s.now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	s.appointments[appointment.ID] = clone(appointment)
	if appointment.Status != entity.AppointmentStatusCancelled {
		s.active[key] = appointment.ID
	}
	return nil
}

func (s *AppointmentStore) Reschedule(_ context.Context, id uuid.UUID, date time.Time, slot entity.TimeSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.appointments[id]
	if !ok || current.Status != entity.AppointmentStatusPending {
		return domainRepo.ErrStatusMismatch
	}

	day := entity.CalendarDate(date)
	newKey := keyOf(current.DoctorID, day, slot)
	if holder, taken := s.active[newKey]; taken && holder != id {
		return domainRepo.ErrSlotConflict
	}

	delete(s.active, keyOf(current.DoctorID, current.AppointmentDate, current.AppointmentTime))
	current.AppointmentDate = day
	current.AppointmentTime = slot
	current.UpdatedAt = s.now()
	s.active[newKey] = id
	return nil
}

func (s *AppointmentStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to entity.AppointmentStatus, report *entity.ConsultationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.appointments[id]
	if !ok || current.Status != from {
		return domainRepo.ErrStatusMismatch
	}

	if to == entity.AppointmentStatusCancelled {
		key := keyOf(current.DoctorID, current.AppointmentDate, current.AppointmentTime)
		if s.active[key] == id {
			delete(s.active, key)
		}
	}
	current.Status = to
	if report != nil {
		r := *report
		current.ConsultationReport = &r
	}
	current.UpdatedAt = s.now()
	return nil
}

func (s *AppointmentStore) UpdateReport(_ context.Context, id uuid.UUID, report *entity.ConsultationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.appointments[id]
	if !ok || current.Status != entity.AppointmentStatusCompleted {
		return domainRepo.ErrStatusMismatch
	}
	if report == nil {
		current.ConsultationReport = nil
	} else {
		r := *report
		current.ConsultationReport = &r
	}
	current.UpdatedAt = s.now()
	return nil
}

func (s *AppointmentStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return clone(s.appointments[id]), nil
}

func (s *AppointmentStore) ListByPatient(_ context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	return s.list(func(a *entity.Appointment) bool { return a.PatientID == patientID }), nil
}

func (s *AppointmentStore) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	return s.list(func(a *entity.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (s *AppointmentStore) BookedTimes(_ context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := date.Format(entity.DateLayout)
	var times []entity.TimeSlot
	for key := range s.active {
		if key.doctorID == doctorID && key.date == day {
			times = append(times, key.time)
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Order() < times[j].Order() })
	return times, nil
}

// Count returns the number of stored appointments
func (s *AppointmentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appointments)
}

func (s *AppointmentStore) list(match func(*entity.Appointment) bool) []entity.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []entity.Appointment
	for _, a := range s.appointments {
		if match(a) {
			out = append(out, *clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppointmentDate.Equal(out[j].AppointmentDate) {
			return out[i].AppointmentDate.Before(out[j].AppointmentDate)
		}
		return out[i].AppointmentTime.Order() < out[j].AppointmentTime.Order()
	})
	return out
}

func clone(a *entity.Appointment) *entity.Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.ConsultationReport != nil {
		r := *a.ConsultationReport
		c.ConsultationReport = &r
	}
	return &c
}
