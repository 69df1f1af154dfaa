package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/repository/memory"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// 2030-03-01 is a Friday; the doctor works Mondays and Wednesdays.
var fixedNow = time.Date(2030, time.March, 1, 10, 0, 0, 0, time.UTC)

const (
	nextMonday    = "2030-03-04"
	nextTuesday   = "2030-03-05"
	nextWednesday = "2030-03-06"
	lastMonday    = "2030-02-25"
	today         = "2030-03-01"
)

type fixture struct {
	lifecycle AppointmentLifecycle
	query     AvailabilityQuery
	directory DoctorDirectory
	store     *memory.AppointmentStore
	users     *memory.UserDirectory
	events    *memory.AppointmentEventRepository
	doctor    entity.Doctor
	patientA  entity.Patient
	patientB  entity.Patient
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	locker   service.DoctorLocker
	emitter  service.EventEmitter
	backRefs repository.BackReferenceIndex
}

func withLocker(locker service.DoctorLocker) fixtureOption {
	return func(c *fixtureConfig) { c.locker = locker }
}

func withEmitter(emitter service.EventEmitter) fixtureOption {
	return func(c *fixtureConfig) { c.emitter = emitter }
}

func withBackRefs(backRefs repository.BackReferenceIndex) fixtureOption {
	return func(c *fixtureConfig) { c.backRefs = backRefs }
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	log := newTestLogger()

	store := memory.NewAppointmentStore()
	users := memory.NewUserDirectory()
	events := memory.NewAppointmentEventRepository()

	doctor := users.AddDoctor(entity.Doctor{
		Name:            "Dr. Sari",
		Email:           "sari@clinic.test",
		Specialization:  "General Practice",
		Location:        "Jakarta",
		Experience:      7,
		ConsultationFee: decimal.RequireFromString("150.00"),
		Availability: entity.WeeklyAvailability{
			entity.WeekdayMonday:    {"09:00", "09:15"},
			entity.WeekdayWednesday: {"13:00", "13:15", "13:30"},
		},
	})
	patientA := users.AddPatient(entity.Patient{Name: "Andi", Email: "andi@mail.test"})
	patientB := users.AddPatient(entity.Patient{Name: "Bela", Email: "bela@mail.test"})

	local := service.NewLocalDoctorLocker(log)
	t.Cleanup(local.Stop)

	cfg := &fixtureConfig{
		locker:   local,
		emitter:  service.NewMultiEmitter(log, service.NewLogEventSink(log), service.NewEventLogSink(log, events)),
		backRefs: users,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	calendar := NewAvailabilityCalendar(time.UTC)
	clock := func() time.Time { return fixedNow }

	return &fixture{
		lifecycle: NewAppointmentLifecycle(log, store, users, cfg.backRefs, cfg.locker, cfg.emitter, calendar, clock),
		query:     NewAvailabilityQuery(log, store, users, calendar),
		directory: NewDoctorDirectory(log, users),
		store:     store,
		users:     users,
		events:    events,
		doctor:    doctor,
		patientA:  patientA,
		patientB:  patientB,
	}
}

func (f *fixture) book(patientID uuid.UUID, date, slot string) (*dto.AppointmentResponse, error) {
	return f.lifecycle.Create(context.Background(), &dto.CreateAppointmentRequest{
		PatientID: patientID,
		DoctorID:  f.doctor.ID,
		Date:      date,
		Time:      slot,
	})
}

func (f *fixture) mustBook(t *testing.T, patientID uuid.UUID, date, slot string) *dto.AppointmentResponse {
	t.Helper()
	resp, err := f.book(patientID, date, slot)
	require.NoError(t, err)
	return resp
}

func (f *fixture) eventTypes(t *testing.T, appointmentID uuid.UUID) []entity.EventType {
	t.Helper()
	stored, err := f.events.ListByAppointment(context.Background(), appointmentID)
	require.NoError(t, err)
	types := make([]entity.EventType, 0, len(stored))
	for _, e := range stored {
		types = append(types, e.EventType)
	}
	return types
}

func strPtr(s string) *string { return &s }

type failingEmitter struct{}

func (failingEmitter) Publish(context.Context, service.Event) error {
	return errors.New("broker unavailable")
}

type failingBackRefs struct{}

func (failingBackRefs) AppendAppointment(context.Context, entity.Role, uuid.UUID, uuid.UUID) error {
	return errors.New("patients table locked")
}
