package usecase

import (
	"context"
	"sync"
	"testing"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/apperror"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentLifecycle_BookRescheduleRebook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")
	assert.Equal(t, string(entity.AppointmentStatusPending), booked.Status)
	assert.Equal(t, nextMonday, booked.Date)
	assert.Equal(t, "09:00", booked.Time)

	_, err := f.book(f.patientB.ID, nextMonday, "09:00")
	assert.ErrorIs(t, err, apperror.ErrSlotTaken)
	assert.ErrorIs(t, err, ErrSlotTaken)

	moved, err := f.lifecycle.Reschedule(ctx, booked.ID, entity.PatientRequester(f.patientA.ID), &dto.RescheduleAppointmentRequest{Time: strPtr("09:15")})
	require.NoError(t, err)
	assert.Equal(t, "09:15", moved.Time)
	assert.Equal(t, nextMonday, moved.Date)

	retried, err := f.book(f.patientB.ID, nextMonday, "09:00")
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusPending), retried.Status)

	assert.Equal(t,
		[]entity.EventType{entity.EventAppointmentBooked, entity.EventAppointmentRescheduled},
		f.eventTypes(t, booked.ID))
}

func TestAppointmentLifecycle_CancelThenCancelAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := entity.PatientRequester(f.patientA.ID)

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")

	cancelled, err := f.lifecycle.Cancel(ctx, booked.ID, patient)
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusCancelled), cancelled.Status)

	_, err = f.lifecycle.Cancel(ctx, booked.ID, patient)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	// The cancelled slot is free again
	f.mustBook(t, f.patientB.ID, nextMonday, "09:00")

	assert.Equal(t,
		[]entity.EventType{entity.EventAppointmentBooked, entity.EventAppointmentCancelled},
		f.eventTypes(t, booked.ID))
}

func TestAppointmentLifecycle_CompleteWithReportThenReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	age := 34

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")

	completed, err := f.lifecycle.Complete(ctx, booked.ID, entity.DoctorRequester(f.doctor.ID), &dto.ConsultationReportRequest{
		Age:          &age,
		Diagnosis:    "Seasonal allergy",
		Prescription: "Cetirizine 10mg",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusCompleted), completed.Status)
	require.NotNil(t, completed.ConsultationReport)
	assert.Equal(t, "Seasonal allergy", completed.ConsultationReport.Diagnosis)
	assert.Equal(t, 34, *completed.ConsultationReport.Age)

	_, err = f.lifecycle.Reschedule(ctx, booked.ID, entity.PatientRequester(f.patientA.ID), &dto.RescheduleAppointmentRequest{Time: strPtr("09:15")})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	assert.Contains(t, f.eventTypes(t, booked.ID), entity.EventAppointmentCompleted)
}

func TestAppointmentLifecycle_CreateRejectsNonFutureDates(t *testing.T) {
	f := newFixture(t)

	for _, date := range []string{today, lastMonday, "2029-12-31"} {
		for _, slot := range []string{"09:00", "09:15", "13:00"} {
			_, err := f.book(f.patientA.ID, date, slot)
			assert.ErrorIs(t, err, apperror.ErrInvalidSlot, "%s %s", date, slot)
			assert.ErrorIs(t, err, ErrDateNotFuture, "%s %s", date, slot)
		}
	}
	assert.Equal(t, 0, f.store.Count())
}

func TestAppointmentLifecycle_CreateRejectsSlotsNotOffered(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		date string
		slot string
	}{
		{"time not in monday template", nextMonday, "10:00"},
		{"monday time on wednesday", nextWednesday, "09:00"},
		{"doctor off on tuesday", nextTuesday, "09:00"},
		{"label outside vocabulary", nextMonday, "08:45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.book(f.patientA.ID, tt.date, tt.slot)
			assert.ErrorIs(t, err, apperror.ErrInvalidSlot)
			assert.ErrorIs(t, err, ErrTimeNotOffered)
		})
	}
}

func TestAppointmentLifecycle_CreateResolvesParties(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle.Create(context.Background(), &dto.CreateAppointmentRequest{
		PatientID: f.patientA.ID,
		DoctorID:  uuid.New(),
		Date:      nextMonday,
		Time:      "09:00",
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = f.book(uuid.New(), nextMonday, "09:00")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestAppointmentLifecycle_TerminalStatesAreImmutable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := entity.PatientRequester(f.patientA.ID)
	doctor := entity.DoctorRequester(f.doctor.ID)

	completed := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")
	_, err := f.lifecycle.Complete(ctx, completed.ID, doctor, nil)
	require.NoError(t, err)

	cancelled := f.mustBook(t, f.patientA.ID, nextMonday, "09:15")
	_, err = f.lifecycle.Cancel(ctx, cancelled.ID, patient)
	require.NoError(t, err)

	for _, id := range []uuid.UUID{completed.ID, cancelled.ID} {
		_, err = f.lifecycle.Reschedule(ctx, id, patient, &dto.RescheduleAppointmentRequest{Date: strPtr(nextWednesday), Time: strPtr("13:00")})
		assert.ErrorIs(t, err, apperror.ErrInvalidState)

		_, err = f.lifecycle.Cancel(ctx, id, patient)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)

		_, err = f.lifecycle.Complete(ctx, id, doctor, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidState)
	}
}

func TestAppointmentLifecycle_FeeIsSnapshotAtCreation(t *testing.T) {
	f := newFixture(t)

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")
	require.NoError(t, f.users.SetDoctorFee(f.doctor.ID, decimal.NewFromInt(500)))

	stored, err := f.store.FindByID(context.Background(), booked.ID)
	require.NoError(t, err)
	assert.True(t, stored.ConsultationFee.Equal(decimal.RequireFromString("150.00")), "got %s", stored.ConsultationFee)

	later := f.mustBook(t, f.patientB.ID, nextMonday, "09:15")
	assert.True(t, later.ConsultationFee.Equal(decimal.NewFromInt(500)))
}

func TestAppointmentLifecycle_ConcurrentCreatesBookOnce(t *testing.T) {
	lockers := map[string]func(t *testing.T) service.DoctorLocker{
		"local lock": func(t *testing.T) service.DoctorLocker {
			l := service.NewLocalDoctorLocker(newTestLogger())
			t.Cleanup(l.Stop)
			return l
		},
		"store constraint only": func(*testing.T) service.DoctorLocker {
			return service.NoopDoctorLocker{}
		},
	}

	for name, newLocker := range lockers {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, withLocker(newLocker(t)))

			const attempts = 40
			patients := make([]uuid.UUID, attempts)
			for i := range patients {
				patients[i] = f.users.AddPatient(entity.Patient{Name: "p"}).ID
			}

			var wg sync.WaitGroup
			errs := make([]error, attempts)
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, errs[i] = f.book(patients[i], nextMonday, "09:00")
				}()
			}
			wg.Wait()

			succeeded := 0
			for _, err := range errs {
				if err == nil {
					succeeded++
					continue
				}
				assert.ErrorIs(t, err, apperror.ErrSlotTaken)
			}
			assert.Equal(t, 1, succeeded)

			list, err := f.lifecycle.ListForRequester(context.Background(), entity.DoctorRequester(f.doctor.ID))
			require.NoError(t, err)
			assert.Equal(t, 1, list.Total)
		})
	}
}

func TestAppointmentLifecycle_ConcurrentReschedulesIntoSameSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.mustBook(t, f.patientA.ID, nextWednesday, "13:00")
	b := f.mustBook(t, f.patientB.ID, nextWednesday, "13:15")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, pair := range []struct {
		id      uuid.UUID
		patient uuid.UUID
	}{{a.ID, f.patientA.ID}, {b.ID, f.patientB.ID}} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = f.lifecycle.Reschedule(ctx, pair.id, entity.PatientRequester(pair.patient), &dto.RescheduleAppointmentRequest{Time: strPtr("13:30")})
		}()
	}
	wg.Wait()

	okCount := 0
	for _, err := range results {
		if err == nil {
			okCount++
		} else {
			assert.ErrorIs(t, err, apperror.ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, okCount)
}

func TestAppointmentLifecycle_RescheduleValidatesNewSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	patient := entity.PatientRequester(f.patientA.ID)

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")
	f.mustBook(t, f.patientB.ID, nextMonday, "09:15")

	tests := []struct {
		name string
		req  *dto.RescheduleAppointmentRequest
		want error
	}{
		{"into the past", &dto.RescheduleAppointmentRequest{Date: strPtr(lastMonday)}, ErrDateNotFuture},
		{"weekday not offered", &dto.RescheduleAppointmentRequest{Date: strPtr(nextTuesday)}, ErrTimeNotOffered},
		{"time not offered", &dto.RescheduleAppointmentRequest{Time: strPtr("11:00")}, ErrTimeNotOffered},
		{"taken by another patient", &dto.RescheduleAppointmentRequest{Time: strPtr("09:15")}, ErrSlotTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.lifecycle.Reschedule(ctx, booked.ID, patient, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// Same slot conflicts only with itself
	unchanged, err := f.lifecycle.Reschedule(ctx, booked.ID, patient, &dto.RescheduleAppointmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, "09:00", unchanged.Time)

	moved, err := f.lifecycle.Reschedule(ctx, booked.ID, patient, &dto.RescheduleAppointmentRequest{Date: strPtr(nextWednesday), Time: strPtr("13:00")})
	require.NoError(t, err)
	assert.Equal(t, nextWednesday, moved.Date)
	assert.Equal(t, "13:00", moved.Time)
}

func TestAppointmentLifecycle_OwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")
	otherPatient := entity.PatientRequester(f.patientB.ID)
	treatingDoctor := entity.DoctorRequester(f.doctor.ID)
	otherDoctor := entity.DoctorRequester(uuid.New())

	_, err := f.lifecycle.Cancel(ctx, booked.ID, otherPatient)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.lifecycle.Cancel(ctx, booked.ID, treatingDoctor)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.lifecycle.Reschedule(ctx, booked.ID, otherPatient, &dto.RescheduleAppointmentRequest{Time: strPtr("09:15")})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.lifecycle.Complete(ctx, booked.ID, entity.PatientRequester(f.patientA.ID), nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.lifecycle.Complete(ctx, booked.ID, otherDoctor, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.lifecycle.Get(ctx, booked.ID, otherPatient)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := f.lifecycle.Get(ctx, booked.ID, treatingDoctor)
	require.NoError(t, err)
	assert.Equal(t, booked.ID, got.ID)

	_, err = f.lifecycle.Cancel(ctx, uuid.New(), otherPatient)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAppointmentLifecycle_SubmitReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doctor := entity.DoctorRequester(f.doctor.ID)

	booked := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")

	_, err := f.lifecycle.SubmitReport(ctx, booked.ID, doctor, &dto.ConsultationReportRequest{Diagnosis: "early"})
	assert.ErrorIs(t, err, apperror.ErrInvalidState)

	_, err = f.lifecycle.SubmitReport(ctx, booked.ID, doctor, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.lifecycle.Complete(ctx, booked.ID, doctor, nil)
	require.NoError(t, err)

	_, err = f.lifecycle.SubmitReport(ctx, booked.ID, entity.PatientRequester(f.patientA.ID), &dto.ConsultationReportRequest{Diagnosis: "self"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	saved, err := f.lifecycle.SubmitReport(ctx, booked.ID, doctor, &dto.ConsultationReportRequest{Diagnosis: "Migraine", Comment: "Follow up in two weeks"})
	require.NoError(t, err)
	require.NotNil(t, saved.ConsultationReport)
	assert.Equal(t, "Migraine", saved.ConsultationReport.Diagnosis)

	replaced, err := f.lifecycle.SubmitReport(ctx, booked.ID, doctor, &dto.ConsultationReportRequest{Diagnosis: "Tension headache"})
	require.NoError(t, err)
	assert.Equal(t, "Tension headache", replaced.ConsultationReport.Diagnosis)
	assert.Empty(t, replaced.ConsultationReport.Comment)
}

func TestAppointmentLifecycle_ListForRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a1 := f.mustBook(t, f.patientA.ID, nextWednesday, "13:00")
	a2 := f.mustBook(t, f.patientA.ID, nextMonday, "09:00")
	f.mustBook(t, f.patientB.ID, nextMonday, "09:15")

	mine, err := f.lifecycle.ListForRequester(ctx, entity.PatientRequester(f.patientA.ID))
	require.NoError(t, err)
	require.Equal(t, 2, mine.Total)
	assert.Equal(t, a2.ID, mine.Appointments[0].ID)
	assert.Equal(t, a1.ID, mine.Appointments[1].ID)

	theirs, err := f.lifecycle.ListForRequester(ctx, entity.DoctorRequester(f.doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, 3, theirs.Total)

	_, err = f.lifecycle.ListForRequester(ctx, entity.Requester{ID: f.patientA.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	patient, err := f.users.ResolvePatient(ctx, f.patientA.ID)
	require.NoError(t, err)
	assert.True(t, patient.AppointmentIDs.Contains(a1.ID))
	assert.True(t, patient.AppointmentIDs.Contains(a2.ID))

	doctor, err := f.users.ResolveDoctor(ctx, f.doctor.ID)
	require.NoError(t, err)
	assert.Len(t, doctor.AppointmentIDs, 3)
}

func TestAppointmentLifecycle_SideEffectFailuresDoNotRollBack(t *testing.T) {
	f := newFixture(t, withEmitter(failingEmitter{}), withBackRefs(failingBackRefs{}))
	ctx := context.Background()

	booked, err := f.book(f.patientA.ID, nextMonday, "09:00")
	require.NoError(t, err)

	stored, err := f.store.FindByID(ctx, booked.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)

	// Enumeration does not depend on back-references
	mine, err := f.lifecycle.ListForRequester(ctx, entity.PatientRequester(f.patientA.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)

	cancelled, err := f.lifecycle.Cancel(ctx, booked.ID, entity.PatientRequester(f.patientA.ID))
	require.NoError(t, err)
	assert.Equal(t, string(entity.AppointmentStatusCancelled), cancelled.Status)
}
