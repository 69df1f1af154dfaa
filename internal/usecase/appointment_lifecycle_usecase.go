package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/apperror"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrAppointmentNotFound     = apperror.New(apperror.KindNotFound, "appointment not found")
	ErrDoctorNotFound          = apperror.New(apperror.KindNotFound, "doctor not found")
	ErrPatientNotFound         = apperror.New(apperror.KindNotFound, "patient not found")
	ErrDateNotFuture           = apperror.New(apperror.KindInvalidSlot, "appointment date must be in the future")
	ErrTimeNotOffered          = apperror.New(apperror.KindInvalidSlot, "doctor does not offer this time on the selected day")
	ErrSlotTaken               = apperror.New(apperror.KindSlotTaken, "this slot is already booked")
	ErrNotAppointmentPatient   = apperror.New(apperror.KindForbidden, "only the patient who booked the appointment can change it")
	ErrNotAppointmentDoctor    = apperror.New(apperror.KindForbidden, "only the treating doctor can do this")
	ErrNotAppointmentParty     = apperror.New(apperror.KindForbidden, "appointment does not belong to you")
	ErrAppointmentNotPending   = apperror.New(apperror.KindInvalidState, "appointment is no longer pending")
	ErrAppointmentNotCompleted = apperror.New(apperror.KindInvalidState, "appointment is not completed")
	ErrReportRequired          = apperror.New(apperror.KindValidation, "consultation report is required")
	ErrUnknownRole             = apperror.New(apperror.KindValidation, "unknown requester role")
)

type AppointmentLifecycle interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	Reschedule(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester, report *dto.ConsultationReportRequest) (*dto.AppointmentResponse, error)
	SubmitReport(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester, report *dto.ConsultationReportRequest) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester) (*dto.AppointmentResponse, error)
	ListForRequester(ctx context.Context, requester entity.Requester) (*dto.AppointmentListResponse, error)
}

type appointmentLifecycle struct {
	log      *logrus.Logger
	store    repository.AppointmentStore
	users    repository.UserDirectory
	backRefs repository.BackReferenceIndex
	locker   service.DoctorLocker
	events   service.EventEmitter
	calendar *AvailabilityCalendar
	conflict *SlotConflictChecker
	now      func() time.Time
}

func NewAppointmentLifecycle(
	log *logrus.Logger,
	store repository.AppointmentStore,
	users repository.UserDirectory,
	backRefs repository.BackReferenceIndex,
	locker service.DoctorLocker,
	events service.EventEmitter,
	calendar *AvailabilityCalendar,
	clock func() time.Time,
) AppointmentLifecycle {
	if clock == nil {
		clock = time.Now
	}
	return &appointmentLifecycle{
		log:      log,
		store:    store,
		users:    users,
		backRefs: backRefs,
		locker:   locker,
		events:   events,
		calendar: calendar,
		conflict: NewSlotConflictChecker(store),
		now:      clock,
	}
}

// Create books a slot for a patient.
//
// Flow:
// 1. Resolve doctor and patient
// 2. Validate the date is after today and the time is offered that weekday
// 3. Under the doctor lock: conflict check, then insert (the store re-checks in its transaction)
// 4. Best-effort back-references and AppointmentBooked event
func (u *appointmentLifecycle) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	date, err := u.calendar.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "date must use YYYY-MM-DD", err)
	}
	slot := entity.TimeSlot(req.Time)

	doctor, err := u.users.ResolveDoctor(ctx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to resolve doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	patient, err := u.users.ResolvePatient(ctx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to resolve patient %s: %+v", req.PatientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if err := u.validateSlot(doctor, date, slot); err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		AppointmentTime: slot,
		Status:          entity.AppointmentStatusPending,
		// Snapshot: later fee changes on the doctor do not reach this row
		ConsultationFee: doctor.ConsultationFee,
	}

	err = u.withDoctorLock(ctx, doctor.ID, func() error {
		taken, err := u.conflict.HasConflict(ctx, doctor.ID, date, slot, nil)
		if err != nil {
			u.log.Warnf("Failed to check slot conflict: %+v", err)
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		if err := u.store.Insert(ctx, appointment); err != nil {
			if errors.Is(err, repository.ErrSlotConflict) {
				return ErrSlotTaken
			}
			u.log.Warnf("Failed to insert appointment: %+v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.appendBackReference(ctx, entity.RolePatient, patient.ID, appointment.ID)
	u.appendBackReference(ctx, entity.RoleDoctor, doctor.ID, appointment.ID)
	u.publish(ctx, entity.EventAppointmentBooked, appointment)

	u.log.Infof("Appointment booked: id=%s, doctor=%s, date=%s, time=%s", appointment.ID, doctor.ID, req.Date, slot)
	return converter.AppointmentToResponse(appointment), nil
}

// Reschedule moves a pending appointment to a new date and/or time.
// The new slot goes through the same validation as Create, excluding the
// appointment itself from the conflict check.
func (u *appointmentLifecycle) Reschedule(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !isPatientOf(requester, appointment) {
		return nil, ErrNotAppointmentPatient
	}
	if !appointment.IsPending() {
		return nil, ErrAppointmentNotPending
	}

	date := u.calendar.StoredDay(appointment.AppointmentDate)
	slot := appointment.AppointmentTime
	if req != nil && req.Date != nil {
		if date, err = u.calendar.ParseDate(*req.Date); err != nil {
			return nil, apperror.Wrap(apperror.KindValidation, "date must use YYYY-MM-DD", err)
		}
	}
	if req != nil && req.Time != nil {
		slot = entity.TimeSlot(*req.Time)
	}

	doctor, err := u.users.ResolveDoctor(ctx, appointment.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to resolve doctor %s: %+v", appointment.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	if err := u.validateSlot(doctor, date, slot); err != nil {
		return nil, err
	}

	err = u.withDoctorLock(ctx, doctor.ID, func() error {
		taken, err := u.conflict.HasConflict(ctx, doctor.ID, date, slot, &appointment.ID)
		if err != nil {
			u.log.Warnf("Failed to check slot conflict: %+v", err)
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		if err := u.store.Reschedule(ctx, appointment.ID, date, slot); err != nil {
			switch {
			case errors.Is(err, repository.ErrSlotConflict):
				return ErrSlotTaken
			case errors.Is(err, repository.ErrStatusMismatch):
				return ErrAppointmentNotPending
			}
			u.log.Warnf("Failed to reschedule appointment %s: %+v", appointment.ID, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := u.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}

	u.publish(ctx, entity.EventAppointmentRescheduled, updated)
	u.log.Infof("Appointment rescheduled: id=%s, date=%s, time=%s", updated.ID, date.Format(entity.DateLayout), slot)
	return converter.AppointmentToResponse(updated), nil
}

// Cancel moves a pending appointment to Cancelled, freeing its slot.
// Cancelling twice is rejected rather than ignored.
func (u *appointmentLifecycle) Cancel(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester) (*dto.AppointmentResponse, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !isPatientOf(requester, appointment) {
		return nil, ErrNotAppointmentPatient
	}
	if !appointment.IsPending() {
		return nil, ErrAppointmentNotPending
	}

	updated, err := u.transition(ctx, appointment.ID, entity.AppointmentStatusCancelled, nil)
	if err != nil {
		return nil, err
	}

	u.publish(ctx, entity.EventAppointmentCancelled, updated)
	u.log.Infof("Appointment cancelled: id=%s, doctor=%s", updated.ID, updated.DoctorID)
	return converter.AppointmentToResponse(updated), nil
}

// Complete is done by the treating doctor, only from Pending
func (u *appointmentLifecycle) Complete(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester, report *dto.ConsultationReportRequest) (*dto.AppointmentResponse, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !isDoctorOf(requester, appointment) {
		return nil, ErrNotAppointmentDoctor
	}
	if !appointment.IsPending() {
		return nil, ErrAppointmentNotPending
	}

	updated, err := u.transition(ctx, appointment.ID, entity.AppointmentStatusCompleted, converter.ConsultationReportFromRequest(report))
	if err != nil {
		return nil, err
	}

	u.publish(ctx, entity.EventAppointmentCompleted, updated)
	u.log.Infof("Appointment completed: id=%s, doctor=%s", updated.ID, updated.DoctorID)
	return converter.AppointmentToResponse(updated), nil
}

// SubmitReport writes or replaces the consultation report of a completed appointment
func (u *appointmentLifecycle) SubmitReport(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester, report *dto.ConsultationReportRequest) (*dto.AppointmentResponse, error) {
	if report == nil {
		return nil, ErrReportRequired
	}

	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !isDoctorOf(requester, appointment) {
		return nil, ErrNotAppointmentDoctor
	}
	if !appointment.IsCompleted() {
		return nil, ErrAppointmentNotCompleted
	}

	if err := u.store.UpdateReport(ctx, appointment.ID, converter.ConsultationReportFromRequest(report)); err != nil {
		if errors.Is(err, repository.ErrStatusMismatch) {
			return nil, ErrAppointmentNotCompleted
		}
		u.log.Warnf("Failed to update report for appointment %s: %+v", appointment.ID, err)
		return nil, err
	}

	updated, err := u.findAppointment(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}

	u.log.Infof("Consultation report saved: appointment=%s", updated.ID)
	return converter.AppointmentToResponse(updated), nil
}

// Get returns an appointment to its patient or treating doctor
func (u *appointmentLifecycle) Get(ctx context.Context, appointmentID uuid.UUID, requester entity.Requester) (*dto.AppointmentResponse, error) {
	appointment, err := u.findAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appointment.OwnedBy(requester) {
		return nil, ErrNotAppointmentParty
	}
	return converter.AppointmentToResponse(appointment), nil
}

// ListForRequester queries appointments by owner id. Back-reference lists are
// never used for enumeration.
func (u *appointmentLifecycle) ListForRequester(ctx context.Context, requester entity.Requester) (*dto.AppointmentListResponse, error) {
	var (
		appointments []entity.Appointment
		err          error
	)

	switch requester.Role {
	case entity.RolePatient:
		appointments, err = u.store.ListByPatient(ctx, requester.ID)
	case entity.RoleDoctor:
		appointments, err = u.store.ListByDoctor(ctx, requester.ID)
	default:
		return nil, ErrUnknownRole
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s %s: %+v", requester.Role, requester.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// validateSlot enforces future-only dates and weekday membership
func (u *appointmentLifecycle) validateSlot(doctor *entity.Doctor, date time.Time, slot entity.TimeSlot) error {
	today := u.calendar.Normalize(u.now())
	if !date.After(today) {
		return ErrDateNotFuture
	}
	if !u.calendar.Offers(doctor, date, slot) {
		return ErrTimeNotOffered
	}
	return nil
}

func (u *appointmentLifecycle) withDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func() error) error {
	unlock, err := u.locker.Lock(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to lock doctor %s: %+v", doctorID, err)
		return fmt.Errorf("lock doctor %s: %w", doctorID, err)
	}
	defer unlock()

	return fn()
}

// transition applies a conditional Pending -> to update and reloads the row
func (u *appointmentLifecycle) transition(ctx context.Context, id uuid.UUID, to entity.AppointmentStatus, report *entity.ConsultationReport) (*entity.Appointment, error) {
	if err := u.store.TransitionStatus(ctx, id, entity.AppointmentStatusPending, to, report); err != nil {
		if errors.Is(err, repository.ErrStatusMismatch) {
			return nil, ErrAppointmentNotPending
		}
		u.log.Warnf("Failed to move appointment %s to %s: %+v", id, to, err)
		return nil, err
	}
	return u.findAppointment(ctx, id)
}

func (u *appointmentLifecycle) findAppointment(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.store.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// appendBackReference updates the denormalized id list. Failure leaves the
// appointment intact and is only logged.
func (u *appointmentLifecycle) appendBackReference(ctx context.Context, role entity.Role, ownerID, appointmentID uuid.UUID) {
	if err := u.backRefs.AppendAppointment(ctx, role, ownerID, appointmentID); err != nil {
		u.log.Warnf("Failed to append appointment %s to %s %s (non-fatal): %+v", appointmentID, role, ownerID, err)
	}
}

// publish is fire-and-forget: the state change is already committed
func (u *appointmentLifecycle) publish(ctx context.Context, eventType entity.EventType, appointment *entity.Appointment) {
	event := service.Event{
		Type:          eventType,
		AppointmentID: appointment.ID,
		Payload: entity.JSON{
			"patient_id":       appointment.PatientID.String(),
			"doctor_id":        appointment.DoctorID.String(),
			"date":             appointment.AppointmentDate.Format(entity.DateLayout),
			"time":             appointment.AppointmentTime.String(),
			"status":           string(appointment.Status),
			"consultation_fee": appointment.ConsultationFee.String(),
		},
		OccurredAt: u.now(),
	}

	if err := u.events.Publish(ctx, event); err != nil {
		u.log.Warnf("Failed to publish %s for appointment %s (non-fatal): %+v", eventType, appointment.ID, err)
	}
}

func isPatientOf(requester entity.Requester, appointment *entity.Appointment) bool {
	return requester.Role == entity.RolePatient && requester.ID == appointment.PatientID
}

func isDoctorOf(requester entity.Requester, appointment *entity.Appointment) bool {
	return requester.Role == entity.RoleDoctor && requester.ID == appointment.DoctorID
}
