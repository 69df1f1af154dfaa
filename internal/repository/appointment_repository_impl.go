package repository

import (
	"context"
	"errors"
	"time"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentStore {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) FindConflicting(ctx context.Context, doctorID uuid.UUID, date time.Time, slot entity.TimeSlot, excludeID *uuid.UUID) (*entity.Appointment, error) {
	return findConflicting(r.db.WithContext(ctx), doctorID, date, slot, excludeID)
}

// Insert runs the conflict check and the insert in one transaction. The partial
// unique index closes the gap between the two under concurrent writers.
func (r *appointmentRepository) Insert(ctx context.Context, appointment *entity.Appointment) error {
	appointment.AppointmentDate = entity.CalendarDate(appointment.AppointmentDate)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findConflicting(tx, appointment.DoctorID, appointment.AppointmentDate, appointment.AppointmentTime, nil)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainRepo.ErrSlotConflict
		}

		if err := tx.Create(appointment).Error; err != nil {
			if isUniqueViolation(err, activeSlotIndex) {
				return domainRepo.ErrSlotConflict
			}
			return err
		}
		return nil
	})
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, date time.Time, slot entity.TimeSlot) error {
	day := entity.CalendarDate(date)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current entity.Appointment
		if err := tx.Select("id", "doctor_id").Where("id = ?", id).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrStatusMismatch
			}
			return err
		}

		existing, err := findConflicting(tx, current.DoctorID, day, slot, &id)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainRepo.ErrSlotConflict
		}

		result := tx.Model(&entity.Appointment{}).
			Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
			Updates(map[string]interface{}{
				"appointment_date": day,
				"appointment_time": slot,
				"updated_at":       time.Now(),
			})
		if result.Error != nil {
			if isUniqueViolation(result.Error, activeSlotIndex) {
				return domainRepo.ErrSlotConflict
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainRepo.ErrStatusMismatch
		}
		return nil
	})
}

// TransitionStatus atomically moves an appointment ONLY if it is still in the expected status.
// Zero affected rows means another request already moved it.
func (r *appointmentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entity.AppointmentStatus, report *entity.ConsultationReport) error {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if report != nil {
		updates["consultation_report"] = report
	}

	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrStatusMismatch
	}
	return nil
}

func (r *appointmentRepository) UpdateReport(ctx context.Context, id uuid.UUID, report *entity.ConsultationReport) error {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusCompleted).
		Updates(map[string]interface{}{
			"consultation_report": report,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrStatusMismatch
	}
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("appointment_date ASC, appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.TimeSlot, error) {
	var times []entity.TimeSlot
	err := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?", doctorID, date.Format(entity.DateLayout), entity.AppointmentStatusCancelled).
		Order("appointment_time ASC").
		Pluck("appointment_time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func findConflicting(db *gorm.DB, doctorID uuid.UUID, date time.Time, slot entity.TimeSlot, excludeID *uuid.UUID) (*entity.Appointment, error) {
	query := db.Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status <> ?",
		doctorID, date.Format(entity.DateLayout), slot, entity.AppointmentStatusCancelled)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var appointment entity.Appointment
	err := query.First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}
