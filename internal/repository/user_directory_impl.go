package repository

import (
	"context"
	"errors"
	"fmt"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultDoctorPageSize = 10

type UserDirectory struct {
	db *gorm.DB
}

// NewUserDirectory returns the gorm-backed directory. It also maintains the
// appointment back-references on doctor and patient rows.
func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

var (
	_ domainRepo.UserDirectory      = (*UserDirectory)(nil)
	_ domainRepo.BackReferenceIndex = (*UserDirectory)(nil)
)

func (r *UserDirectory) ResolveDoctor(ctx context.Context, id uuid.UUID) (*entity.Doctor, error) {
	var doctor entity.Doctor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *UserDirectory) ResolvePatient(ctx context.Context, id uuid.UUID) (*entity.Patient, error) {
	var patient entity.Patient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &patient, nil
}

// SearchDoctors supports optional filters: specialization, location, max fee and a
// free-text search over name, specialization and location.
func (r *UserDirectory) SearchDoctors(ctx context.Context, filter *entity.DoctorFilter) ([]entity.Doctor, int64, error) {
	if filter == nil {
		filter = &entity.DoctorFilter{}
	}

	query := r.db.WithContext(ctx).Model(&entity.Doctor{})
	if filter.Specialization != "" {
		query = query.Where("specialization = ?", filter.Specialization)
	}
	if filter.Location != "" {
		query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
	}
	if filter.MaxFee != nil {
		query = query.Where("consultation_fee <= ?", *filter.MaxFee)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR specialization ILIKE ? OR location ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultDoctorPageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	order := "experience DESC"
	if filter.SortBy == entity.DoctorSortFee {
		order = "consultation_fee ASC"
	}

	var doctors []entity.Doctor
	err := query.Order(order).Order("id").
		Limit(limit).Offset((page - 1) * limit).
		Find(&doctors).Error
	if err != nil {
		return nil, 0, err
	}
	return doctors, total, nil
}

// AppendAppointment appends to the JSONB id list of the owner row. Not transactional
// with the appointment insert.
func (r *UserDirectory) AppendAppointment(ctx context.Context, role entity.Role, ownerID, appointmentID uuid.UUID) error {
	var model interface{}
	switch role {
	case entity.RolePatient:
		model = &entity.Patient{}
	case entity.RoleDoctor:
		model = &entity.Doctor{}
	default:
		return fmt.Errorf("append appointment: unsupported role %s", role)
	}

	result := r.db.WithContext(ctx).Model(model).
		Where("id = ?", ownerID).
		Update("appointment_ids", gorm.Expr("COALESCE(appointment_ids, '[]'::jsonb) || to_jsonb(?::text)", appointmentID.String()))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("append appointment: %s %s not found", role, ownerID)
	}
	return nil
}
