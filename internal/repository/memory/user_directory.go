package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserDirectory holds doctors and patients in memory
type UserDirectory struct {
	mu       sync.RWMutex
	doctors  map[uuid.UUID]*entity.Doctor
	patients map[uuid.UUID]*entity.Patient
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{
		doctors:  make(map[uuid.UUID]*entity.Doctor),
		patients: make(map[uuid.UUID]*entity.Patient),
	}
}

var (
	_ domainRepo.UserDirectory      = (*UserDirectory)(nil)
	_ domainRepo.BackReferenceIndex = (*UserDirectory)(nil)
)

// AddDoctor stores a copy of doctor, assigning an id when missing
func (d *UserDirectory) AddDoctor(doctor entity.Doctor) entity.Doctor {
	d.mu.Lock()
	defer d.mu.Unlock()

	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	doctor.Availability = doctor.Availability.Clone()
	d.doctors[doctor.ID] = &doctor
	return doctor
}

// AddPatient stores a copy of patient, assigning an id when missing
func (d *UserDirectory) AddPatient(patient entity.Patient) entity.Patient {
	d.mu.Lock()
	defer d.mu.Unlock()

	if patient.ID == uuid.Nil {
		patient.ID = uuid.New()
	}
	d.patients[patient.ID] = &patient
	return patient
}

// SetDoctorFee changes the live fee of a doctor
func (d *UserDirectory) SetDoctorFee(id uuid.UUID, fee decimal.Decimal) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	doctor, ok := d.doctors[id]
	if !ok {
		return fmt.Errorf("doctor %s not found", id)
	}
	doctor.ConsultationFee = fee
	return nil
}

func (d *UserDirectory) ResolveDoctor(_ context.Context, id uuid.UUID) (*entity.Doctor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	doctor, ok := d.doctors[id]
	if !ok {
		return nil, nil
	}
	return cloneDoctor(doctor), nil
}

func (d *UserDirectory) ResolvePatient(_ context.Context, id uuid.UUID) (*entity.Patient, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	patient, ok := d.patients[id]
	if !ok {
		return nil, nil
	}
	c := *patient
	c.AppointmentIDs = append(entity.UUIDList(nil), patient.AppointmentIDs...)
	return &c, nil
}

func (d *UserDirectory) SearchDoctors(_ context.Context, filter *entity.DoctorFilter) ([]entity.Doctor, int64, error) {
	if filter == nil {
		filter = &entity.DoctorFilter{}
	}

	d.mu.RLock()
	var matched []entity.Doctor
	for _, doctor := range d.doctors {
		if matchesDoctor(doctor, filter) {
			matched = append(matched, *cloneDoctor(doctor))
		}
	}
	d.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if filter.SortBy == entity.DoctorSortFee {
			if !matched[i].ConsultationFee.Equal(matched[j].ConsultationFee) {
				return matched[i].ConsultationFee.LessThan(matched[j].ConsultationFee)
			}
		} else if matched[i].Experience != matched[j].Experience {
			return matched[i].Experience > matched[j].Experience
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := int64(len(matched))
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []entity.Doctor{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (d *UserDirectory) AppendAppointment(_ context.Context, role entity.Role, ownerID, appointmentID uuid.UUID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch role {
	case entity.RolePatient:
		patient, ok := d.patients[ownerID]
		if !ok {
			return fmt.Errorf("append appointment: patient %s not found", ownerID)
		}
		patient.AppointmentIDs = append(patient.AppointmentIDs, appointmentID)
	case entity.RoleDoctor:
		doctor, ok := d.doctors[ownerID]
		if !ok {
			return fmt.Errorf("append appointment: doctor %s not found", ownerID)
		}
		doctor.AppointmentIDs = append(doctor.AppointmentIDs, appointmentID)
	default:
		return fmt.Errorf("append appointment: unsupported role %s", role)
	}
	return nil
}

func matchesDoctor(doctor *entity.Doctor, filter *entity.DoctorFilter) bool {
	if filter.Specialization != "" && doctor.Specialization != filter.Specialization {
		return false
	}
	if filter.Location != "" && !containsFold(doctor.Location, filter.Location) {
		return false
	}
	if filter.MaxFee != nil && doctor.ConsultationFee.GreaterThan(*filter.MaxFee) {
		return false
	}
	if filter.Search != "" &&
		!containsFold(doctor.Name, filter.Search) &&
		!containsFold(doctor.Specialization, filter.Search) &&
		!containsFold(doctor.Location, filter.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func cloneDoctor(doctor *entity.Doctor) *entity.Doctor {
	c := *doctor
	c.Availability = doctor.Availability.Clone()
	c.AppointmentIDs = append(entity.UUIDList(nil), doctor.AppointmentIDs...)
	return &c
}
