package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	availability := make(map[string][]string, len(doctor.Availability))
	for day, slots := range doctor.Availability {
		labels := make([]string, len(slots))
		for i, slot := range slots {
			labels[i] = slot.String()
		}
		availability[day] = labels
	}

	return &dto.DoctorResponse{
		ID:              doctor.ID,
		Name:            doctor.Name,
		Email:           doctor.Email,
		Specialization:  doctor.Specialization,
		Location:        doctor.Location,
		Experience:      doctor.Experience,
		ConsultationFee: doctor.ConsultationFee,
		Availability:    availability,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to slice of DoctorResponse DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i := range doctors {
		responses[i] = *DoctorToResponse(&doctors[i])
	}
	return responses
}
