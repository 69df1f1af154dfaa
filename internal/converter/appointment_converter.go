package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                 appointment.ID,
		PatientID:          appointment.PatientID,
		DoctorID:           appointment.DoctorID,
		Date:               appointment.AppointmentDate.Format(entity.DateLayout),
		Time:               appointment.AppointmentTime.String(),
		Status:             string(appointment.Status),
		ConsultationFee:    appointment.ConsultationFee,
		ConsultationReport: ConsultationReportToResponse(appointment.ConsultationReport),
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

func ConsultationReportToResponse(report *entity.ConsultationReport) *dto.ConsultationReportResponse {
	if report == nil {
		return nil
	}

	return &dto.ConsultationReportResponse{
		Name:         report.Name,
		Age:          report.Age,
		Weight:       report.Weight,
		Height:       report.Height,
		Comment:      report.Comment,
		Diagnosis:    report.Diagnosis,
		Prescription: report.Prescription,
	}
}

// ConsultationReportFromRequest converts a report request into the entity stored on the appointment
func ConsultationReportFromRequest(req *dto.ConsultationReportRequest) *entity.ConsultationReport {
	if req == nil {
		return nil
	}

	return &entity.ConsultationReport{
		Name:         req.Name,
		Age:          req.Age,
		Weight:       req.Weight,
		Height:       req.Height,
		Comment:      req.Comment,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
	}
}
