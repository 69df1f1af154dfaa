package cli

import (
	"encoding/json"
	"io"
	"os"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"

	"github.com/spf13/cobra"
)

func (h *handler) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appointment"},
		Short:   "Book and manage appointments",
	}

	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Book a slot for a patient",
		RunE:  h.bookAppointment,
	}
	bookCmd.Flags().String("patient", "", "Patient ID")
	bookCmd.Flags().String("doctor", "", "Doctor ID")
	bookCmd.Flags().String("date", "", "Date (YYYY-MM-DD)")
	bookCmd.Flags().String("time", "", "Time slot, e.g. 09:15")

	rescheduleCmd := &cobra.Command{
		Use:   "reschedule",
		Short: "Move a pending appointment to another date or time",
		RunE:  h.rescheduleAppointment,
	}
	rescheduleCmd.Flags().String("id", "", "Appointment ID")
	rescheduleCmd.Flags().String("patient", "", "Patient ID of the requester")
	rescheduleCmd.Flags().String("date", "", "New date (YYYY-MM-DD)")
	rescheduleCmd.Flags().String("time", "", "New time slot")

	cancelCmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending appointment",
		RunE:  h.cancelAppointment,
	}
	cancelCmd.Flags().String("id", "", "Appointment ID")
	cancelCmd.Flags().String("patient", "", "Patient ID of the requester")

	completeCmd := &cobra.Command{
		Use:   "complete",
		Short: "Mark a pending appointment as completed",
		RunE:  h.completeAppointment,
	}
	completeCmd.Flags().String("id", "", "Appointment ID")
	completeCmd.Flags().String("doctor", "", "Doctor ID of the requester")
	completeCmd.Flags().String("report-file", "", "Consultation report JSON file, - for stdin")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Write the consultation report of a completed appointment",
		RunE:  h.submitReport,
	}
	reportCmd.Flags().String("id", "", "Appointment ID")
	reportCmd.Flags().String("doctor", "", "Doctor ID of the requester")
	reportCmd.Flags().String("report-file", "", "Consultation report JSON file, - for stdin")

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show one appointment",
		RunE:  h.getAppointment,
	}
	getCmd.Flags().String("id", "", "Appointment ID")
	addRequesterFlags(getCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the requester's appointments",
		RunE:  h.listAppointments,
	}
	addRequesterFlags(listCmd)

	cmd.AddCommand(bookCmd, rescheduleCmd, cancelCmd, completeCmd, reportCmd, getCmd, listCmd)
	return cmd
}

func addRequesterFlags(cmd *cobra.Command) {
	cmd.Flags().String("requester", "", "Patient or doctor ID")
	cmd.Flags().String("role", entity.RoleNamePatient, "Requester role: patient or doctor")
}

func (h *handler) bookAppointment(cmd *cobra.Command, args []string) error {
	patientID, err := h.uuidFlag(cmd, "patient", "PatientID")
	if err != nil {
		return err
	}
	doctorID, err := h.uuidFlag(cmd, "doctor", "DoctorID")
	if err != nil {
		return err
	}

	req := dto.CreateAppointmentRequest{PatientID: patientID, DoctorID: doctorID}
	req.Date, _ = cmd.Flags().GetString("date")
	req.Time, _ = cmd.Flags().GetString("time")

	if err := h.validate(cmd, &req); err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointment, err := services.Appointments.Create(cmd.Context(), &req)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Appointment booked successfully", appointment)
}

func (h *handler) rescheduleAppointment(cmd *cobra.Command, args []string) error {
	appointmentID, err := h.requiredUUIDFlag(cmd, "id", "ID")
	if err != nil {
		return err
	}
	patientID, err := h.requiredUUIDFlag(cmd, "patient", "PatientID")
	if err != nil {
		return err
	}

	req := dto.RescheduleAppointmentRequest{}
	if cmd.Flags().Changed("date") {
		date, _ := cmd.Flags().GetString("date")
		req.Date = &date
	}
	if cmd.Flags().Changed("time") {
		slot, _ := cmd.Flags().GetString("time")
		req.Time = &slot
	}
	if req.Date == nil && req.Time == nil {
		return h.fieldError(cmd, "Date", "Date or Time must be given")
	}

	if err := h.validate(cmd, &req); err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointment, err := services.Appointments.Reschedule(cmd.Context(), appointmentID, entity.PatientRequester(patientID), &req)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Appointment rescheduled successfully", appointment)
}

func (h *handler) cancelAppointment(cmd *cobra.Command, args []string) error {
	appointmentID, err := h.requiredUUIDFlag(cmd, "id", "ID")
	if err != nil {
		return err
	}
	patientID, err := h.requiredUUIDFlag(cmd, "patient", "PatientID")
	if err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointment, err := services.Appointments.Cancel(cmd.Context(), appointmentID, entity.PatientRequester(patientID))
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Appointment cancelled successfully", appointment)
}

func (h *handler) completeAppointment(cmd *cobra.Command, args []string) error {
	appointmentID, err := h.requiredUUIDFlag(cmd, "id", "ID")
	if err != nil {
		return err
	}
	doctorID, err := h.requiredUUIDFlag(cmd, "doctor", "DoctorID")
	if err != nil {
		return err
	}

	var report *dto.ConsultationReportRequest
	if cmd.Flags().Changed("report-file") {
		if report, err = h.readReport(cmd); err != nil {
			return err
		}
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointment, err := services.Appointments.Complete(cmd.Context(), appointmentID, entity.DoctorRequester(doctorID), report)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Appointment completed successfully", appointment)
}

func (h *handler) submitReport(cmd *cobra.Command, args []string) error {
	appointmentID, err := h.requiredUUIDFlag(cmd, "id", "ID")
	if err != nil {
		return err
	}
	doctorID, err := h.requiredUUIDFlag(cmd, "doctor", "DoctorID")
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("report-file") {
		return h.fieldError(cmd, "ReportFile", "ReportFile is required")
	}

	report, err := h.readReport(cmd)
	if err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointment, err := services.Appointments.SubmitReport(cmd.Context(), appointmentID, entity.DoctorRequester(doctorID), report)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Consultation report saved successfully", appointment)
}

func (h *handler) getAppointment(cmd *cobra.Command, args []string) error {
	appointmentID, err := h.requiredUUIDFlag(cmd, "id", "ID")
	if err != nil {
		return err
	}
	requester, err := h.requesterFlags(cmd)
	if err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointment, err := services.Appointments.Get(cmd.Context(), appointmentID, requester)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Appointment retrieved successfully", appointment)
}

func (h *handler) listAppointments(cmd *cobra.Command, args []string) error {
	requester, err := h.requesterFlags(cmd)
	if err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	appointments, err := services.Appointments.ListForRequester(cmd.Context(), requester)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Appointments retrieved successfully", appointments)
}

func (h *handler) requesterFlags(cmd *cobra.Command) (entity.Requester, error) {
	id, err := h.requiredUUIDFlag(cmd, "requester", "Requester")
	if err != nil {
		return entity.Requester{}, err
	}

	roleName, _ := cmd.Flags().GetString("role")
	role, err := entity.ParseRole(roleName)
	if err != nil {
		return entity.Requester{}, h.fieldError(cmd, "Role", "Role must be one of: patient doctor")
	}

	return entity.Requester{ID: id, Role: role}, nil
}

// readReport decodes and validates the consultation report named by --report-file
func (h *handler) readReport(cmd *cobra.Command) (*dto.ConsultationReportRequest, error) {
	path, _ := cmd.Flags().GetString("report-file")

	var (
		body []byte
		err  error
	)
	if path == "-" {
		body, err = io.ReadAll(cmd.InOrStdin())
	} else {
		body, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, h.fieldError(cmd, "ReportFile", "ReportFile could not be read")
	}

	var report dto.ConsultationReportRequest
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, h.fieldError(cmd, "ReportFile", "ReportFile must contain a JSON object")
	}
	if err := h.validate(cmd, &report); err != nil {
		return nil, err
	}

	return &report, nil
}

