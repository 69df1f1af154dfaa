package cli

import (
	"go-medical-booking/internal/delivery/dto"

	"github.com/spf13/cobra"
)

const defaultLookaheadDays = 14

func (h *handler) availabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show a doctor's free slots on a date",
		RunE:  h.availableSlots,
	}
	cmd.Flags().String("doctor", "", "Doctor ID")
	cmd.Flags().String("date", "", "Date (YYYY-MM-DD)")

	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Find the first date with a free slot",
		RunE:  h.nextAvailable,
	}
	nextCmd.Flags().String("doctor", "", "Doctor ID")
	nextCmd.Flags().String("from", "", "First date to consider (YYYY-MM-DD)")
	nextCmd.Flags().Int("days", defaultLookaheadDays, "Number of days to search")

	cmd.AddCommand(nextCmd)
	return cmd
}

func (h *handler) availableSlots(cmd *cobra.Command, args []string) error {
	doctorID, err := h.uuidFlag(cmd, "doctor", "DoctorID")
	if err != nil {
		return err
	}
	date, _ := cmd.Flags().GetString("date")

	req := dto.AvailabilityRequest{DoctorID: doctorID, Date: date}
	if err := h.validate(cmd, &req); err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	availability, err := services.Availability.AvailableSlots(cmd.Context(), &req)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Availability retrieved successfully", availability)
}

func (h *handler) nextAvailable(cmd *cobra.Command, args []string) error {
	doctorID, err := h.uuidFlag(cmd, "doctor", "DoctorID")
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetString("from")
	days, _ := cmd.Flags().GetInt("days")

	req := dto.NextAvailabilityRequest{DoctorID: doctorID, From: from, Days: days}
	if err := h.validate(cmd, &req); err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	availability, err := services.Availability.NextAvailable(cmd.Context(), &req)
	if err != nil {
		return h.fail(cmd, err)
	}
	return h.success(cmd, "Next available date found", availability)
}
