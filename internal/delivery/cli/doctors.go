package cli

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/pkg/response"

	"github.com/spf13/cobra"
)

func (h *handler) doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "Browse the doctor directory",
	}

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search doctors by specialization, location and fee",
		RunE:  h.searchDoctors,
	}
	searchCmd.Flags().String("specialization", "", "Exact specialization")
	searchCmd.Flags().String("location", "", "Location substring")
	searchCmd.Flags().String("max-fee", "", "Maximum consultation fee")
	searchCmd.Flags().String("search", "", "Name or specialization substring")
	searchCmd.Flags().String("sort", "", "Sort by fee or experience")
	searchCmd.Flags().Int("page", 1, "Page number")
	searchCmd.Flags().Int("limit", 10, "Page size")

	cmd.AddCommand(searchCmd)
	return cmd
}

func (h *handler) searchDoctors(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	req := dto.SearchDoctorsRequest{}
	req.Specialization, _ = flags.GetString("specialization")
	req.Location, _ = flags.GetString("location")
	req.MaxFee, _ = flags.GetString("max-fee")
	req.Search, _ = flags.GetString("search")
	req.SortBy, _ = flags.GetString("sort")
	req.Page, _ = flags.GetInt("page")
	req.Limit, _ = flags.GetInt("limit")

	if err := h.validate(cmd, &req); err != nil {
		return err
	}

	services, err := h.services(cmd)
	if err != nil {
		return err
	}

	doctors, err := services.Doctors.Search(cmd.Context(), &req)
	if err != nil {
		return h.fail(cmd, err)
	}

	return response.SuccessWithMeta(cmd.OutOrStdout(), "Doctors retrieved successfully", doctors.Doctors,
		response.NewMeta(doctors.Page, doctors.Limit, doctors.Total))
}
