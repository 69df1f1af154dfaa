package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-medical-booking/internal/domain/apperror"
	"go-medical-booking/internal/infrastructure/database"
	"go-medical-booking/internal/service"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"
	"go-medical-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ErrReported marks a failure whose JSON error body was already written
var ErrReported = errors.New("command failed")

// Services are the use cases the commands drive
type Services struct {
	Appointments usecase.AppointmentLifecycle
	Availability usecase.AvailabilityQuery
	Doctors      usecase.DoctorDirectory
}

type Migrator interface {
	Up() error
	Down(steps int) error
	Version() (*database.MigrationStatus, error)
	Close() error
}

type EventListener interface {
	Run(ctx context.Context) error
	Close() error
}

// Backend opens the dependencies a command needs. Each method connects lazily
// so that, for example, migrate never builds the use cases.
type Backend interface {
	Services() (*Services, error)
	Migrator() (Migrator, error)
	EventListener(bus *service.EventBus) (EventListener, error)
}

type handler struct {
	backend   Backend
	log       *logrus.Logger
	validator *validator.CustomValidator
}

func NewRootCommand(backend Backend, log *logrus.Logger) *cobra.Command {
	h := &handler{
		backend:   backend,
		log:       log,
		validator: validator.NewValidator(),
	}

	rootCmd := &cobra.Command{
		Use:           "medical-booking",
		Short:         "Doctor appointment booking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(h.migrateCmd())
	rootCmd.AddCommand(h.doctorsCmd())
	rootCmd.AddCommand(h.availabilityCmd())
	rootCmd.AddCommand(h.appointmentsCmd())
	rootCmd.AddCommand(h.eventsCmd())

	return rootCmd
}

func (h *handler) services(cmd *cobra.Command) (*Services, error) {
	services, err := h.backend.Services()
	if err != nil {
		return nil, h.fail(cmd, fmt.Errorf("open services: %w", err))
	}
	return services, nil
}

func (h *handler) validate(cmd *cobra.Command, req interface{}) error {
	if err := h.validator.Validate(req); err != nil {
		_ = response.ValidationError(cmd.OutOrStdout(), h.validator.FormatValidationErrors(err))
		return ErrReported
	}
	return nil
}

// fail writes the error body and returns ErrReported
func (h *handler) fail(cmd *cobra.Command, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		h.log.Warnf("Failed to run %s: %+v", cmd.CommandPath(), err)
	}
	_ = response.Error(cmd.OutOrStdout(), string(kind), apperror.MessageOf(err))
	return ErrReported
}

func (h *handler) fieldError(cmd *cobra.Command, field, message string) error {
	_ = response.ValidationError(cmd.OutOrStdout(), map[string]string{field: message})
	return ErrReported
}

func (h *handler) success(cmd *cobra.Command, message string, data interface{}) error {
	return response.Success(cmd.OutOrStdout(), message, data)
}

// uuidFlag parses a UUID flag; an empty value yields uuid.Nil so that
// "required" validation reports it.
func (h *handler) uuidFlag(cmd *cobra.Command, name, field string) (uuid.UUID, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, h.fieldError(cmd, field, field+" must be a valid UUID")
	}
	return id, nil
}

// requiredUUIDFlag is uuidFlag for ids that are not part of a validated DTO
func (h *handler) requiredUUIDFlag(cmd *cobra.Command, name, field string) (uuid.UUID, error) {
	id, err := h.uuidFlag(cmd, name, field)
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, h.fieldError(cmd, field, field+" is required")
	}
	return id, nil
}

func closeQuietly(log *logrus.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warnf("Failed to close %s: %+v", name, err)
	}
}
