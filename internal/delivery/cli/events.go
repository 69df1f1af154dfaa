package cli

import (
	"context"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/service"
	"go-medical-booking/pkg/response"

	"github.com/spf13/cobra"
)

func (h *handler) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Work with appointment lifecycle events",
	}

	listenCmd := &cobra.Command{
		Use:   "listen",
		Short: "Print events from the message queue as they arrive",
		RunE:  h.listenEvents,
	}
	listenCmd.Flags().String("type", "", "Only print this event type, e.g. AppointmentBooked")

	cmd.AddCommand(listenCmd)
	return cmd
}

func (h *handler) listenEvents(cmd *cobra.Command, args []string) error {
	eventType, _ := cmd.Flags().GetString("type")
	out := cmd.OutOrStdout()

	bus := service.NewEventBus()
	printEvent := func(_ context.Context, event service.Event) error {
		return response.JSON(out, event)
	}
	if eventType != "" {
		bus.Subscribe(entity.EventType(eventType), printEvent)
	} else {
		bus.SubscribeAll(printEvent)
	}

	listener, err := h.backend.EventListener(bus)
	if err != nil {
		return h.fail(cmd, err)
	}
	defer closeQuietly(h.log, "event listener", listener)

	if err := listener.Run(cmd.Context()); err != nil {
		return h.fail(cmd, err)
	}
	return nil
}
