package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Event is a lifecycle transition published to subscribers
type Event struct {
	Type          entity.EventType `json:"type"`
	AppointmentID uuid.UUID        `json:"appointment_id"`
	Payload       entity.JSON      `json:"payload"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// EventEmitter publishes lifecycle events. Publishing is fire-and-forget from
// the caller's point of view: an error never undoes the state change.
type EventEmitter interface {
	Publish(ctx context.Context, event Event) error
}

// EventHandler reacts to a published event
type EventHandler func(ctx context.Context, event Event) error

// =============================================================================
// EventBus
// =============================================================================

// EventBus dispatches events to in-process subscribers synchronously
type EventBus struct {
	mu       sync.RWMutex
	handlers map[entity.EventType][]EventHandler
	all      []EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[entity.EventType][]EventHandler)}
}

// Subscribe registers handler for one event type
func (b *EventBus) Subscribe(eventType entity.EventType, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers handler for every event type
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

func (b *EventBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := make([]EventHandler, 0, len(b.handlers[event.Type])+len(b.all))
	handlers = append(handlers, b.handlers[event.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// MultiEmitter
// =============================================================================

// MultiEmitter fans an event out to every sink. Each sink runs even if an
// earlier one failed.
type MultiEmitter struct {
	log   *logrus.Logger
	sinks []EventEmitter
}

func NewMultiEmitter(log *logrus.Logger, sinks ...EventEmitter) *MultiEmitter {
	return &MultiEmitter{log: log, sinks: sinks}
}

func (m *MultiEmitter) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			m.log.Warnf("Failed to publish %s for appointment %s to %T: %+v", event.Type, event.AppointmentID, sink, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// LogEventSink
// =============================================================================

// LogEventSink writes every event as a structured log line
type LogEventSink struct {
	log *logrus.Logger
}

func NewLogEventSink(log *logrus.Logger) *LogEventSink {
	return &LogEventSink{log: log}
}

func (s *LogEventSink) Publish(_ context.Context, event Event) error {
	s.log.WithFields(logrus.Fields{
		"event":          event.Type,
		"appointment_id": event.AppointmentID,
		"payload":        event.Payload,
	}).Info("Appointment event")
	return nil
}

// =============================================================================
// EventLogSink
// =============================================================================

// EventLogSink persists events to the appointment_events table
type EventLogSink struct {
	log       *logrus.Logger
	eventRepo repository.AppointmentEventRepository
}

func NewEventLogSink(log *logrus.Logger, eventRepo repository.AppointmentEventRepository) *EventLogSink {
	return &EventLogSink{log: log, eventRepo: eventRepo}
}

func (s *EventLogSink) Publish(ctx context.Context, event Event) error {
	record := &entity.AppointmentEvent{
		EventType:     event.Type,
		AppointmentID: event.AppointmentID,
		Payload:       event.Payload,
		CreatedAt:     event.OccurredAt,
	}

	if err := s.eventRepo.Create(ctx, record); err != nil {
		s.log.Warnf("Failed to create appointment event: %+v", err)
		return fmt.Errorf("store %s event: %w", event.Type, err)
	}
	return nil
}
