// Package events publishes appointment lifecycle changes.
package events

import (
	"context"
	"fmt"
	"time"

	"slotbook/pkg/calendar"
	"slotbook/pkg/kafka"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"
)

const (
	TypeCreated       = "appointment.created"
	TypeCanceled      = "appointment.canceled"
	TypeRescheduled   = "appointment.rescheduled"
	TypeStatusChanged = "appointment.status_changed"

	SchemaVersion = "1"
	Source        = "slotbook"
)

// Event is the payload written for every appointment mutation.
type Event struct {
	Type           string                  `json:"type"`
	AppointmentID  string                  `json:"appointment_id"`
	WorkerID       string                  `json:"worker_id"`
	ServiceID      string                  `json:"service_id"`
	BranchID       string                  `json:"branch_id"`
	DateTime       string                  `json:"datetime"`
	Status         model.AppointmentStatus `json:"status"`
	PreviousStatus model.AppointmentStatus `json:"previous_status,omitempty"`
	PreviousTime   string                  `json:"previous_datetime,omitempty"`
	OccurredAt     time.Time               `json:"occurred_at"`
}

// NewEvent snapshots a.
func NewEvent(eventType string, a *model.Appointment) Event {
	return Event{
		Type:          eventType,
		AppointmentID: a.ID,
		WorkerID:      a.WorkerID,
		ServiceID:     a.ServiceID,
		BranchID:      a.BranchID,
		DateTime:      calendar.FormatDateTime(a.DateTime),
		Status:        a.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys messages by worker so one worker's changes stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.WorkerID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s message: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// NopPublisher drops events. Used when EVENTS_ENABLED is off.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
