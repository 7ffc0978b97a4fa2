// Package activity consumes chat domain events to keep Prometheus metrics and
// a short in-memory feed of recent room activity.
package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/room-chat/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// ServiceRecentActivity is the request-reply service returning feed entries.
const ServiceRecentActivity = "recent-activity"

// RecentActivityRequest is the request for the recent-activity service.
type RecentActivityRequest struct {
	Limit int `json:"limit"`
}

// RecentActivityResponse is the response from the recent-activity service.
type RecentActivityResponse struct {
	Entries []Entry `json:"entries"`
}

// Module is an EventConsumerModule that records chat activity.
type Module struct {
	feed    *Feed
	metrics *Metrics
	logger  types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates an activity module keeping historySize feed entries.
func NewModule(logger types.Logger, historySize int) *Module {
	return &Module{
		feed:    NewFeed(historySize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// Metrics returns the module's Prometheus collectors.
func (m *Module) Metrics() *Metrics {
	return m.metrics
}

// Feed returns the activity feed.
func (m *Module) Feed() *Feed {
	return m.feed
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started", "history", m.feed.Cap())
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Activity module stopped", "entries", m.feed.Len())
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"entries": m.feed.Len(),
		},
	}
}

// RegisterEventConsumers subscribes to every chat domain event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomDeletedV1, m.handleRoomDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomDeleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"RoomCreated", "RoomDeleted", "UserJoined", "UserLeft", "MessageSent"})
	return nil
}

// RegisterServices registers the recent-activity service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceRecentActivity,
		json.Unmarshal,
		json.Marshal,
		m.handleRecentActivity,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRecentActivity, err)
	}
	return nil
}

func (m *Module) handleRecentActivity(_ context.Context, req RecentActivityRequest, _ *mono.Msg) (RecentActivityResponse, error) {
	return RecentActivityResponse{Entries: m.feed.Recent(req.Limit)}, nil
}

// Event handlers

func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.metrics.roomCreated()
	m.feed.Add(Entry{Kind: KindRoomCreated, Room: event.Room, At: event.Timestamp})
	return nil
}

func (m *Module) handleRoomDeleted(_ context.Context, event events.RoomDeletedEvent, _ *mono.Msg) error {
	m.metrics.roomDeleted()
	m.feed.Add(Entry{Kind: KindRoomDeleted, Room: event.Room, At: event.Timestamp})
	return nil
}

func (m *Module) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.metrics.joined()
	m.feed.Add(Entry{
		Kind:        KindUserJoined,
		Room:        event.Room,
		DisplayName: event.DisplayName,
		Count:       event.Occupants,
		At:          event.Timestamp,
	})
	return nil
}

func (m *Module) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.metrics.departed(event.Reason)
	m.feed.Add(Entry{
		Kind:        KindUserLeft,
		Room:        event.Room,
		DisplayName: event.DisplayName,
		Reason:      event.Reason,
		Count:       event.Occupants,
		At:          event.Timestamp,
	})
	return nil
}

func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.metrics.messageSent(event.Length, event.Recipients)
	m.feed.Add(Entry{
		Kind:        KindMessage,
		Room:        event.Room,
		DisplayName: event.DisplayName,
		Count:       event.Recipients,
		At:          event.Timestamp,
	})
	return nil
}
