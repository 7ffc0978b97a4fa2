package activity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/room-chat/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func TestModule_Basics(t *testing.T) {
	m := NewModule(&mockLogger{}, 10)
	ctx := context.Background()

	assert.Equal(t, "activity", m.Name())
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Stop(ctx))
	assert.True(t, m.Health(ctx).Healthy)
}

func TestModule_EventHandlersUpdateMetrics(t *testing.T) {
	m := NewModule(&mockLogger{}, 10)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, m.handleRoomCreated(ctx, events.RoomCreatedEvent{Room: "general", Timestamp: now}, nil))
	require.NoError(t, m.handleUserJoined(ctx, events.UserJoinedEvent{Room: "general", DisplayName: "alice", Occupants: 1, Timestamp: now}, nil))
	require.NoError(t, m.handleUserJoined(ctx, events.UserJoinedEvent{Room: "general", DisplayName: "bob", Occupants: 2, Timestamp: now}, nil))
	require.NoError(t, m.handleMessageSent(ctx, events.MessageSentEvent{Room: "general", DisplayName: "alice", Length: 2, Recipients: 2, Timestamp: now}, nil))
	require.NoError(t, m.handleUserLeft(ctx, events.UserLeftEvent{Room: "general", DisplayName: "alice", Reason: events.ReasonDisconnect, Occupants: 1, Timestamp: now}, nil))
	require.NoError(t, m.handleUserLeft(ctx, events.UserLeftEvent{Room: "general", DisplayName: "bob", Reason: events.ReasonLeave, Timestamp: now}, nil))
	require.NoError(t, m.handleRoomDeleted(ctx, events.RoomDeletedEvent{Room: "general", Timestamp: now}, nil))

	met := m.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(met.messages))
	assert.Equal(t, 2.0, testutil.ToFloat64(met.messageBytes))
	assert.Equal(t, 2.0, testutil.ToFloat64(met.joins))
	assert.Equal(t, 1.0, testutil.ToFloat64(met.departures.WithLabelValues(events.ReasonLeave)))
	assert.Equal(t, 1.0, testutil.ToFloat64(met.departures.WithLabelValues(events.ReasonDisconnect)))
	assert.Equal(t, 0.0, testutil.ToFloat64(met.occupants))
	assert.Equal(t, 1.0, testutil.ToFloat64(met.roomsCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(met.roomsActive))

	expected := `
# HELP chat_rooms_deleted_total Rooms deleted after their last occupant departed.
# TYPE chat_rooms_deleted_total counter
chat_rooms_deleted_total 1
`
	require.NoError(t, testutil.GatherAndCompare(met.Registry(), strings.NewReader(expected), "chat_rooms_deleted_total"))

	entries := m.Feed().Recent(0)
	require.Len(t, entries, 7)
	assert.Equal(t, KindRoomDeleted, entries[0].Kind)
	assert.Equal(t, KindRoomCreated, entries[6].Kind)
	assert.Equal(t, events.ReasonDisconnect, entries[2].Reason)
}

func TestModule_FrameDropped(t *testing.T) {
	m := NewModule(&mockLogger{}, 10)

	m.Metrics().FrameDropped("c1")
	m.Metrics().FrameDropped("c2")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Metrics().framesDropped))
}

func TestModule_handleRecentActivity(t *testing.T) {
	m := NewModule(&mockLogger{}, 10)
	ctx := context.Background()
	for _, room := range []string{"a", "b", "c"} {
		_ = m.handleRoomCreated(ctx, events.RoomCreatedEvent{Room: room}, nil)
	}

	resp, err := m.handleRecentActivity(ctx, RecentActivityRequest{Limit: 2}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "c", resp.Entries[0].Room)
	assert.Equal(t, "b", resp.Entries[1].Room)
	assert.NotEmpty(t, resp.Entries[0].ID)
	assert.False(t, resp.Entries[0].At.IsZero())
}

func TestFeed_WrapsAround(t *testing.T) {
	f := NewFeed(3)
	assert.Empty(t, f.Recent(0))
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 3, f.Cap())

	for _, room := range []string{"r1", "r2", "r3", "r4", "r5"} {
		f.Add(Entry{Kind: KindRoomCreated, Room: room})
	}

	assert.Equal(t, 3, f.Len())
	assert.Equal(t, 3, f.Cap())
	got := f.Recent(10)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"r5", "r4", "r3"}, []string{got[0].Room, got[1].Room, got[2].Room})
}
