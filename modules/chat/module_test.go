package chat

import (
	"context"
	"reflect"
	"testing"

	domain "github.com/example/room-chat/domain/chat"
)

func TestNewModule(t *testing.T) {
	m := NewModule(newMockLogger())

	if m == nil {
		t.Fatal("NewModule returned nil")
	}
	if m.Service() == nil {
		t.Error("expected service to be set")
	}
	if name := m.Name(); name != "chat" {
		t.Errorf("Name() = %q, want 'chat'", name)
	}
}

func TestModule_StartStop(t *testing.T) {
	m := NewModule(newMockLogger())
	ctx := context.Background()

	if err := m.Start(ctx); err != nil {
		t.Errorf("Start() error = %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestModule_EmitEvents(t *testing.T) {
	m := NewModule(newMockLogger())

	if got := len(m.EmitEvents()); got != 5 {
		t.Errorf("EmitEvents() len = %d, want 5", got)
	}
}

func TestModule_handleCreateRoom(t *testing.T) {
	m := NewModule(newMockLogger())
	ctx := context.Background()

	tests := []struct {
		name     string
		request  CreateRoomRequest
		wantName string
		wantCode string
	}{
		{"valid room", CreateRoomRequest{Name: "general"}, "general", ""},
		{"duplicate room", CreateRoomRequest{Name: "general"}, "", CodeAlreadyExists},
		{"blank name", CreateRoomRequest{Name: "  "}, "", CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := m.handleCreateRoom(ctx, tt.request, nil)
			if err != nil {
				t.Fatalf("handleCreateRoom() error = %v", err)
			}
			if resp.Name != tt.wantName {
				t.Errorf("handleCreateRoom() name = %q, want %q", resp.Name, tt.wantName)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("handleCreateRoom() code = %q, want %q", resp.Code, tt.wantCode)
			}
			if tt.wantCode != "" && resp.Error == "" {
				t.Error("expected error message with code")
			}
		})
	}
}

func TestModule_handleListAndUsers(t *testing.T) {
	m := NewModule(newMockLogger())
	ctx := context.Background()
	svc := m.Service()

	_, _ = svc.CreateRoom("general", "")
	svc.Connect("a")
	_, _ = svc.Join("a", "general", "alice")

	list, err := m.handleListRooms(ctx, ListRoomsRequest{}, nil)
	if err != nil {
		t.Fatalf("handleListRooms() error = %v", err)
	}
	if want := []domain.RoomSummary{{Name: "general", UserCount: 1}}; !reflect.DeepEqual(list.Rooms, want) {
		t.Errorf("handleListRooms() = %v, want %v", list.Rooms, want)
	}

	users, err := m.handleGetRoomUsers(ctx, GetRoomUsersRequest{Room: "general"}, nil)
	if err != nil {
		t.Fatalf("handleGetRoomUsers() error = %v", err)
	}
	if !reflect.DeepEqual(users.Users, []string{"alice"}) {
		t.Errorf("handleGetRoomUsers() = %v, want [alice]", users.Users)
	}

	missing, _ := m.handleGetRoomUsers(ctx, GetRoomUsersRequest{Room: "nope"}, nil)
	if missing.Users == nil || len(missing.Users) != 0 {
		t.Errorf("handleGetRoomUsers() for missing room = %v, want empty", missing.Users)
	}

	stats, _ := m.handleStats(ctx, StatsRequest{}, nil)
	if stats.Connections != 1 || stats.Bound != 1 || stats.Rooms != 1 {
		t.Errorf("handleStats() = %+v", stats)
	}
}

func TestModule_Health(t *testing.T) {
	m := NewModule(newMockLogger())
	m.Service().Connect("a")

	h := m.Health(context.Background())
	if !h.Healthy {
		t.Errorf("Health() healthy = false, message = %q", h.Message)
	}
	if h.Details["connections"] != 1 {
		t.Errorf("Health() connections = %v, want 1", h.Details["connections"])
	}
}
