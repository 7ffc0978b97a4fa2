package api

import (
	"encoding/json"
	"testing"

	"github.com/example/room-chat/modules/chat"
	"github.com/example/room-chat/protocol"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
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

// reply is a decoded ack or error frame.
type reply struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Data struct {
		OK    bool     `json:"ok"`
		Error string   `json:"error"`
		Code  string   `json:"code"`
		Users []string `json:"users"`
		Rooms []struct {
			Name      string `json:"name"`
			UserCount int    `json:"userCount"`
		} `json:"rooms"`
		Room struct {
			Name  string   `json:"name"`
			Users []string `json:"users"`
		} `json:"room"`
	} `json:"data"`
}

func decodeReply(t *testing.T, raw []byte) reply {
	t.Helper()
	var r reply
	require.NoError(t, json.Unmarshal(raw, &r), "reply: %s", raw)
	return r
}

func newTestSession(t *testing.T, connID string, limiter *rate.Limiter) (*session, *chat.Service) {
	t.Helper()
	svc := chat.NewService(&mockLogger{})
	svc.Connect(connID)
	return newSession(connID, svc, limiter, &mockLogger{}), svc
}

func TestSession_CreateRoom(t *testing.T) {
	sess, svc := newTestSession(t, "c1", nil)

	r := decodeReply(t, sess.handle([]byte(`{"type":"createRoom","id":"1","data":"  general "}`)))
	assert.Equal(t, protocol.TypeAck, r.Type)
	assert.Equal(t, "1", r.ID)
	assert.True(t, r.Data.OK)
	assert.Len(t, svc.ListRooms(), 1)
	assert.Equal(t, "general", svc.ListRooms()[0].Name)

	r = decodeReply(t, sess.handle([]byte(`{"type":"createRoom","id":"2","data":"general"}`)))
	assert.False(t, r.Data.OK)
	assert.Equal(t, chat.CodeAlreadyExists, r.Data.Code)
	assert.Equal(t, "2", r.ID)

	r = decodeReply(t, sess.handle([]byte(`{"type":"createRoom","id":"3","data":"   "}`)))
	assert.False(t, r.Data.OK)
	assert.Equal(t, chat.CodeValidation, r.Data.Code)
}

func TestSession_JoinSendLeave(t *testing.T) {
	sess, svc := newTestSession(t, "c1", nil)
	_, err := svc.CreateRoom("general", "c1")
	require.NoError(t, err)

	r := decodeReply(t, sess.handle([]byte(`{"type":"sendMessage","id":"1","data":"hi"}`)))
	assert.False(t, r.Data.OK)
	assert.Equal(t, chat.CodeNotInRoom, r.Data.Code)

	r = decodeReply(t, sess.handle([]byte(`{"type":"joinRoom","id":"2","data":{"roomName":"general","displayName":"alice"}}`)))
	require.True(t, r.Data.OK, r.Data.Error)
	assert.Equal(t, "general", r.Data.Room.Name)
	assert.Equal(t, []string{"alice"}, r.Data.Room.Users)

	r = decodeReply(t, sess.handle([]byte(`{"type":"sendMessage","id":"3","data":"hello"}`)))
	assert.True(t, r.Data.OK)

	r = decodeReply(t, sess.handle([]byte(`{"type":"sendMessage","id":"4","data":"   "}`)))
	assert.False(t, r.Data.OK)
	assert.Equal(t, chat.CodeEmptyMessage, r.Data.Code)

	r = decodeReply(t, sess.handle([]byte(`{"type":"leaveRoom","id":"5"}`)))
	assert.True(t, r.Data.OK)
	assert.Empty(t, svc.ListRooms())

	r = decodeReply(t, sess.handle([]byte(`{"type":"leaveRoom","id":"6"}`)))
	assert.False(t, r.Data.OK)
	assert.Equal(t, chat.CodeNotInRoom, r.Data.Code)
}

func TestSession_JoinUnknownRoom(t *testing.T) {
	sess, _ := newTestSession(t, "c1", nil)

	r := decodeReply(t, sess.handle([]byte(`{"type":"joinRoom","id":"1","data":{"roomName":"nope","displayName":"alice"}}`)))
	assert.False(t, r.Data.OK)
	assert.Equal(t, chat.CodeNotFound, r.Data.Code)
}

func TestSession_Queries(t *testing.T) {
	sess, svc := newTestSession(t, "c1", nil)
	_, err := svc.CreateRoom("general", "c1")
	require.NoError(t, err)
	_, err = svc.Join("c1", "general", "alice")
	require.NoError(t, err)

	r := decodeReply(t, sess.handle([]byte(`{"type":"getRoomUsers","id":"1","data":"general"}`)))
	assert.True(t, r.Data.OK)
	assert.Equal(t, []string{"alice"}, r.Data.Users)

	raw := sess.handle([]byte(`{"type":"getRoomUsers","id":"2","data":"missing"}`))
	assert.JSONEq(t, `{"type":"ack","id":"2","data":{"ok":true,"users":[]}}`, string(raw))

	r = decodeReply(t, sess.handle([]byte(`{"type":"listRooms","id":"3"}`)))
	assert.True(t, r.Data.OK)
	require.Len(t, r.Data.Rooms, 1)
	assert.Equal(t, "general", r.Data.Rooms[0].Name)
	assert.Equal(t, 1, r.Data.Rooms[0].UserCount)
}

func TestSession_BadFrames(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
		wantID   string
		wantCode string
	}{
		{"not json", `hello`, protocol.TypeError, "", protocol.CodeBadRequest},
		{"missing type", `{"data":"x"}`, protocol.TypeError, "", protocol.CodeBadRequest},
		{"missing type with id", `{"id":"4"}`, protocol.TypeAck, "4", protocol.CodeBadRequest},
		{"wrong envelope type keeps id", `{"id":"9","type":1}`, protocol.TypeAck, "9", protocol.CodeBadRequest},
		{"wrong payload type", `{"type":"createRoom","id":"7","data":5}`, protocol.TypeAck, "7", protocol.CodeBadRequest},
		{"unknown type", `{"type":"dance","id":"8"}`, protocol.TypeAck, "8", protocol.CodeUnknownType},
		{"unknown type without id", `{"type":"dance"}`, protocol.TypeError, "", protocol.CodeUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, _ := newTestSession(t, "c1", nil)

			r := decodeReply(t, sess.handle([]byte(tt.raw)))
			assert.Equal(t, tt.wantType, r.Type)
			assert.Equal(t, tt.wantID, r.ID)
			assert.False(t, r.Data.OK)
			assert.Equal(t, tt.wantCode, r.Data.Code)
			assert.NotEmpty(t, r.Data.Error)
		})
	}
}

func TestSession_SuccessWithoutIDStillAcks(t *testing.T) {
	sess, _ := newTestSession(t, "c1", nil)

	r := decodeReply(t, sess.handle([]byte(`{"type":"listRooms"}`)))
	assert.Equal(t, protocol.TypeAck, r.Type)
	assert.Empty(t, r.ID)
	assert.True(t, r.Data.OK)
}

func TestSession_RateLimited(t *testing.T) {
	// Zero refill with a burst of two admits exactly two frames.
	sess, _ := newTestSession(t, "c1", rate.NewLimiter(0, 2))

	for i := 0; i < 2; i++ {
		r := decodeReply(t, sess.handle([]byte(`{"type":"listRooms","id":"ok"}`)))
		assert.True(t, r.Data.OK)
	}

	r := decodeReply(t, sess.handle([]byte(`{"type":"listRooms","id":"late"}`)))
	assert.Equal(t, "late", r.ID)
	assert.False(t, r.Data.OK)
	assert.Equal(t, protocol.CodeRateLimited, r.Data.Code)

	r = decodeReply(t, sess.handle([]byte(`not json`)))
	assert.Equal(t, protocol.TypeError, r.Type)
	assert.Equal(t, protocol.CodeRateLimited, r.Data.Code)
}
