package api

import (
	"errors"

	domain "github.com/example/room-chat/domain/chat"
	"github.com/example/room-chat/modules/chat"
	"github.com/example/room-chat/protocol"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/time/rate"
)

// ChatService is the presence state machine as seen by a WebSocket session.
type ChatService interface {
	Connect(connID string)
	Disconnect(connID string)
	CreateRoom(name, createdBy string) (string, error)
	Join(connID, roomName, displayName string) (domain.RoomMeta, error)
	Leave(connID string) error
	SendMessage(connID, text string) (domain.Message, error)
	GetRoomUsers(roomName string) []string
	ListRooms() []domain.RoomSummary
}

var _ ChatService = (*chat.Service)(nil)

var errRateLimited = errors.New("rate limit exceeded, please slow down")

// session maps the frames of one connection to chat operations. Every frame
// yields exactly one response frame: an ack when the frame carries an id,
// an error frame otherwise.
type session struct {
	connID  string
	chat    ChatService
	limiter *rate.Limiter
	logger  types.Logger
}

func newSession(connID string, svc ChatService, limiter *rate.Limiter, logger types.Logger) *session {
	return &session{
		connID:  connID,
		chat:    svc,
		limiter: limiter,
		logger:  logger,
	}
}

// handle processes one inbound frame and returns the frame to send back.
// Every frame takes a rate-limit token, malformed ones included.
func (s *session) handle(raw []byte) []byte {
	f, err := protocol.Decode(raw)
	if s.limiter != nil && !s.limiter.Allow() {
		return s.reply(f.ID, failure(errRateLimited.Error(), protocol.CodeRateLimited))
	}
	if err != nil {
		s.logger.Debug("Rejected frame", "connID", s.connID, "error", err)
		return s.reply(f.ID, failure(err.Error(), protocol.CodeBadRequest))
	}

	return s.reply(f.ID, s.dispatch(f))
}

// dispatch runs the operation named by f. The result is a protocol.Ack or one
// of the ack types embedding it.
func (s *session) dispatch(f protocol.Frame) any {
	switch f.Type {
	case protocol.TypeCreateRoom:
		name, err := f.StringData()
		if err != nil {
			return failure(err.Error(), protocol.CodeBadRequest)
		}
		if _, err := s.chat.CreateRoom(name, s.connID); err != nil {
			return domainFailure(err)
		}
		return protocol.Ack{OK: true}

	case protocol.TypeJoinRoom:
		d, err := f.JoinData()
		if err != nil {
			return failure(err.Error(), protocol.CodeBadRequest)
		}
		meta, err := s.chat.Join(s.connID, d.RoomName, d.DisplayName)
		if err != nil {
			return domainFailure(err)
		}
		return protocol.JoinAck{Ack: protocol.Ack{OK: true}, Room: meta}

	case protocol.TypeLeaveRoom:
		if err := s.chat.Leave(s.connID); err != nil {
			return domainFailure(err)
		}
		return protocol.Ack{OK: true}

	case protocol.TypeSendMessage:
		text, err := f.StringData()
		if err != nil {
			return failure(err.Error(), protocol.CodeBadRequest)
		}
		if _, err := s.chat.SendMessage(s.connID, text); err != nil {
			return domainFailure(err)
		}
		return protocol.Ack{OK: true}

	case protocol.TypeGetRoomUsers:
		name, err := f.StringData()
		if err != nil {
			return failure(err.Error(), protocol.CodeBadRequest)
		}
		return protocol.UsersAck{Ack: protocol.Ack{OK: true}, Users: nonNil(s.chat.GetRoomUsers(name))}

	case protocol.TypeListRooms:
		rooms := s.chat.ListRooms()
		if rooms == nil {
			rooms = []domain.RoomSummary{}
		}
		return protocol.RoomsAck{Ack: protocol.Ack{OK: true}, Rooms: rooms}

	default:
		return failure("unknown frame type: "+f.Type, protocol.CodeUnknownType)
	}
}

// reply encodes result as an ack for id. A failure with no id to echo is
// sent as an error frame instead.
func (s *session) reply(id string, result any) []byte {
	var (
		out []byte
		err error
	)
	if a, ok := result.(protocol.Ack); ok && !a.OK && id == "" {
		out, err = protocol.EncodeError(a.Error, a.Code)
	} else {
		out, err = protocol.EncodeAck(id, result)
	}
	if err != nil {
		s.logger.Error("Failed to encode reply", "connID", s.connID, "error", err)
		out, _ = protocol.EncodeError("internal error", protocol.CodeInternal)
	}
	return out
}

func failure(msg, code string) protocol.Ack {
	return protocol.Ack{OK: false, Error: msg, Code: code}
}

func domainFailure(err error) protocol.Ack {
	return failure(err.Error(), chat.Code(err))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
