package chat

import "errors"

// Domain errors. All are recoverable by the caller and map to a wire code.
var (
	ErrInvalidName       = errors.New("name cannot be empty")
	ErrNameTooLong       = errors.New("name exceeds maximum length")
	ErrInvalidEncoding   = errors.New("text contains invalid characters")
	ErrAlreadyExists     = errors.New("room already exists")
	ErrNotFound          = errors.New("room not found")
	ErrNameTaken         = errors.New("display name already taken in this room")
	ErrNotInRoom         = errors.New("not in a room")
	ErrAlreadyInRoom     = errors.New("already in another room")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrMessageTooLong    = errors.New("message exceeds maximum length")
	ErrUnknownConnection = errors.New("unknown connection")
)

// Wire codes reported to clients.
const (
	CodeValidation    = "ValidationError"
	CodeAlreadyExists = "AlreadyExists"
	CodeNotFound      = "NotFound"
	CodeNameTaken     = "NameTaken"
	CodeNotInRoom     = "NotInRoom"
	CodeAlreadyInRoom = "AlreadyInRoom"
	CodeEmptyMessage  = "EmptyMessage"
	CodeNotConnected  = "NotConnected"
	CodeInternal      = "InternalError"
)

// Code classifies err into a wire code. Unrecognized errors are internal.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidName),
		errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrInvalidEncoding),
		errors.Is(err, ErrMessageTooLong):
		return CodeValidation
	case errors.Is(err, ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNameTaken):
		return CodeNameTaken
	case errors.Is(err, ErrNotInRoom):
		return CodeNotInRoom
	case errors.Is(err, ErrAlreadyInRoom):
		return CodeAlreadyInRoom
	case errors.Is(err, ErrEmptyMessage):
		return CodeEmptyMessage
	case errors.Is(err, ErrUnknownConnection):
		return CodeNotConnected
	default:
		return CodeInternal
	}
}

// codeErrors maps a wire code back to its sentinel so errors survive a
// request-reply hop.
var codeErrors = map[string]error{
	CodeAlreadyExists: ErrAlreadyExists,
	CodeNotFound:      ErrNotFound,
	CodeNameTaken:     ErrNameTaken,
	CodeNotInRoom:     ErrNotInRoom,
	CodeAlreadyInRoom: ErrAlreadyInRoom,
	CodeEmptyMessage:  ErrEmptyMessage,
	CodeNotConnected:  ErrUnknownConnection,
}

// FromCode rebuilds a domain error from a code and message.
func FromCode(code, msg string) error {
	if code == "" {
		return nil
	}
	if sentinel, ok := codeErrors[code]; ok {
		return sentinel
	}
	if code == CodeValidation {
		return &ValidationError{Msg: msg}
	}
	return errors.New(msg)
}

// ValidationError carries a validation message across a request-reply hop.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is lets a rebuilt validation failure match ErrInvalidName.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidName
}
