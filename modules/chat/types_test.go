package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeRoomName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "general", "general", nil},
		{"trimmed", "  general \t", "general", nil},
		{"empty", "", "", ErrInvalidName},
		{"blank", "   ", "", ErrInvalidName},
		{"too long", strings.Repeat("r", MaxRoomNameLength+1), "", ErrNameTooLong},
		{"at limit", strings.Repeat("r", MaxRoomNameLength), strings.Repeat("r", MaxRoomNameLength), nil},
		{"invalid utf8", "gen\xffral", "", ErrInvalidEncoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeRoomName(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeRoomName() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeRoomName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeDisplayName(t *testing.T) {
	if got, err := NormalizeDisplayName(" alice "); err != nil || got != "alice" {
		t.Errorf("NormalizeDisplayName() = %q, %v, want %q, nil", got, err, "alice")
	}
	if _, err := NormalizeDisplayName(strings.Repeat("a", MaxDisplayNameLength+1)); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("NormalizeDisplayName() error = %v, want %v", err, ErrNameTooLong)
	}
	if _, err := NormalizeDisplayName("\n"); Code(err) != CodeValidation {
		t.Errorf("Code() = %q, want %q", Code(err), CodeValidation)
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain", "hi", "hi", nil},
		{"trimmed", "  hi there  ", "hi there", nil},
		{"blank", " \n\t ", "", ErrEmptyMessage},
		{"too long", strings.Repeat("m", MaxMessageLength+1), "", ErrMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeMessage(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeMessage() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrInvalidName, CodeValidation},
		{ErrMessageTooLong, CodeValidation},
		{ErrAlreadyExists, CodeAlreadyExists},
		{ErrNotFound, CodeNotFound},
		{ErrNameTaken, CodeNameTaken},
		{ErrNotInRoom, CodeNotInRoom},
		{ErrAlreadyInRoom, CodeAlreadyInRoom},
		{ErrEmptyMessage, CodeEmptyMessage},
		{ErrUnknownConnection, CodeNotConnected},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Errorf("Code(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFromCode(t *testing.T) {
	if err := FromCode("", ""); err != nil {
		t.Errorf("FromCode(\"\") = %v, want nil", err)
	}
	if err := FromCode(CodeAlreadyExists, "room already exists"); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("FromCode(AlreadyExists) = %v, want %v", err, ErrAlreadyExists)
	}
	err := FromCode(CodeValidation, "room name: name cannot be empty")
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("FromCode(ValidationError) = %v, want match for %v", err, ErrInvalidName)
	}
	if err.Error() != "room name: name cannot be empty" {
		t.Errorf("FromCode(ValidationError).Error() = %q", err.Error())
	}
	if Code(FromCode(CodeInternal, "boom")) != CodeInternal {
		t.Error("FromCode(InternalError) should classify as internal")
	}
}
