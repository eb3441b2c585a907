package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()

	if a == b {
		t.Errorf("NewRequestID() returned the same id twice: %s", a)
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("NewRequestID() = %q is not a UUID: %v", a, err)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0f8fad5b-d9cb-469f-a165-70867728950e", "0f8fad5b"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ShortID(tt.in); got != tt.want {
			t.Errorf("ShortID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
