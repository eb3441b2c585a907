package logging

import (
	"testing"
)

func TestNewEncoderConfig(t *testing.T) {
	cfg := NewEncoderConfig()

	if cfg.TimeKey != FieldTimestamp || cfg.LevelKey != FieldLevel || cfg.MessageKey != FieldMessage {
		t.Errorf("unexpected keys: time=%q level=%q message=%q", cfg.TimeKey, cfg.LevelKey, cfg.MessageKey)
	}
	if cfg.CallerKey != FieldCaller {
		t.Errorf("CallerKey = %q, want %q", cfg.CallerKey, FieldCaller)
	}
	if cfg.EncodeTime == nil || cfg.EncodeLevel == nil {
		t.Error("encoders must be set")
	}
}

func TestNewConsoleEncoderConfig(t *testing.T) {
	for _, color := range []bool{true, false} {
		cfg := NewConsoleEncoderConfig(color)
		if cfg.CallerKey != "" {
			t.Errorf("color=%v: console config should omit caller, got %q", color, cfg.CallerKey)
		}
		if cfg.MessageKey != FieldMessage {
			t.Errorf("color=%v: MessageKey = %q", color, cfg.MessageKey)
		}
		if cfg.EncodeLevel == nil || cfg.EncodeTime == nil {
			t.Errorf("color=%v: encoders must be set", color)
		}
	}
}
