package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps the console quiet unless something needs attention.
const DefaultLevel = zapcore.WarnLevel

// ParseLogLevelString maps a level name from IMGEN_LOG_LEVEL to a zap level.
// Names are case-insensitive; "warning" is accepted for "warn". Empty or
// unknown names return fallback.
func ParseLogLevelString(name string, fallback zapcore.Level) zapcore.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "dpanic" || name == "panic" || name == "fatal" {
		return fallback
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return fallback
	}
	return level
}
