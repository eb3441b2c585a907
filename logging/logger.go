// Package logging provides the structured logger used across imgen.
//
// logger.go contains the Logger organism that wraps zap.Logger and redacts
// sensitive values (API keys, bearer tokens) from every field before it
// reaches an output. Console output goes to stderr so that image bytes
// written to stdout are never mixed with log lines.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures a Logger.
type Options struct {
	// Level is the minimum level written to either output.
	Level zapcore.Level

	// Console receives human-readable log lines. Defaults to os.Stderr.
	Console io.Writer

	// Color enables ANSI level colors on the console.
	Color bool

	// FilePath, when set, also writes JSON log lines to a rotated file.
	FilePath string

	// File overrides the rotation settings for FilePath.
	File FileWriterConfig
}

// Logger wraps zap.Logger with automatic sensitive data redaction.
//
// Example:
//
//	logger := New(Options{Level: zapcore.InfoLevel})
//	defer logger.Sync()
//
//	logger.Info("request complete", zap.Duration("elapsed", d))
//	logger.Debugw("saved image", "path", path)
type Logger struct {
	zap   *zap.Logger
	sugar *zap.SugaredLogger
}

// New creates a Logger from opts.
func New(opts Options) *Logger {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	var file zapcore.WriteSyncer
	if opts.FilePath != "" {
		file = NewFileWriterWithConfig(opts.FilePath, opts.File)
	}

	core := NewMultiCore(opts.Level, zapcore.AddSync(console), file, opts.Color)
	return newLogger(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}

// NewNop returns a Logger that discards everything. Used in tests and as
// the default before configuration has been loaded.
func NewNop() *Logger {
	return newLogger(zap.NewNop())
}

func newLogger(z *zap.Logger) *Logger {
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Sync flushes any buffered log entries.
// Errors from syncing a terminal (EINVAL, ENOTTY) are expected and ignored
// by callers.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// Debug logs a message at debug level with optional structured fields.
func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, redactFields(fields)...)
}

// Info logs a message at info level with optional structured fields.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, redactFields(fields)...)
}

// Warn logs a message at warn level with optional structured fields.
func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, redactFields(fields)...)
}

// Error logs a message at error level with optional structured fields.
func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, redactFields(fields)...)
}

// Debugw logs a message at debug level with loosely-typed key-value pairs.
//
// Example:
//
//	logger.Debugw("prompt matched an existing file", "path", p)
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, redactKeysAndValues(keysAndValues)...)
}

// With creates a child logger with additional fields that will be included
// in all log entries from the child.
//
// Example:
//
//	reqLogger := logger.With(zap.String("request_id", id))
func (l *Logger) With(fields ...zap.Field) *Logger {
	return newLogger(l.zap.With(redactFields(fields)...))
}

// Named adds a sub-logger name, e.g. "imagegen" or "db".
func (l *Logger) Named(name string) *Logger {
	return newLogger(l.zap.Named(name))
}

// redactFields filters sensitive data from zap.Field values.
func redactFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}

	result := make([]zap.Field, len(fields))
	for i, field := range fields {
		result[i] = redactField(field)
	}
	return result
}

// redactField redacts a single zap.Field if it contains sensitive data.
func redactField(field zap.Field) zap.Field {
	if IsSensitiveField(field.Key) {
		return zap.String(field.Key, RedactedPlaceholder)
	}

	switch field.Type {
	case zapcore.StringType:
		if redacted := RedactSensitiveData(field.String); redacted != field.String {
			return zap.String(field.Key, redacted)
		}
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok && err != nil {
			msg := err.Error()
			if redacted := RedactSensitiveData(msg); redacted != msg {
				return zap.String(field.Key, redacted)
			}
		}
	}

	return field
}

// redactKeysAndValues filters sensitive data from key-value pairs used in sugared logging.
func redactKeysAndValues(keysAndValues []interface{}) []interface{} {
	if len(keysAndValues) == 0 {
		return keysAndValues
	}

	result := make([]interface{}, len(keysAndValues))
	copy(result, keysAndValues)

	// Even indices are keys, odd indices are values
	for i := 0; i < len(result)-1; i += 2 {
		key, ok := result[i].(string)
		if !ok {
			continue
		}

		if IsSensitiveField(key) {
			result[i+1] = RedactedPlaceholder
			continue
		}

		switch v := result[i+1].(type) {
		case string:
			result[i+1] = RedactSensitiveData(v)
		case error:
			if v != nil {
				result[i+1] = RedactSensitiveData(v.Error())
			}
		}
	}

	return result
}
