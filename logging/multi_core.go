package logging

import (
	"go.uber.org/zap/zapcore"
)

// NewMultiCore creates a zapcore.Core that writes human-readable lines to the
// console and, when fileWriter is non-nil, JSON lines to a file.
//
// The console uses NewConsoleEncoderConfig (optionally colored); the file
// always uses NewEncoderConfig so it can be processed by log tooling.
//
// Example:
//
//	core := NewMultiCore(zapcore.InfoLevel, zapcore.AddSync(os.Stderr), NewFileWriter("imgen.log"), true)
//	logger := zap.New(core)
func NewMultiCore(level zapcore.Level, consoleWriter, fileWriter zapcore.WriteSyncer, color bool) zapcore.Core {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(NewConsoleEncoderConfig(color)),
		consoleWriter,
		level,
	)
	if fileWriter == nil {
		return consoleCore
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(NewEncoderConfig()),
		fileWriter,
		level,
	)

	return zapcore.NewTee(consoleCore, fileCore)
}
