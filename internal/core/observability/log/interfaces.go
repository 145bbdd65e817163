package log

import "go.uber.org/zap"

// Log is the logging interface handed to components. Implementations must be
// safe for concurrent use.
type Log interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Log

	SetLevel(level Level)
	GetLevel() Level
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Field is a structured logging field. Aliased to zap so call sites pay no
// conversion cost.
type Field = zap.Field

var (
	Any      = zap.Any
	Bool     = zap.Bool
	Duration = zap.Duration
	Err      = zap.Error
	Float64  = zap.Float64
	Int      = zap.Int
	Int64    = zap.Int64
	String   = zap.String
	Time     = zap.Time
	Uint32   = zap.Uint32
	Uint64   = zap.Uint64
)
