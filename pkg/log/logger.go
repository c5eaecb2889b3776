package log

import "time"

// Logger is the structured logging port. Every headtrack component takes
// one; nil means NoopLogger (see OrNoop).
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log event.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint is stored as uint64 so adapters need one unsigned case. Session
// counts are logged with it.
func Uint(key string, value uint) Field { return Field{Key: key, Value: uint64(value)} }

func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err attaches err under the key "error".
func Err(err error) Field { return Field{Key: "error", Value: err} }

// Any falls back to reflection in the adapter.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }

// Device tags an event with a device index.
func Device(index int) Field { return Field{Key: "device", Value: index} }

// OrNoop returns l, or a no-op logger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}
