package logger_adapter

import "github.com/goncalofm90/foodi3/internal/core/port"

// NopLogger drops everything. Used by tests and as the fallback before the
// real logger is configured.
type NopLogger struct{}

func NewNopLogger() port.LoggerPort { return NopLogger{} }

func (NopLogger) Info(string, port.Fields)               {}
func (NopLogger) Warn(string, port.Fields)               {}
func (NopLogger) Error(string, error, port.Fields)       {}
func (NopLogger) Debug(string, port.Fields)              {}
func (n NopLogger) WithFields(port.Fields) port.LoggerPort { return n }
