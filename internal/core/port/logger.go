package port

// Fields carries structured key/value data for a log entry.
type Fields map[string]interface{}

// LoggerPort keeps the core independent from a concrete logger.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error logs msg together with err, which may be nil.
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields returns a logger that adds fields to every entry
	// (request id, user id, component).
	WithFields(fields Fields) LoggerPort
}
