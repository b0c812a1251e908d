package log

// MultiLogger fans events out to multiple loggers, typically console output
// (SlogAdapter) plus file capture (FileLogger).
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that sends events to all provided
// loggers. Nil entries are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	kept := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &MultiLogger{loggers: kept}
}

// Log sends the event to all configured loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
