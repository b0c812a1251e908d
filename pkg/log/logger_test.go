package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDiscards(t *testing.T) {
	var logger Logger = NoopLogger{}

	// Must not panic, zero value included.
	logger.Log(Event{})
	logger.Log(Event{
		Timestamp:   time.Now(),
		FlowID:      "flow-1",
		Source:      SourceFlow,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: StateEntityFlow, NewState: "IDLE"},
	})
}
