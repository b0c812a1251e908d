// Package log provides structured event logging for TapMeet flows.
//
// This package defines the Logger interface and Event types for capturing
// verification-flow events at every stage: tag session transitions, flow
// state changes, collaborator round trips, and feedback signals. It is
// separate from operational logging (slog) - event capture produces a
// complete machine-readable trace a flow can be replayed from.
//
// # Basic Usage
//
// Components take a Logger in their config:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("tapmeet.tlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events carry one payload depending on what happened:
//   - StateChange: flow or tag-session transition
//   - Tag: a payload read from or written to a tag
//   - Collaborator: a PIN-delivery or profile-fetch round trip
//   - Feedback: a haptic/UI feedback signal
//   - Error: an error at any source
//
// # File Format
//
// Log files use CBOR encoding with .tlog extension. The tapmeet-log CLI
// tool provides viewing and filtering.
package log
