package tag

import (
	"errors"
	"fmt"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
)

// Session errors.
var (
	// ErrInvalidConfig indicates an invalid session configuration.
	ErrInvalidConfig = errors.New("invalid session configuration")

	// ErrAlreadyRun indicates the session already ran; sessions are single-use.
	ErrAlreadyRun = errors.New("session already run")
)

// DefaultAmbiguityRetryDelay is the pause before reconnecting after a
// multiple-tags condition.
const DefaultAmbiguityRetryDelay = 500 * time.Millisecond

// Mode selects the direction of a tag ceremony.
type Mode uint8

const (
	// ModeRead reads member data from a tag.
	ModeRead Mode = iota

	// ModeWrite provisions member data onto a tag.
	ModeWrite
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "READ"
	case ModeWrite:
		return "WRITE"
	default:
		return "UNKNOWN"
	}
}

// SessionState identifies where a tag ceremony currently is.
type SessionState uint8

const (
	// SessionIdle - created, not yet run.
	SessionIdle SessionState = iota

	// SessionConnecting - waiting for a tag to arrive in the field.
	SessionConnecting

	// SessionQueryingCapability - asking the tag what it supports.
	SessionQueryingCapability

	// SessionReading - transferring member data from the tag.
	SessionReading

	// SessionWriting - transferring member data to the tag.
	SessionWriting

	// SessionFinished - terminal; see the Outcome.
	SessionFinished
)

// String returns the state name.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "IDLE"
	case SessionConnecting:
		return "CONNECTING"
	case SessionQueryingCapability:
		return "QUERYING_CAPABILITY"
	case SessionReading:
		return "READING"
	case SessionWriting:
		return "WRITING"
	case SessionFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// OutcomeCode is the overall result of a session run.
type OutcomeCode uint8

const (
	// OutcomeSuccess - the ceremony completed.
	OutcomeSuccess OutcomeCode = iota

	// OutcomeCancelled - the person or caller abandoned the ceremony.
	// Cancellation is not a failure.
	OutcomeCancelled

	// OutcomeFailure - the ceremony failed; see FailReason.
	OutcomeFailure
)

// String returns the outcome code name.
func (o OutcomeCode) String() string {
	switch o {
	case OutcomeSuccess:
		return "SUCCESS"
	case OutcomeCancelled:
		return "CANCELLED"
	case OutcomeFailure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// FailReason distinguishes session failures for differentiated handling.
type FailReason uint8

const (
	// FailNone - no failure.
	FailNone FailReason = iota

	// FailNotAvailable - no tag arrived or hardware is unavailable.
	FailNotAvailable

	// FailConnection - connecting to the tag failed.
	FailConnection

	// FailCapabilityQuery - the capability query failed.
	FailCapabilityQuery

	// FailNotNDEF - the tag does not speak NDEF.
	FailNotNDEF

	// FailReadOnly - a write was requested but the tag is read-only.
	FailReadOnly

	// FailRead - reading tag data failed.
	FailRead

	// FailWrite - writing tag data failed.
	FailWrite

	// FailEmptyTag - the tag is NDEF-capable but holds no data.
	FailEmptyTag

	// FailInvalidFormat - tag data yielded no member identifier.
	FailInvalidFormat
)

// String returns the failure reason name.
func (f FailReason) String() string {
	switch f {
	case FailNone:
		return "NONE"
	case FailNotAvailable:
		return "NOT_AVAILABLE"
	case FailConnection:
		return "CONNECTION_FAILED"
	case FailCapabilityQuery:
		return "CAPABILITY_QUERY_FAILED"
	case FailNotNDEF:
		return "NOT_NDEF_CAPABLE"
	case FailReadOnly:
		return "READ_ONLY_TAG"
	case FailRead:
		return "READ_FAILED"
	case FailWrite:
		return "WRITE_FAILED"
	case FailEmptyTag:
		return "EMPTY_TAG"
	case FailInvalidFormat:
		return "INVALID_TAG_FORMAT"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal result of a session run.
type Outcome struct {
	// Code is the overall result.
	Code OutcomeCode

	// Fail carries the failure reason when Code is OutcomeFailure.
	Fail FailReason

	// Payload is the member data read from the tag (or written to it).
	Payload Payload

	// Err is the underlying error, if any.
	Err error
}

// SessionConfig configures a tag ceremony.
type SessionConfig struct {
	// Mode selects the ceremony direction.
	Mode Mode

	// Payload is the member data written in ModeWrite.
	Payload Payload

	// AmbiguityRetryDelay is the pause before reconnecting after a
	// multiple-tags condition. Zero retries immediately.
	AmbiguityRetryDelay time.Duration

	// FlowID correlates session events with a verification flow (optional).
	FlowID string

	// Logger receives session events (optional).
	Logger log.Logger
}

// Validate checks the configuration.
func (c *SessionConfig) Validate() error {
	if c.Mode != ModeRead && c.Mode != ModeWrite {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, c.Mode)
	}
	if c.Mode == ModeWrite && c.Payload.MemberID == "" {
		return fmt.Errorf("%w: write mode requires a member ID", ErrInvalidConfig)
	}
	if c.AmbiguityRetryDelay < 0 {
		return fmt.Errorf("%w: negative ambiguity retry delay", ErrInvalidConfig)
	}
	return nil
}

// DefaultSessionConfig returns a read-mode configuration with standard delays.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Mode:                ModeRead,
		AmbiguityRetryDelay: DefaultAmbiguityRetryDelay,
	}
}
