package log

import (
	"time"
)

// Event represents a flow log event captured at any source.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// FlowID uniquely identifies the verification flow (UUID).
	FlowID string `cbor:"2,keyasint"`

	// Source is the component that emitted the event.
	Source Source `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// SharerID is the tag owner's member ID (populated after detection).
	SharerID string `cbor:"5,keyasint,omitempty"`

	// SessionID is the verification session ID (populated after PIN delivery).
	SessionID string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	StateChange  *StateChangeEvent  `cbor:"10,keyasint,omitempty"` // Flow/session transitions
	Tag          *TagEvent          `cbor:"11,keyasint,omitempty"` // Tag reads and writes
	Collaborator *CollaboratorEvent `cbor:"12,keyasint,omitempty"` // External round trips
	Feedback     *FeedbackEventData `cbor:"13,keyasint,omitempty"` // Haptic/UI signals
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"` // Errors at any source
}

// Source is the component that emitted an event.
type Source uint8

const (
	// SourceFlow is the verification orchestrator.
	SourceFlow Source = 0
	// SourceTagSession is the tag read/write ceremony.
	SourceTagSession Source = 1
	// SourcePin is PIN entry tracking.
	SourcePin Source = 2
	// SourceCollaborator is a PIN-delivery or profile-fetch client.
	SourceCollaborator Source = 3
	// SourceEmulator is the virtual tag emulator.
	SourceEmulator Source = 4
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceFlow:
		return "FLOW"
	case SourceTagSession:
		return "TAG_SESSION"
	case SourcePin:
		return "PIN"
	case SourceCollaborator:
		return "COLLABORATOR"
	case SourceEmulator:
		return "EMULATOR"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a state change.
	CategoryState Category = 0
	// CategoryTag indicates a tag read or write.
	CategoryTag Category = 1
	// CategoryCollaborator indicates an external round trip.
	CategoryCollaborator Category = 2
	// CategoryFeedback indicates a feedback signal.
	CategoryFeedback Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryTag:
		return "TAG"
	case CategoryCollaborator:
		return "COLLABORATOR"
	case CategoryFeedback:
		return "FEEDBACK"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures flow and tag-session lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityFlow indicates a verification flow state change.
	StateEntityFlow StateEntity = 0
	// StateEntityTagSession indicates a tag session state change.
	StateEntityTagSession StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityFlow:
		return "FLOW"
	case StateEntityTagSession:
		return "TAG_SESSION"
	default:
		return "UNKNOWN"
	}
}

// TagEvent captures a payload read from or written to a tag.
type TagEvent struct {
	// MemberID extracted from the payload (reads only).
	MemberID string `cbor:"1,keyasint,omitempty"`

	// HasName indicates the payload carried a display name.
	HasName bool `cbor:"2,keyasint,omitempty"`

	// Size is the raw payload size in bytes.
	Size int `cbor:"3,keyasint"`

	// Write indicates a write ceremony (default is read).
	Write bool `cbor:"4,keyasint,omitempty"`
}

// CollaboratorEvent captures an external service round trip.
type CollaboratorEvent struct {
	// Op is the collaborator operation.
	Op CollaboratorOp `cbor:"1,keyasint"`

	// Status is the round trip result ("ok" or a short failure word).
	Status string `cbor:"2,keyasint"`

	// Latency is the round trip duration. Stored as nanoseconds.
	Latency *time.Duration `cbor:"3,keyasint,omitempty"`
}

// CollaboratorOp identifies the external operation performed.
type CollaboratorOp uint8

const (
	// OpRequestPin requests out-of-band PIN delivery.
	OpRequestPin CollaboratorOp = 0
	// OpVerifyPin checks an entered PIN against the session.
	OpVerifyPin CollaboratorOp = 1
	// OpFetchProfile fetches a member profile.
	OpFetchProfile CollaboratorOp = 2
)

// String returns the operation name.
func (o CollaboratorOp) String() string {
	switch o {
	case OpRequestPin:
		return "REQUEST_PIN"
	case OpVerifyPin:
		return "VERIFY_PIN"
	case OpFetchProfile:
		return "FETCH_PROFILE"
	default:
		return "UNKNOWN"
	}
}

// FeedbackEventData captures a feedback signal sent to haptics/UI.
type FeedbackEventData struct {
	// Name is the feedback event name.
	Name string `cbor:"1,keyasint"`
}

// ErrorEventData captures errors at any source.
type ErrorEventData struct {
	// Source where the error occurred.
	Source Source `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
