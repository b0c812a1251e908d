package verify

import (
	"context"
	"errors"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/tag"
)

// Flow errors.
var (
	// ErrInvalidConfig indicates an invalid orchestrator configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBusy indicates a flow is already underway; reset first.
	ErrBusy = errors.New("flow already underway")

	// ErrNotAccepting indicates PIN input outside the PIN entry phase.
	ErrNotAccepting = errors.New("not accepting PIN input")

	// ErrUnknownSession indicates a session ID the delivery does not know.
	ErrUnknownSession = errors.New("unknown session")
)

// Phase identifies where the verification flow currently is.
type Phase uint8

const (
	// PhaseIdle - nothing in progress.
	PhaseIdle Phase = iota

	// PhaseScanning - waiting for a tag.
	PhaseScanning

	// PhaseTagDetected - a sharer's tag was read.
	PhaseTagDetected

	// PhasePinEntry - the delivered PIN is being typed in.
	PhasePinEntry

	// PhaseVerifying - the entered PIN is being checked.
	PhaseVerifying

	// PhaseVerified - the PIN matched.
	PhaseVerified

	// PhaseProfileRevealed - terminal; the full profile is available.
	PhaseProfileRevealed

	// PhaseError - terminal; see the Reason.
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseScanning:
		return "SCANNING"
	case PhaseTagDetected:
		return "TAG_DETECTED"
	case PhasePinEntry:
		return "PIN_ENTRY"
	case PhaseVerifying:
		return "VERIFYING"
	case PhaseVerified:
		return "VERIFIED"
	case PhaseProfileRevealed:
		return "PROFILE_REVEALED"
	case PhaseError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether only Reset can leave the phase.
func (p Phase) Terminal() bool {
	return p == PhaseProfileRevealed || p == PhaseError
}

// Reason distinguishes error states for differentiated UI copy.
type Reason uint8

const (
	// ReasonNone - no error.
	ReasonNone Reason = iota

	// ReasonTagNotAvailable - no tag arrived or hardware is unavailable.
	ReasonTagNotAvailable

	// ReasonTagConnection - connecting to the tag failed.
	ReasonTagConnection

	// ReasonNotNDEFCapable - the tag does not speak NDEF.
	ReasonNotNDEFCapable

	// ReasonTagReadOnly - the tag refuses writes.
	ReasonTagReadOnly

	// ReasonTagReadFailed - reading the tag failed mid-transfer.
	ReasonTagReadFailed

	// ReasonTagWriteFailed - writing the tag failed mid-transfer.
	ReasonTagWriteFailed

	// ReasonEmptyTag - the tag holds no data.
	ReasonEmptyTag

	// ReasonInvalidTagFormat - tag data yielded no member identifier.
	ReasonInvalidTagFormat

	// ReasonNetwork - a collaborator round trip failed.
	ReasonNetwork

	// ReasonPinIncorrect - the entered PIN did not match.
	ReasonPinIncorrect

	// ReasonPinExpired - the session's PIN window passed before submission.
	ReasonPinExpired
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "NONE"
	case ReasonTagNotAvailable:
		return "TAG_NOT_AVAILABLE"
	case ReasonTagConnection:
		return "TAG_CONNECTION_FAILED"
	case ReasonNotNDEFCapable:
		return "NOT_NDEF_CAPABLE"
	case ReasonTagReadOnly:
		return "TAG_READ_ONLY"
	case ReasonTagReadFailed:
		return "TAG_READ_FAILED"
	case ReasonTagWriteFailed:
		return "TAG_WRITE_FAILED"
	case ReasonEmptyTag:
		return "EMPTY_TAG"
	case ReasonInvalidTagFormat:
		return "INVALID_TAG_FORMAT"
	case ReasonNetwork:
		return "NETWORK_ERROR"
	case ReasonPinIncorrect:
		return "PIN_INCORRECT"
	case ReasonPinExpired:
		return "PIN_EXPIRED"
	default:
		return "UNKNOWN"
	}
}

// reasonForTagFailure maps a tag ceremony failure onto a flow error reason.
func reasonForTagFailure(f tag.FailReason) Reason {
	switch f {
	case tag.FailNotAvailable:
		return ReasonTagNotAvailable
	case tag.FailConnection, tag.FailCapabilityQuery:
		return ReasonTagConnection
	case tag.FailNotNDEF:
		return ReasonNotNDEFCapable
	case tag.FailReadOnly:
		return ReasonTagReadOnly
	case tag.FailRead:
		return ReasonTagReadFailed
	case tag.FailWrite:
		return ReasonTagWriteFailed
	case tag.FailEmptyTag:
		return ReasonEmptyTag
	case tag.FailInvalidFormat:
		return ReasonInvalidTagFormat
	default:
		return ReasonTagConnection
	}
}

// FlowState is an immutable snapshot of the verification flow. Transitions
// replace the whole value; callers never observe partial updates.
type FlowState struct {
	// Phase is the current flow phase.
	Phase Phase

	// SharerID identifies the detected sharer (TagDetected onward).
	SharerID string

	// Reason carries the error reason (Error phase only).
	Reason Reason
}

// legal transitions between phases. Reset is handled separately and is
// allowed from every phase.
var flowTransitions = map[Phase][]Phase{
	PhaseIdle:        {PhaseScanning},
	PhaseScanning:    {PhaseTagDetected, PhaseError, PhaseIdle},
	PhaseTagDetected: {PhasePinEntry, PhaseError},
	PhasePinEntry:    {PhaseVerifying, PhaseError},
	PhaseVerifying:   {PhaseVerified, PhaseError},
	PhaseVerified:    {PhaseProfileRevealed, PhaseError},
}

// canTransition reports whether moving from one phase to another is legal.
func canTransition(from, to Phase) bool {
	for _, next := range flowTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// phaseHoldsSession reports whether a verification session may exist in
// the phase. A session exists exactly while these phases last.
func phaseHoldsSession(p Phase) bool {
	return p == PhasePinEntry || p == PhaseVerifying || p == PhaseVerified
}

// FeedbackEvent names a haptic/UI cue moment.
type FeedbackEvent uint8

const (
	// FeedbackTagDetected - a tag was read successfully.
	FeedbackTagDetected FeedbackEvent = iota

	// FeedbackPinCorrect - the PIN matched.
	FeedbackPinCorrect

	// FeedbackPinIncorrect - the PIN did not match or expired.
	FeedbackPinIncorrect

	// FeedbackReveal - the full profile was revealed.
	FeedbackReveal

	// FeedbackScanCancelled - the person abandoned the scan.
	FeedbackScanCancelled

	// FeedbackScanAmbiguous - several tags are in the field.
	FeedbackScanAmbiguous
)

// String returns the feedback event name.
func (f FeedbackEvent) String() string {
	switch f {
	case FeedbackTagDetected:
		return "TAG_DETECTED"
	case FeedbackPinCorrect:
		return "PIN_CORRECT"
	case FeedbackPinIncorrect:
		return "PIN_INCORRECT"
	case FeedbackReveal:
		return "REVEAL"
	case FeedbackScanCancelled:
		return "SCAN_CANCELLED"
	case FeedbackScanAmbiguous:
		return "SCAN_AMBIGUOUS"
	default:
		return "UNKNOWN"
	}
}

// Feedback receives haptic/UI cues at flow milestones.
// Implementations must not block.
type Feedback interface {
	Signal(event FeedbackEvent)
}

// NoopFeedback ignores all signals.
type NoopFeedback struct{}

// Signal discards the event.
func (NoopFeedback) Signal(FeedbackEvent) {}

// Compile-time interface satisfaction check.
var _ Feedback = NoopFeedback{}

// Level selects how much of a profile is returned.
type Level string

const (
	// LevelPublic is the subset anyone may see.
	LevelPublic Level = "public"

	// LevelFull includes contact details; requires a verified session.
	LevelFull Level = "full"
)

// ProfileRequest asks for a member profile at a disclosure level.
type ProfileRequest struct {
	// MemberID identifies the profile owner.
	MemberID string

	// Level is the requested disclosure level.
	Level Level

	// SessionID proves a verified ceremony backs a LevelFull request.
	SessionID string
}

// Profile is the member data revealed after verification.
type Profile struct {
	MemberID    string            `json:"memberId"`
	DisplayName string            `json:"displayName"`
	Headline    string            `json:"headline,omitempty"`
	Company     string            `json:"company,omitempty"`
	Email       string            `json:"email,omitempty"`
	Phone       string            `json:"phone,omitempty"`
	Links       map[string]string `json:"links,omitempty"`
}

// PinDelivery requests out-of-band PIN delivery and checks entered PINs.
type PinDelivery interface {
	// RequestPin asks the service to deliver a PIN to the sharer and
	// returns the created verification session.
	RequestPin(ctx context.Context, sharerID string) (*Session, error)

	// VerifyPin checks an entered PIN against the session.
	VerifyPin(ctx context.Context, sessionID, pin string) (bool, error)
}

// ProfileFetch retrieves member profiles.
type ProfileFetch interface {
	// FetchProfile returns the profile at the requested level.
	FetchProfile(ctx context.Context, req ProfileRequest) (*Profile, error)
}
