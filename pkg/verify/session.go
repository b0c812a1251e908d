package verify

import "time"

// DefaultSessionTTL bounds how long a delivered PIN stays usable.
const DefaultSessionTTL = 5 * time.Minute

// Session is one verification attempt against a sharer's tag. It is
// created by PIN delivery and destroyed on reset, error, or reveal.
type Session struct {
	// ID is the service-issued session identifier.
	ID string

	// SharerID is the member being verified.
	SharerID string

	// PinLength is the number of digits the delivered PIN has.
	PinLength int

	// ExpiresAt bounds the PIN window. Zero means no local expiry.
	ExpiresAt time.Time

	// Pin is populated only by scripted delivery so the simulation can
	// type it in. Live sessions never carry the PIN on the verifier side.
	Pin string
}

// Expired reports whether the session's PIN window has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
