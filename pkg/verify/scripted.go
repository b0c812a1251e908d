package verify

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/pin"
)

// DefaultSimSharerID is the member the simulation path detects when the
// configuration names none.
const DefaultSimSharerID = "sim-member-001"

// DerivePin computes the deterministic PIN scripted delivery issues for a
// sharer. The digits come from HKDF-SHA256 over the sharer ID, so every
// run of the simulation types the same PIN without storing one anywhere.
func DerivePin(sharerID string, length int) string {
	if length <= 0 {
		length = pin.DefaultLength
	}
	reader := hkdf.New(sha256.New, []byte(sharerID), []byte("tapmeet-sim"), []byte("pin-delivery"))
	buf := make([]byte, length)
	if _, err := io.ReadFull(reader, buf); err != nil {
		// HKDF output is far longer than any PIN; this cannot happen.
		panic(err)
	}
	digits := make([]byte, length)
	for i, b := range buf {
		digits[i] = '0' + b%10
	}
	return string(digits)
}

// ScriptedDelivery is a deterministic PinDelivery for the simulation
// path. Sessions carry their PIN so the orchestrator can type it in, and
// round trips last exactly the scheduled steps.
type ScriptedDelivery struct {
	schedule  Schedule
	pinLength int
	ttl       time.Duration

	mu       sync.Mutex
	sessions map[string]string // session ID -> expected PIN
}

// Compile-time interface satisfaction check.
var _ PinDelivery = (*ScriptedDelivery)(nil)

// NewScriptedDelivery creates a scripted delivery paced by the schedule.
func NewScriptedDelivery(schedule Schedule) *ScriptedDelivery {
	return &ScriptedDelivery{
		schedule:  schedule,
		pinLength: pin.DefaultLength,
		ttl:       DefaultSessionTTL,
		sessions:  make(map[string]string),
	}
}

// SetPinLength changes the digit count of newly issued sessions.
// Non-positive lengths are ignored.
func (d *ScriptedDelivery) SetPinLength(length int) {
	if length <= 0 {
		return
	}
	d.mu.Lock()
	d.pinLength = length
	d.mu.Unlock()
}

// RequestPin issues a session with the derived PIN after the scripted
// delivery round trip.
func (d *ScriptedDelivery) RequestPin(ctx context.Context, sharerID string) (*Session, error) {
	if err := waitStep(ctx, d.schedule.SessionDelay); err != nil {
		return nil, err
	}

	d.mu.Lock()
	length := d.pinLength
	d.mu.Unlock()

	code := DerivePin(sharerID, length)
	session := &Session{
		ID:        uuid.NewString(),
		SharerID:  sharerID,
		PinLength: length,
		ExpiresAt: time.Now().Add(d.ttl),
		Pin:       code,
	}

	d.mu.Lock()
	d.sessions[session.ID] = code
	d.mu.Unlock()
	return session, nil
}

// VerifyPin compares the entered PIN after the scripted settle and check
// round trip.
func (d *ScriptedDelivery) VerifyPin(ctx context.Context, sessionID, entered string) (bool, error) {
	if err := waitStep(ctx, d.schedule.SettleDelay+d.schedule.VerifyHold); err != nil {
		return false, err
	}

	d.mu.Lock()
	want, ok := d.sessions[sessionID]
	d.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	return entered == want, nil
}

// ScriptedProfiles serves synthesized profiles for simulated sharers
// after the scripted reveal round trip.
type ScriptedProfiles struct {
	schedule Schedule
}

// Compile-time interface satisfaction check.
var _ ProfileFetch = (*ScriptedProfiles)(nil)

// NewScriptedProfiles creates a scripted profile source paced by the
// schedule.
func NewScriptedProfiles(schedule Schedule) *ScriptedProfiles {
	return &ScriptedProfiles{schedule: schedule}
}

// FetchProfile synthesizes a profile for the requested member.
func (p *ScriptedProfiles) FetchProfile(ctx context.Context, req ProfileRequest) (*Profile, error) {
	if err := waitStep(ctx, p.schedule.RevealDelay); err != nil {
		return nil, err
	}

	profile := &Profile{
		MemberID:    req.MemberID,
		DisplayName: "Demo Member " + req.MemberID,
	}
	if req.Level == LevelFull {
		profile.Headline = "Simulated TapMeet member"
		profile.Email = req.MemberID + "@demo.tapmeet.app"
		profile.Links = map[string]string{
			"web": "https://tapmeet.app/m/" + req.MemberID,
		}
	}
	return profile, nil
}
