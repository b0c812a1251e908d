package verify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/pin"
)

func TestDerivePin(t *testing.T) {
	first := DerivePin("m-1", 4)
	second := DerivePin("m-1", 4)
	if first != second {
		t.Errorf("derivation not stable: %q vs %q", first, second)
	}
	if len(first) != 4 {
		t.Errorf("len = %d, want 4", len(first))
	}
	for _, d := range first {
		if d < '0' || d > '9' {
			t.Errorf("non-digit %q in PIN %q", d, first)
		}
	}

	if other := DerivePin("m-2", 4); other == first {
		t.Errorf("distinct sharers derived the same PIN %q", first)
	}
	if got := DerivePin("m-1", 6); len(got) != 6 {
		t.Errorf("len = %d, want 6", len(got))
	}
	if !strings.HasPrefix(DerivePin("m-1", 6), first) {
		// HKDF output is a stream; a longer PIN extends the shorter one.
		t.Error("longer PIN does not extend the shorter derivation")
	}
	if got := DerivePin("m-1", 0); len(got) != pin.DefaultLength {
		t.Errorf("zero length fell back to %d digits, want %d", len(got), pin.DefaultLength)
	}
}

func TestScriptedDeliveryRoundTrip(t *testing.T) {
	var schedule Schedule
	d := NewScriptedDelivery(schedule)

	before := time.Now()
	session, err := d.RequestPin(context.Background(), "m-5")
	if err != nil {
		t.Fatalf("RequestPin failed: %v", err)
	}
	if session.ID == "" {
		t.Error("session has no ID")
	}
	if session.SharerID != "m-5" {
		t.Errorf("SharerID = %q, want m-5", session.SharerID)
	}
	if session.PinLength != pin.DefaultLength {
		t.Errorf("PinLength = %d, want %d", session.PinLength, pin.DefaultLength)
	}
	if session.Pin != DerivePin("m-5", pin.DefaultLength) {
		t.Errorf("Pin = %q, want derived PIN", session.Pin)
	}
	wantExpiry := before.Add(DefaultSessionTTL)
	if session.ExpiresAt.Before(wantExpiry) || session.ExpiresAt.After(wantExpiry.Add(time.Second)) {
		t.Errorf("ExpiresAt = %v, want about %v", session.ExpiresAt, wantExpiry)
	}

	ok, err := d.VerifyPin(context.Background(), session.ID, session.Pin)
	if err != nil {
		t.Fatalf("VerifyPin failed: %v", err)
	}
	if !ok {
		t.Error("correct PIN rejected")
	}

	ok, err = d.VerifyPin(context.Background(), session.ID, "0000")
	if err != nil {
		t.Fatalf("VerifyPin failed: %v", err)
	}
	if ok && session.Pin != "0000" {
		t.Error("wrong PIN accepted")
	}
}

func TestScriptedDeliveryUnknownSession(t *testing.T) {
	d := NewScriptedDelivery(Schedule{})
	if _, err := d.VerifyPin(context.Background(), "no-such-session", "1234"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("VerifyPin = %v, want ErrUnknownSession", err)
	}
}

func TestScriptedDeliveryPinLength(t *testing.T) {
	d := NewScriptedDelivery(Schedule{})
	d.SetPinLength(6)

	session, err := d.RequestPin(context.Background(), "m-5")
	if err != nil {
		t.Fatalf("RequestPin failed: %v", err)
	}
	if session.PinLength != 6 {
		t.Errorf("PinLength = %d, want 6", session.PinLength)
	}
	if len(session.Pin) != 6 {
		t.Errorf("len(Pin) = %d, want 6", len(session.Pin))
	}
	if ok, err := d.VerifyPin(context.Background(), session.ID, session.Pin); err != nil || !ok {
		t.Errorf("VerifyPin = (%v, %v), want accepted", ok, err)
	}

	// Non-positive overrides are ignored.
	d.SetPinLength(0)
	session, err = d.RequestPin(context.Background(), "m-5")
	if err != nil {
		t.Fatalf("RequestPin failed: %v", err)
	}
	if session.PinLength != 6 {
		t.Errorf("PinLength = %d after SetPinLength(0), want 6", session.PinLength)
	}
}

func TestScriptedDeliveryCancelled(t *testing.T) {
	d := NewScriptedDelivery(Schedule{SessionDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.RequestPin(ctx, "m-5"); !errors.Is(err, context.Canceled) {
		t.Errorf("RequestPin = %v, want Canceled", err)
	}
}

func TestScriptedProfilesLevels(t *testing.T) {
	p := NewScriptedProfiles(Schedule{})

	public, err := p.FetchProfile(context.Background(), ProfileRequest{MemberID: "m-9", Level: LevelPublic})
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if public.MemberID != "m-9" {
		t.Errorf("MemberID = %q, want m-9", public.MemberID)
	}
	if public.DisplayName == "" {
		t.Error("public profile has no display name")
	}
	if public.Email != "" {
		t.Errorf("public profile leaked email %q", public.Email)
	}

	full, err := p.FetchProfile(context.Background(), ProfileRequest{MemberID: "m-9", Level: LevelFull, SessionID: "s-1"})
	if err != nil {
		t.Fatalf("FetchProfile failed: %v", err)
	}
	if full.Email == "" {
		t.Error("full profile has no email")
	}
	if len(full.Links) == 0 {
		t.Error("full profile has no links")
	}
}
