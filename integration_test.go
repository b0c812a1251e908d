package tapmeet_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/backend"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/pin"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/tag"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/verify"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/virtualtag"
)

// TestE2E_Discovery tests that a reader can discover a hosted virtual tag
// via mDNS and read its image.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	image := encodeMemberTag(t, "alice-123", "Alice")

	// Host announces over real mDNS (no injected advertiser).
	host, err := virtualtag.NewHost(virtualtag.HostConfig{
		Capability: tag.CapabilityReadWrite,
		Payload:    image,
	})
	if err != nil {
		t.Fatalf("Failed to create host: %v", err)
	}
	if err := host.Start(ctx); err != nil {
		t.Fatalf("Failed to start host: %v", err)
	}
	defer host.Stop()

	// Give mDNS time to propagate
	time.Sleep(500 * time.Millisecond)

	// Reader browses the network instead of dialing directly.
	reader, err := virtualtag.NewReader(virtualtag.DefaultReaderConfig())
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	defer reader.Close()

	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	defer connectCancel()

	if err := reader.Connect(connectCtx); err != nil {
		t.Fatalf("Failed to discover tag: %v", err)
	}

	capability, err := reader.Capability(ctx)
	if err != nil {
		t.Fatalf("Failed to query capability: %v", err)
	}
	if capability != tag.CapabilityReadWrite {
		t.Errorf("Capability mismatch: expected %s, got %s", tag.CapabilityReadWrite, capability)
	}

	got, err := reader.ReadMessage(ctx)
	if err != nil {
		t.Fatalf("Failed to read tag: %v", err)
	}
	if string(got) != string(image) {
		t.Errorf("Image mismatch: expected %d bytes, got %d", len(image), len(got))
	}

	payload, err := tag.DecodePayload(got)
	if err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.MemberID != "alice-123" {
		t.Errorf("MemberID mismatch: expected alice-123, got %s", payload.MemberID)
	}

	t.Logf("Discovery successful - found %s at %s", host.Instance(), host.Addr())
}

// TestE2E_SimulatedFlow tests the scripted path end to end: a zero
// schedule runs scan, PIN entry, verification, and reveal without pauses.
func TestE2E_SimulatedFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cues := &cueRecorder{}
	cfg := scriptedConfig()
	cfg.Feedback = cues
	cfg.SimSharerID = "alice-123"

	o, err := verify.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}
	phases := recordPhases(o)

	if err := o.StartSimulation(ctx); err != nil {
		t.Fatalf("Failed to start simulation: %v", err)
	}
	waitPhase(t, o, verify.PhaseProfileRevealed)

	if o.FlowID() == "" {
		t.Error("Expected a flow ID after the run")
	}

	expected := []verify.Phase{
		verify.PhaseScanning,
		verify.PhaseTagDetected,
		verify.PhasePinEntry,
		verify.PhaseVerifying,
		verify.PhaseVerified,
		verify.PhaseProfileRevealed,
	}
	got := waitTransitions(t, phases, len(expected))
	if len(got) != len(expected) {
		t.Fatalf("Expected %d transitions, got %d: %v", len(expected), len(got), got)
	}
	for i, phase := range expected {
		if got[i] != phase {
			t.Errorf("Transition[%d]: expected %s, got %s", i, phase, got[i])
		}
	}

	profile := o.Profile()
	if profile == nil {
		t.Fatal("Expected a revealed profile")
	}
	if profile.MemberID != "alice-123" {
		t.Errorf("Profile member mismatch: expected alice-123, got %s", profile.MemberID)
	}
	if profile.Email == "" {
		t.Error("Expected a full profile with contact details")
	}
	if o.SessionID() != "" {
		t.Error("Session must be destroyed on reveal")
	}

	awaitCues(t, cues, []verify.FeedbackEvent{
		verify.FeedbackTagDetected,
		verify.FeedbackPinCorrect,
		verify.FeedbackReveal,
	})

	t.Logf("Simulated flow successful - revealed %s after %d transitions", profile.DisplayName, len(got))
}

// TestE2E_LiveTagScan tests the live path over loopback TCP: a hosted
// virtual tag is read through a real connection, then the derived PIN is
// entered manually to reach reveal.
func TestE2E_LiveTagScan(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := startTagHost(t, encodeMemberTag(t, "alice-123", "Alice"))
	reader := dialTagHost(t, host)

	cues := &cueRecorder{}
	cfg := scriptedConfig()
	cfg.Feedback = cues

	o, err := verify.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}

	if err := o.StartScan(ctx, reader); err != nil {
		t.Fatalf("Failed to start scan: %v", err)
	}
	waitPhase(t, o, verify.PhasePinEntry)

	if sharer := o.State().SharerID; sharer != "alice-123" {
		t.Errorf("Sharer mismatch: expected alice-123, got %s", sharer)
	}
	sessionID := o.SessionID()
	if sessionID == "" {
		t.Error("Expected an active session during PIN entry")
	}

	typePin(t, o, verify.DerivePin("alice-123", pin.DefaultLength))
	waitPhase(t, o, verify.PhaseProfileRevealed)

	profile := o.Profile()
	if profile == nil {
		t.Fatal("Expected a revealed profile")
	}
	if profile.MemberID != "alice-123" {
		t.Errorf("Profile member mismatch: expected alice-123, got %s", profile.MemberID)
	}
	if o.SessionID() != "" {
		t.Error("Session must be destroyed on reveal")
	}

	awaitCues(t, cues, []verify.FeedbackEvent{
		verify.FeedbackTagDetected,
		verify.FeedbackPinCorrect,
		verify.FeedbackReveal,
	})

	t.Logf("Live scan successful - session %s verified and destroyed", sessionID)
}

// TestE2E_ProvisionThenScan tests the write ceremony followed by a fresh
// scan: a blank tag is provisioned for a member, then a second reader
// verifies against the provisioned image.
func TestE2E_ProvisionThenScan(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The host starts blank.
	host := startTagHost(t, nil)

	// Provision pass: one write ceremony.
	writer := dialTagHost(t, host)
	session, err := tag.NewSession(writer, tag.SessionConfig{
		Mode: tag.ModeWrite,
		Payload: tag.Payload{
			MemberID:    "bob-456",
			DisplayName: "Bob",
		},
		AmbiguityRetryDelay: tag.DefaultAmbiguityRetryDelay,
	})
	if err != nil {
		t.Fatalf("Failed to create write session: %v", err)
	}

	outcome, err := session.Run(ctx)
	if err != nil {
		t.Fatalf("Write ceremony failed: %v", err)
	}
	if outcome.Code != tag.OutcomeSuccess {
		t.Fatalf("Expected write success, got %s (%v)", outcome.Code, outcome.Err)
	}

	provisioned, err := tag.DecodePayload(host.Payload())
	if err != nil {
		t.Fatalf("Failed to decode provisioned image: %v", err)
	}
	if provisioned.MemberID != "bob-456" {
		t.Errorf("Provisioned member mismatch: expected bob-456, got %s", provisioned.MemberID)
	}

	// Verification pass: fresh reader, full flow.
	o, err := verify.New(scriptedConfig())
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}

	if err := o.StartScan(ctx, dialTagHost(t, host)); err != nil {
		t.Fatalf("Failed to start scan: %v", err)
	}
	waitPhase(t, o, verify.PhasePinEntry)

	if sharer := o.State().SharerID; sharer != "bob-456" {
		t.Errorf("Sharer mismatch: expected bob-456, got %s", sharer)
	}

	typePin(t, o, verify.DerivePin("bob-456", pin.DefaultLength))
	waitPhase(t, o, verify.PhaseProfileRevealed)

	profile := o.Profile()
	if profile == nil {
		t.Fatal("Expected a revealed profile")
	}
	if profile.MemberID != "bob-456" {
		t.Errorf("Profile member mismatch: expected bob-456, got %s", profile.MemberID)
	}

	t.Logf("Provision and scan successful - tag written for %s and verified", provisioned.MemberID)
}

// TestE2E_BackendVerification tests the full stack against an HTTP
// verification service: tag read over loopback TCP, then PIN delivery,
// PIN check, and profile fetch over JSON round trips.
func TestE2E_BackendVerification(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// In-memory verification service.
	var pathsMu sync.Mutex
	var paths []string
	record := func(path string) {
		pathsMu.Lock()
		paths = append(paths, path)
		pathsMu.Unlock()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/verifications", func(w http.ResponseWriter, r *http.Request) {
		record(r.URL.Path)
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"sessionId": "sess-e2e-1",
			"sharerId":  req["sharerId"],
			"pinLength": 4,
			"expiresAt": time.Now().Add(5 * time.Minute).UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/v1/verifications/check", func(w http.ResponseWriter, r *http.Request) {
		record(r.URL.Path)
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req["sessionId"] != "sess-e2e-1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"verified": req["pin"] == "2468",
		})
	})
	mux.HandleFunc("/v1/profiles/fetch", func(w http.ResponseWriter, r *http.Request) {
		record(r.URL.Path)
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req["memberId"] != "alice-123" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"memberId":    "alice-123",
			"displayName": "Alice Chen",
			"headline":    "Embedded engineer",
			"email":       "alice@example.com",
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := backend.NewClient(backend.DefaultConfig(srv.URL))
	if err != nil {
		t.Fatalf("Failed to create service client: %v", err)
	}

	host := startTagHost(t, encodeMemberTag(t, "alice-123", "Alice"))
	reader := dialTagHost(t, host)

	o, err := verify.New(verify.Config{
		PinDelivery: client,
		Profiles:    client,
	})
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}

	if err := o.StartScan(ctx, reader); err != nil {
		t.Fatalf("Failed to start scan: %v", err)
	}
	waitPhase(t, o, verify.PhasePinEntry)

	if got := o.SessionID(); got != "sess-e2e-1" {
		t.Errorf("Session mismatch: expected sess-e2e-1, got %s", got)
	}

	typePin(t, o, "2468")
	waitPhase(t, o, verify.PhaseProfileRevealed)

	profile := o.Profile()
	if profile == nil {
		t.Fatal("Expected a revealed profile")
	}
	if profile.DisplayName != "Alice Chen" {
		t.Errorf("DisplayName mismatch: expected Alice Chen, got %s", profile.DisplayName)
	}
	if profile.Email != "alice@example.com" {
		t.Errorf("Email mismatch: got %s", profile.Email)
	}

	// The service must be hit in ceremony order.
	expectedPaths := []string{
		"/v1/verifications",
		"/v1/verifications/check",
		"/v1/profiles/fetch",
	}
	pathsMu.Lock()
	defer pathsMu.Unlock()
	if len(paths) != len(expectedPaths) {
		t.Fatalf("Expected %d service round trips, got %d: %v", len(expectedPaths), len(paths), paths)
	}
	for i, path := range expectedPaths {
		if paths[i] != path {
			t.Errorf("Round trip[%d]: expected %s, got %s", i, path, paths[i])
		}
	}

	t.Logf("Backend verification successful - %d service round trips in order", len(paths))
}

// TestE2E_FlowLogCapture tests that a complete flow leaves a readable
// event trail: every event carries the flow ID, collaborator round trips
// appear in ceremony order, and the state trail runs from scan to reveal.
func TestE2E_FlowLogCapture(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	path := filepath.Join(t.TempDir(), "flow.tlog")
	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("Failed to create file logger: %v", err)
	}

	cfg := scriptedConfig()
	cfg.Logger = logger

	o, err := verify.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create orchestrator: %v", err)
	}
	phases := recordPhases(o)

	if err := o.StartSimulation(ctx); err != nil {
		t.Fatalf("Failed to start simulation: %v", err)
	}
	waitPhase(t, o, verify.PhaseProfileRevealed)
	flowID := o.FlowID()

	// Each transition is logged before its callback fires, so six
	// recorded transitions mean the state trail is on disk.
	waitTransitions(t, phases, 6)

	if err := logger.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}

	// Every event must carry the flow ID.
	events := readAllEvents(t, path, log.Filter{})
	if len(events) == 0 {
		t.Fatal("Expected logged events")
	}
	for i, event := range events {
		if event.FlowID != flowID {
			t.Errorf("Event[%d]: expected flow %s, got %s", i, flowID, event.FlowID)
		}
		if event.Timestamp.IsZero() {
			t.Errorf("Event[%d]: expected a timestamp", i)
		}
	}

	// Collaborator round trips in ceremony order, all ok.
	collaborator := log.CategoryCollaborator
	trips := readAllEvents(t, path, log.Filter{Category: &collaborator})
	expectedOps := []log.CollaboratorOp{log.OpRequestPin, log.OpVerifyPin, log.OpFetchProfile}
	if len(trips) != len(expectedOps) {
		t.Fatalf("Expected %d collaborator events, got %d", len(expectedOps), len(trips))
	}
	for i, op := range expectedOps {
		if trips[i].Collaborator == nil {
			t.Fatalf("Collaborator event[%d] missing payload", i)
		}
		if trips[i].Collaborator.Op != op {
			t.Errorf("Collaborator[%d]: expected %s, got %s", i, op, trips[i].Collaborator.Op)
		}
		if trips[i].Collaborator.Status != "ok" {
			t.Errorf("Collaborator[%d]: expected ok, got %s", i, trips[i].Collaborator.Status)
		}
		if trips[i].Collaborator.Latency == nil {
			t.Errorf("Collaborator[%d]: expected a latency", i)
		}
	}

	// State trail from scan to reveal.
	state := log.CategoryState
	changes := readAllEvents(t, path, log.Filter{Category: &state})
	if len(changes) != 6 {
		t.Fatalf("Expected 6 state changes, got %d", len(changes))
	}
	first, last := changes[0].StateChange, changes[len(changes)-1].StateChange
	if first == nil || last == nil {
		t.Fatal("State events missing payload")
	}
	if first.OldState != "IDLE" || first.NewState != "SCANNING" {
		t.Errorf("First transition: expected IDLE -> SCANNING, got %s -> %s", first.OldState, first.NewState)
	}
	if last.NewState != "PROFILE_REVEALED" {
		t.Errorf("Last transition: expected PROFILE_REVEALED, got %s", last.NewState)
	}

	t.Logf("Flow log capture successful - %d events for flow %s", len(events), flowID)
}

// Helper functions

// noopAdvertiser keeps loopback hosts off the network.
type noopAdvertiser struct{}

func (noopAdvertiser) Advertise(instance string, port int, txt []string) error { return nil }
func (noopAdvertiser) Shutdown()                                              {}

// encodeMemberTag encodes a tag image for the given member.
func encodeMemberTag(t *testing.T, memberID, displayName string) []byte {
	t.Helper()
	data, err := tag.EncodePayload(tag.Payload{
		MemberID:    memberID,
		DisplayName: displayName,
	}, time.Now())
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}
	return data
}

// startTagHost starts a read-write virtual tag on loopback without
// announcing it.
func startTagHost(t *testing.T, image []byte) *virtualtag.Host {
	t.Helper()
	host, err := virtualtag.NewHost(virtualtag.HostConfig{
		Capability: tag.CapabilityReadWrite,
		Payload:    image,
		Advertiser: noopAdvertiser{},
	})
	if err != nil {
		t.Fatalf("Failed to create host: %v", err)
	}
	if err := host.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start host: %v", err)
	}
	t.Cleanup(host.Stop)
	return host
}

// dialTagHost connects a reader directly to the host, skipping discovery.
func dialTagHost(t *testing.T, host *virtualtag.Host) *virtualtag.Reader {
	t.Helper()
	reader, err := virtualtag.NewReader(virtualtag.ReaderConfig{Addr: host.Addr()})
	if err != nil {
		t.Fatalf("Failed to create reader: %v", err)
	}
	if err := reader.Connect(context.Background()); err != nil {
		t.Fatalf("Failed to connect reader: %v", err)
	}
	t.Cleanup(func() { reader.Close() })
	return reader
}

// scriptedConfig returns an orchestrator configuration with scripted
// collaborators and a zero schedule, so every step runs immediately.
func scriptedConfig() verify.Config {
	var schedule verify.Schedule
	return verify.Config{
		PinDelivery: verify.NewScriptedDelivery(schedule),
		Profiles:    verify.NewScriptedProfiles(schedule),
		Schedule:    schedule,
	}
}

// recordPhases registers a transition recorder and returns a snapshot
// function.
func recordPhases(o *verify.Orchestrator) func() []verify.Phase {
	var mu sync.Mutex
	var phases []verify.Phase
	o.OnStateChange(func(old, new verify.FlowState) {
		mu.Lock()
		phases = append(phases, new.Phase)
		mu.Unlock()
	})
	return func() []verify.Phase {
		mu.Lock()
		defer mu.Unlock()
		return append([]verify.Phase(nil), phases...)
	}
}

// cueRecorder collects feedback cues.
type cueRecorder struct {
	mu   sync.Mutex
	cues []verify.FeedbackEvent
}

func (c *cueRecorder) Signal(event verify.FeedbackEvent) {
	c.mu.Lock()
	c.cues = append(c.cues, event)
	c.mu.Unlock()
}

func (c *cueRecorder) Cues() []verify.FeedbackEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]verify.FeedbackEvent(nil), c.cues...)
}

// waitTransitions polls until the recorder holds at least n transitions,
// returning whatever was recorded. Callbacks land just after the state
// flips, so a fresh snapshot can trail the observed phase.
func waitTransitions(t *testing.T, snapshot func() []verify.Phase, n int) []verify.Phase {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		got := snapshot()
		if len(got) >= n || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// awaitCues waits for the expected cue sequence to be fully delivered.
func awaitCues(t *testing.T, recorder *cueRecorder, expected []verify.FeedbackEvent) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	got := recorder.Cues()
	for len(got) < len(expected) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		got = recorder.Cues()
	}
	if len(got) != len(expected) {
		t.Fatalf("Expected %d cues, got %d: %v", len(expected), len(got), got)
	}
	for i, cue := range expected {
		if got[i] != cue {
			t.Errorf("Cue[%d]: expected %s, got %s", i, cue, got[i])
		}
	}
}

// waitPhase polls until the flow reaches the phase. An error phase while
// waiting for anything else fails immediately with the reason.
func waitPhase(t *testing.T, o *verify.Orchestrator, want verify.Phase) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		state := o.State()
		if state.Phase == want {
			return
		}
		if state.Phase == verify.PhaseError && want != verify.PhaseError {
			t.Fatalf("Flow failed while waiting for %s: %s", want, state.Reason)
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for %s, still %s", want, state.Phase)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// typePin enters the PIN digit by digit.
func typePin(t *testing.T, o *verify.Orchestrator, digits string) {
	t.Helper()
	for _, d := range digits {
		if err := o.EnterDigit(d); err != nil {
			t.Fatalf("Failed to enter digit: %v", err)
		}
	}
}

// readAllEvents reads every matching event from a log file.
func readAllEvents(t *testing.T, path string, filter log.Filter) []log.Event {
	t.Helper()
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		if err != nil {
			t.Fatalf("Failed to read event: %v", err)
		}
		events = append(events, event)
	}
}
