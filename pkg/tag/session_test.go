package tag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/ndef"
)

// fakeReader is a scriptable ReaderWriter for session tests.
type fakeReader struct {
	mu           sync.Mutex
	connectErrs  []error // consumed one per Connect call; exhausted = success
	capability   Capability
	capErr       error
	readData     []byte
	readErr      error
	writeErr     error
	written      [][]byte
	connectCalls int
	closeCalls   int
	blockConnect bool // Connect blocks until the context ends
}

func (f *fakeReader) Connect(ctx context.Context) error {
	f.mu.Lock()
	f.connectCalls++
	var err error
	if len(f.connectErrs) > 0 {
		err = f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
	}
	block := f.blockConnect
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakeReader) Capability(context.Context) (Capability, error) {
	return f.capability, f.capErr
}

func (f *fakeReader) ReadMessage(context.Context) ([]byte, error) {
	return f.readData, f.readErr
}

func (f *fakeReader) WriteMessage(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, data)
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeReader) closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

type transition struct {
	from SessionState
	to   SessionState
}

func newTestSession(t *testing.T, rw ReaderWriter, cfg SessionConfig) (*Session, *[]transition) {
	t.Helper()
	sess, err := NewSession(rw, cfg)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	seq := &[]transition{}
	sess.OnStateChange(func(old, new SessionState) {
		*seq = append(*seq, transition{old, new})
	})
	return sess, seq
}

func checkTransitions(t *testing.T, got []transition, want []transition) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d transitions %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d = %v -> %v, want %v -> %v",
				i, got[i].from, got[i].to, want[i].from, want[i].to)
		}
	}
}

func TestSessionReadSuccess(t *testing.T) {
	raw, err := EncodePayload(Payload{MemberID: "m-77", DisplayName: "Dana"}, time.Now())
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	fake := &fakeReader{capability: CapabilityReadWrite, readData: raw}
	sess, seq := newTestSession(t, fake, DefaultSessionConfig())

	outcome, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.Code != OutcomeSuccess {
		t.Fatalf("Code = %v (%v), want SUCCESS", outcome.Code, outcome.Err)
	}
	if outcome.Payload.MemberID != "m-77" || outcome.Payload.DisplayName != "Dana" {
		t.Errorf("Payload = %+v", outcome.Payload)
	}
	if fake.closed() != 1 {
		t.Errorf("Close called %d times, want 1", fake.closed())
	}
	if got := sess.State(); got != SessionFinished {
		t.Errorf("State() = %v, want FINISHED", got)
	}

	checkTransitions(t, *seq, []transition{
		{SessionIdle, SessionConnecting},
		{SessionConnecting, SessionQueryingCapability},
		{SessionQueryingCapability, SessionReading},
		{SessionReading, SessionFinished},
	})
}

func TestSessionWriteSuccess(t *testing.T) {
	fake := &fakeReader{capability: CapabilityReadWrite}
	cfg := DefaultSessionConfig()
	cfg.Mode = ModeWrite
	cfg.Payload = Payload{MemberID: "m-5", DisplayName: "Sam"}
	sess, seq := newTestSession(t, fake, cfg)

	outcome, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Code != OutcomeSuccess {
		t.Fatalf("Code = %v (%v), want SUCCESS", outcome.Code, outcome.Err)
	}

	if len(fake.written) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(fake.written))
	}
	readBack, err := DecodePayload(fake.written[0])
	if err != nil {
		t.Fatalf("written bytes do not decode: %v", err)
	}
	if readBack != cfg.Payload {
		t.Errorf("written payload = %+v, want %+v", readBack, cfg.Payload)
	}

	checkTransitions(t, *seq, []transition{
		{SessionIdle, SessionConnecting},
		{SessionConnecting, SessionQueryingCapability},
		{SessionQueryingCapability, SessionWriting},
		{SessionWriting, SessionFinished},
	})
}

func TestSessionFailures(t *testing.T) {
	_, err := EncodePayload(Payload{MemberID: "m-1"}, time.Now())
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	textOnly := mustEncodeTextOnly(t)

	tests := []struct {
		name string
		fake *fakeReader
		mode Mode
		want FailReason
	}{
		{"no tag", &fakeReader{connectErrs: []error{ErrNoTag}}, ModeRead, FailNotAvailable},
		{"connect error", &fakeReader{connectErrs: []error{errors.New("antenna fault")}}, ModeRead, FailConnection},
		{"capability error", &fakeReader{capErr: errors.New("query refused")}, ModeRead, FailCapabilityQuery},
		{"not ndef", &fakeReader{capability: CapabilityNone}, ModeRead, FailNotNDEF},
		{"write to read-only", &fakeReader{capability: CapabilityReadOnly}, ModeWrite, FailReadOnly},
		{"read error", &fakeReader{capability: CapabilityReadOnly, readErr: errors.New("tag lost")}, ModeRead, FailRead},
		{"empty tag", &fakeReader{capability: CapabilityReadOnly, readData: []byte{}}, ModeRead, FailEmptyTag},
		{"invalid format", &fakeReader{capability: CapabilityReadOnly, readData: textOnly}, ModeRead, FailInvalidFormat},
		{"write error", &fakeReader{capability: CapabilityReadWrite, writeErr: errors.New("tag lost")}, ModeWrite, FailWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSessionConfig()
			cfg.Mode = tt.mode
			if tt.mode == ModeWrite {
				cfg.Payload = Payload{MemberID: "m-1"}
			}
			sess, _ := newTestSession(t, tt.fake, cfg)

			outcome, err := sess.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if outcome.Code != OutcomeFailure {
				t.Fatalf("Code = %v, want FAILURE", outcome.Code)
			}
			if outcome.Fail != tt.want {
				t.Errorf("Fail = %v, want %v", outcome.Fail, tt.want)
			}
			if tt.fake.closed() != 1 {
				t.Errorf("Close called %d times, want 1", tt.fake.closed())
			}
		})
	}
}

func TestSessionReadOnlyTagSkipsWrite(t *testing.T) {
	fake := &fakeReader{capability: CapabilityReadOnly}
	cfg := DefaultSessionConfig()
	cfg.Mode = ModeWrite
	cfg.Payload = Payload{MemberID: "m-1"}
	sess, seq := newTestSession(t, fake, cfg)

	outcome, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Fail != FailReadOnly {
		t.Fatalf("Fail = %v, want READ_ONLY_TAG", outcome.Fail)
	}
	if len(fake.written) != 0 {
		t.Error("session attempted a write on a read-only tag")
	}
	for _, tr := range *seq {
		if tr.to == SessionWriting {
			t.Error("session entered WRITING on a read-only tag")
		}
	}
}

func TestSessionUserCancelled(t *testing.T) {
	fake := &fakeReader{connectErrs: []error{ErrUserCancelled}}
	sess, _ := newTestSession(t, fake, DefaultSessionConfig())

	outcome, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Code != OutcomeCancelled {
		t.Errorf("Code = %v, want CANCELLED", outcome.Code)
	}
	if outcome.Fail != FailNone {
		t.Errorf("Fail = %v, want NONE (cancellation is not a failure)", outcome.Fail)
	}
}

func TestSessionContextCancelDuringConnect(t *testing.T) {
	fake := &fakeReader{blockConnect: true}
	sess, err := NewSession(fake, DefaultSessionConfig())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Outcome, 1)
	go func() {
		outcome, _ := sess.Run(ctx)
		done <- outcome
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case outcome := <-done:
		if outcome.Code != OutcomeCancelled {
			t.Errorf("Code = %v, want CANCELLED", outcome.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish after cancellation")
	}
	if fake.closed() != 1 {
		t.Errorf("Close called %d times, want 1", fake.closed())
	}
}

func TestSessionPreCancelledContext(t *testing.T) {
	fake := &fakeReader{}
	sess, _ := newTestSession(t, fake, DefaultSessionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := sess.Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Code != OutcomeCancelled {
		t.Errorf("Code = %v, want CANCELLED", outcome.Code)
	}
	if fake.connectCalls != 0 {
		t.Errorf("Connect called %d times on a dead context, want 0", fake.connectCalls)
	}
}

func TestSessionMultipleTagsRetries(t *testing.T) {
	raw, err := EncodePayload(Payload{MemberID: "m-3"}, time.Now())
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	fake := &fakeReader{
		connectErrs: []error{ErrMultipleTags, ErrMultipleTags},
		capability:  CapabilityReadOnly,
		readData:    raw,
	}
	cfg := DefaultSessionConfig()
	cfg.AmbiguityRetryDelay = time.Millisecond
	sess, _ := newTestSession(t, fake, cfg)

	ambiguities := 0
	sess.OnAmbiguity(func() { ambiguities++ })

	outcome, err := sess.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Code != OutcomeSuccess {
		t.Fatalf("Code = %v (%v), want SUCCESS", outcome.Code, outcome.Err)
	}
	if ambiguities != 2 {
		t.Errorf("ambiguity announced %d times, want 2", ambiguities)
	}
	if fake.connectCalls != 3 {
		t.Errorf("Connect called %d times, want 3", fake.connectCalls)
	}
}

func TestSessionRunTwice(t *testing.T) {
	fake := &fakeReader{capability: CapabilityReadOnly, readData: mustEncodeMember(t, "m-1")}
	sess, _ := newTestSession(t, fake, DefaultSessionConfig())

	if _, err := sess.Run(context.Background()); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if _, err := sess.Run(context.Background()); !errors.Is(err, ErrAlreadyRun) {
		t.Errorf("second Run error = %v, want ErrAlreadyRun", err)
	}
}

func TestNewSessionValidation(t *testing.T) {
	if _, err := NewSession(nil, DefaultSessionConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil reader error = %v, want ErrInvalidConfig", err)
	}

	tests := []struct {
		name string
		cfg  SessionConfig
	}{
		{"write without member", SessionConfig{Mode: ModeWrite}},
		{"negative retry delay", SessionConfig{Mode: ModeRead, AmbiguityRetryDelay: -time.Second}},
		{"unknown mode", SessionConfig{Mode: Mode(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSession(&fakeReader{}, tt.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("NewSession error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func mustEncodeMember(t *testing.T, memberID string) []byte {
	t.Helper()
	raw, err := EncodePayload(Payload{MemberID: memberID}, time.Now())
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}
	return raw
}

// mustEncodeTextOnly builds a message that parses as NDEF but carries no
// member identifier.
func mustEncodeTextOnly(t *testing.T) []byte {
	t.Helper()
	rec, err := ndef.NewTextRecord("just a name", "en")
	if err != nil {
		t.Fatalf("NewTextRecord failed: %v", err)
	}
	return mustEncode(t, ndef.Message{Records: []ndef.Record{rec}})
}
