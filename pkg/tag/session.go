package tag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
)

// Session drives one tag ceremony over a ReaderWriter.
// Sessions are single-use: create a new one for every ceremony.
type Session struct {
	cfg SessionConfig
	rw  ReaderWriter
	id  string

	mu          sync.Mutex
	state       SessionState
	started     bool
	onChange    func(old, new SessionState)
	onAmbiguity func()
}

// NewSession creates a session for the given hardware and configuration.
func NewSession(rw ReaderWriter, cfg SessionConfig) (*Session, error) {
	if rw == nil {
		return nil, fmt.Errorf("%w: reader required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:   cfg,
		rw:    rw,
		id:    uuid.NewString(),
		state: SessionIdle,
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange registers a callback invoked after every transition.
// The callback runs outside the session lock, in transition order.
func (s *Session) OnStateChange(fn func(old, new SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// OnAmbiguity registers a callback invoked when several tags confuse the
// field and the session restarts polling.
func (s *Session) OnAmbiguity(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAmbiguity = fn
}

// Run executes the ceremony once and returns its outcome. The hardware is
// always closed before Run returns. A second Run returns ErrAlreadyRun.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return Outcome{}, ErrAlreadyRun
	}
	s.started = true
	s.mu.Unlock()

	outcome := s.run(ctx)
	_ = s.rw.Close()
	s.setState(SessionFinished)
	s.logOutcome(outcome)
	return outcome, nil
}

// run walks the ceremony sequence. Every blocking step checks for
// cancellation; a cancelled step yields a Cancelled outcome, never a failure.
func (s *Session) run(ctx context.Context) Outcome {
	s.setState(SessionConnecting)
	for {
		if ctx.Err() != nil {
			return Outcome{Code: OutcomeCancelled, Err: ctx.Err()}
		}
		err := s.rw.Connect(ctx)
		if err == nil {
			break
		}
		switch {
		case s.cancelled(ctx, err):
			return Outcome{Code: OutcomeCancelled, Err: err}
		case errors.Is(err, ErrMultipleTags):
			s.announceAmbiguity()
			if !waitDelay(ctx, s.cfg.AmbiguityRetryDelay) {
				return Outcome{Code: OutcomeCancelled, Err: ctx.Err()}
			}
		case errors.Is(err, ErrNoTag):
			return s.fail(FailNotAvailable, err)
		default:
			return s.fail(FailConnection, err)
		}
	}

	s.setState(SessionQueryingCapability)
	capability, err := s.rw.Capability(ctx)
	if err != nil {
		if s.cancelled(ctx, err) {
			return Outcome{Code: OutcomeCancelled, Err: err}
		}
		return s.fail(FailCapabilityQuery, err)
	}
	if !capability.SupportsRead() {
		return s.fail(FailNotNDEF, nil)
	}
	if s.cfg.Mode == ModeWrite && !capability.SupportsWrite() {
		return s.fail(FailReadOnly, nil)
	}

	if s.cfg.Mode == ModeWrite {
		return s.write(ctx)
	}
	return s.read(ctx)
}

func (s *Session) read(ctx context.Context) Outcome {
	s.setState(SessionReading)
	raw, err := s.rw.ReadMessage(ctx)
	if err != nil {
		if s.cancelled(ctx, err) {
			return Outcome{Code: OutcomeCancelled, Err: err}
		}
		return s.fail(FailRead, err)
	}

	payload, err := DecodePayload(raw)
	switch {
	case errors.Is(err, ErrEmptyTag):
		return s.fail(FailEmptyTag, err)
	case err != nil:
		return s.fail(FailInvalidFormat, err)
	}

	s.log(log.Event{
		Category: log.CategoryTag,
		SharerID: payload.MemberID,
		Tag: &log.TagEvent{
			MemberID: payload.MemberID,
			HasName:  payload.DisplayName != "",
			Size:     len(raw),
		},
	})
	return Outcome{Code: OutcomeSuccess, Payload: payload}
}

func (s *Session) write(ctx context.Context) Outcome {
	s.setState(SessionWriting)
	raw, err := EncodePayload(s.cfg.Payload, time.Now())
	if err != nil {
		return s.fail(FailWrite, err)
	}
	if err := s.rw.WriteMessage(ctx, raw); err != nil {
		if s.cancelled(ctx, err) {
			return Outcome{Code: OutcomeCancelled, Err: err}
		}
		return s.fail(FailWrite, err)
	}

	s.log(log.Event{
		Category: log.CategoryTag,
		Tag:      &log.TagEvent{Size: len(raw), Write: true},
	})
	return Outcome{Code: OutcomeSuccess, Payload: s.cfg.Payload}
}

// cancelled reports whether err or the context reflects an abandoned ceremony.
func (s *Session) cancelled(ctx context.Context, err error) bool {
	return errors.Is(err, ErrUserCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}

func (s *Session) fail(reason FailReason, err error) Outcome {
	return Outcome{Code: OutcomeFailure, Fail: reason, Err: err}
}

func (s *Session) setState(newState SessionState) {
	s.mu.Lock()
	old := s.state
	if old == newState {
		s.mu.Unlock()
		return
	}
	s.state = newState
	fn := s.onChange
	s.mu.Unlock()

	s.log(log.Event{
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityTagSession,
			OldState: old.String(),
			NewState: newState.String(),
		},
	})
	if fn != nil {
		fn(old, newState)
	}
}

func (s *Session) announceAmbiguity() {
	s.mu.Lock()
	fn := s.onAmbiguity
	s.mu.Unlock()

	s.log(log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceTagSession,
			Message: ErrMultipleTags.Error(),
			Context: "connect",
		},
	})
	if fn != nil {
		fn()
	}
}

func (s *Session) logOutcome(outcome Outcome) {
	if outcome.Code != OutcomeFailure {
		return
	}
	message := outcome.Fail.String()
	if outcome.Err != nil {
		message = outcome.Err.Error()
	}
	s.log(log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceTagSession,
			Message: message,
			Context: outcome.Fail.String(),
		},
	})
}

// log stamps common fields and forwards the event to the configured logger.
func (s *Session) log(event log.Event) {
	if s.cfg.Logger == nil {
		return
	}
	event.Timestamp = time.Now()
	if event.FlowID == "" {
		event.FlowID = s.cfg.FlowID
	}
	event.Source = log.SourceTagSession
	s.cfg.Logger.Log(event)
}

// waitDelay waits d unless the context ends first. It reports whether the
// full delay elapsed.
func waitDelay(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
