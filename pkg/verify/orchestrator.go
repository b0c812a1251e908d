package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/pin"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/tag"
)

// Config configures a verification orchestrator.
type Config struct {
	// PinDelivery requests and checks PINs (required).
	PinDelivery PinDelivery

	// Profiles fetches member profiles (required).
	Profiles ProfileFetch

	// Feedback receives haptic/UI cues (optional).
	Feedback Feedback

	// Logger receives flow events (optional).
	Logger log.Logger

	// Schedule paces the simulation path.
	Schedule Schedule

	// SimSharerID is the member the simulation path detects. Empty uses
	// DefaultSimSharerID.
	SimSharerID string

	// AmbiguityRetryDelay paces reconnects when several tags are present
	// during a live scan. Zero uses the tag package default.
	AmbiguityRetryDelay time.Duration
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.PinDelivery == nil {
		return fmt.Errorf("%w: PinDelivery is required", ErrInvalidConfig)
	}
	if c.Profiles == nil {
		return fmt.Errorf("%w: Profiles is required", ErrInvalidConfig)
	}
	if c.AmbiguityRetryDelay < 0 {
		return fmt.Errorf("%w: negative ambiguity retry delay", ErrInvalidConfig)
	}
	return c.Schedule.Validate()
}

// DefaultConfig returns a simulation-ready configuration: scripted
// collaborators paced by the default schedule.
func DefaultConfig() Config {
	schedule := DefaultSchedule()
	return Config{
		PinDelivery: NewScriptedDelivery(schedule),
		Profiles:    NewScriptedProfiles(schedule),
		Feedback:    NoopFeedback{},
		Schedule:    schedule,
		SimSharerID: DefaultSimSharerID,
	}
}

// Orchestrator drives the verification flow from scan to reveal. One
// orchestrator serves one flow at a time; Reset returns it to Idle from
// any state and a new flow may then begin.
//
// All methods are safe for concurrent use.
type Orchestrator struct {
	cfg Config

	mu        sync.Mutex
	state     FlowState
	epoch     uint64
	flowID    string
	runCtx    context.Context
	cancel    context.CancelFunc
	session   *Session
	tracker   *pin.Tracker
	profile   *Profile
	submitted bool
	onChange  func(old, new FlowState)
}

// New creates an orchestrator in the Idle phase.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Feedback == nil {
		cfg.Feedback = NoopFeedback{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	return &Orchestrator{
		cfg:   cfg,
		state: FlowState{Phase: PhaseIdle},
	}, nil
}

// State returns a snapshot of the current flow state.
func (o *Orchestrator) State() FlowState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// FlowID identifies the current flow attempt for log correlation. Empty
// before the first flow starts.
func (o *Orchestrator) FlowID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flowID
}

// Profile returns the revealed profile, or nil before reveal.
func (o *Orchestrator) Profile() *Profile {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.profile
}

// SessionID returns the active verification session's ID. It is empty
// exactly when the flow is outside PinEntry, Verifying, and Verified.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return ""
	}
	return o.session.ID
}

// PinDigits returns the digits entered so far.
func (o *Orchestrator) PinDigits() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tracker == nil {
		return ""
	}
	return o.tracker.String()
}

// PinCount returns how many digits are entered and how many the PIN has.
func (o *Orchestrator) PinCount() (entered, total int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.tracker == nil {
		return 0, 0
	}
	return o.tracker.Count(), o.tracker.Len()
}

// OnStateChange registers a callback invoked after every transition.
// The callback runs outside the orchestrator lock.
func (o *Orchestrator) OnStateChange(fn func(old, new FlowState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = fn
}

// StartScan begins the live path: one read ceremony on rw, then PIN
// delivery. The flow advances asynchronously; watch OnStateChange.
// Returns ErrBusy unless the flow is Idle.
func (o *Orchestrator) StartScan(ctx context.Context, rw tag.ReaderWriter) error {
	if rw == nil {
		return fmt.Errorf("%w: reader is required", ErrInvalidConfig)
	}
	epoch, runCtx, err := o.begin(ctx)
	if err != nil {
		return err
	}
	go o.runScan(epoch, runCtx, rw)
	return nil
}

// StartSimulation begins the scripted path: the simulated sharer's tag is
// detected after the scheduled delay, the derived PIN is typed digit by
// digit, and the flow proceeds through verification to reveal. Runs with
// the same schedule replay the same transition sequence. Returns ErrBusy
// unless the flow is Idle.
func (o *Orchestrator) StartSimulation(ctx context.Context) error {
	epoch, runCtx, err := o.begin(ctx)
	if err != nil {
		return err
	}
	go o.runSimulation(epoch, runCtx)
	return nil
}

// EnterDigit appends one digit during PIN entry. Non-digit runes and
// appends beyond the PIN length are ignored. Filling the last slot starts
// verification automatically, exactly once. Returns ErrNotAccepting
// outside the PIN entry phase.
func (o *Orchestrator) EnterDigit(d rune) error {
	o.mu.Lock()
	if o.state.Phase != PhasePinEntry || o.tracker == nil {
		o.mu.Unlock()
		return ErrNotAccepting
	}
	if !o.tracker.Append(d) {
		o.mu.Unlock()
		return nil
	}

	var (
		submit  bool
		epoch   uint64
		runCtx  context.Context
		session *Session
		entered string
	)
	if o.tracker.Complete() && !o.submitted {
		o.submitted = true
		submit = true
		epoch = o.epoch
		runCtx = o.runCtx
		session = o.session
		entered = o.tracker.String()
	}
	o.mu.Unlock()

	if submit {
		go o.runVerify(epoch, runCtx, session, entered)
	}
	return nil
}

// DeleteDigit clears the most recent digit during PIN entry. Returns
// ErrNotAccepting outside the PIN entry phase.
func (o *Orchestrator) DeleteDigit() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Phase != PhasePinEntry || o.tracker == nil {
		return ErrNotAccepting
	}
	o.tracker.RemoveLast()
	return nil
}

// Reset abandons the flow from any state and returns to Idle. In-flight
// work is cancelled; results that straggle in afterwards are discarded
// without transitions or feedback. Reset is always allowed.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.epoch++
	cancel := o.cancel
	o.cancel = nil
	o.runCtx = nil
	o.session = nil
	o.profile = nil
	o.submitted = false
	if o.tracker != nil {
		o.tracker.Clear()
	}
	old := o.state
	if old.Phase == PhaseIdle {
		o.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return
	}
	o.state = FlowState{Phase: PhaseIdle}
	fn := o.onChange
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.logStateChange(old, FlowState{Phase: PhaseIdle})
	if fn != nil {
		fn(old, FlowState{Phase: PhaseIdle})
	}
}

// begin moves Idle to Scanning and arms a new flow epoch. The returned
// context ends when the flow is reset.
func (o *Orchestrator) begin(ctx context.Context) (uint64, context.Context, error) {
	o.mu.Lock()
	if o.state.Phase != PhaseIdle {
		o.mu.Unlock()
		return 0, nil, ErrBusy
	}
	o.epoch++
	epoch := o.epoch
	o.flowID = uuid.NewString()
	runCtx, cancel := context.WithCancel(ctx)
	o.runCtx = runCtx
	o.cancel = cancel
	o.session = nil
	o.profile = nil
	o.submitted = false
	o.tracker = nil
	old := o.state
	next := FlowState{Phase: PhaseScanning}
	o.state = next
	fn := o.onChange
	o.mu.Unlock()

	o.logStateChange(old, next)
	if fn != nil {
		fn(old, next)
	}
	return epoch, runCtx, nil
}

// apply replaces the flow state if the epoch is still current and the
// move is legal. mutate, when given, runs under the lock for session and
// profile bookkeeping. Reports whether the transition happened.
func (o *Orchestrator) apply(epoch uint64, next FlowState, mutate func()) bool {
	o.mu.Lock()
	if o.epoch != epoch || !canTransition(o.state.Phase, next.Phase) {
		o.mu.Unlock()
		return false
	}
	old := o.state
	o.state = next
	if mutate != nil {
		mutate()
	}
	if !phaseHoldsSession(next.Phase) {
		o.session = nil
	}
	if next.Phase == PhaseError || next.Phase == PhaseIdle {
		if o.tracker != nil {
			o.tracker.Clear()
		}
	}
	fn := o.onChange
	o.mu.Unlock()

	o.logStateChange(old, next)
	if fn != nil {
		fn(old, next)
	}
	return true
}

// fail moves the flow to Error with a reason. Reports whether applied.
func (o *Orchestrator) fail(epoch uint64, sharerID string, reason Reason, err error) bool {
	next := FlowState{Phase: PhaseError, SharerID: sharerID, Reason: reason}
	if !o.apply(epoch, next, nil) {
		return false
	}
	o.logError(reason, err)
	return true
}

// runScan drives the live path through one tag ceremony.
func (o *Orchestrator) runScan(epoch uint64, ctx context.Context, rw tag.ReaderWriter) {
	cfg := tag.DefaultSessionConfig()
	if o.cfg.AmbiguityRetryDelay > 0 {
		cfg.AmbiguityRetryDelay = o.cfg.AmbiguityRetryDelay
	}
	cfg.FlowID = o.FlowID()
	cfg.Logger = o.cfg.Logger

	session, err := tag.NewSession(rw, cfg)
	if err != nil {
		o.fail(epoch, "", ReasonTagConnection, err)
		return
	}
	session.OnAmbiguity(func() {
		o.signal(FeedbackScanAmbiguous)
	})

	outcome, err := session.Run(ctx)
	if err != nil {
		o.fail(epoch, "", ReasonTagConnection, err)
		return
	}

	switch outcome.Code {
	case tag.OutcomeCancelled:
		// Walking away from a scan is not an error.
		if o.apply(epoch, FlowState{Phase: PhaseIdle}, nil) {
			o.signal(FeedbackScanCancelled)
		}
		return
	case tag.OutcomeFailure:
		o.fail(epoch, outcome.Payload.MemberID, reasonForTagFailure(outcome.Fail), outcome.Err)
		return
	}

	sharerID := outcome.Payload.MemberID
	if !o.apply(epoch, FlowState{Phase: PhaseTagDetected, SharerID: sharerID}, nil) {
		return
	}
	o.signal(FeedbackTagDetected)
	o.openPinEntry(epoch, ctx, sharerID)
}

// runSimulation drives the scripted path. The schedule paces tag
// detection and digit entry here; the scripted collaborators pace their
// own round trips from the same schedule.
func (o *Orchestrator) runSimulation(epoch uint64, ctx context.Context) {
	if waitStep(ctx, o.cfg.Schedule.ScanDelay) != nil {
		return
	}

	sharerID := o.cfg.SimSharerID
	if sharerID == "" {
		sharerID = DefaultSimSharerID
	}
	if !o.apply(epoch, FlowState{Phase: PhaseTagDetected, SharerID: sharerID}, nil) {
		return
	}
	o.signal(FeedbackTagDetected)

	if !o.openPinEntry(epoch, ctx, sharerID) {
		return
	}

	o.mu.Lock()
	session := o.session
	o.mu.Unlock()
	if session == nil {
		return
	}
	digits := session.Pin
	if digits == "" {
		// A live delivery plugged into the simulation cannot echo its
		// PIN; fall back to the scripted derivation.
		digits = DerivePin(sharerID, session.PinLength)
	}

	for _, d := range digits {
		if waitStep(ctx, o.cfg.Schedule.DigitInterval) != nil {
			return
		}
		if err := o.EnterDigit(d); err != nil {
			return
		}
	}
	// The final digit auto-submits; verification and reveal pace
	// themselves through the collaborators.
}

// openPinEntry requests PIN delivery and opens the PIN entry phase.
// Reports whether the flow reached PIN entry.
func (o *Orchestrator) openPinEntry(epoch uint64, ctx context.Context, sharerID string) bool {
	start := time.Now()
	session, err := o.cfg.PinDelivery.RequestPin(ctx, sharerID)
	latency := time.Since(start)
	if err != nil {
		o.logCollaborator(log.OpRequestPin, "error", latency, "")
		if ctx.Err() != nil {
			return false
		}
		o.fail(epoch, sharerID, ReasonNetwork, err)
		return false
	}
	o.logCollaborator(log.OpRequestPin, "ok", latency, session.ID)

	return o.apply(epoch, FlowState{Phase: PhasePinEntry, SharerID: sharerID}, func() {
		o.session = session
		o.tracker = pin.NewTracker(session.PinLength)
	})
}

// runVerify checks the completed PIN and, on success, fetches and
// reveals the full profile.
func (o *Orchestrator) runVerify(epoch uint64, ctx context.Context, session *Session, entered string) {
	if !o.apply(epoch, FlowState{Phase: PhaseVerifying, SharerID: session.SharerID}, nil) {
		return
	}

	// Local expiry gate: an expired session never reaches the network.
	if session.Expired(time.Now()) {
		if o.fail(epoch, session.SharerID, ReasonPinExpired, nil) {
			o.signal(FeedbackPinIncorrect)
		}
		return
	}

	start := time.Now()
	ok, err := o.cfg.PinDelivery.VerifyPin(ctx, session.ID, entered)
	latency := time.Since(start)
	if err != nil {
		o.logCollaborator(log.OpVerifyPin, "error", latency, session.ID)
		if ctx.Err() != nil {
			return
		}
		o.fail(epoch, session.SharerID, ReasonNetwork, err)
		return
	}
	o.logCollaborator(log.OpVerifyPin, "ok", latency, session.ID)

	if !ok {
		if o.fail(epoch, session.SharerID, ReasonPinIncorrect, nil) {
			o.signal(FeedbackPinIncorrect)
		}
		return
	}

	if !o.apply(epoch, FlowState{Phase: PhaseVerified, SharerID: session.SharerID}, nil) {
		return
	}
	o.signal(FeedbackPinCorrect)

	start = time.Now()
	profile, err := o.cfg.Profiles.FetchProfile(ctx, ProfileRequest{
		MemberID:  session.SharerID,
		Level:     LevelFull,
		SessionID: session.ID,
	})
	latency = time.Since(start)
	if err != nil {
		o.logCollaborator(log.OpFetchProfile, "error", latency, session.ID)
		if ctx.Err() != nil {
			return
		}
		o.fail(epoch, session.SharerID, ReasonNetwork, err)
		return
	}
	o.logCollaborator(log.OpFetchProfile, "ok", latency, session.ID)

	revealed := o.apply(epoch, FlowState{Phase: PhaseProfileRevealed, SharerID: session.SharerID}, func() {
		o.profile = profile
	})
	if revealed {
		o.signal(FeedbackReveal)
	}
}

// signal sends a feedback cue and logs it.
func (o *Orchestrator) signal(event FeedbackEvent) {
	o.cfg.Feedback.Signal(event)
	o.logEvent(log.Event{
		Category: log.CategoryFeedback,
		Feedback: &log.FeedbackEventData{Name: event.String()},
	})
}

// logEvent stamps flow correlation fields and hands the event to the
// configured logger.
func (o *Orchestrator) logEvent(event log.Event) {
	o.mu.Lock()
	flowID := o.flowID
	var sessionID string
	if o.session != nil {
		sessionID = o.session.ID
	}
	o.mu.Unlock()

	event.Timestamp = time.Now()
	event.FlowID = flowID
	if event.SessionID == "" {
		event.SessionID = sessionID
	}
	o.cfg.Logger.Log(event)
}

func (o *Orchestrator) logStateChange(old, next FlowState) {
	change := &log.StateChangeEvent{
		Entity:   log.StateEntityFlow,
		OldState: old.Phase.String(),
		NewState: next.Phase.String(),
	}
	if next.Phase == PhaseError {
		change.Reason = next.Reason.String()
	}
	o.logEvent(log.Event{
		Source:      log.SourceFlow,
		Category:    log.CategoryState,
		SharerID:    next.SharerID,
		StateChange: change,
	})
}

func (o *Orchestrator) logCollaborator(op log.CollaboratorOp, status string, latency time.Duration, sessionID string) {
	o.logEvent(log.Event{
		Source:    log.SourceCollaborator,
		Category:  log.CategoryCollaborator,
		SessionID: sessionID,
		Collaborator: &log.CollaboratorEvent{
			Op:      op,
			Status:  status,
			Latency: &latency,
		},
	})
}

func (o *Orchestrator) logError(reason Reason, err error) {
	message := reason.String()
	if err != nil {
		message = err.Error()
	}
	o.logEvent(log.Event{
		Source:   log.SourceFlow,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceFlow,
			Message: message,
			Context: reason.String(),
		},
	})
}
