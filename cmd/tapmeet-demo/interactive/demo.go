// Package interactive provides the interactive command-line interface
// for the TapMeet demo.
package interactive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/tag"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/verify"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/virtualtag"
)

// writeTimeout bounds a tag provisioning ceremony.
const writeTimeout = 10 * time.Second

// CueBuffer queues feedback cues for display without blocking the flow.
// Cues arriving while the buffer is full are dropped.
type CueBuffer struct {
	ch chan verify.FeedbackEvent
}

// NewCueBuffer creates a cue buffer.
func NewCueBuffer() *CueBuffer {
	return &CueBuffer{ch: make(chan verify.FeedbackEvent, 16)}
}

// Signal queues the cue. It never blocks.
func (b *CueBuffer) Signal(event verify.FeedbackEvent) {
	select {
	case b.ch <- event:
	default:
	}
}

// Events returns the channel queued cues arrive on.
func (b *CueBuffer) Events() <-chan verify.FeedbackEvent {
	return b.ch
}

// Compile-time interface satisfaction check.
var _ verify.Feedback = (*CueBuffer)(nil)

// Options configures the interactive demo.
type Options struct {
	// Cues is the feedback buffer wired into the orchestrator (optional).
	Cues *CueBuffer

	// Logger receives events from readers and hosted tags (optional).
	Logger log.Logger
}

// Demo handles interactive mode for tapmeet-demo.
type Demo struct {
	o    *verify.Orchestrator
	opts Options
	rl   *readline.Instance

	// Hosted virtual tag, nil while not hosting
	host *virtualtag.Host
}

// New creates a new interactive demo handler.
func New(o *verify.Orchestrator, opts Options) (*Demo, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tapmeet> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	d := &Demo{
		o:    o,
		opts: opts,
		rl:   rl,
	}

	// Show flow transitions above the prompt as they happen
	o.OnStateChange(d.handleStateChange)

	return d, nil
}

// Run starts the interactive command loop.
func (d *Demo) Run(ctx context.Context, cancel context.CancelFunc) {
	defer d.rl.Close()
	defer d.stopHost()

	if d.opts.Cues != nil {
		go d.drainCues(ctx)
	}

	d.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := d.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(d.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			d.printHelp()

		case "simulate", "sim":
			d.cmdSimulate(ctx)

		case "scan", "s":
			d.cmdScan(ctx)

		case "host":
			d.cmdHost(ctx, args)

		case "write", "w":
			d.cmdWrite(ctx, args)

		case "pin", "p":
			d.cmdPin(args)

		case "del":
			d.cmdDel()

		case "reset":
			d.cmdReset()

		case "state", "status":
			d.cmdState()

		case "profile":
			d.cmdProfile()

		case "quit", "exit", "q":
			fmt.Fprintln(d.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(d.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (d *Demo) printHelp() {
	fmt.Fprintln(d.rl.Stdout(), `
TapMeet Demo Commands:
  Verification Flow:
    simulate           - Run the scripted verification flow
    scan               - Scan the local network for a tag
    pin <digits>       - Enter the delivered PIN
    del                - Delete the last entered digit
    reset              - Abandon the flow and return to idle
    state              - Show the current flow state
    profile            - Show the revealed profile

  Virtual Tag:
    host <member-id> [name]  - Host a tag on the local network
    write <member-id> [name] - Provision a scanned tag with member data

  General:
    help               - Show this help
    exit               - Quit the demo

  Two-terminal walkthrough:
    Terminal A: host alice-123 Alice
    Terminal B: scan, then pin <digits> once the PIN arrives`)
}

// cmdSimulate starts the scripted flow.
func (d *Demo) cmdSimulate(ctx context.Context) {
	if err := d.o.StartSimulation(ctx); err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Cannot start simulation: %v\n", err)
		return
	}
	fmt.Fprintln(d.rl.Stdout(), "Simulation started")
}

// cmdScan starts a live scan with a fresh network reader.
func (d *Demo) cmdScan(ctx context.Context) {
	cfg := virtualtag.DefaultReaderConfig()
	cfg.Logger = d.opts.Logger
	reader, err := virtualtag.NewReader(cfg)
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Cannot create reader: %v\n", err)
		return
	}

	if err := d.o.StartScan(ctx, reader); err != nil {
		_ = reader.Close()
		fmt.Fprintf(d.rl.Stdout(), "Cannot start scan: %v\n", err)
		return
	}
	fmt.Fprintln(d.rl.Stdout(), "Scanning for tags...")
}

// cmdHost announces a virtual tag carrying the given member data.
func (d *Demo) cmdHost(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: host <member-id> [name]")
		fmt.Fprintln(d.rl.Stdout(), "  Example: host alice-123 Alice")
		return
	}

	image, err := tag.EncodePayload(tag.Payload{
		MemberID:    args[0],
		DisplayName: strings.Join(args[1:], " "),
	}, time.Now())
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Cannot encode tag data: %v\n", err)
		return
	}

	// Withdraw any previous tag before announcing the new one, so a
	// concurrent scan never sees both.
	d.stopHost()

	cfg := virtualtag.DefaultHostConfig()
	cfg.Payload = image
	cfg.Logger = d.opts.Logger
	host, err := virtualtag.NewHost(cfg)
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Cannot create host: %v\n", err)
		return
	}
	if err := host.Start(ctx); err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Failed to host tag: %v\n", err)
		return
	}

	d.host = host
	fmt.Fprintf(d.rl.Stdout(), "Hosting tag %s at %s\n", host.Instance(), host.Addr())
}

// cmdWrite provisions a discovered tag with member data.
func (d *Demo) cmdWrite(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: write <member-id> [name]")
		fmt.Fprintln(d.rl.Stdout(), "  Example: write alice-123 Alice")
		return
	}

	rcfg := virtualtag.DefaultReaderConfig()
	rcfg.Logger = d.opts.Logger
	reader, err := virtualtag.NewReader(rcfg)
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Cannot create reader: %v\n", err)
		return
	}

	session, err := tag.NewSession(reader, tag.SessionConfig{
		Mode: tag.ModeWrite,
		Payload: tag.Payload{
			MemberID:    args[0],
			DisplayName: strings.Join(args[1:], " "),
		},
		AmbiguityRetryDelay: tag.DefaultAmbiguityRetryDelay,
		Logger:              d.opts.Logger,
	})
	if err != nil {
		_ = reader.Close()
		fmt.Fprintf(d.rl.Stdout(), "Cannot create session: %v\n", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	fmt.Fprintln(d.rl.Stdout(), "Provisioning tag...")
	outcome, err := session.Run(writeCtx)
	if err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Write failed: %v\n", err)
		return
	}

	switch outcome.Code {
	case tag.OutcomeSuccess:
		fmt.Fprintf(d.rl.Stdout(), "Tag provisioned for %s\n", outcome.Payload.MemberID)
	case tag.OutcomeCancelled:
		fmt.Fprintln(d.rl.Stdout(), "Write cancelled")
	default:
		if outcome.Err != nil {
			fmt.Fprintf(d.rl.Stdout(), "Write failed: %s (%v)\n", outcome.Fail, outcome.Err)
		} else {
			fmt.Fprintf(d.rl.Stdout(), "Write failed: %s\n", outcome.Fail)
		}
	}
}

// cmdPin forwards PIN digits to the flow.
func (d *Demo) cmdPin(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(d.rl.Stdout(), "Usage: pin <digits>")
		return
	}

	for _, r := range args[0] {
		if err := d.o.EnterDigit(r); err != nil {
			fmt.Fprintf(d.rl.Stdout(), "Cannot enter PIN: %v\n", err)
			return
		}
	}

	entered, total := d.o.PinCount()
	if total > 0 && entered < total {
		fmt.Fprintf(d.rl.Stdout(), "PIN: %d of %d digits\n", entered, total)
	}
}

// cmdDel removes the last entered PIN digit.
func (d *Demo) cmdDel() {
	if err := d.o.DeleteDigit(); err != nil {
		fmt.Fprintf(d.rl.Stdout(), "Cannot delete digit: %v\n", err)
		return
	}
	entered, total := d.o.PinCount()
	fmt.Fprintf(d.rl.Stdout(), "PIN: %d of %d digits\n", entered, total)
}

// cmdReset abandons the flow.
func (d *Demo) cmdReset() {
	d.o.Reset()
	fmt.Fprintln(d.rl.Stdout(), "Flow reset")
}

// cmdState shows the current flow state.
func (d *Demo) cmdState() {
	st := d.o.State()

	fmt.Fprintln(d.rl.Stdout(), "\nFlow Status")
	fmt.Fprintln(d.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(d.rl.Stdout(), "  Phase:    %s\n", st.Phase)
	if st.SharerID != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Sharer:   %s\n", st.SharerID)
	}
	if st.Phase == verify.PhaseError {
		fmt.Fprintf(d.rl.Stdout(), "  Reason:   %s\n", st.Reason)
	}
	if flowID := d.o.FlowID(); flowID != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Flow:     %s\n", flowID)
	}
	if sessionID := d.o.SessionID(); sessionID != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Session:  %s\n", sessionID)
	}
	if st.Phase == verify.PhasePinEntry {
		entered, total := d.o.PinCount()
		fmt.Fprintf(d.rl.Stdout(), "  PIN:      %d of %d digits\n", entered, total)
	}
	if d.host != nil {
		fmt.Fprintf(d.rl.Stdout(), "  Hosting:  %s at %s\n", d.host.Instance(), d.host.Addr())
	}
	fmt.Fprintln(d.rl.Stdout())
}

// cmdProfile shows the revealed profile.
func (d *Demo) cmdProfile() {
	profile := d.o.Profile()
	if profile == nil {
		fmt.Fprintln(d.rl.Stdout(), "No profile revealed yet (complete a verification first)")
		return
	}

	fmt.Fprintln(d.rl.Stdout(), "\nRevealed Profile")
	fmt.Fprintln(d.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(d.rl.Stdout(), "  Member:   %s\n", profile.MemberID)
	fmt.Fprintf(d.rl.Stdout(), "  Name:     %s\n", profile.DisplayName)
	if profile.Headline != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Headline: %s\n", profile.Headline)
	}
	if profile.Company != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Company:  %s\n", profile.Company)
	}
	if profile.Email != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Email:    %s\n", profile.Email)
	}
	if profile.Phone != "" {
		fmt.Fprintf(d.rl.Stdout(), "  Phone:    %s\n", profile.Phone)
	}
	if len(profile.Links) > 0 {
		names := make([]string, 0, len(profile.Links))
		for name := range profile.Links {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(d.rl.Stdout(), "  Links:")
		for _, name := range names {
			fmt.Fprintf(d.rl.Stdout(), "    %s: %s\n", name, profile.Links[name])
		}
	}
	fmt.Fprintln(d.rl.Stdout())
}

// stopHost withdraws the hosted tag, if any.
func (d *Demo) stopHost() {
	if d.host == nil {
		return
	}
	d.host.Stop()
	d.host = nil
}

// handleStateChange displays flow transitions above the prompt.
func (d *Demo) handleStateChange(old, new verify.FlowState) {
	out := d.rl.Stdout()
	stamp := time.Now().Format("15:04:05")

	switch {
	case new.Phase == verify.PhaseError:
		fmt.Fprintf(out, "\n[%s] %s -> %s (%s)\n", stamp, old.Phase, new.Phase, new.Reason)
	case new.SharerID != "" && new.SharerID != old.SharerID:
		fmt.Fprintf(out, "\n[%s] %s -> %s (sharer %s)\n", stamp, old.Phase, new.Phase, new.SharerID)
	default:
		fmt.Fprintf(out, "\n[%s] %s -> %s\n", stamp, old.Phase, new.Phase)
	}

	switch new.Phase {
	case verify.PhasePinEntry:
		_, total := d.o.PinCount()
		fmt.Fprintf(out, "Enter the delivered %d-digit PIN with: pin <digits>\n", total)
	case verify.PhaseProfileRevealed:
		fmt.Fprintln(out, "Type 'profile' to view the revealed profile")
	}

	d.rl.Refresh()
}

// drainCues displays queued feedback cues above the prompt.
func (d *Demo) drainCues(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cue := <-d.opts.Cues.Events():
			fmt.Fprintf(d.rl.Stdout(), "\n[%s] Cue: %s\n", time.Now().Format("15:04:05"), cue)
			d.rl.Refresh()
		}
	}
}
