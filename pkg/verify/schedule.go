package verify

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Schedule fixes the timeline of a scripted verification run. The
// orchestrator paces its own steps from it and the scripted collaborators
// take their round-trip latencies from the same values, so two runs with
// the same schedule replay the same sequence. A zero schedule runs every
// step immediately.
type Schedule struct {
	// ScanDelay is how long scanning takes to detect the simulated tag.
	ScanDelay time.Duration

	// SessionDelay is the scripted PIN-delivery round trip.
	SessionDelay time.Duration

	// DigitInterval staggers the scripted digit entries.
	DigitInterval time.Duration

	// SettleDelay is the pause between the last digit and the PIN check.
	SettleDelay time.Duration

	// VerifyHold is the scripted PIN-check round trip.
	VerifyHold time.Duration

	// RevealDelay is the scripted profile-fetch round trip.
	RevealDelay time.Duration
}

// DefaultSchedule returns the standard demo timeline.
func DefaultSchedule() Schedule {
	return Schedule{
		ScanDelay:     800 * time.Millisecond,
		SessionDelay:  500 * time.Millisecond,
		DigitInterval: 400 * time.Millisecond,
		SettleDelay:   300 * time.Millisecond,
		VerifyHold:    1200 * time.Millisecond,
		RevealDelay:   500 * time.Millisecond,
	}
}

// Validate returns an error if the schedule is invalid.
func (s *Schedule) Validate() error {
	steps := []time.Duration{
		s.ScanDelay,
		s.SessionDelay,
		s.DigitInterval,
		s.SettleDelay,
		s.VerifyHold,
		s.RevealDelay,
	}
	for _, d := range steps {
		if d < 0 {
			return fmt.Errorf("%w: negative schedule step", ErrInvalidConfig)
		}
	}
	return nil
}

// scheduleFile is the YAML form of a schedule. Steps are duration
// strings ("800ms", "1.2s"); absent steps keep their defaults.
type scheduleFile struct {
	ScanDelay     string `yaml:"scanDelay"`
	SessionDelay  string `yaml:"sessionDelay"`
	DigitInterval string `yaml:"digitInterval"`
	SettleDelay   string `yaml:"settleDelay"`
	VerifyHold    string `yaml:"verifyHold"`
	RevealDelay   string `yaml:"revealDelay"`
}

// ParseSchedule reads a YAML schedule, filling absent steps from the
// default timeline.
func ParseSchedule(data []byte) (Schedule, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Schedule{}, fmt.Errorf("parse schedule: %w", err)
	}

	s := DefaultSchedule()
	steps := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"scanDelay", file.ScanDelay, &s.ScanDelay},
		{"sessionDelay", file.SessionDelay, &s.SessionDelay},
		{"digitInterval", file.DigitInterval, &s.DigitInterval},
		{"settleDelay", file.SettleDelay, &s.SettleDelay},
		{"verifyHold", file.VerifyHold, &s.VerifyHold},
		{"revealDelay", file.RevealDelay, &s.RevealDelay},
	}
	for _, step := range steps {
		if step.raw == "" {
			continue
		}
		d, err := time.ParseDuration(step.raw)
		if err != nil {
			return Schedule{}, fmt.Errorf("parse schedule %s: %w", step.name, err)
		}
		*step.dst = d
	}

	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// LoadSchedule reads a YAML schedule from a file.
func LoadSchedule(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("load schedule: %w", err)
	}
	return ParseSchedule(data)
}

// waitStep sleeps one schedule step, returning early with the context
// error if the flow is cancelled. A non-positive step only polls the
// context, so zero schedules stay cancellable.
func waitStep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
