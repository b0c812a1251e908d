package verify

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultScheduleValid(t *testing.T) {
	s := DefaultSchedule()
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if s.ScanDelay != 800*time.Millisecond {
		t.Errorf("ScanDelay = %v, want 800ms", s.ScanDelay)
	}
	if s.VerifyHold != 1200*time.Millisecond {
		t.Errorf("VerifyHold = %v, want 1.2s", s.VerifyHold)
	}
}

func TestScheduleValidateNegative(t *testing.T) {
	s := DefaultSchedule()
	s.DigitInterval = -time.Millisecond
	if err := s.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Validate = %v, want ErrInvalidConfig", err)
	}
}

func TestParseSchedule(t *testing.T) {
	data := []byte("scanDelay: 10ms\nverifyHold: 2s\n")
	s, err := ParseSchedule(data)
	if err != nil {
		t.Fatalf("ParseSchedule failed: %v", err)
	}
	if s.ScanDelay != 10*time.Millisecond {
		t.Errorf("ScanDelay = %v, want 10ms", s.ScanDelay)
	}
	if s.VerifyHold != 2*time.Second {
		t.Errorf("VerifyHold = %v, want 2s", s.VerifyHold)
	}
	// Absent steps keep their defaults.
	def := DefaultSchedule()
	if s.SessionDelay != def.SessionDelay {
		t.Errorf("SessionDelay = %v, want default %v", s.SessionDelay, def.SessionDelay)
	}
	if s.DigitInterval != def.DigitInterval {
		t.Errorf("DigitInterval = %v, want default %v", s.DigitInterval, def.DigitInterval)
	}
}

func TestParseScheduleEmpty(t *testing.T) {
	s, err := ParseSchedule(nil)
	if err != nil {
		t.Fatalf("ParseSchedule failed: %v", err)
	}
	if s != DefaultSchedule() {
		t.Errorf("empty input = %+v, want defaults", s)
	}
}

func TestParseScheduleErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad duration", "scanDelay: soon\n"},
		{"negative step", "settleDelay: -5ms\n"},
		{"not yaml", ": : :\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchedule([]byte(tt.data)); err == nil {
				t.Error("ParseSchedule succeeded, want error")
			}
		})
	}
}

func TestLoadSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := os.WriteFile(path, []byte("digitInterval: 50ms\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := LoadSchedule(path)
	if err != nil {
		t.Fatalf("LoadSchedule failed: %v", err)
	}
	if s.DigitInterval != 50*time.Millisecond {
		t.Errorf("DigitInterval = %v, want 50ms", s.DigitInterval)
	}

	if _, err := LoadSchedule(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadSchedule of missing file succeeded, want error")
	}
}

func TestWaitStep(t *testing.T) {
	if err := waitStep(context.Background(), 0); err != nil {
		t.Errorf("zero step = %v, want nil", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := waitStep(cancelled, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("zero step on cancelled context = %v, want Canceled", err)
	}
	if err := waitStep(cancelled, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("long step on cancelled context = %v, want Canceled", err)
	}
}
