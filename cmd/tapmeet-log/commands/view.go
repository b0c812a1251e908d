// Package commands implements the tapmeet-log viewing and analysis commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
)

// RunView streams matching events to output, one line per event.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		fmt.Fprintln(output, formatEventLine(event))
	}

	return nil
}

// formatEventLine renders one event as a single line:
// timestamp [flow:id] SOURCE summary
func formatEventLine(event log.Event) string {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	return fmt.Sprintf("%s [flow:%s] %-12s %s", ts, shortenID(event.FlowID), event.Source, eventSummary(event))
}

// eventSummary renders the type-specific tail of an event line.
func eventSummary(event log.Event) string {
	switch {
	case event.StateChange != nil:
		sc := event.StateChange
		summary := "State -> " + sc.NewState
		if sc.OldState != "" {
			summary = fmt.Sprintf("State %s -> %s", sc.OldState, sc.NewState)
		}
		if sc.Reason != "" {
			summary += fmt.Sprintf(" (%s)", sc.Reason)
		}
		return summary

	case event.Tag != nil:
		op := "Read"
		if event.Tag.Write {
			op = "Write"
		}
		if event.Tag.MemberID != "" {
			return fmt.Sprintf("%s %s (%d bytes)", op, event.Tag.MemberID, event.Tag.Size)
		}
		return fmt.Sprintf("%s (%d bytes)", op, event.Tag.Size)

	case event.Collaborator != nil:
		c := event.Collaborator
		if c.Latency != nil {
			return fmt.Sprintf("%s %s (%s)", c.Op, c.Status, formatDuration(*c.Latency))
		}
		return fmt.Sprintf("%s %s", c.Op, c.Status)

	case event.Feedback != nil:
		return "Cue " + event.Feedback.Name

	case event.Error != nil:
		if event.Error.Context != "" {
			return fmt.Sprintf("Error %s: %s", event.Error.Context, event.Error.Message)
		}
		return "Error " + event.Error.Message

	default:
		return "Unknown"
	}
}

// shortenID returns the first 8 characters of an ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseSourceFlag parses a source string from a command-line flag (case-insensitive).
func ParseSourceFlag(s string) (log.Source, error) {
	switch strings.ToLower(s) {
	case "flow":
		return log.SourceFlow, nil
	case "tag-session", "tag":
		return log.SourceTagSession, nil
	case "pin":
		return log.SourcePin, nil
	case "collaborator":
		return log.SourceCollaborator, nil
	case "emulator":
		return log.SourceEmulator, nil
	default:
		return 0, fmt.Errorf("invalid source: %s (must be flow, tag-session, pin, collaborator, or emulator)", s)
	}
}

// ParseCategoryFlag parses a category string from a command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "state":
		return log.CategoryState, nil
	case "tag":
		return log.CategoryTag, nil
	case "collaborator":
		return log.CategoryCollaborator, nil
	case "feedback":
		return log.CategoryFeedback, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be state, tag, collaborator, feedback, or error)", s)
	}
}
