package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsBySource   map[log.Source]int
	EventsByCategory map[log.Category]int
	Flows            map[string]*FlowStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// FlowStats holds statistics for a single verification flow.
type FlowStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int
	SharerID  string
	SessionID string
	LastPhase string
}

// RunStats analyzes the log file and prints statistics for the matching
// events.
func RunStats(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsBySource:   make(map[log.Source]int),
		EventsByCategory: make(map[log.Category]int),
		Flows:            make(map[string]*FlowStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

// add folds one event into the statistics.
func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsBySource[event.Source]++
	s.EventsByCategory[event.Category]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	// Track per-flow stats
	flow, ok := s.Flows[event.FlowID]
	if !ok {
		flow = &FlowStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Flows[event.FlowID] = flow
	}
	flow.Events++
	if event.Timestamp.After(flow.LastSeen) {
		flow.LastSeen = event.Timestamp
	}
	if event.SharerID != "" && flow.SharerID == "" {
		flow.SharerID = event.SharerID
	}
	if event.SessionID != "" && flow.SessionID == "" {
		flow.SessionID = event.SessionID
	}
	if event.StateChange != nil && event.StateChange.Entity == log.StateEntityFlow {
		flow.LastPhase = event.StateChange.NewState
	}

	// Count errors
	if event.Error != nil {
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== TapMeet Flow Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by source
	fmt.Fprintln(w, "Events by Source:")
	for _, source := range []log.Source{log.SourceFlow, log.SourceTagSession, log.SourcePin, log.SourceCollaborator, log.SourceEmulator} {
		if count := stats.EventsBySource[source]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", source.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryState, log.CategoryTag, log.CategoryCollaborator, log.CategoryFeedback, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Flows
	fmt.Fprintf(w, "Flows: %d\n", len(stats.Flows))
	if len(stats.Flows) > 0 {
		// Sort by first seen time
		type flowInfo struct {
			id    string
			stats *FlowStats
		}
		flows := make([]flowInfo, 0, len(stats.Flows))
		for id, fs := range stats.Flows {
			flows = append(flows, flowInfo{id, fs})
		}
		sort.Slice(flows, func(i, j int) bool {
			return flows[i].stats.FirstSeen.Before(flows[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, f := range flows {
			duration := f.stats.LastSeen.Sub(f.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(f.id), f.stats.Events, duration)
			if f.stats.SharerID != "" {
				fmt.Fprintf(w, "           Sharer:  %s\n", f.stats.SharerID)
			}
			if f.stats.SessionID != "" {
				fmt.Fprintf(w, "           Session: %s\n", f.stats.SessionID)
			}
			if f.stats.LastPhase != "" {
				fmt.Fprintf(w, "           Ended:   %s\n", f.stats.LastPhase)
			}
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
