// Command tapmeet-log is a tool for viewing and analyzing TapMeet flow
// log files.
//
// Log files are created by the flow logging infrastructure when running
// tapmeet-demo with the -log-file flag.
//
// Usage:
//
//	tapmeet-log [flags] <file.tlog>
//
// Flags:
//
//	-flow string       Show only events of this flow ID
//	-source string     Show only events from this source (flow, tag-session, pin, collaborator, emulator)
//	-category string   Show only events of this category (state, tag, collaborator, feedback, error)
//	-since string      Show only events at or after this time (RFC3339)
//	-stats             Show summary statistics instead of events
//
// Examples:
//
//	# View all events
//	tapmeet-log demo.tlog
//
//	# View collaborator round trips of one flow
//	tapmeet-log -flow 7d9e1b2a-44c1-4b02-9f67-0c2a51f0f521 -category collaborator demo.tlog
//
//	# View everything since a point in time
//	tapmeet-log -since 2026-08-25T10:00:00Z demo.tlog
//
//	# Summarize the file
//	tapmeet-log -stats demo.tlog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/cmd/tapmeet-log/commands"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
)

// Config holds the viewer configuration.
type Config struct {
	Flow     string
	Source   string
	Category string
	Since    string
	Stats    bool
}

var config Config

func init() {
	flag.StringVar(&config.Flow, "flow", "", "Show only events of this flow ID")
	flag.StringVar(&config.Source, "source", "", "Show only events from this source (flow, tag-session, pin, collaborator, emulator)")
	flag.StringVar(&config.Category, "category", "", "Show only events of this category (state, tag, collaborator, feedback, error)")
	flag.StringVar(&config.Since, "since", "", "Show only events at or after this time (RFC3339)")
	flag.BoolVar(&config.Stats, "stats", false, "Show summary statistics instead of events")
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fmt.Fprintln(os.Stderr, "Usage: tapmeet-log [flags] <file.tlog>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	filter, err := buildFilter()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	path := flag.Arg(0)
	if config.Stats {
		err = commands.RunStats(path, filter, os.Stdout)
	} else {
		err = commands.RunView(path, filter, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildFilter translates the flag values into an event filter.
func buildFilter() (log.Filter, error) {
	filter := log.Filter{FlowID: config.Flow}

	if config.Source != "" {
		s, err := commands.ParseSourceFlag(config.Source)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Source = &s
	}
	if config.Category != "" {
		c, err := commands.ParseCategoryFlag(config.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}
	if config.Since != "" {
		t, err := time.Parse(time.RFC3339, config.Since)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid -since time: %w", err)
		}
		filter.TimeStart = &t
	}
	return filter, nil
}
