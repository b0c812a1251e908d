// Command tapmeet-demo is an interactive TapMeet verifier.
//
// It drives the verification flow from a readline prompt: either the
// scripted simulation (deterministic timeline, no hardware) or a live
// scan against a virtual tag hosted on the local network. A backend URL
// switches PIN delivery and profile fetches from the scripted
// collaborators to a real service.
//
// Usage:
//
//	tapmeet-demo [flags]
//
// Flags:
//
//	-config string     YAML configuration file
//	-backend string    Collaborator base URL (empty uses scripted collaborators)
//	-simulate          Start a simulation run immediately
//	-sharer string     Member the simulation detects
//	-pin-length int    PIN digits issued by scripted delivery
//	-log-file string   Write flow events to this .tlog file
//	-verbose           Mirror flow events to stderr
//
// Examples:
//
//	# Watch the scripted run, then poke at it
//	tapmeet-demo -simulate
//
//	# Live path: host a tag in one terminal, scan from another
//	tapmeet-demo
//	tapmeet> host alice-123 Alice
//	tapmeet> scan
//
//	# Real collaborator service with an event log
//	tapmeet-demo -backend https://collab.example.net -log-file demo.tlog
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/tapmeet-protocol/tapmeet-go/cmd/tapmeet-demo/interactive"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/backend"
	flowlog "github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/verify"
)

// Config holds the demo configuration.
type Config struct {
	ConfigFile string
	Backend    string
	Simulate   bool
	SharerID   string
	PinLength  int
	LogFile    string
	Verbose    bool

	Schedule verify.Schedule
}

var config Config

func init() {
	flag.StringVar(&config.ConfigFile, "config", "", "YAML configuration file")
	flag.StringVar(&config.Backend, "backend", "", "Collaborator base URL (empty uses scripted collaborators)")
	flag.BoolVar(&config.Simulate, "simulate", false, "Start a simulation run immediately")
	flag.StringVar(&config.SharerID, "sharer", "", "Member the simulation detects")
	flag.IntVar(&config.PinLength, "pin-length", 0, "PIN digits issued by scripted delivery")
	flag.StringVar(&config.LogFile, "log-file", "", "Write flow events to this .tlog file")
	flag.BoolVar(&config.Verbose, "verbose", false, "Mirror flow events to stderr")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	config.Schedule = verify.DefaultSchedule()
	if config.ConfigFile != "" {
		if err := loadConfigFile(config.ConfigFile); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	logger, closeLogs, err := buildLogger()
	if err != nil {
		log.Fatalf("Failed to open log sink: %v", err)
	}
	defer closeLogs()

	delivery, profiles, err := buildCollaborators(logger)
	if err != nil {
		log.Fatalf("Failed to create collaborators: %v", err)
	}

	cues := interactive.NewCueBuffer()
	orchestrator, err := verify.New(verify.Config{
		PinDelivery: delivery,
		Profiles:    profiles,
		Feedback:    cues,
		Logger:      logger,
		Schedule:    config.Schedule,
		SimSharerID: config.SharerID,
	})
	if err != nil {
		log.Fatalf("Failed to create verifier: %v", err)
	}

	demo, err := interactive.New(orchestrator, interactive.Options{
		Cues:   cues,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("Failed to start prompt: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl-C delivered outside the prompt still shuts down cleanly.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if config.Simulate {
		if err := orchestrator.StartSimulation(ctx); err != nil {
			log.Printf("Simulation failed to start: %v", err)
		}
	}

	demo.Run(ctx, cancel)
	orchestrator.Reset()
	log.Println("Goodbye!")
}

// fileConfig mirrors the flag set in YAML. Flags given on the command
// line win over file values.
type fileConfig struct {
	Backend   string     `yaml:"backend"`
	Sharer    string     `yaml:"sharer"`
	PinLength int        `yaml:"pinLength"`
	LogFile   string     `yaml:"logFile"`
	Verbose   bool       `yaml:"verbose"`
	Schedule  *yaml.Node `yaml:"schedule"`
}

func loadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	given := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { given[f.Name] = true })

	if !given["backend"] && file.Backend != "" {
		config.Backend = file.Backend
	}
	if !given["sharer"] && file.Sharer != "" {
		config.SharerID = file.Sharer
	}
	if !given["pin-length"] && file.PinLength > 0 {
		config.PinLength = file.PinLength
	}
	if !given["log-file"] && file.LogFile != "" {
		config.LogFile = file.LogFile
	}
	if !given["verbose"] && file.Verbose {
		config.Verbose = true
	}
	if file.Schedule != nil {
		raw, err := yaml.Marshal(file.Schedule)
		if err != nil {
			return fmt.Errorf("schedule section: %w", err)
		}
		schedule, err := verify.ParseSchedule(raw)
		if err != nil {
			return err
		}
		config.Schedule = schedule
	}
	return nil
}

// buildLogger assembles the event sinks selected by the configuration.
func buildLogger() (flowlog.Logger, func(), error) {
	var sinks []flowlog.Logger
	var closers []func()

	if config.LogFile != "" {
		fileLogger, err := flowlog.NewFileLogger(config.LogFile)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, fileLogger)
		closers = append(closers, func() { _ = fileLogger.Close() })
	}
	if config.Verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		sinks = append(sinks, flowlog.NewSlogAdapter(slog.New(handler)))
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	switch len(sinks) {
	case 0:
		return flowlog.NoopLogger{}, closeAll, nil
	case 1:
		return sinks[0], closeAll, nil
	default:
		return flowlog.NewMultiLogger(sinks...), closeAll, nil
	}
}

// buildCollaborators selects scripted or backend-served collaborators.
func buildCollaborators(logger flowlog.Logger) (verify.PinDelivery, verify.ProfileFetch, error) {
	if config.Backend == "" {
		delivery := verify.NewScriptedDelivery(config.Schedule)
		delivery.SetPinLength(config.PinLength)
		return delivery, verify.NewScriptedProfiles(config.Schedule), nil
	}

	cfg := backend.DefaultConfig(config.Backend)
	cfg.Logger = logger
	client, err := backend.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}
