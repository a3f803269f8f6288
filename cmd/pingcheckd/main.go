package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"pingcheck/pkg/action"
	"pingcheck/pkg/agent"
	"pingcheck/pkg/config"
	"pingcheck/pkg/eapi"
	"pingcheck/pkg/journal"
	"pingcheck/pkg/log"
	"pingcheck/pkg/metrics"
	"pingcheck/pkg/netif"
	"pingcheck/pkg/probe"
	"pingcheck/pkg/server"
	"pingcheck/pkg/status"
)

const gracefulShutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	_ = log.Logger

	// Parse command-line flags
	configPath := flag.String("config", "", "Path to the YAML options file (re-read every round)")
	listen := flag.String("listen", ":8082", "Ops endpoint listen address")
	eapiEndpoint := flag.String("eapi", "", "Switch command API base URL (e.g., https://switch1)")
	eapiUsername := flag.String("eapi-username", "", "Switch command API username")
	eapiPassword := flag.String("eapi-password", "", "Switch command API password")
	eapiInsecure := flag.Bool("eapi-insecure", false, "Skip TLS verification for the command API")
	retryMax := flag.Int("retry-max", 0, "Maximum transport-level retries for the command API")
	journalPath := flag.String("journal", "", "SQLite journal path for transition history (enables history API)")
	dryRun := flag.Bool("dry-run", false, "Log configuration batches instead of applying them")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Configure logger
	if *debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	if *configPath == "" {
		log.Fatal().Msg("An options file must be specified with the -config flag")
	}

	applier := buildApplier(*dryRun, *eapiEndpoint, *eapiUsername, *eapiPassword, *eapiInsecure, *retryMax)

	var (
		jrnl        *journal.Store
		agentJrnl   agent.Journal
		httpHistory server.History
	)
	if *journalPath != "" {
		store, err := journal.NewStore(*journalPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *journalPath).Msg("Failed to open the journal")
		}
		jrnl = store
		agentJrnl = store
		httpHistory = store
		defer func() {
			if closeErr := jrnl.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close the journal")
			}
		}()
	}

	board := status.NewBoard()
	board.Set(status.KeyStatus, status.AgentUp)
	m := metrics.New()

	mon := agent.New(agent.Deps{
		Store:      config.NewFileStore(*configPath),
		Resolver:   netif.System{},
		Prober:     probe.NewPinger(),
		Dispatcher: action.NewDispatcher(applier),
		Board:      board,
		Metrics:    m,
		Journal:    agentJrnl,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Run(ctx)
		close(done)
	}()

	srv := server.NewServer(board, httpHistory, m, gracefulShutdownTimeout)
	if err := srv.Start(*listen); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// Let the in-flight round finish before the process exits.
	cancel()
	<-done
	board.Set(status.KeyStatus, status.AgentDown)

	os.Exit(0)
}

// buildApplier picks the dry-run applier or a real command API client
// and validates the flags the choice needs.
func buildApplier(dryRun bool, endpoint, username, password string, insecure bool, retryMax int) action.Applier {
	if dryRun {
		log.Info().Msg("Dry run: configuration actions will be logged, not applied")
		return action.NewDryRun()
	}

	if endpoint == "" {
		log.Fatal().Msg("A command API endpoint must be specified with -eapi (or use -dry-run)")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		log.Fatal().Str("eapi", endpoint).Msg("Command API endpoint must start with http:// or https://")
	}
	if username == "" {
		log.Fatal().Msg("A command API username must be specified with -eapi-username")
	}

	return eapi.NewClient(eapi.Config{
		Endpoint:    endpoint,
		Username:    username,
		Password:    password,
		InsecureTLS: insecure,
		RetryMax:    retryMax,
	})
}
