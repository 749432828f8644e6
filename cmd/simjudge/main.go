package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/bakeboard/internal/simjudge"
	"github.com/okian/bakeboard/pkg/logger"
)

// Default simulation parameters.
const (
	defaultParticipants = 12
	defaultJudges       = 8
	defaultTimeout      = 30 * time.Second
	defaultRunTimeout   = 5 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:8090", "Base URL of the scoring service")
		participants = flag.Int("participants", defaultParticipants, "Number of participants to seed")
		judges       = flag.Int("judges", defaultJudges, "Number of simulated judges")
		workers      = flag.Int("workers", runtime.NumCPU(), "Number of concurrent submitters")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose      = flag.Bool("verbose", false, "Log every rejected submission")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	cfg := &simjudge.Config{
		BaseURL:      *baseURL,
		Participants: *participants,
		Judges:       *judges,
		Workers:      *workers,
		Timeout:      *timeout,
		Verbose:      *verbose,
	}
	if err := simjudge.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
