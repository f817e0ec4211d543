package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/flashkv/flashload/internal/config"
	"github.com/flashkv/flashload/internal/dashboard"
	"github.com/flashkv/flashload/internal/metrics"
	"github.com/flashkv/flashload/internal/output"
	"github.com/flashkv/flashload/internal/runner"
	"github.com/flashkv/flashload/internal/stats"
	"github.com/flashkv/flashload/internal/tracing"
)

const progressInterval = time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	driver, err := newDriver(cfg, provider)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	failureLogger := &stderrFailureLogger{}

	r := runner.New(runner.Options{
		Concurrency:   cfg.Concurrency,
		TotalRequests: cfg.Total,
		Driver:        driver,
		OnOutcome: func(outcome runner.Outcome) {
			collector.RecordOutcome(outcome)
			if cfg.LogErrors && !outcome.Success {
				failureLogger.LogFailure(outcome)
			}
		},
	})

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.TestConfig{
			Target:      cfg.Target,
			Protocol:    string(cfg.Protocol),
			Method:      cfg.Method,
			Concurrency: cfg.Concurrency,
			Total:       cfg.Total,
			Timeout:     cfg.Timeout,
			ConfigFile:  cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
		defer dash.Stop()
	}

	var progress *output.ProgressReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		progress = output.NewProgressReporter(collector, progressInterval, os.Stdout)
		progress.Start()
		defer func() {
			progress.Stop()
			fmt.Fprintln(os.Stdout)
		}()
	}

	// Mark the actual start time in the collector for accurate RPS calculation.
	collector.Start()
	result := r.Run(ctx)

	report := stats.Reduce(result.Outcomes, result.Duration)
	report.RunID = newRunID()

	if cfg.JSONOutput {
		if err := output.PrintJSONReport(os.Stdout, report); err != nil {
			return err
		}
	} else {
		output.PrintReport(os.Stdout, report)
	}

	if report.Failures > 0 {
		return fmt.Errorf("%d requests failed", report.Failures)
	}
	return nil
}

// newRunID returns a lexically sortable unique identifier for this run so
// reports from repeated benchmarks can be correlated later.
func newRunID() string {
	return ulid.Make().String()
}

func (l *stderrFailureLogger) LogFailure(outcome runner.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if outcome.Error != "" {
		fmt.Fprintf(os.Stderr, "[flashload] request failed (status %d): %s\n", outcome.Status, outcome.Error)
		return
	}
	fmt.Fprintf(os.Stderr, "[flashload] request failed with status %d\n", outcome.Status)
}
