package main

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flashkv/flashload/internal/config"
	"github.com/flashkv/flashload/internal/flashkv"
	"github.com/flashkv/flashload/internal/httpclient"
	"github.com/flashkv/flashload/internal/runner"
	"github.com/flashkv/flashload/internal/tracing"
)

// newDriver builds the protocol driver for the configured target and wraps
// it with span recording when tracing is enabled.
func newDriver(cfg *config.Config, provider *tracing.Provider) (runner.Driver, error) {
	var base runner.Driver

	switch cfg.Protocol {
	case config.ProtocolFlashKV:
		commands, err := flashkv.ParseCommands(cfg.Commands)
		if err != nil {
			return nil, err
		}
		driver, err := flashkv.NewDriver(flashkv.Config{
			Address:    cfg.Target,
			Commands:   commands,
			RandomKeys: cfg.RandomKeys,
			KeyPrefix:  cfg.KeyPrefix,
			KeyRange:   cfg.KeyRange,
			Timeout:    cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		base = driver
	default:
		driver, err := httpclient.NewDriver(cfg)
		if err != nil {
			return nil, err
		}
		if provider.ShouldPropagate() {
			driver.EnableTracePropagation()
		}
		base = driver
	}

	if cfg.Tracing.Enabled() {
		base = &tracedDriver{
			next:     base,
			tracer:   provider.Tracer(),
			protocol: string(cfg.Protocol),
			target:   cfg.Target,
		}
	}

	return base, nil
}

// tracedDriver records one client span per request around the wrapped driver.
type tracedDriver struct {
	next     runner.Driver
	tracer   trace.Tracer
	protocol string
	target   string
}

func (d *tracedDriver) Execute(ctx context.Context) runner.Outcome {
	ctx, span := tracing.StartRequestSpan(ctx, d.tracer, d.protocol, d.target)
	outcome := d.next.Execute(ctx)

	var err error
	if !outcome.Success && outcome.Error != "" {
		err = errors.New(outcome.Error)
	}
	tracing.EndSpan(span, err,
		attribute.Int("response.status", outcome.Status),
		attribute.Bool("response.success", outcome.Success),
		attribute.Float64("response.duration_ms", float64(outcome.Duration.Microseconds())/1000),
	)
	return outcome
}
