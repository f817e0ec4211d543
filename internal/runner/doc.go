// Package runner provides the core load test execution engine for flashload.
//
// The runner dispatches a fixed number of requests through a protocol
// Driver while never exceeding a configured concurrency ceiling, and
// collects one Outcome per completed attempt.
//
// # Basic Usage
//
// Create a runner with options and a driver implementation:
//
//	opts := runner.Options{
//		Concurrency:   10,
//		TotalRequests: 1000,
//		Driver:        myDriver,
//	}
//	r := runner.New(opts)
//	result := r.Run(ctx)
//
// # Driver Interface
//
// The [Driver] interface defines what a runner executes:
//
//	type Driver interface {
//		Execute(ctx context.Context) Outcome
//	}
//
// Implement this interface for different protocols (HTTP, FlashKV).
//
// # Concurrency Model
//
// Internally the runner issues one permit per request into a channel sized
// to the concurrency limit; a fixed pool of workers ranges over the permit
// channel, each permit paying for exactly one driver invocation. Outcomes
// flow through a results channel sized to the total request count, so no
// worker ever blocks on reporting and every attempt either reports or is
// dropped when the worker crashed.
//
// There is no run-level deadline inside the engine: the only timeout is the
// per-request bound the drivers enforce themselves. Callers wanting a
// global cap must impose it around Run.
package runner
