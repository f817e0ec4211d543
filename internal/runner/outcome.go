package runner

import (
	"context"
	"time"
)

// Outcome is the uniform per-request result produced by a driver.
// Status is protocol-scoped: the wire status code for HTTP (0 when no
// response was obtained), or one of the synthetic flashkv codes for the
// KV-TCP protocol. An Outcome is created once per attempt and never
// mutated afterwards.
type Outcome struct {
	Duration time.Duration
	Status   int
	Success  bool
	Error    string
}

// Driver performs exactly one request exchange and reports its Outcome.
// Implementations must be safe for concurrent use; each invocation is
// self-contained (its own connection, its own buffers).
type Driver interface {
	Execute(ctx context.Context) Outcome
}
