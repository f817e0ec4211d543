package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/flashkv/flashload/internal/config"
	"github.com/flashkv/flashload/internal/runner"
	"github.com/flashkv/flashload/internal/tracing"
)

// Cap on how much of a response body gets drained per request.
const maxBodyReadSize = 1024 * 1024

// Driver executes HTTP requests for the dispatch engine. Success is the
// conventional 2xx class; a transport failure reports status 0 with the
// failure text. Exactly one attempt per invocation, no retries.
type Driver struct {
	client    *http.Client
	builder   *RequestBuilder
	propagate bool
}

// NewDriver builds the shared request template and client. An error here is
// run-fatal: no requests are attempted.
func NewDriver(cfg *config.Config) (*Driver, error) {
	builder, err := NewRequestBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &Driver{
		client:  NewClient(cfg.Timeout),
		builder: builder,
	}, nil
}

// EnableTracePropagation makes every request carry W3C trace context headers.
func (d *Driver) EnableTracePropagation() {
	d.propagate = true
}

// Execute performs one request exchange and reports its Outcome.
func (d *Driver) Execute(ctx context.Context) runner.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	req, err := d.builder.Build(ctx)
	if err != nil {
		return runner.Outcome{
			Duration: time.Since(start),
			Status:   0,
			Success:  false,
			Error:    err.Error(),
		}
	}

	if d.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := d.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return runner.Outcome{
			Duration: duration,
			Status:   0,
			Success:  false,
			Error:    err.Error(),
		}
	}
	defer resp.Body.Close()

	// Drain so the transport can reuse the connection; latency was already
	// taken at response arrival.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyReadSize))

	return runner.Outcome{
		Duration: duration,
		Status:   resp.StatusCode,
		Success:  resp.StatusCode >= 200 && resp.StatusCode < 300,
	}
}
