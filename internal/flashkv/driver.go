package flashkv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/flashkv/flashload/internal/runner"
)

// Synthetic status codes carried in Outcomes for the KV-TCP protocol.
const (
	StatusOK              = 200
	StatusNotFound        = 404 // successful lookup of an absent key
	StatusError           = 500 // server replied with an error line
	StatusConnectionError = 503
	StatusTimeout         = 504
)

// Config describes a FlashKV load target.
type Config struct {
	Address    string        // host:port
	Commands   []Command     // cycled through in order, repeating
	RandomKeys bool          // substitute a random key per request
	KeyPrefix  string        // prefix for random keys
	KeyRange   int64         // random keys drawn from [0, KeyRange)
	Timeout    time.Duration // bound on the whole connect+send+receive exchange
}

// Driver executes FlashKV commands over TCP, one fresh connection per
// request. Connections are deliberately not pooled: reuse would change the
// latency the tool is supposed to measure.
type Driver struct {
	cfg    Config
	dialer net.Dialer
	next   atomic.Uint64
}

// NewDriver validates the configuration and returns a ready driver.
func NewDriver(cfg Config) (*Driver, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, errors.New("flashkv: address is required")
	}
	if len(cfg.Commands) == 0 {
		return nil, errors.New("flashkv: at least one command is required")
	}
	if cfg.RandomKeys && cfg.KeyRange < 1 {
		return nil, fmt.Errorf("flashkv: key range must be >= 1, got %d", cfg.KeyRange)
	}
	return &Driver{cfg: cfg}, nil
}

// Execute performs exactly one command exchange and reports its Outcome.
// Requests cycle through the configured command list in order.
func (d *Driver) Execute(ctx context.Context) runner.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	index := d.next.Add(1) - 1
	cmd := d.cfg.Commands[int(index%uint64(len(d.cfg.Commands)))]
	if d.cfg.RandomKeys {
		cmd = cmd.WithRandomKey(d.cfg.KeyPrefix, d.cfg.KeyRange)
	}

	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	response, err := d.exchange(ctx, cmd.WireFormat())
	duration := time.Since(start)
	if err != nil {
		if isTimeout(err) {
			return runner.Outcome{
				Duration: duration,
				Status:   StatusTimeout,
				Success:  false,
				Error:    "request timed out",
			}
		}
		return runner.Outcome{
			Duration: duration,
			Status:   StatusConnectionError,
			Success:  false,
			Error:    err.Error(),
		}
	}

	status, success := classifyResponse(response)
	outcome := runner.Outcome{
		Duration: duration,
		Status:   status,
		Success:  success,
	}
	if !success {
		outcome.Error = response
	}
	return outcome
}

// exchange opens a connection, writes one command line, and reads exactly
// one response line.
func (d *Driver) exchange(ctx context.Context, wire string) (string, error) {
	conn, err := d.dialer.DialContext(ctx, "tcp", d.cfg.Address)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(wire)); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read response: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// classifyResponse maps a response line to a synthetic status code.
// Error-prefixed lines fail the request; a "not found" reply is a
// successful exchange that happened to find nothing.
func classifyResponse(response string) (status int, success bool) {
	upper := strings.ToUpper(response)
	switch {
	case strings.HasPrefix(response, "-ERR"),
		strings.HasPrefix(response, "ERROR"),
		strings.HasPrefix(response, "-"),
		strings.HasPrefix(upper, "ERR"):
		return StatusError, false
	case strings.Contains(upper, "NIL"),
		strings.Contains(upper, "NOT FOUND"):
		return StatusNotFound, true
	default:
		return StatusOK, true
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
