package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Protocol string

const (
	ProtocolHTTP    Protocol = "http"
	ProtocolFlashKV Protocol = "flashkv"
)

// ParseProtocol normalizes the protocol names users actually type. The KV
// driver answers to a few aliases because the wire format predates the
// current name.
func ParseProtocol(value string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "http", "https":
		return ProtocolHTTP, nil
	case "flashkv", "kv", "kv-tcp", "tcp":
		return ProtocolFlashKV, nil
	default:
		return "", fmt.Errorf("protocol: must be 'http' or 'flashkv', got %q", value)
	}
}

type Config struct {
	Target      string            `mapstructure:"target"`
	Protocol    Protocol          `mapstructure:"protocol"`
	Method      string            `mapstructure:"method"`
	Headers     map[string]string `mapstructure:"headers"`
	Body        string            `mapstructure:"body"`
	BodyFile    string            `mapstructure:"body_file"`
	Total       int               `mapstructure:"total"`
	Concurrency int               `mapstructure:"concurrency"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Commands    []string          `mapstructure:"commands"`
	RandomKeys  bool              `mapstructure:"random_keys"`
	KeyPrefix   string            `mapstructure:"key_prefix"`
	KeyRange    int64             `mapstructure:"key_range"`
	JSONOutput  bool              `mapstructure:"json_output"`
	Dashboard   bool              `mapstructure:"dashboard"`
	LogErrors   bool              `mapstructure:"log_errors"`
	ConfigFile  string            `mapstructure:"-"`
	Tracing     TracingConfig     `mapstructure:"tracing"`
}

// TracingConfig controls the optional OTLP span export.
type TracingConfig struct {
	Enable      bool    `mapstructure:"enable"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   *bool   `mapstructure:"propagate"`
}

func (c TracingConfig) Enabled() bool {
	return c.Enable
}

// ShouldPropagate reports whether W3C trace headers get injected into
// outgoing requests. Defaults to the enable switch unless overridden.
func (c TracingConfig) ShouldPropagate() bool {
	if c.Propagate != nil {
		return *c.Propagate
	}
	return c.Enable
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
	"HEAD":   true,
}

// Validate reports every problem at once so a user can fix a config file in
// one pass instead of replaying the run per issue.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Target) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	if c.Concurrency > 500 {
		fmt.Fprintf(os.Stderr, "WARNING: High concurrency configured (%d workers). Ensure you have authorization to test the target system.\n", c.Concurrency)
	}

	if c.Total < 1 {
		issues = append(issues, "total must be >= 1")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if strings.TrimSpace(c.Body) != "" && strings.TrimSpace(c.BodyFile) != "" {
		issues = append(issues, "body and bodyFile are mutually exclusive")
	}
	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	switch c.Protocol {
	case ProtocolHTTP, "":
		method := strings.ToUpper(strings.TrimSpace(c.Method))
		if method != "" && !allowedMethods[method] {
			issues = append(issues, fmt.Sprintf("method %q is not supported", c.Method))
		}
		if len(c.Commands) > 0 {
			issues = append(issues, "commands only apply to the flashkv protocol")
		}
	case ProtocolFlashKV:
		if len(c.Commands) == 0 {
			issues = append(issues, "at least one command is required for the flashkv protocol")
		}
		if strings.TrimSpace(c.Body) != "" || strings.TrimSpace(c.BodyFile) != "" {
			issues = append(issues, "body settings do not apply to the flashkv protocol")
		}
		if c.RandomKeys && c.KeyRange < 1 {
			issues = append(issues, "key_range must be >= 1 when random_keys is enabled")
		}
	default:
		issues = append(issues, fmt.Sprintf("protocol: must be 'http' or 'flashkv', got %q", c.Protocol))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, fmt.Sprintf("tracing sample_rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate))
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}
