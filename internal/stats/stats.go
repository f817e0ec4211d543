// Package stats reduces a bag of per-request Outcomes into the final
// aggregate report. The reduction is pure and order-independent, so the
// engine is free to hand over Outcomes in whatever order workers finished.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/flashkv/flashload/internal/runner"
)

// Report is the aggregate result of a load test run.
//
// Latency fields are computed over successful requests only; a run with no
// successes reports them all as zero. The JSON view mirrors the duration
// fields in milliseconds.
type Report struct {
	RunID      string        `json:"run_id,omitempty"`
	Total      int64         `json:"total_requests"`
	Successes  int64         `json:"successful_requests"`
	Failures   int64         `json:"failed_requests"`
	Duration   time.Duration `json:"-"`
	MinLatency time.Duration `json:"-"`
	MaxLatency time.Duration `json:"-"`
	P50Latency time.Duration `json:"-"`
	P95Latency time.Duration `json:"-"`
	P99Latency time.Duration `json:"-"`

	DurationMs     float64 `json:"duration_ms"`
	MinLatencyMs   float64 `json:"min_latency_ms"`
	MaxLatencyMs   float64 `json:"max_latency_ms"`
	MeanLatencyMs  float64 `json:"avg_latency_ms"`
	P50LatencyMs   float64 `json:"p50_latency_ms"`
	P95LatencyMs   float64 `json:"p95_latency_ms"`
	P99LatencyMs   float64 `json:"p99_latency_ms"`
	RequestsPerSec float64 `json:"requests_per_sec"`

	// StatusCounts maps the protocol-scoped status code to how many
	// outcomes carried it.
	StatusCounts map[int]int64 `json:"status_counts,omitempty"`
}

// Reduce aggregates outcomes plus the run's wall-clock duration into a Report.
func Reduce(outcomes []runner.Outcome, totalDuration time.Duration) Report {
	report := Report{
		Total:      int64(len(outcomes)),
		Duration:   totalDuration,
		DurationMs: durationMs(totalDuration),
	}

	latencies := make([]time.Duration, 0, len(outcomes))
	statusCounts := make(map[int]int64)
	var sum time.Duration
	for _, o := range outcomes {
		statusCounts[o.Status]++
		if o.Success {
			report.Successes++
			latencies = append(latencies, o.Duration)
			sum += o.Duration
		}
	}
	report.Failures = report.Total - report.Successes
	if len(statusCounts) > 0 {
		report.StatusCounts = statusCounts
	}

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		report.MinLatency = latencies[0]
		report.MaxLatency = latencies[len(latencies)-1]
		report.MeanLatencyMs = durationMs(sum) / float64(len(latencies))
		report.P50Latency = percentile(latencies, 50)
		report.P95Latency = percentile(latencies, 95)
		report.P99Latency = percentile(latencies, 99)
	}

	report.MinLatencyMs = durationMs(report.MinLatency)
	report.MaxLatencyMs = durationMs(report.MaxLatency)
	report.P50LatencyMs = durationMs(report.P50Latency)
	report.P95LatencyMs = durationMs(report.P95Latency)
	report.P99LatencyMs = durationMs(report.P99Latency)

	if totalDuration > 0 {
		report.RequestsPerSec = float64(report.Total) / totalDuration.Seconds()
	}

	return report
}

// percentile computes a linear-interpolation percentile over an ascending
// slice. The rank is zero-indexed ((p/100)*(len-1)); when it falls between
// two samples the value is interpolated and truncated toward zero. This is
// the figure printed to users, so the rule must stay exactly as is.
func percentile(sorted []time.Duration, pct float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	n := len(sorted)
	rank := (pct / 100) * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper || upper >= n {
		if lower > n-1 {
			lower = n - 1
		}
		return sorted[lower]
	}

	weight := rank - float64(lower)
	lowerVal := float64(sorted[lower])
	upperVal := float64(sorted[upper])
	return time.Duration(lowerVal + weight*(upperVal-lowerVal))
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
