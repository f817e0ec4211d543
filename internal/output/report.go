// Package output renders final reports and live progress for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/flashkv/flashload/internal/metrics"
	"github.com/flashkv/flashload/internal/stats"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, report stats.Report) {
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	if report.RunID != "" {
		fmt.Fprintf(w, "Run ID:            %s\n", report.RunID)
	}
	fmt.Fprintf(w, "Total Requests:    %d\n", report.Total)
	fmt.Fprintf(w, "Successful:        %d\n", report.Successes)
	fmt.Fprintf(w, "Failed:            %d\n", report.Failures)
	fmt.Fprintf(w, "Duration:          %s\n", report.Duration)
	fmt.Fprintf(w, "Requests/sec:      %.2f\n", report.RequestsPerSec)
	fmt.Fprintln(w, "\nLatency (successful requests):")
	fmt.Fprintf(w, "  Min:             %s\n", report.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", report.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %.2fms\n", report.MeanLatencyMs)
	fmt.Fprintf(w, "  P50:             %s\n", report.P50Latency)
	fmt.Fprintf(w, "  P95:             %s\n", report.P95Latency)
	fmt.Fprintf(w, "  P99:             %s\n", report.P99Latency)
	if len(report.StatusCounts) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		for _, row := range metrics.FlattenStatusCounts(report.StatusCounts) {
			fmt.Fprintf(w, "  %d: %d\n", row.Code, row.Count)
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report stats.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
