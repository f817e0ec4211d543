// Package metrics provides real-time metrics collection during load test
// execution.
//
// The central [Collector] type aggregates latency measurements, success and
// failure counts, and per-status-code tallies from all request workers:
//
//	collector := metrics.NewCollector()
//	collector.Start() // Mark test start for accurate RPS calculation
//
//	// Record a completed request
//	collector.RecordOutcome(outcome)
//
//	// Get aggregated statistics
//	stats := collector.Stats(collector.Elapsed())
//
// Latencies are kept in an HDR histogram so P50/P90/P99 reads stay cheap
// while the test is running. The final report is computed separately from
// the complete outcome set, so the approximation here only affects the live
// progress display.
//
// The Collector is safe to call from multiple goroutines.
package metrics
