package runner

import "testing"

func TestOptionsNormalize(t *testing.T) {
	tests := []struct {
		name            string
		in              Options
		wantConcurrency int
		wantTotal       int
	}{
		{"zero values", Options{}, 1, 1},
		{"negative values", Options{Concurrency: -3, TotalRequests: -1}, 1, 1},
		{"concurrency capped at total", Options{Concurrency: 100, TotalRequests: 10}, 10, 10},
		{"unchanged when sane", Options{Concurrency: 4, TotalRequests: 50}, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := tt.in
			opt.normalize()
			if opt.Concurrency != tt.wantConcurrency {
				t.Errorf("concurrency = %d, want %d", opt.Concurrency, tt.wantConcurrency)
			}
			if opt.TotalRequests != tt.wantTotal {
				t.Errorf("total = %d, want %d", opt.TotalRequests, tt.wantTotal)
			}
		})
	}
}
