package runner

import (
	"context"
	"sync"
	"time"
)

// Result captures execution summary: every collected Outcome plus the
// wall-clock duration from first dispatch to last completion.
type Result struct {
	Outcomes []Outcome
	Duration time.Duration
}

// Runner coordinates bounded-concurrency execution of a fixed number of
// requests through a Driver.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Run issues exactly TotalRequests driver invocations with at most
// Concurrency in flight, waits for all of them, and returns the collected
// Outcomes. Individual request failures never abort the run; a worker that
// crashes mid-attempt forfeits its single Outcome and nothing else.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()

	permits := make(chan struct{}, r.opt.Concurrency)
	results := make(chan Outcome, r.opt.TotalRequests)

	// Scheduler: issues one permit per request so workers only execute
	// allocated slots.
	go func() {
		defer close(permits)
		for i := 0; i < r.opt.TotalRequests; i++ {
			permits <- struct{}{}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(r.opt.Concurrency)
	for i := 0; i < r.opt.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for range permits {
				outcome, ok := r.execute(ctx)
				if !ok {
					continue
				}
				if r.opt.OnOutcome != nil {
					r.opt.OnOutcome(outcome)
				}
				results <- outcome
			}
		}()
	}
	wg.Wait()
	close(results)

	outcomes := make([]Outcome, 0, r.opt.TotalRequests)
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}

	return Result{
		Outcomes: outcomes,
		Duration: time.Since(start),
	}
}

// execute performs one driver invocation. A panicking driver drops that
// attempt's Outcome instead of killing the run.
func (r *Runner) execute(ctx context.Context) (outcome Outcome, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
		}
	}()
	if r.opt.Driver == nil {
		return Outcome{}, false
	}
	return r.opt.Driver.Execute(ctx), true
}
