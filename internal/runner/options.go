package runner

// Options configure the Runner.
type Options struct {
	Concurrency   int           // maximum driver invocations in flight
	TotalRequests int           // total requests to execute (>= 1)
	Driver        Driver        // request executor (required)
	OnOutcome     func(Outcome) // optional live observer, called once per collected Outcome
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests <= 0 {
		o.TotalRequests = 1
	}
	// More workers than requests just means some workers never fire.
	if o.Concurrency > o.TotalRequests {
		o.Concurrency = o.TotalRequests
	}
}
