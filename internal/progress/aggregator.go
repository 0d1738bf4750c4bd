package progress

import "sync"

// AggregateListener receives the batch-level scalar progress.
type AggregateListener func(fraction float64)

// Aggregator folds per-job fractions into a single running mean. The mean
// is recomputed under a lock on every member update, so interleaved
// completion callbacks from worker goroutines are safe.
type Aggregator struct {
	mu        sync.Mutex
	fractions []float64
	finished  bool
	listener  AggregateListener
}

// NewAggregator creates an aggregator for n member jobs.
func NewAggregator(n int, listener AggregateListener) *Aggregator {
	return &Aggregator{
		fractions: make([]float64, n),
		listener:  listener,
	}
}

// Update records a member fraction and re-broadcasts the mean.
func (a *Aggregator) Update(index int, fraction float64) {
	a.mu.Lock()
	if a.finished || index < 0 || index >= len(a.fractions) {
		a.mu.Unlock()
		return
	}

	f := clamp(fraction)
	// Per-member monotonicity; the emitter guarantees this for real jobs
	// but direct callers get the same protection.
	if f < a.fractions[index] {
		a.mu.Unlock()
		return
	}
	a.fractions[index] = f
	mean := a.meanLocked()
	listener := a.listener
	a.mu.Unlock()

	if listener != nil {
		listener(mean)
	}
}

// Finish broadcasts the terminal 1.0 aggregate, once, regardless of where
// the member fractions ended up. Idempotent.
func (a *Aggregator) Finish() {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	a.finished = true
	for i := range a.fractions {
		a.fractions[i] = 1
	}
	listener := a.listener
	a.mu.Unlock()

	if listener != nil {
		listener(1)
	}
}

// Mean returns the current aggregate fraction. An empty batch is complete
// by definition, so its mean is 1.
func (a *Aggregator) Mean() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.meanLocked()
}

func (a *Aggregator) meanLocked() float64 {
	if len(a.fractions) == 0 {
		return 1
	}
	var sum float64
	for _, f := range a.fractions {
		sum += f
	}
	return sum / float64(len(a.fractions))
}
