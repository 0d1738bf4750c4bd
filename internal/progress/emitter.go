package progress

import (
	"sync"
	"time"
)

// Listener receives cleaned progress events for a source path.
type Listener func(sourcePath string, fraction float64)

// Config controls emitter throttling.
type Config struct {
	// MinDelta is the smallest fraction change worth emitting.
	// 0.0 and 1.0 bypass this filter.
	MinDelta float64
	// MinInterval is the shortest time between emissions.
	// 0.0 and 1.0 bypass this filter.
	MinInterval time.Duration
}

// DefaultConfig returns the throttling defaults: one percent steps, at most
// ten events per second.
func DefaultConfig() Config {
	return Config{
		MinDelta:    0.01,
		MinInterval: 100 * time.Millisecond,
	}
}

// Emitter converts a raw progress signal for one source into a cleaned
// stream delivered to a listener. It is safe for concurrent use.
type Emitter struct {
	source   string
	config   Config
	listener Listener

	mu          sync.Mutex
	emitted     bool      // at least one event delivered
	last        float64   // last emitted fraction
	lastTime    time.Time // time of last emission
	finished    bool      // terminal 1.0 delivered
	highWater   float64   // largest raw fraction seen, for monotonicity
	now         func() time.Time
}

// NewEmitter creates an emitter for sourcePath. A nil listener is valid and
// turns the emitter into a pure bookkeeper.
func NewEmitter(sourcePath string, config Config, listener Listener) *Emitter {
	return &Emitter{
		source:   sourcePath,
		config:   config,
		listener: listener,
		now:      time.Now,
	}
}

// Last returns the most recently emitted fraction, or 0 if nothing has been
// emitted yet.
func (e *Emitter) Last() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Update feeds a raw fraction into the emitter. It returns true when the
// event was delivered to the listener, false when it was filtered.
func (e *Emitter) Update(raw float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return false
	}

	f := clamp(raw)

	// Monotonicity: never go backwards within one job.
	if f < e.highWater {
		return false
	}
	e.highWater = f

	boundary := f == 0 || f == 1

	// Duplicate of the previous emission.
	if e.emitted && f == e.last {
		return false
	}

	if !boundary {
		if e.emitted && f-e.last < e.config.MinDelta {
			return false
		}
		if e.emitted && e.now().Sub(e.lastTime) < e.config.MinInterval {
			return false
		}
	}

	e.deliver(f)
	return true
}

// Finish delivers the terminal 1.0 event. It is idempotent: only the first
// call emits. Every job, regardless of outcome, must end with Finish so
// observers relying on completion semantics never hang.
func (e *Emitter) Finish() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finished {
		return false
	}
	e.deliver(1)
	return true
}

// Finished reports whether the terminal event has been delivered.
func (e *Emitter) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

// deliver emits f. Caller must hold e.mu.
func (e *Emitter) deliver(f float64) {
	e.emitted = true
	e.last = f
	e.lastTime = e.now()
	if f == 1 {
		e.finished = true
	}
	if e.listener != nil {
		e.listener(e.source, f)
	}
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
