package jobs

import (
	"context"
	"sync"
	"time"

	"vidpress/internal/preset"
	"vidpress/internal/progress"
)

// State is a job or batch lifecycle state.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCanceled  State = "canceled"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCanceled:
		return true
	}
	return false
}

// Request describes one transcode. Immutable once submitted.
type Request struct {
	SourcePath string         `json:"sourcePath"`
	Quality    preset.Quality `json:"quality"`
	Format     preset.Format  `json:"format"`
	// OutputPath pins the destination. When set, the result cache is
	// bypassed in both directions.
	OutputPath string `json:"outputPath,omitempty"`
}

// Job is the caller's handle on one submitted transcode.
type Job struct {
	ID      string
	Request Request

	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	state      State
	fraction   float64
	outputPath string
	err        error
	cached     bool
	createdAt  time.Time
	finishedAt time.Time
}

// Snapshot is the JSON view of a job for the HTTP API.
type Snapshot struct {
	ID         string  `json:"id"`
	Request    Request `json:"request"`
	State      State   `json:"state"`
	Progress   float64 `json:"progress"`
	OutputPath string  `json:"outputPath,omitempty"`
	Error      string  `json:"error,omitempty"`
	Cached     bool    `json:"cached"`
	CreatedAt  int64   `json:"createdAt"`
	FinishedAt int64   `json:"finishedAt,omitempty"`
}

// Done returns a channel closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// State returns the current lifecycle state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Progress returns the last cleaned fraction.
func (j *Job) Progress() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fraction
}

// Result returns the output path and error. Valid once Done is closed.
func (j *Job) Result() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputPath, j.err
}

// Cached reports whether the job was served from the result cache or an
// already-existing destination.
func (j *Job) Cached() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cached
}

// Cancel requests cooperative cancellation. The job still delivers its
// terminal progress event and lands in StateCanceled.
func (j *Job) Cancel() {
	j.cancel()
}

// Snapshot captures the job for serialization.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	s := Snapshot{
		ID:        j.ID,
		Request:   j.Request,
		State:     j.state,
		Progress:  j.fraction,
		Cached:    j.cached,
		CreatedAt: j.createdAt.Unix(),
	}
	if j.state.Terminal() {
		s.OutputPath = j.outputPath
		s.FinishedAt = j.finishedAt.Unix()
		if j.err != nil {
			s.Error = j.err.Error()
		}
	}
	return s
}

func (j *Job) setProgress(f float64) {
	j.mu.Lock()
	j.fraction = f
	j.mu.Unlock()
}

func (j *Job) setRunning() {
	j.mu.Lock()
	j.state = StateRunning
	j.mu.Unlock()
}

// Batch is the caller's handle on a group of jobs submitted together.
type Batch struct {
	ID   string
	agg  *progress.Aggregator
	done chan struct{}

	mu      sync.Mutex
	state   State
	jobs    []*Job
	results []string
}

// Done returns a channel closed when every member job is terminal.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// State returns the batch lifecycle state.
func (b *Batch) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Progress returns the aggregate fraction: the arithmetic mean of every
// member's last-known fraction. An empty batch reads 1.
func (b *Batch) Progress() float64 {
	return b.agg.Mean()
}

// Jobs returns the member job handles in submission order.
func (b *Batch) Jobs() []*Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Job, len(b.jobs))
	copy(out, b.jobs)
	return out
}

// Results returns the output paths of the members that completed, in
// submission order. Failed and canceled members are omitted. Valid once
// Done is closed.
func (b *Batch) Results() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.results))
	copy(out, b.results)
	return out
}

// Cancel cancels every member that is not already terminal.
func (b *Batch) Cancel() {
	for _, j := range b.Jobs() {
		j.Cancel()
	}
}

// BatchSnapshot is the JSON view of a batch for the HTTP API.
type BatchSnapshot struct {
	ID       string     `json:"id"`
	State    State      `json:"state"`
	Progress float64    `json:"progress"`
	Jobs     []Snapshot `json:"jobs"`
	Results  []string   `json:"results,omitempty"`
}

// Snapshot captures the batch for serialization.
func (b *Batch) Snapshot() BatchSnapshot {
	b.mu.Lock()
	state := b.state
	jobs := make([]*Job, len(b.jobs))
	copy(jobs, b.jobs)
	results := make([]string, len(b.results))
	copy(results, b.results)
	b.mu.Unlock()

	s := BatchSnapshot{
		ID:       b.ID,
		State:    state,
		Progress: b.agg.Mean(),
	}
	for _, j := range jobs {
		s.Jobs = append(s.Jobs, j.Snapshot())
	}
	if state.Terminal() {
		s.Results = results
	}
	return s
}
