package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidpress/internal/cache"
	"vidpress/internal/database"
	"vidpress/internal/engine"
	"vidpress/internal/filesystem"
	"vidpress/internal/logging"
	"vidpress/internal/metrics"
	"vidpress/internal/preset"
	"vidpress/internal/progress"
)

// ErrInvalidArguments rejects malformed requests at the API boundary.
var ErrInvalidArguments = errors.New("invalid arguments")

// ErrShuttingDown rejects submissions after Close.
var ErrShuttingDown = errors.New("manager is shutting down")

// Prober extracts media info from a source. Production code uses
// engine.Prober; tests substitute fakes.
type Prober interface {
	Probe(ctx context.Context, path string) (*engine.MediaInfo, error)
}

// Config tunes the manager.
type Config struct {
	// MaxConcurrent bounds simultaneously running encoders.
	MaxConcurrent int
	// Progress configures per-job throttling.
	Progress progress.Config
	// DisableCache turns off result-cache short-circuiting.
	DisableCache bool
	// HistoryLimit caps GET /api/jobs responses.
	HistoryLimit int
}

// DefaultConfig returns manager defaults: encoder slots bounded by the
// available CPUs and standard progress throttling.
func DefaultConfig(maxConcurrent int) Config {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return Config{
		MaxConcurrent: maxConcurrent,
		Progress:      progress.DefaultConfig(),
		HistoryLimit:  50,
	}
}

// Manager owns the transcode job lifecycle.
type Manager struct {
	runner   engine.Runner
	prober   Prober
	resolver *preset.Resolver
	cache    *cache.Cache
	db       *database.Database
	config   Config

	baseCtx context.Context
	stop    context.CancelFunc
	sem     chan struct{}
	wg      sync.WaitGroup

	mu        sync.RWMutex
	jobs      map[string]*Job
	batches   map[string]*Batch
	listeners []progress.Listener
	closed    bool
}

// NewManager wires a manager. The cache may be nil only in tests that
// exercise explicit-output paths exclusively.
func NewManager(runner engine.Runner, prober Prober, resolver *preset.Resolver, resultCache *cache.Cache, db *database.Database, config Config) *Manager {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		runner:   runner,
		prober:   prober,
		resolver: resolver,
		cache:    resultCache,
		db:       db,
		config:   config,
		baseCtx:  ctx,
		stop:     cancel,
		sem:      make(chan struct{}, config.MaxConcurrent),
		jobs:     make(map[string]*Job),
		batches:  make(map[string]*Batch),
	}
}

// OnProgress registers a listener for cleaned per-source progress events.
// Listeners must not block; they are invoked inline from worker goroutines.
func (m *Manager) OnProgress(l progress.Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *Manager) broadcast(sourcePath string, fraction float64) {
	m.mu.RLock()
	listeners := m.listeners
	m.mu.RUnlock()
	for _, l := range listeners {
		l(sourcePath, fraction)
	}
}

// Submit accepts one request and returns immediately with a job handle.
func (m *Manager) Submit(req Request) (*Job, error) {
	if req.SourcePath == "" {
		return nil, fmt.Errorf("%w: source path is required", ErrInvalidArguments)
	}
	return m.submit(req, nil)
}

// submit registers a job and starts its worker. memberProgress, when
// non-nil, receives every cleaned fraction for batch aggregation.
func (m *Manager) submit(req Request, memberProgress func(float64)) (*Job, error) {
	ctx, cancel := context.WithCancel(m.baseCtx)
	job := &Job{
		ID:        uuid.NewString(),
		Request:   req,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     StatePending,
		createdAt: time.Now(),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return nil, ErrShuttingDown
	}
	m.jobs[job.ID] = job
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx, job, memberProgress)
	return job, nil
}

// run drives one job from Pending to a terminal state. It guarantees the
// terminal 1.0 progress event on every path out.
func (m *Manager) run(ctx context.Context, job *Job, memberProgress func(float64)) {
	defer m.wg.Done()

	emitter := progress.NewEmitter(job.Request.SourcePath, m.config.Progress, func(source string, f float64) {
		job.setProgress(f)
		if memberProgress != nil {
			memberProgress(f)
		}
		m.broadcast(source, f)
	})

	// Queue for an encoder slot. Cancellation while pending still yields
	// terminal progress.
	select {
	case m.sem <- struct{}{}:
		defer func() { <-m.sem }()
	case <-ctx.Done():
		emitter.Finish()
		m.finish(job, "", engine.ErrCanceled, false, time.Now())
		return
	}

	start := time.Now()
	job.setRunning()
	metrics.JobsInProgress.Inc()
	defer metrics.JobsInProgress.Dec()

	req := job.Request

	dest := req.OutputPath
	var key string
	if dest == "" {
		if m.cache == nil {
			emitter.Finish()
			m.finish(job, "", fmt.Errorf("%w: no output path and no cache directory", ErrInvalidArguments), false, start)
			return
		}
		// The key names the output file even when short-circuiting is off.
		key = cache.Key(req.SourcePath, req.Quality, req.Format)
		dest = m.cache.OutputPath(key, req.Format)
	}

	// Result cache short-circuit. Explicit output paths bypass the cache.
	useCache := m.cache != nil && !m.config.DisableCache && req.OutputPath == ""
	if useCache {
		if path, ok := m.cache.Lookup(ctx, key); ok {
			logging.Debug("Cache hit for %s (%s/%s): %s", req.SourcePath, req.Quality, req.Format, path)
			emitter.Finish()
			m.finish(job, path, nil, true, start)
			return
		}
	}

	// Idempotence: a non-empty destination is accepted as the result.
	if filesystem.Exists(dest) {
		logging.Debug("Destination already exists, skipping encode: %s", dest)
		if useCache {
			m.insertCacheEntry(key, req, dest)
		}
		emitter.Finish()
		m.finish(job, dest, nil, true, start)
		return
	}

	if err := filesystem.EnsureDir(filepath.Dir(dest)); err != nil {
		emitter.Finish()
		m.finish(job, "", fmt.Errorf("%w: %v", engine.ErrUnknown, err), false, start)
		return
	}

	info, err := m.prober.Probe(ctx, req.SourcePath)
	if err != nil {
		emitter.Finish()
		m.finish(job, "", err, false, start)
		return
	}

	chosen := m.resolver.Resolve(req.Quality, req.Format, compatibilityProbe(info))
	logging.Debug("Resolved preset %s for %s (source %dx%d, %.1fs)",
		chosen.Name, req.SourcePath, info.Width, info.Height, info.Duration)

	task := engine.Task{
		SourcePath: req.SourcePath,
		DestPath:   dest,
		Preset:     chosen,
		Format:     req.Format,
		Duration:   info.Duration,
	}

	err = m.runner.Run(ctx, task, func(raw float64) {
		if emitter.Update(raw) {
			metrics.ProgressEventsTotal.WithLabelValues("emitted").Inc()
		} else {
			metrics.ProgressEventsTotal.WithLabelValues("throttled").Inc()
		}
	})

	emitter.Finish()

	if err != nil {
		// Drop partial output so it can never satisfy a later lookup.
		if req.OutputPath == "" {
			if rmErr := filesystem.RemoveWithRetry(dest, filesystem.DefaultRetryConfig()); rmErr != nil {
				logging.Debug("failed to remove partial output %s: %v", dest, rmErr)
			}
		}
		m.finish(job, "", err, false, start)
		return
	}

	if useCache {
		m.insertCacheEntry(key, req, dest)
	}
	m.finish(job, dest, nil, false, start)
}

// compatibilityProbe accepts presets that do not exceed the source height.
// Unknown dimensions accept everything; the resolver's fallback covers the
// degenerate case where nothing matches.
func compatibilityProbe(info *engine.MediaInfo) preset.CompatibilityProbe {
	return func(p preset.Preset) bool {
		if info.Height <= 0 || p.MaxHeight <= 0 {
			return true
		}
		return p.MaxHeight <= info.Height
	}
}

func (m *Manager) insertCacheEntry(key string, req Request, dest string) {
	err := m.cache.Insert(m.baseCtx, database.CacheEntry{
		Key:        key,
		SourcePath: req.SourcePath,
		Quality:    string(req.Quality),
		Format:     string(req.Format),
		OutputPath: dest,
	})
	if err != nil {
		logging.Warn("failed to record cache entry for %s: %v", req.SourcePath, err)
	}
}

// finish moves the job to its terminal state, closes Done, and records the
// outcome.
func (m *Manager) finish(job *Job, outputPath string, err error, cached bool, start time.Time) {
	now := time.Now()

	state := StateCompleted
	switch {
	case errors.Is(err, engine.ErrCanceled):
		state = StateCanceled
	case err != nil:
		state = StateFailed
	}

	job.mu.Lock()
	job.state = state
	job.outputPath = outputPath
	job.err = err
	job.cached = cached
	job.finishedAt = now
	job.mu.Unlock()
	close(job.done)

	switch state {
	case StateCompleted:
		if cached {
			metrics.JobsTotal.WithLabelValues("cached").Inc()
		} else {
			metrics.JobsTotal.WithLabelValues("completed").Inc()
		}
		logging.Info("Job %s completed: %s -> %s (cached=%t, %.2fs)",
			job.ID, job.Request.SourcePath, outputPath, cached, now.Sub(start).Seconds())
	case StateCanceled:
		metrics.JobsTotal.WithLabelValues("canceled").Inc()
		logging.Info("Job %s canceled: %s", job.ID, job.Request.SourcePath)
	case StateFailed:
		metrics.JobsTotal.WithLabelValues("failed").Inc()
		logging.Error("Job %s failed: %s: %v", job.ID, job.Request.SourcePath, err)
	}
	metrics.JobDuration.Observe(now.Sub(start).Seconds())

	m.recordHistory(job, state, outputPath, err, cached, start, now)
}

func (m *Manager) recordHistory(job *Job, state State, outputPath string, err error, cached bool, start, end time.Time) {
	if m.db == nil {
		return
	}
	rec := database.JobRecord{
		ID:         job.ID,
		SourcePath: job.Request.SourcePath,
		Quality:    string(job.Request.Quality),
		Format:     string(job.Request.Format),
		OutputPath: outputPath,
		State:      string(state),
		Cached:     cached,
		CreatedAt:  job.createdAt.Unix(),
		FinishedAt: end.Unix(),
	}
	if err != nil {
		rec.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if dbErr := m.db.RecordJob(ctx, rec); dbErr != nil {
		logging.Warn("failed to record job %s: %v", job.ID, dbErr)
	}
}

// SubmitBatch accepts a group of requests and returns immediately with a
// batch handle. Members run concurrently through the encoder slots. An
// empty batch completes at once with empty results and a single aggregate
// 1.0.
func (m *Manager) SubmitBatch(reqs []Request) (*Batch, error) {
	batch := &Batch{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}
	batch.agg = progress.NewAggregator(len(reqs), func(mean float64) {
		m.broadcast("batch:"+batch.ID, mean)
	})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrShuttingDown
	}
	m.batches[batch.ID] = batch
	m.mu.Unlock()

	metrics.BatchesTotal.Inc()
	metrics.BatchSize.Observe(float64(len(reqs)))

	if len(reqs) == 0 {
		batch.mu.Lock()
		batch.state = StateCompleted
		batch.results = []string{}
		batch.mu.Unlock()
		batch.agg.Finish()
		close(batch.done)
		return batch, nil
	}

	batch.mu.Lock()
	batch.state = StateRunning
	batch.mu.Unlock()
	metrics.BatchesInProgress.Inc()

	members := make([]*Job, 0, len(reqs))
	for i, req := range reqs {
		index := i
		job, err := m.submit(req, func(f float64) {
			batch.agg.Update(index, f)
		})
		if err != nil {
			// Shutdown raced the loop; cancel what already started.
			for _, started := range members {
				started.Cancel()
			}
			m.mu.Lock()
			delete(m.batches, batch.ID)
			m.mu.Unlock()
			metrics.BatchesInProgress.Dec()
			return nil, err
		}
		members = append(members, job)
	}

	batch.mu.Lock()
	batch.jobs = members
	batch.mu.Unlock()

	go m.awaitBatch(batch, members)
	return batch, nil
}

// awaitBatch collects member outcomes and completes the batch. The batch
// itself always completes; member failures only shrink the result list.
func (m *Manager) awaitBatch(batch *Batch, members []*Job) {
	results := make([]string, 0, len(members))
	for _, job := range members {
		<-job.Done()
		path, err := job.Result()
		if err != nil {
			logging.Warn("Batch %s member %s failed: %v", batch.ID, job.Request.SourcePath, err)
			continue
		}
		results = append(results, path)
	}

	batch.mu.Lock()
	batch.state = StateCompleted
	batch.results = results
	batch.mu.Unlock()

	batch.agg.Finish()
	close(batch.done)
	metrics.BatchesInProgress.Dec()
	logging.Info("Batch %s completed: %d/%d members succeeded", batch.ID, len(results), len(members))
}

// Get returns the job handle for id.
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	return job, ok
}

// GetBatch returns the batch handle for id.
func (m *Manager) GetBatch(id string) (*Batch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	batch, ok := m.batches[id]
	return batch, ok
}

// Cancel cancels the job with id. Returns false for unknown ids.
func (m *Manager) Cancel(id string) bool {
	job, ok := m.Get(id)
	if !ok {
		return false
	}
	job.Cancel()
	return true
}

// History returns recent terminal job records, newest first.
func (m *Manager) History(ctx context.Context) ([]database.JobRecord, error) {
	if m.db == nil {
		return nil, nil
	}
	return m.db.RecentJobs(ctx, m.config.HistoryLimit)
}

// ClearCache drops every cached result, returning the count of files
// actually removed.
func (m *Manager) ClearCache() int {
	if m.cache == nil {
		return 0
	}
	return m.cache.Clear(m.baseCtx)
}

// ListCachedFiles enumerates valid cached output paths.
func (m *Manager) ListCachedFiles() []string {
	if m.cache == nil {
		return nil
	}
	return m.cache.List(m.baseCtx)
}

// RemoveCachedFile drops the cached result for a request. Returns true
// when an entry existed.
func (m *Manager) RemoveCachedFile(req Request) bool {
	if m.cache == nil {
		return false
	}
	return m.cache.Remove(m.baseCtx, cache.Key(req.SourcePath, req.Quality, req.Format))
}

// Close stops accepting work, cancels running jobs, and waits for workers
// to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.stop()
	m.wg.Wait()
}
