// Package worker decodes raw snapshot records, normalizes them, and loads
// the resulting rows into a staging sink.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/runindex/runindex/internal/adapters/ingest/queue"
	"github.com/runindex/runindex/internal/domain/model"
	"github.com/runindex/runindex/internal/domain/normalize"
	"github.com/runindex/runindex/pkg/logger"
	"github.com/runindex/runindex/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU(); decode is CPU-bound
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Record is what workers read off the queue.
type Record = queue.Record

// Sink receives normalized rows as records come off the queue.
// Implementations must be safe for concurrent use.
type Sink interface {
	PutGame(ctx context.Context, game model.Game, categories []model.Category, levels []model.Level) error
	PutUser(ctx context.Context, user model.User) error
	PutRun(ctx context.Context, run model.Run) error
}

// Queue defines how workers receive records.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Record
}

// Worker processes raw records until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining records before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing snapshot records.
type InMemoryWorker struct {
	queue Queue
	sink  Sink
	name  string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		sink:     sink,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	recordChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case record, ok := <-recordChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processRecord(ctx, record); err != nil {
				w.logger.Debug(ctx, "record rejected", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processRecord decodes and normalizes a single record.
func (w *InMemoryWorker) processRecord(ctx context.Context, record Record) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	switch record.Kind {
	case model.KindGame:
		return w.processGame(ctx, record.Line)
	case model.KindUser:
		return w.processUser(ctx, record.Line)
	case model.KindRun:
		return w.processRun(ctx, record.Line)
	default:
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "unknown_kind")
		return fmt.Errorf("unknown record kind %d", record.Kind)
	}
}

func (w *InMemoryWorker) processGame(ctx context.Context, line []byte) error {
	var raw normalize.RawGame
	if err := json.Unmarshal(line, &raw); err != nil {
		metrics.RecordNormalizeError("game", "decode")
		metrics.RecordWorkerError()
		return fmt.Errorf("decode game: %w", err)
	}

	game, categories, levels, err := normalize.Game(&raw)
	if err != nil {
		metrics.RecordNormalizeError("game", errorLabel(err))
		metrics.RecordWorkerError()
		return fmt.Errorf("normalize game %s: %w", raw.ID, err)
	}

	if err := w.sink.PutGame(ctx, game, categories, levels); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		return fmt.Errorf("store game %s: %w", raw.ID, err)
	}

	metrics.RecordRecordIngested("game")
	return nil
}

func (w *InMemoryWorker) processUser(ctx context.Context, line []byte) error {
	var raw normalize.RawUser
	if err := json.Unmarshal(line, &raw); err != nil {
		metrics.RecordNormalizeError("user", "decode")
		metrics.RecordWorkerError()
		return fmt.Errorf("decode user: %w", err)
	}

	user, placeholder, err := normalize.User(&raw)
	if err != nil {
		metrics.RecordNormalizeError("user", errorLabel(err))
		metrics.RecordWorkerError()
		return fmt.Errorf("normalize user %s: %w", raw.ID, err)
	}
	if placeholder {
		metrics.RecordPlaceholderUser()
	}

	if err := w.sink.PutUser(ctx, user); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		return fmt.Errorf("store user %s: %w", raw.ID, err)
	}

	metrics.RecordRecordIngested("user")
	return nil
}

func (w *InMemoryWorker) processRun(ctx context.Context, line []byte) error {
	var raw normalize.RawRun
	if err := json.Unmarshal(line, &raw); err != nil {
		metrics.RecordNormalizeError("run", "decode")
		metrics.RecordWorkerError()
		return fmt.Errorf("decode run: %w", err)
	}

	run, err := normalize.Run(&raw)
	if err != nil {
		metrics.RecordNormalizeError("run", errorLabel(err))
		metrics.RecordWorkerError()
		return fmt.Errorf("normalize run %s: %w", raw.ID, err)
	}
	if run == nil {
		// Unverified run, silently skipped
		return nil
	}

	if err := w.sink.PutRun(ctx, *run); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		return fmt.Errorf("store run %s: %w", raw.ID, err)
	}

	metrics.RecordRecordIngested("run")
	return nil
}

// errorLabel maps a normalization error to a low-cardinality metric label.
func errorLabel(err error) string {
	var verr *normalize.ValidationError
	switch {
	case errors.Is(err, normalize.ErrNoNames):
		return "no_names"
	case errors.Is(err, normalize.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, normalize.ErrCategoryType):
		return "category_type"
	case errors.Is(err, normalize.ErrTimingMethod):
		return "timing_method"
	case errors.Is(err, normalize.ErrPlayerRel):
		return "player_rel"
	case errors.Is(err, normalize.ErrDuration):
		return "duration"
	case errors.Is(err, normalize.ErrDate):
		return "date"
	case errors.As(err, &verr):
		return "validation"
	default:
		return "other"
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	sink    Sink

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		sink:     sink,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Wait blocks until every worker has drained the queue and stopped.
// The queue must be closed first or Wait will not return.
func (p *Pool) Wait() {
	for _, worker := range p.workers {
		<-worker.done
	}
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	close(p.shutdown)
	for _, worker := range p.workers {
		close(worker.shutdown)
	}

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new records
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)

	return nil
}
