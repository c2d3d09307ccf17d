package roster

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/team-roster/pkg/core/model"
)

// EntryPersister is the slice of the persistence layer the writer needs.
type EntryPersister interface {
	SaveEntry(ctx context.Context, date string, entry *model.RosterEntry) error
	SaveEntries(ctx context.Context, entries map[string]*model.RosterEntry) error
}

// WriteRecorder receives writer telemetry. Implemented by pkg/metrics.
type WriteRecorder interface {
	WriteAttempt()
	WriteRetry()
	WriteFailure()
}

// WriterOptions tune the sync writer's retry behaviour.
type WriterOptions struct {
	// MaxAttempts per entry write, including the first. Default 3.
	MaxAttempts int
	// RetryDelay is the initial backoff, doubled per retry. Default 500ms.
	RetryDelay time.Duration
	// WriteTimeout bounds each remote write. Default 10s.
	WriteTimeout time.Duration
	// OnFailure is called after an entry write exhausts its attempts.
	// The optimistic local edit is not rolled back.
	OnFailure func(date string, err error)
	// Recorder receives telemetry; nil disables it.
	Recorder WriteRecorder
}

// Writer persists staged entries with one serialized queue per date:
// writes for the same date never interleave, and a newer staged entry
// supersedes an unsent older one (latest-wins coalescing). Entries for
// different dates are written concurrently.
type Writer struct {
	persister EntryPersister
	logger    *zap.Logger
	opts      WriterOptions

	mu      sync.Mutex
	pending map[string]*model.RosterEntry
	active  map[string]bool
	wg      sync.WaitGroup
}

// NewWriter creates a sync writer over the given persister.
func NewWriter(persister EntryPersister, logger *zap.Logger, opts WriterOptions) *Writer {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	return &Writer{
		persister: persister,
		logger:    logger,
		opts:      opts,
		pending:   make(map[string]*model.RosterEntry),
		active:    make(map[string]bool),
	}
}

// Enqueue schedules the entry for remote persistence. It never blocks: if
// an older entry for the date is still queued, the newer one replaces it.
func (w *Writer) Enqueue(date string, entry *model.RosterEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[date] = entry
	if w.active[date] {
		return
	}

	w.active[date] = true
	w.wg.Add(1)
	go w.drain(date)
}

// SaveAll writes all entries in one batch, bypassing the per-date queues.
func (w *Writer) SaveAll(ctx context.Context, entries map[string]*model.RosterEntry) error {
	return w.persister.SaveEntries(ctx, entries)
}

// Flush blocks until every queued write has completed or failed
// terminally. Used on shutdown and in tests.
func (w *Writer) Flush() {
	w.wg.Wait()
}

// drain writes queued entries for one date in order until none remain.
func (w *Writer) drain(date string) {
	defer w.wg.Done()

	for {
		w.mu.Lock()
		entry, ok := w.pending[date]
		if !ok {
			w.active[date] = false
			w.mu.Unlock()
			return
		}
		delete(w.pending, date)
		w.mu.Unlock()

		w.write(date, entry)
	}
}

// write persists one entry with bounded retry and exponential backoff.
func (w *Writer) write(date string, entry *model.RosterEntry) {
	delay := w.opts.RetryDelay

	var err error
	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		if w.opts.Recorder != nil {
			w.opts.Recorder.WriteAttempt()
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.opts.WriteTimeout)
		err = w.persister.SaveEntry(ctx, date, entry)
		cancel()

		if err == nil {
			w.logger.Debug("Entry synced", zap.String("date", date), zap.Int("attempt", attempt))
			return
		}

		w.logger.Warn("Entry sync attempt failed",
			zap.String("date", date),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt < w.opts.MaxAttempts {
			if w.opts.Recorder != nil {
				w.opts.Recorder.WriteRetry()
			}
			time.Sleep(delay)
			delay *= 2
		}
	}

	if w.opts.Recorder != nil {
		w.opts.Recorder.WriteFailure()
	}
	w.logger.Error("Entry sync failed, local state diverges until next save",
		zap.String("date", date),
		zap.Error(err))

	if w.opts.OnFailure != nil {
		w.opts.OnFailure(date, err)
	}
}
