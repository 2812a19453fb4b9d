// Package tabsync propagates shared-key writes made by other execution
// contexts into this context's in-memory collection.
//
// The browser original reacted to storage-change notifications; here the
// watcher polls the shared key on a cron schedule and compares the envelope
// write stamp against the last stamp it applied. Local saves report their
// stamp through the store's OnPersist hook, so a context never re-applies
// its own echoed write and never writes back from the sync path.
package tabsync

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/seniorplus/agenda/internal/persist"
	"github.com/seniorplus/agenda/internal/store"
)

// DefaultSchedule is the poll cadence used when the config does not set one.
const DefaultSchedule = "@every 2s"

// Watcher observes the shared storage key and replaces the store's state
// when another context has written a newer envelope.
type Watcher struct {
	layer *persist.Layer
	store *store.EventStore
	log   *slog.Logger
	cron  *cron.Cron

	mu          sync.Mutex
	lastApplied string
}

// New wires a watcher to the store: the store's persist hook marks each
// local save as already applied. A nil logger falls back to slog.Default().
func New(layer *persist.Layer, st *store.EventStore, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	w := &Watcher{layer: layer, store: st, log: log}
	st.OnPersist(w.MarkApplied)
	return w
}

// MarkApplied records an envelope stamp as already reflected in memory.
func (w *Watcher) MarkApplied(stamp string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastApplied = stamp
}

// CheckNow polls the shared key once. Returns true when a foreign write was
// applied. Absent, unparsable and already-applied payloads are skipped;
// malformed payloads never cause a partial merge.
func (w *Watcher) CheckNow(ctx context.Context) bool {
	raws, stamp, ok := w.layer.LoadShared(ctx)
	if !ok {
		return false
	}

	w.mu.Lock()
	// Bare-array payloads carry no stamp and cannot be deduplicated; they
	// are re-applied on every poll, which is redundant but harmless.
	if stamp != "" && stamp == w.lastApplied {
		w.mu.Unlock()
		return false
	}
	w.lastApplied = stamp
	w.mu.Unlock()

	events := w.layer.Normalizer().NormalizeAll(raws)
	w.store.ReplaceAll(events)
	w.log.Debug("applied foreign write", "stamp", stamp, "events", len(events))
	return true
}

// Start begins polling on the given cron schedule (e.g. "@every 2s").
func (w *Watcher) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		w.CheckNow(context.Background())
	}); err != nil {
		return err
	}
	c.Start()
	w.cron = c
	return nil
}

// Stop halts polling. Safe to call when the watcher was never started.
func (w *Watcher) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
}
