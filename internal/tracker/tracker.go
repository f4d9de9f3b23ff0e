// Package tracker owns the in-memory roadmap state.
//
// A Tracker loads the catalog, manifest, and remote snapshot, reconciles
// them, and exposes read snapshots plus mutation operations. Mutations are
// optimistic: local state changes immediately and the remote write runs in
// the background. The outcome of that write only toggles the dirty flag; it
// never reverts local state. Writes reach the remote in mutation order, and
// a generation counter keeps an older successful write from clearing the
// flag set by a newer mutation.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"roadmap/internal/catalog"
	"roadmap/internal/derive"
	"roadmap/internal/logging"
	"roadmap/internal/manifest"
	"roadmap/internal/queue"
	"roadmap/internal/reconcile"
)

// ErrDerived is returned when a status change targets a module whose status
// is forced by the manifest.
var ErrDerived = errors.New("status is derived from the build manifest")

// Remote is the snapshot store the tracker persists to.
type Remote interface {
	Fetch(ctx context.Context) ([]catalog.Patch, error)
	ReplaceAll(ctx context.Context, modules []catalog.Module) error
	Upsert(ctx context.Context, module catalog.Module) error
	Reset(ctx context.Context) (int64, error)
}

// Tracker is the owned roadmap store.
type Tracker struct {
	defs   []catalog.Module
	man    *manifest.Manifest
	idx    manifest.Index
	remote Remote
	logger *slog.Logger
	now    func() time.Time

	writes errgroup.Group
	tail   chan struct{}

	mu         sync.Mutex
	modules    []catalog.Module
	drift      reconcile.Drift
	offline    bool
	dirty      bool
	generation uint64
	lastErr    error
}

// Option customises Tracker construction.
type Option func(*Tracker)

// WithClock overrides the clock used to stamp updatedAt.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// New builds a tracker seeded with the derived catalog. Call Load to merge
// the remote snapshot.
func New(cat *catalog.Catalog, man *manifest.Manifest, remote Remote, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		defs:   cat.Definitions(),
		man:    man,
		idx:    man.Index(),
		remote: remote,
		logger: logging.NewComponentLogger(logger, "tracker"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.modules = queue.Renumber(derive.ApplyAll(t.defs, man))
	return t
}

// Load fetches the remote snapshot and reconciles it. A failed fetch is not
// an error: the tracker falls back to the derived catalog and marks itself
// offline. When the merged view differs from the snapshot a full resync is
// dispatched in the background.
func (t *Tracker) Load(ctx context.Context) reconcile.Result {
	remote, err := t.remote.Fetch(ctx)
	offline := err != nil
	if offline {
		logging.WarnWithContext(logging.WithContext(ctx, t.logger), "remote snapshot unavailable; using catalog", "remote_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check remote.base_url and that roadmapd is running"),
			logging.String(logging.FieldImpact, "showing catalog and manifest state only"),
		)
		remote = nil
	}

	res := reconcile.Reconcile(t.defs, t.man, remote)
	for _, id := range res.Drift.StaleRepaired {
		t.logger.Info("stale remote status repaired",
			logging.Args(append(logging.DecisionAttrs("staleness_repair", "catalog", "remote reports not-started for a hand-set module"),
				logging.String(logging.FieldModuleID, id))...)...)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.modules = res.Modules
	t.drift = res.Drift
	t.offline = offline

	reason := "snapshot matches"
	switch {
	case res.RemoteEmpty:
		reason = "remote snapshot empty or unavailable"
	case len(res.Drift.NewIDs) > 0:
		reason = "catalog ids missing remotely"
	case len(res.Drift.Diverged) > 0:
		reason = "status divergence"
	}
	result := "skip"
	if res.MustResync {
		result = "write"
	}
	t.logger.Info("resync decision",
		logging.Args(append(logging.DecisionAttrs("resync", result, reason),
			logging.Int("modules", len(res.Modules)),
			logging.Int("new_ids", len(res.Drift.NewIDs)),
			logging.Int("diverged", len(res.Drift.Diverged)),
			logging.Int("unknown", len(res.Drift.Unknown)),
		)...)...)

	if res.MustResync {
		t.markDirtyLocked()
		snapshot := catalog.CloneModules(t.modules)
		t.dispatchLocked(ctx, "resync", func(ctx context.Context) error {
			return t.remote.ReplaceAll(ctx, snapshot)
		})
	}
	return res
}

// Modules returns a copy of the reconciled modules in catalog order.
func (t *Tracker) Modules() []catalog.Module {
	t.mu.Lock()
	defer t.mu.Unlock()
	return catalog.CloneModules(t.modules)
}

// Module returns one reconciled module.
func (t *Tracker) Module(id string) (catalog.Module, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := catalog.IndexOf(t.modules, id)
	if i < 0 {
		return catalog.Module{}, false
	}
	return t.modules[i].Clone(), true
}

// Queue returns the execution queue in order.
func (t *Tracker) Queue() []catalog.Module {
	t.mu.Lock()
	defer t.mu.Unlock()
	return queue.Ordered(t.modules)
}

// Progress summarizes completion across the roadmap.
func (t *Tracker) Progress() derive.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return derive.Summarize(t.modules)
}

// Drift returns the drift found by the last Load.
func (t *Tracker) Drift() reconcile.Drift {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drift
}

// Dirty reports whether local state has changes the remote has not accepted.
func (t *Tracker) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dirty
}

// Offline reports whether the last Load could not reach the remote.
func (t *Tracker) Offline() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offline
}

// Derived reports whether the module's status is forced by the manifest.
func (t *Tracker) Derived(id string) bool {
	return len(t.idx[id]) > 0
}

// SetStatus changes a module's status and keeps the queue consistent.
func (t *Tracker) SetStatus(ctx context.Context, id string, status catalog.Status) (catalog.Module, error) {
	if t.Derived(id) {
		return catalog.Module{}, fmt.Errorf("%s: %w", id, ErrDerived)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	next, err := queue.SetStatus(t.modules, id, status)
	if err != nil {
		return catalog.Module{}, err
	}
	next[catalog.IndexOf(next, id)].UpdatedAt = t.now().UTC()
	t.commitLocked(ctx, next)
	return next[catalog.IndexOf(next, id)].Clone(), nil
}

// Move swaps a queued module with its neighbour. It reports false and writes
// nothing when the module is already at that end of the queue.
func (t *Tracker) Move(ctx context.Context, id string, dir queue.Direction) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, moved, err := queue.Move(t.modules, id, dir)
	if err != nil || !moved {
		return false, err
	}
	t.commitLocked(ctx, next)
	return true, nil
}

// SetNotes replaces a module's free-form notes.
func (t *Tracker) SetNotes(ctx context.Context, id, notes string) (catalog.Module, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := catalog.IndexOf(t.modules, id)
	if i < 0 {
		return catalog.Module{}, fmt.Errorf("%w: %s", catalog.ErrUnknownModule, id)
	}
	next := catalog.CloneModules(t.modules)
	next[i].Notes = notes
	next[i].UpdatedAt = t.now().UTC()
	t.commitLocked(ctx, next)
	return next[i].Clone(), nil
}

// Save writes the full local state synchronously, after any pending
// background write.
func (t *Tracker) Save(ctx context.Context) error {
	t.mu.Lock()
	snapshot := catalog.CloneModules(t.modules)
	gen := t.generation
	prev := t.tail
	done := make(chan struct{})
	t.tail = done
	t.mu.Unlock()
	defer close(done)

	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	err := t.remote.ReplaceAll(ctx, snapshot)
	t.finishWrite(ctx, "save", gen, err)
	return err
}

// Reset clears the remote snapshot, re-derives state from the catalog and
// manifest, and writes it back. It returns how many records were removed.
func (t *Tracker) Reset(ctx context.Context) (int64, error) {
	removed, err := t.remote.Reset(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset remote snapshot: %w", err)
	}
	res := reconcile.Reconcile(t.defs, t.man, nil)

	t.mu.Lock()
	t.modules = res.Modules
	t.drift = reconcile.Drift{}
	t.offline = false
	t.markDirtyLocked()
	t.mu.Unlock()

	if err := t.Save(ctx); err != nil {
		return removed, fmt.Errorf("write derived snapshot: %w", err)
	}
	return removed, nil
}

// Wait blocks until every write dispatched so far has finished or ctx is
// done. It returns an error when local changes remain unsaved. Writes run in
// a chain, so the most recent one finishing means all earlier ones have too.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	tail := t.tail
	t.mu.Unlock()

	if tail != nil {
		select {
		case <-tail:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dirty {
		if t.lastErr != nil {
			return fmt.Errorf("unsaved changes: %w", t.lastErr)
		}
		return errors.New("unsaved changes")
	}
	return nil
}

// Close blocks until every background write goroutine has returned. The
// tracker must not be mutated after Close.
func (t *Tracker) Close() {
	_ = t.writes.Wait()
}

// commitLocked installs next and dispatches the write. A single changed
// module is upserted; anything wider is written as a full snapshot.
func (t *Tracker) commitLocked(ctx context.Context, next []catalog.Module) {
	changed := changedIndexes(t.modules, next)
	t.modules = next
	if len(changed) == 0 {
		return
	}
	t.markDirtyLocked()
	if len(changed) == 1 {
		record := next[changed[0]].Clone()
		t.dispatchLocked(logging.WithModuleID(ctx, record.ID), "upsert", func(ctx context.Context) error {
			return t.remote.Upsert(ctx, record)
		})
		return
	}
	snapshot := catalog.CloneModules(next)
	t.dispatchLocked(ctx, "bulk", func(ctx context.Context) error {
		return t.remote.ReplaceAll(ctx, snapshot)
	})
}

func (t *Tracker) markDirtyLocked() {
	t.generation++
	t.dirty = true
}

// dispatchLocked runs write in the background, after every previously
// dispatched write has finished, so the remote sees writes in mutation order.
// The write outlives ctx's cancellation; the remote client bounds it with its
// own timeout.
func (t *Tracker) dispatchLocked(ctx context.Context, kind string, write func(context.Context) error) {
	gen := t.generation
	ctx = context.WithoutCancel(ctx)
	prev := t.tail
	done := make(chan struct{})
	t.tail = done
	t.writes.Go(func() error {
		defer close(done)
		if prev != nil {
			<-prev
		}
		err := write(ctx)
		t.finishWrite(ctx, kind, gen, err)
		return nil
	})
}

func (t *Tracker) finishWrite(ctx context.Context, kind string, gen uint64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	logger := logging.WithContext(ctx, t.logger)
	if err != nil {
		t.lastErr = err
		logging.WarnWithContext(logger, "remote write failed", "remote_write_failed",
			logging.String("write", kind),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run roadmap sync once the remote store is reachable"),
			logging.String(logging.FieldImpact, "local changes not yet persisted"),
		)
		return
	}
	if gen == t.generation {
		t.dirty = false
		t.lastErr = nil
	}
	logger.Debug("remote write complete", logging.String("write", kind), logging.Bool("dirty", t.dirty))
}

func changedIndexes(prev, next []catalog.Module) []int {
	var out []int
	for i := range next {
		if i >= len(prev) || !reflect.DeepEqual(prev[i], next[i]) {
			out = append(out, i)
		}
	}
	return out
}
