// Package dotstate is a process-local application-state container: one
// current state value behind an update pipeline of transformers, vetoing
// before-middleware, an atomic commit, after-middleware and subscriber
// notification with structural-diff change detection.
package dotstate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dotstate/dotstate/deep"
	"github.com/dotstate/dotstate/devtools"
	"github.com/dotstate/dotstate/diff"
	"github.com/dotstate/dotstate/dotstate_errors"
	"github.com/dotstate/dotstate/hooks"
	"github.com/dotstate/dotstate/persist"
	"github.com/dotstate/dotstate/utils"
)

// Options configures one store at construction time.
type Options[T any] struct {
	// Config is the store-level configuration layer over the global one.
	Config Config[T]
	// Persist wires the versioned persistence engine; nil disables it.
	Persist *persist.Engine
	// Actions and AsyncActions declare the action tables. The sync/async
	// split is explicit in the declaration, never detected at runtime.
	Actions      map[string]SyncAction[T]
	AsyncActions map[string]AsyncAction[T]
	Selectors    map[string]Selector[T]

	OnRehydrateSuccess func(T)
	OnRehydrateFailure func(error)

	Logger utils.Logger
	// Devtools registers the store in the process-wide registry.
	Devtools bool
}

type subscriber[T any] struct {
	fn func(T)
}

// Store owns exactly one current state reference. Reads never observe a
// half-committed state: the commit step is a single reference swap.
type Store[T any] struct {
	name string
	opts Options[T]
	log  utils.Logger

	// pipe serializes pipeline runs; slock guards the state reference so
	// readers stay unblocked while middleware executes.
	pipe   sync.Mutex
	slock  sync.RWMutex
	state  T
	closed bool

	sublock sync.Mutex
	subs    []*subscriber[T]

	actions      map[string]func(args ...any) error
	asyncActions map[string]func(ctx context.Context, args ...any) error
	selectors    map[string]func(args ...any) any

	persist *persist.Engine
	stats   storeStats
	avg     *utils.AvgVal

	hooksOnce sync.Once
	tree      *hooks.Tree
}

// New creates a store around a deep copy of initialState. Action and
// selector wrappers are built eagerly from the declared tables.
func New[T any](name string, initialState T, opts Options[T]) *Store[T] {
	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger(Global().LogLevel)
	}
	s := &Store[T]{
		name:    name,
		opts:    opts,
		log:     log,
		state:   deep.Clone(initialState),
		persist: opts.Persist,
		avg:     utils.NewAvgVal(0),
	}
	s.buildWrappers()
	if opts.Devtools {
		devtools.Register(s)
	}
	log.Debug("store created", "store", name)
	return s
}

func (s *Store[T]) Name() string { return s.name }

// Snapshot satisfies the devtools inspection surface.
func (s *Store[T]) Snapshot() any { return s.GetState() }

// GetState returns a defensive deep copy of the current state. The store's
// own reference is never handed out.
func (s *Store[T]) GetState() T {
	s.slock.RLock()
	defer s.slock.RUnlock()
	return deep.Clone(s.state)
}

// SetState runs the full update pipeline synchronously: transform, diff,
// before-middleware, commit, after-middleware, notify. An empty diff is a
// no-op that never reaches middleware or subscribers.
func (s *Store[T]) SetState(update any, action string, inline *Config[T], args ...any) error {
	start := time.Now()
	s.pipe.Lock()
	defer s.pipe.Unlock()
	if s.closed {
		return dotstate_errors.ErrStoreClosed
	}
	cfg := resolveConfig(Global(), &s.opts.Config, inline, s.log)
	result, err := s.runPipeline(&cfg, uuid.New(), update, action, args)
	UpdateCount.WithLabelValues(s.name, action, result).Inc()
	dur := time.Since(start)
	UpdateDuration.WithLabelValues(s.name, action).Observe(dur.Seconds())
	s.avg.Add(dur.Seconds())
	return err
}

// SetStateAsync runs the identical pipeline; the only difference is that the
// outcome arrives on a buffered channel, so asynchronous action bodies can
// be awaited uniformly. Step order and blocking semantics are unchanged.
func (s *Store[T]) SetStateAsync(update any, action string, inline *Config[T], args ...any) <-chan error {
	ch := make(chan error, 1)
	ch <- s.SetState(update, action, inline, args...)
	close(ch)
	return ch
}

func (s *Store[T]) runPipeline(cfg *Config[T], uid uuid.UUID, update any, action string, args []any) (string, error) {
	prev := deep.Clone(s.state)

	candidate, err := s.buildCandidate(cfg, uid, prev, update, action)
	if err != nil {
		return s.fail(cfg, prev, action, err, false)
	}

	d := diff.Diff(prev, candidate)
	if len(d) == 0 {
		cfg.Logger.Debug("no changes", "store", s.name, "action", action, "update", uid.String())
		s.stats.bumpNoop()
		return resultNoop, nil
	}

	mc := &MiddlewareCtx[T]{
		Store:    s.name,
		Action:   action,
		UpdateID: uid,
		Phase:    PhaseBefore,
		Prev:     prev,
		Next:     deep.Clone(candidate),
		Config:   cfg,
		Diff:     d,
		Args:     args,
	}
	for _, m := range cfg.Before {
		if err := m.Fn(mc); err != nil {
			return s.fail(cfg, prev, action, err, false)
		}
	}

	// commit: the single mutation point
	s.slock.Lock()
	s.state = candidate
	s.slock.Unlock()
	s.stats.bumpCommit()

	mc.Phase = PhaseAfter
	mc.Next = deep.Clone(candidate)
	for _, m := range s.afterChain(cfg) {
		if err := m.Fn(mc); err != nil {
			return s.fail(cfg, prev, action, err, true)
		}
	}

	s.notify(candidate)
	return resultCommitted, nil
}

// fail handles any pipeline exception: roll the state back when enabled,
// always invoke the error handler, and hand the error back to the caller.
// Rollback notification only goes out when a commit had actually happened.
func (s *Store[T]) fail(cfg *Config[T], prev T, action string, err error, committed bool) (string, error) {
	result := resultError
	if committed && cfg.Rollback.enabled(true) {
		s.slock.Lock()
		s.state = prev
		s.slock.Unlock()
		s.stats.bumpRollback()
		result = resultRollback
		s.notify(prev)
	}
	s.stats.bumpError()
	if cfg.OnError != nil {
		cfg.OnError(err, s.name, action, s.GetState())
	} else {
		cfg.Logger.Error("update failed", "store", s.name, "action", action, "error", err)
	}
	return result, err
}

// afterChain appends the built-in after-middlewares behind the configured
// ones: diff logging when the flag is on, then the persistence trigger.
func (s *Store[T]) afterChain(cfg *Config[T]) []Middleware[T] {
	chain := cfg.After[:len(cfg.After):len(cfg.After)]
	if cfg.DiffLogging.enabled(false) {
		chain = append(chain, DiffLogging[T]())
	}
	if s.persist != nil {
		chain = append(chain, s.persistTrigger())
	}
	return chain
}

// persistTrigger is fire-and-forget: commit and notify never wait on the
// storage write, outcomes are reported through the engine callbacks.
func (s *Store[T]) persistTrigger() Middleware[T] {
	return Middleware[T]{
		Name: "persist",
		Fn: func(mc *MiddlewareCtx[T]) error {
			state := mc.Next
			go func() {
				_ = s.persist.PersistState(context.Background(), state)
			}()
			return nil
		},
	}
}

// Subscribe adds a listener invoked once per committed update with a fresh
// snapshot. The returned cancel is idempotent.
func (s *Store[T]) Subscribe(fn func(T)) (cancel func()) {
	sub := &subscriber[T]{fn: fn}
	s.sublock.Lock()
	s.subs = append(s.subs, sub)
	s.sublock.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() { s.removeSub(sub) })
	}
}

func (s *Store[T]) removeSub(sub *subscriber[T]) {
	s.sublock.Lock()
	for i, x := range s.subs {
		if x == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.sublock.Unlock()
}

func (s *Store[T]) SubscriberCount() int {
	s.sublock.Lock()
	defer s.sublock.Unlock()
	return len(s.subs)
}

// notify snapshots the listener list first; mutating the set during
// notification affects the next update, not this one.
func (s *Store[T]) notify(state T) {
	s.sublock.Lock()
	list := make([]*subscriber[T], len(s.subs))
	copy(list, s.subs)
	s.sublock.Unlock()
	for _, sub := range list {
		sub.fn(deep.Clone(state))
	}
	NotifyCount.WithLabelValues(s.name).Inc()
}

// Hooks returns the lazily-built accessor tree over this store's state.
func (s *Store[T]) Hooks() *hooks.Tree {
	s.hooksOnce.Do(func() {
		s.tree = hooks.NewTree(storeSource[T]{s})
	})
	return s.tree
}

// WatchPath subscribes to changes of the value at one dot path; sibling
// changes do not fire.
func (s *Store[T]) WatchPath(path string, fn func(any)) (cancel func()) {
	return s.Hooks().Watch(path, fn)
}

type storeSource[T any] struct {
	s *Store[T]
}

func (src storeSource[T]) Get(path string) (any, bool) {
	return deep.Get(src.s.GetState(), path)
}

func (src storeSource[T]) Subscribe(fn func()) (cancel func()) {
	return src.s.Subscribe(func(T) { fn() })
}

// Destroy drops all subscribers, fires a best-effort persist clear without
// waiting on it, and deregisters from devtools. Further updates fail with
// ErrStoreClosed.
func (s *Store[T]) Destroy() {
	s.pipe.Lock()
	if s.closed {
		s.pipe.Unlock()
		return
	}
	s.closed = true
	s.pipe.Unlock()

	s.sublock.Lock()
	s.subs = nil
	s.sublock.Unlock()

	if s.persist != nil {
		go func() {
			_ = s.persist.ClearPersistedState(context.Background())
		}()
	}
	if s.opts.Devtools {
		devtools.Deregister(s.name)
	}
	s.log.Debug("store destroyed", "store", s.name)
}

// Stats is a point-in-time view of pipeline counters.
type Stats struct {
	Updates    uint64
	Noops      uint64
	Rollbacks  uint64
	Errors     uint64
	LastCommit time.Time
}

type storeStats struct {
	mu         sync.Mutex
	updates    uint64
	noops      uint64
	rollbacks  uint64
	errors     uint64
	lastCommit time.Time
}

func (st *storeStats) bumpCommit() {
	st.mu.Lock()
	st.updates++
	st.lastCommit = time.Now()
	st.mu.Unlock()
}

func (st *storeStats) bumpNoop() {
	st.mu.Lock()
	st.noops++
	st.mu.Unlock()
}

func (st *storeStats) bumpRollback() {
	st.mu.Lock()
	st.rollbacks++
	st.mu.Unlock()
}

func (st *storeStats) bumpError() {
	st.mu.Lock()
	st.errors++
	st.mu.Unlock()
}

func (s *Store[T]) Stats() Stats {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	return Stats{
		Updates:    s.stats.updates,
		Noops:      s.stats.noops,
		Rollbacks:  s.stats.rollbacks,
		Errors:     s.stats.errors,
		LastCommit: s.stats.lastCommit,
	}
}

// AvgUpdateSeconds reports the running average pipeline duration.
func (s *Store[T]) AvgUpdateSeconds() float64 {
	return s.avg.Val()
}
