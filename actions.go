package dotstate

import (
	"context"
	"fmt"

	"github.com/dotstate/dotstate/dotstate_errors"
)

// SyncAction mutates a draft copy of the state in place. The committed
// action name is the table key.
type SyncAction[T any] func(draft *T, args ...any)

// AsyncAction does its own blocking work (I/O, RPC) against a draft copy and
// may fail before any state change is proposed.
type AsyncAction[T any] func(ctx context.Context, draft *T, args ...any) error

// Selector derives a value from a state snapshot.
type Selector[T any] func(state T, args ...any) any

// buildWrappers closes each declared action and selector over the store so
// dispatch is a map lookup, not reflection.
func (s *Store[T]) buildWrappers() {
	s.actions = make(map[string]func(args ...any) error, len(s.opts.Actions))
	for name, fn := range s.opts.Actions {
		name, fn := name, fn
		s.actions[name] = func(args ...any) error {
			return s.SetState(Fn[T](func(draft *T) { fn(draft, args...) }), name, nil, args...)
		}
	}

	s.asyncActions = make(map[string]func(ctx context.Context, args ...any) error, len(s.opts.AsyncActions))
	for name, fn := range s.opts.AsyncActions {
		name, fn := name, fn
		s.asyncActions[name] = func(ctx context.Context, args ...any) error {
			draft := s.GetState()
			if err := fn(ctx, &draft, args...); err != nil {
				return s.reportActionError(name, err)
			}
			return <-s.SetStateAsync(draft, name, nil, args...)
		}
	}

	s.selectors = make(map[string]func(args ...any) any, len(s.opts.Selectors))
	for name, fn := range s.opts.Selectors {
		name, fn := name, fn
		s.selectors[name] = func(args ...any) any {
			return fn(s.GetState(), args...)
		}
	}
}

// Dispatch runs a declared synchronous action through the full pipeline.
func (s *Store[T]) Dispatch(action string, args ...any) error {
	fn, ok := s.actions[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %q", dotstate_errors.ErrBadUpdate, action)
	}
	return fn(args...)
}

// DispatchAsync runs a declared asynchronous action in its own goroutine.
// The returned channel yields the single outcome: the action body's error,
// or the pipeline result of the state it produced.
func (s *Store[T]) DispatchAsync(ctx context.Context, action string, args ...any) <-chan error {
	ch := make(chan error, 1)
	fn, ok := s.asyncActions[action]
	if !ok {
		ch <- fmt.Errorf("%w: unknown async action %q", dotstate_errors.ErrBadUpdate, action)
		close(ch)
		return ch
	}
	go func() {
		ch <- fn(ctx, args...)
		close(ch)
	}()
	return ch
}

// Select evaluates a declared selector against the current state.
func (s *Store[T]) Select(name string, args ...any) (any, error) {
	fn, ok := s.selectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown selector %q", dotstate_errors.ErrBadUpdate, name)
	}
	return fn(args...), nil
}

// reportActionError routes an async action-body failure through the same
// error handler updates use. No state was proposed, so there is nothing to
// roll back.
func (s *Store[T]) reportActionError(action string, err error) error {
	cfg := resolveConfig(Global(), &s.opts.Config, nil, s.log)
	if cfg.OnError != nil {
		cfg.OnError(err, s.name, action, s.GetState())
	} else {
		cfg.Logger.Error("action failed", "store", s.name, "action", action, "error", err)
	}
	return err
}
