package dotstate

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dotstate/dotstate/persist"
)

// ActionRehydrate is the action name committed when persisted state is
// loaded back into the store.
const ActionRehydrate = "@rehydrate"

// PersistAPI is the store-facing persistence surface. Zero value is inert.
type PersistAPI[T any] struct {
	s *Store[T]
}

func (s *Store[T]) Persist() PersistAPI[T] { return PersistAPI[T]{s: s} }

// ReHydrate loads the persisted document, runs pending migrations, decodes
// the payload over a copy of the current state and commits it through the
// regular pipeline under ActionRehydrate. Nothing persisted is a clean
// no-op.
func (p PersistAPI[T]) ReHydrate(ctx context.Context) error {
	s := p.s
	if s == nil || s.persist == nil {
		return nil
	}
	payload, err := s.persist.Migrate(ctx)
	if err != nil {
		return p.failed(err)
	}
	if payload == nil {
		s.persist.NotifyRehydrate(nil)
		return nil
	}

	// decode over a snapshot so fields absent from the document keep their
	// initial values
	next := s.GetState()
	if err := yaml.Unmarshal(payload, &next); err != nil {
		return p.failed(fmt.Errorf("%w: decode payload: %v", persist.ErrPersistence, err))
	}
	if err := s.SetState(next, ActionRehydrate, nil); err != nil {
		return p.failed(err)
	}

	s.persist.NotifyRehydrate(nil)
	if s.opts.OnRehydrateSuccess != nil {
		s.opts.OnRehydrateSuccess(s.GetState())
	}
	return nil
}

// Clear removes the persisted document and version marker. In-memory state
// is untouched.
func (p PersistAPI[T]) Clear(ctx context.Context) error {
	if p.s == nil || p.s.persist == nil {
		return nil
	}
	return p.s.persist.ClearPersistedState(ctx)
}

func (p PersistAPI[T]) failed(err error) error {
	s := p.s
	s.persist.NotifyRehydrate(err)
	if s.opts.OnRehydrateFailure != nil {
		s.opts.OnRehydrateFailure(err)
	}
	s.log.Error("rehydrate failed", "store", s.name, "error", err)
	return err
}
