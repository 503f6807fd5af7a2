package dotstate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dotstate/dotstate/deep"
	"github.com/dotstate/dotstate/dotstate_errors"
)

// Fn is a draft-mutation update: the function receives a disposable copy of
// the state and edits it in place.
type Fn[T any] func(draft *T)

// Patch is a partial-object update folded into the state per the configured
// merge strategy.
type Patch map[string]any

// buildCandidate turns whatever the caller passed into the candidate next
// state. A nil update proposes no change and falls out at the diff step.
func (s *Store[T]) buildCandidate(cfg *Config[T], uid uuid.UUID, prev T, update any, action string) (T, error) {
	var zero T
	switch u := update.(type) {
	case nil:
		return deep.Clone(prev), nil
	case Fn[T]:
		return s.transform(cfg, uid, prev, action, u)
	case func(*T):
		return s.transform(cfg, uid, prev, action, u)
	case Patch:
		return s.mergePatch(cfg, prev, map[string]any(u)), nil
	case T:
		return deep.Clone(u), nil
	case map[string]any:
		return s.mergePatch(cfg, prev, u), nil
	default:
		return zero, fmt.Errorf("%w: unsupported update type %T", dotstate_errors.ErrBadUpdate, update)
	}
}

// transform runs the configured transformer chain over the draft mutation.
// An empty chain cannot apply a function update, so it is rejected outright.
func (s *Store[T]) transform(cfg *Config[T], uid uuid.UUID, prev T, action string, fn func(*T)) (T, error) {
	var zero T
	if len(cfg.Transformers) == 0 {
		return zero, dotstate_errors.ErrNoTransformer
	}
	tc := &TransformCtx[T]{
		Store:     s.name,
		Action:    action,
		UpdateID:  uid,
		Prev:      prev,
		Candidate: prev,
		Config:    cfg,
		Update:    fn,
	}
	for _, tr := range cfg.Transformers {
		next, err := tr.Apply(tc)
		if err != nil {
			return zero, fmt.Errorf("transformer %s: %w", tr.Name, err)
		}
		tc.Candidate = next
	}
	return tc.Candidate, nil
}

func (s *Store[T]) mergePatch(cfg *Config[T], prev T, patch map[string]any) T {
	if cfg.Merge == MergeShallow {
		return deep.MergeShallow[T](prev, patch)
	}
	return deep.Merge[T](prev, patch)
}
