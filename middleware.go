package dotstate

import (
	"github.com/google/uuid"

	"github.com/dotstate/dotstate/deep"
	"github.com/dotstate/dotstate/diff"
	"github.com/dotstate/dotstate/dotstate_errors"
)

// Transformer converts a proposed update plus the running candidate into the
// next candidate state. Transformers form a flat ordered chain; identity is
// positional, the name is a log label.
type Transformer[T any] struct {
	Name  string
	Apply func(tc *TransformCtx[T]) (T, error)
}

// TransformCtx is the argument bundle handed to every transformer in order.
type TransformCtx[T any] struct {
	Store     string
	Action    string
	UpdateID  uuid.UUID
	Prev      T
	Candidate T
	Config    *Config[T]
	Update    func(*T) // raw update function, nil for value/patch updates
}

type Phase uint8

const (
	PhaseBefore Phase = iota + 1
	PhaseAfter
)

// Middleware runs around commit for its side effects. Before-middleware may
// veto the update by returning an error; after-middleware errors propagate
// too and trigger rollback, but the commit has already happened.
type Middleware[T any] struct {
	Name string
	Fn   func(mc *MiddlewareCtx[T]) error
}

// MiddlewareCtx is the argument bundle for both middleware slots. Next is a
// frozen copy of the candidate before commit and of the committed state
// after; Diff is computed once per update and shared.
type MiddlewareCtx[T any] struct {
	Store    string
	Action   string
	UpdateID uuid.UUID
	Phase    Phase
	Prev     T
	Next     T
	Config   *Config[T]
	Diff     []diff.Record
	Args     []any
}

// Produce is the default transformer: it hands the update function to the
// configured producer. A function update with no producer is a
// configuration error, never a silent no-op.
func Produce[T any]() Transformer[T] {
	return Transformer[T]{
		Name: "produce",
		Apply: func(tc *TransformCtx[T]) (T, error) {
			if tc.Config.Producer == nil {
				var zero T
				return zero, dotstate_errors.ErrMissingProducer
			}
			return tc.Config.Producer(tc.Candidate, tc.Update)
		},
	}
}

// CloneProducer is the default producer: deep-copy the state, run the draft
// mutation on the copy.
func CloneProducer[T any](prev T, fn func(*T)) (T, error) {
	next := deep.Clone(prev)
	if fn != nil {
		fn(&next)
	}
	return next, nil
}

// Validate is the default before-middleware. It runs the wildcard rule and
// the per-action rule from Config.Validations against the candidate; either
// may veto by returning an error, reported as a ValidationError.
func Validate[T any]() Middleware[T] {
	return Middleware[T]{
		Name: "validate",
		Fn: func(mc *MiddlewareCtx[T]) error {
			rules := mc.Config.Validations
			if rules == nil {
				return nil
			}
			if wild, ok := rules[ValidateAll]; ok {
				if err := wild(mc.Next); err != nil {
					return &dotstate_errors.ValidationError{Action: mc.Action, Reason: err.Error()}
				}
			}
			if rule, ok := rules[mc.Action]; ok {
				if err := rule(mc.Next); err != nil {
					return &dotstate_errors.ValidationError{Action: mc.Action, Reason: err.Error()}
				}
			}
			return nil
		},
	}
}
