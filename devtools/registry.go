// Package devtools keeps a process-wide named registry of live stores for
// external inspection. Registration is advisory: a duplicate name logs a
// warning and keeps the existing entry.
package devtools

import (
	"fmt"
	"log/slog"

	"github.com/agnivade/levenshtein"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/dotstate/dotstate/utils"
)

// Store is the inspection surface a registered store exposes.
type Store interface {
	Name() string
	Snapshot() any
}

type Registry struct {
	stores *xsync.MapOf[string, Store]
	log    utils.Logger
}

func NewRegistry(log utils.Logger) *Registry {
	if log == nil {
		log = utils.NewDefaultLogger(slog.LevelInfo)
	}
	return &Registry{
		stores: xsync.NewMapOf[string, Store](),
		log:    log,
	}
}

// Register adds a store under its name. Registering a name twice is a no-op
// with a warning, never an overwrite.
func (r *Registry) Register(s Store) {
	if _, loaded := r.stores.LoadOrStore(s.Name(), s); loaded {
		r.log.Warn("store already registered, keeping the existing one", "store", s.Name())
	}
}

func (r *Registry) Deregister(name string) {
	r.stores.Delete(name)
}

// maximum edit distance for a "did you mean" suggestion
const suggestCutoff = 3

// Lookup finds a registered store by name. On a miss the error suggests the
// closest registered name when one is near enough.
func (r *Registry) Lookup(name string) (Store, error) {
	if s, ok := r.stores.Load(name); ok {
		return s, nil
	}
	best, bestDist := "", suggestCutoff+1
	r.stores.Range(func(key string, _ Store) bool {
		if d := levenshtein.ComputeDistance(name, key); d < bestDist {
			best, bestDist = key, d
		}
		return true
	})
	if best != "" {
		return nil, fmt.Errorf("devtools: unknown store %q (did you mean %q?)", name, best)
	}
	return nil, fmt.Errorf("devtools: unknown store %q", name)
}

// Range iterates over registered stores.
func (r *Registry) Range(fn func(name string, s Store) bool) {
	r.stores.Range(fn)
}

// Len reports the number of registered stores.
func (r *Registry) Len() int {
	return r.stores.Size()
}

// Default is the process-wide registry the store core registers into.
var Default = NewRegistry(nil)

func Register(s Store)                { Default.Register(s) }
func Deregister(name string)          { Default.Deregister(name) }
func Lookup(name string) (Store, error) { return Default.Lookup(name) }
