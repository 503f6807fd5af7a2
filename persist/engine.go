package persist

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/cespare/xxhash"
	"gopkg.in/yaml.v3"

	"github.com/dotstate/dotstate/utils"
)

// Migration rewrites a decoded payload from one version to the next. The
// table maps a target version to the step producing it; steps run
// sequentially from the stored version up to the engine's version, each
// receiving the version it is migrating to.
type Migration func(doc map[string]any, version int) (map[string]any, error)

// Transform is an optional pre-write/post-read pair applied to the raw
// payload, e.g. for compression or obfuscation. Either side may be nil.
type Transform struct {
	PreWrite func([]byte) ([]byte, error)
	PostRead func([]byte) ([]byte, error)
}

// Callbacks report asynchronous persistence outcomes. All fields optional.
type Callbacks struct {
	OnPersistSuccess   func()
	OnPersistFailure   func(error)
	OnRehydrateSuccess func()
	OnRehydrateFailure func(error)
	OnMigrationSuccess func(from, to int)
	OnMigrationFailure func(version int, err error)
}

type EngineOptions struct {
	Transform Transform
	Callbacks Callbacks
	Logger    utils.Logger
}

// Engine owns one persisted snapshot under a key, with an integer version
// marker stored alongside under a derived key.
type Engine struct {
	storage    Storage
	key        string
	version    int
	migrations map[int]Migration
	transform  Transform
	cb         Callbacks
	log        utils.Logger

	lock     sync.Mutex
	lastHash uint64
}

func NewEngine(storage Storage, key string, version int, migrations map[int]Migration, opts EngineOptions) *Engine {
	log := opts.Logger
	if log == nil {
		log = utils.NewDefaultLogger(slog.LevelInfo)
	}
	if version < 1 {
		version = 1
	}
	return &Engine{
		storage:    storage,
		key:        key,
		version:    version,
		migrations: migrations,
		transform:  opts.Transform,
		cb:         opts.Callbacks,
		log:        log,
	}
}

func (e *Engine) Key() string  { return e.key }
func (e *Engine) Version() int { return e.version }

func (e *Engine) versionKey() string { return e.key + "@version" }

// Migrate loads the persisted payload, walks it through the migration table
// up to the engine's version, and returns the migrated payload. The version
// marker advances only after every step and the rewrite succeeded. A nil
// payload with nil error means nothing was persisted under the key.
func (e *Engine) Migrate(ctx context.Context) ([]byte, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	ctx = utils.WithDefaultArgs(ctx, "key", e.key)

	payload, err := e.storage.GetItem(e.key)
	if err == ErrNotFound {
		e.log.DebugCtx(ctx, "nothing persisted")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if e.transform.PostRead != nil {
		payload, err = e.transform.PostRead(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: post-read transform: %v", ErrPersistence, err)
		}
	}

	stored := e.storedVersion()
	if stored > e.version {
		return nil, fmt.Errorf("%w: stored %d, target %d", ErrBadVersion, stored, e.version)
	}
	if stored == e.version {
		return payload, nil
	}

	var doc map[string]any
	if err := yaml.Unmarshal(payload, &doc); err != nil {
		e.notifyMigration(stored, fmt.Errorf("%w: decode payload: %v", ErrPersistence, err))
		return nil, fmt.Errorf("%w: decode payload: %v", ErrPersistence, err)
	}
	for v := stored + 1; v <= e.version; v++ {
		step := e.migrations[v]
		if step == nil {
			continue
		}
		doc, err = step(doc, v)
		if err != nil {
			e.notifyMigration(v, err)
			return nil, fmt.Errorf("%w: migration to version %d: %v", ErrPersistence, v, err)
		}
	}
	payload, err = yaml.Marshal(doc)
	if err != nil {
		e.notifyMigration(e.version, err)
		return nil, fmt.Errorf("%w: encode payload: %v", ErrPersistence, err)
	}
	// the rewrite goes through the same byte transform as every persist, so
	// the next read's post-read transform finds what it expects
	out := payload
	if e.transform.PreWrite != nil {
		out, err = e.transform.PreWrite(payload)
		if err != nil {
			e.notifyMigration(e.version, fmt.Errorf("%w: pre-write transform: %v", ErrPersistence, err))
			return nil, fmt.Errorf("%w: pre-write transform: %v", ErrPersistence, err)
		}
	}
	if err := e.write(out); err != nil {
		e.notifyMigration(e.version, err)
		return nil, err
	}
	e.lastHash = xxhash.Sum64(out)
	e.log.InfoCtx(ctx, "migrated persisted state", "from", stored, "to", e.version)
	if e.cb.OnMigrationSuccess != nil {
		e.cb.OnMigrationSuccess(stored, e.version)
	}
	return payload, nil
}

// PersistState serializes the state and writes it under the engine's key.
// The write is skipped when the payload fingerprint is unchanged since the
// last successful persist.
func (e *Engine) PersistState(ctx context.Context, state any) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	ctx = utils.WithDefaultArgs(ctx, "key", e.key)

	payload, err := yaml.Marshal(state)
	if err != nil {
		return e.failPersist(fmt.Errorf("%w: encode state: %v", ErrPersistence, err))
	}
	if e.transform.PreWrite != nil {
		payload, err = e.transform.PreWrite(payload)
		if err != nil {
			return e.failPersist(fmt.Errorf("%w: pre-write transform: %v", ErrPersistence, err))
		}
	}
	hash := xxhash.Sum64(payload)
	if hash == e.lastHash {
		e.log.DebugCtx(ctx, "payload unchanged, skipping persist")
		return nil
	}
	if err := e.write(payload); err != nil {
		return e.failPersist(err)
	}
	e.lastHash = hash
	e.log.DebugCtx(ctx, "state persisted", "bytes", len(payload), "version", e.version)
	if e.cb.OnPersistSuccess != nil {
		e.cb.OnPersistSuccess()
	}
	return nil
}

// ClearPersistedState removes the payload and its version marker.
func (e *Engine) ClearPersistedState(ctx context.Context) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if err := e.storage.RemoveItem(e.key); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := e.storage.RemoveItem(e.versionKey()); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	e.lastHash = 0
	e.log.DebugCtx(ctx, "persisted state cleared", "key", e.key)
	return nil
}

// NotifyRehydrate reports a rehydration outcome through the engine's
// callbacks; the store core calls it after merging a migrated payload.
func (e *Engine) NotifyRehydrate(err error) {
	if err != nil {
		if e.cb.OnRehydrateFailure != nil {
			e.cb.OnRehydrateFailure(err)
		}
		return
	}
	if e.cb.OnRehydrateSuccess != nil {
		e.cb.OnRehydrateSuccess()
	}
}

// write stores the payload and then the version marker; the marker is only
// advanced after the payload write succeeded.
func (e *Engine) write(payload []byte) error {
	if err := e.storage.SetItem(e.key, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := e.storage.SetItem(e.versionKey(), []byte(strconv.Itoa(e.version))); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// storedVersion reads the version marker; a payload without a marker is
// treated as version 1.
func (e *Engine) storedVersion() int {
	raw, err := e.storage.GetItem(e.versionKey())
	if err != nil {
		return 1
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

func (e *Engine) notifyMigration(version int, err error) {
	if e.cb.OnMigrationFailure != nil {
		e.cb.OnMigrationFailure(version, err)
	}
}

func (e *Engine) failPersist(err error) error {
	e.log.Error("persist failed", "key", e.key, "error", err)
	if e.cb.OnPersistFailure != nil {
		e.cb.OnPersistFailure(err)
	}
	return err
}
