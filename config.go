package dotstate

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/dotstate/dotstate/utils"
)

// Toggle is a tri-state flag so a config layer can leave a boolean unset.
type Toggle uint8

const (
	Unset Toggle = iota
	On
	Off
)

func (t Toggle) enabled(fallback bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	default:
		return fallback
	}
}

func toggleOf(b bool) Toggle {
	if b {
		return On
	}
	return Off
}

// MergeStrategy picks how a partial-object update folds into state.
type MergeStrategy uint8

const (
	// MergeDeep merges nested objects key by key; arrays are replaced as
	// whole values.
	MergeDeep MergeStrategy = iota + 1
	// MergeShallow assigns top-level keys only.
	MergeShallow
)

// Producer applies a draft mutation to a previous state and returns the next
// candidate without touching the input.
type Producer[T any] func(prev T, fn func(*T)) (T, error)

// Validator checks a candidate state for one action; returning an error
// vetoes the update.
type Validator[T any] func(next T) error

// ValidateAll is the wildcard validation key applied to every action.
const ValidateAll = "_"

// ErrorHandler receives every pipeline failure after rollback handling.
type ErrorHandler[T any] func(err error, store, action string, state T)

// Config is one layer of store configuration. Nil/zero fields are unset and
// fall through to the next layer; a non-nil empty slice deliberately
// replaces the lower layer's list with "none".
type Config[T any] struct {
	Transformers []Transformer[T]
	Before       []Middleware[T]
	After        []Middleware[T]
	Validations  map[string]Validator[T]
	Producer     Producer[T]
	Rollback     Toggle
	DiffLogging  Toggle
	Merge        MergeStrategy
	OnError      ErrorHandler[T]
	Logger       utils.Logger
}

// GlobalConfig is the process-wide default layer under every store.
type GlobalConfig struct {
	Rollback    bool
	DiffLogging bool
	LogLevel    slog.Level
}

var (
	globalLock   sync.Mutex
	globalCfg    GlobalConfig
	globalLoaded bool
)

// Global returns the process-wide defaults, loading them on first use from
// the environment (DOTSTATE_ prefix) and an optional config file named by
// DOTSTATE_CONFIG.
func Global() GlobalConfig {
	globalLock.Lock()
	defer globalLock.Unlock()
	if !globalLoaded {
		globalCfg = loadGlobal()
		globalLoaded = true
	}
	return globalCfg
}

// SetGlobal replaces the process-wide defaults.
func SetGlobal(g GlobalConfig) {
	globalLock.Lock()
	defer globalLock.Unlock()
	globalCfg = g
	globalLoaded = true
}

// ResetGlobal drops any loaded or assigned defaults so the next Global()
// call reloads them. Intended for tests.
func ResetGlobal() {
	globalLock.Lock()
	defer globalLock.Unlock()
	globalCfg = GlobalConfig{}
	globalLoaded = false
}

func loadGlobal() GlobalConfig {
	v := viper.New()
	v.SetDefault("rollback", true)
	v.SetDefault("diff_logging", false)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("DOTSTATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	return GlobalConfig{
		Rollback:    v.GetBool("rollback"),
		DiffLogging: v.GetBool("diff_logging"),
		LogLevel:    parseLevel(v.GetString("log_level")),
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveConfig collapses global, store-level and per-call inline layers
// into the effective configuration for one update. Field-wise last wins; an
// inline transformer list fully replaces the store-level one.
func resolveConfig[T any](g GlobalConfig, store, inline *Config[T], log utils.Logger) Config[T] {
	cfg := Config[T]{
		Transformers: []Transformer[T]{Produce[T]()},
		Before:       []Middleware[T]{Validate[T]()},
		Producer:     CloneProducer[T],
		Rollback:     toggleOf(g.Rollback),
		DiffLogging:  toggleOf(g.DiffLogging),
		Merge:        MergeDeep,
		Logger:       log,
	}
	overlay(&cfg, store)
	overlay(&cfg, inline)
	return cfg
}

func overlay[T any](dst, src *Config[T]) {
	if src == nil {
		return
	}
	if src.Transformers != nil {
		dst.Transformers = src.Transformers
	}
	if src.Before != nil {
		dst.Before = src.Before
	}
	if src.After != nil {
		dst.After = src.After
	}
	if src.Validations != nil {
		dst.Validations = src.Validations
	}
	if src.Producer != nil {
		dst.Producer = src.Producer
	}
	if src.Rollback != Unset {
		dst.Rollback = src.Rollback
	}
	if src.DiffLogging != Unset {
		dst.DiffLogging = src.DiffLogging
	}
	if src.Merge != 0 {
		dst.Merge = src.Merge
	}
	if src.OnError != nil {
		dst.OnError = src.OnError
	}
	if src.Logger != nil {
		dst.Logger = src.Logger
	}
}
