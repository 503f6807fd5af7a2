package dotstate

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotstate/dotstate/utils"
)

func TestToggle(t *testing.T) {
	assert.True(t, Unset.enabled(true))
	assert.False(t, Unset.enabled(false))
	assert.True(t, On.enabled(false))
	assert.False(t, Off.enabled(true))
}

func TestGlobalDefaults(t *testing.T) {
	ResetGlobal()
	g := Global()
	assert.True(t, g.Rollback)
	assert.False(t, g.DiffLogging)
	assert.Equal(t, slog.LevelInfo, g.LogLevel)
}

func TestGlobalFromEnv(t *testing.T) {
	t.Setenv("DOTSTATE_ROLLBACK", "false")
	t.Setenv("DOTSTATE_DIFF_LOGGING", "true")
	t.Setenv("DOTSTATE_LOG_LEVEL", "debug")
	ResetGlobal()
	defer ResetGlobal()

	g := Global()
	assert.False(t, g.Rollback)
	assert.True(t, g.DiffLogging)
	assert.Equal(t, slog.LevelDebug, g.LogLevel)
}

func TestSetGlobal(t *testing.T) {
	ResetGlobal()
	defer ResetGlobal()

	SetGlobal(GlobalConfig{Rollback: false, DiffLogging: true, LogLevel: slog.LevelWarn})
	g := Global()
	assert.False(t, g.Rollback)
	assert.True(t, g.DiffLogging)
}

func TestResolveConfigDefaults(t *testing.T) {
	log := utils.NewDefaultLogger(slog.LevelInfo)
	cfg := resolveConfig[counterState](GlobalConfig{Rollback: true}, nil, nil, log)

	assert.Len(t, cfg.Transformers, 1)
	assert.Equal(t, "produce", cfg.Transformers[0].Name)
	assert.Len(t, cfg.Before, 1)
	assert.Equal(t, "validate", cfg.Before[0].Name)
	assert.NotNil(t, cfg.Producer)
	assert.Equal(t, On, cfg.Rollback)
	assert.Equal(t, Off, cfg.DiffLogging)
	assert.Equal(t, MergeDeep, cfg.Merge)
}

func TestResolveConfigLayering(t *testing.T) {
	log := utils.NewDefaultLogger(slog.LevelInfo)
	store := &Config[counterState]{
		Rollback: Off,
		Merge:    MergeShallow,
	}
	inline := &Config[counterState]{
		Rollback: On,
	}

	cfg := resolveConfig(GlobalConfig{Rollback: true}, store, inline, log)
	// inline wins over store; store's untouched fields survive
	assert.Equal(t, On, cfg.Rollback)
	assert.Equal(t, MergeShallow, cfg.Merge)
}

func TestResolveConfigEmptySliceReplaces(t *testing.T) {
	log := utils.NewDefaultLogger(slog.LevelInfo)
	store := &Config[counterState]{
		Before: []Middleware[counterState]{},
	}

	cfg := resolveConfig(GlobalConfig{}, store, nil, log)
	// a non-nil empty list means "no before-middleware", not "unset"
	assert.NotNil(t, cfg.Before)
	assert.Len(t, cfg.Before, 0)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("anything"))
}
