package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kingabzpro/RegRadar/internal/logging"
)

// Not parallel: exercises the process-wide logging settings.
func TestWatcher_ReloadsLoggingSection(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")

	cfg := DefaultConfig()
	cfg.Logging.DebugMode = false
	cfg.Logging.Level = "info"
	require.NoError(t, cfg.Save(path))

	require.NoError(t, logging.Initialize(tmp, logging.Settings{
		DebugMode: false,
		Level:     "info",
	}))
	t.Cleanup(func() {
		logging.Apply(logging.Settings{DebugMode: false, Level: "info"})
		logging.CloseAll()
	})

	w, err := NewWatcher(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	cfg.Logging.DebugMode = true
	cfg.Logging.Level = "debug"
	require.NoError(t, cfg.Save(path))

	deadline := time.Now().Add(5 * time.Second)
	for !logging.IsDebugMode() && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	require.True(t, logging.IsDebugMode(), "debug mode should be applied after the config file changes")
}

func TestWatcher_StopIsIdempotentBeforeStart(t *testing.T) {
	tmp := t.TempDir()
	w, err := NewWatcher(filepath.Join(tmp, "config.yaml"))
	require.NoError(t, err)
	w.Stop() // never started, must not block or panic
}
