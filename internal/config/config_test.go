package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("OPENAI_API_KEY sets the LLM key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("REGRADAR_API_KEY", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "oa-key", cfg.LLM.APIKey)
	})

	t.Run("REGRADAR_API_KEY wins over OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("REGRADAR_API_KEY", "rr-key")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "rr-key", cfg.LLM.APIKey)
	})

	t.Run("service keys and endpoints", func(t *testing.T) {
		t.Setenv("TAVILY_API_KEY", "tv-key")
		t.Setenv("MEM0_API_KEY", "m0-key")
		t.Setenv("REGRADAR_BASE_URL", "http://localhost:8080/v1")
		t.Setenv("REGRADAR_MODEL", "local-model")
		t.Setenv("REGRADAR_DB", "/tmp/alt.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "tv-key", cfg.WebTools.TavilyAPIKey)
		assert.Equal(t, "m0-key", cfg.Memory.Mem0APIKey)
		assert.Equal(t, "http://localhost:8080/v1", cfg.LLM.BaseURL)
		assert.Equal(t, "local-model", cfg.LLM.Model)
		assert.Equal(t, "/tmp/alt.db", cfg.Memory.DatabasePath)
	})

	t.Run("empty env leaves defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("REGRADAR_API_KEY", "")
		t.Setenv("REGRADAR_MODEL", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "", cfg.LLM.APIKey)
		assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("REGRADAR_API_KEY", "")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "RegRadar", cfg.Name)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte("llm:\n  model: custom-model\n  temperature: 0.7\nwebtools:\n  crawl_limit: 9\n")
		require.NoError(t, os.WriteFile(path, content, 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "custom-model", cfg.LLM.Model)
		assert.Equal(t, 0.7, cfg.LLM.Temperature)
		assert.Equal(t, 9, cfg.WebTools.CrawlLimit)
		// Untouched sections keep their defaults
		assert.Equal(t, "https://api.tavily.com", cfg.WebTools.BaseURL)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm: [broken"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REGRADAR_API_KEY", "")
	t.Setenv("TAVILY_API_KEY", "")
	t.Setenv("MEM0_API_KEY", "")
	t.Setenv("REGRADAR_BASE_URL", "")
	t.Setenv("REGRADAR_MODEL", "")
	t.Setenv("REGRADAR_DB", "")

	original := DefaultConfig()
	original.LLM.Model = "round-trip-model"
	original.WebTools.MaxDepth = 3
	original.Logging.DebugMode = true

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(original, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("config changed across save/load (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.Model = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad timeout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.LLM.Timeout = "two minutes"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive excerpt limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.WebTools.ExcerptLimit = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestTimeoutDuration(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 120*time.Second, cfg.LLM.TimeoutDuration())
	assert.Equal(t, 60*time.Second, cfg.WebTools.TimeoutDuration())
	assert.Equal(t, 15*time.Second, cfg.Memory.TimeoutDuration())

	// Unparseable timeouts fall back to the defaults.
	cfg.LLM.Timeout = "soon"
	assert.Equal(t, 120*time.Second, cfg.LLM.TimeoutDuration())
}
