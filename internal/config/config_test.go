package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Engines) == 0 {
		t.Error("expected default engines")
	}
	if cfg.Engines["openai"].APIKey != "${OPENAI_API_KEY}" {
		t.Error("expected openai API key placeholder")
	}
	if cfg.Defaults.Engine != "google" {
		t.Errorf("expected google default engine, got %s", cfg.Defaults.Engine)
	}
	if cfg.Orchestrator.MaxChunkLines != 14 || cfg.Orchestrator.MaxChunkChars != 2200 {
		t.Errorf("unexpected chunk defaults: %+v", cfg.Orchestrator)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ToRegistryConfig(t *testing.T) {
	os.Setenv("TEST_ENGINE_KEY", "eng-key-123")
	defer os.Unsetenv("TEST_ENGINE_KEY")

	cfg := &Config{
		Engines: map[string]EngineCfg{
			"remote": {
				Type:      "llm",
				Shape:     "chat",
				Model:     "test-model",
				APIKey:    "${TEST_ENGINE_KEY}",
				BaseURL:   "http://localhost:9999/v1",
				RateLimit: 30,
				Enabled:   true,
			},
			"literal": {Type: "openai", APIKey: "direct-key"},
		},
	}

	reg := cfg.ToRegistryConfig()

	t.Run("resolves env var reference", func(t *testing.T) {
		if got := reg.Engines["remote"].APIKey; got != "eng-key-123" {
			t.Errorf("expected eng-key-123, got %s", got)
		}
	})

	t.Run("returns literal value", func(t *testing.T) {
		if got := reg.Engines["literal"].APIKey; got != "direct-key" {
			t.Errorf("expected direct-key, got %s", got)
		}
	})

	t.Run("carries engine fields through", func(t *testing.T) {
		remote := reg.Engines["remote"]
		if remote.Type != "llm" || remote.Shape != "chat" || remote.Model != "test-model" || remote.RateLimit != 30 {
			t.Errorf("engine fields lost in conversion: %+v", remote)
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
defaults:
  engine: "openai"
  target: "es"
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Defaults.Engine != "openai" || cfg.Defaults.Target != "es" {
			t.Errorf("unexpected defaults: %+v", cfg.Defaults)
		}
	})
}

func TestManager_OnChange_Multiple(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
defaults:
  engine: "google"
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Register multiple callbacks
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	if len(mgr.callbacks) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(mgr.callbacks))
	}
	mgr.mu.RUnlock()
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
defaults:
  engine: "google"
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Call Get concurrently to verify no race conditions
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				cfg := mgr.Get()
				_ = cfg.Defaults.Engine
			}
			done <- struct{}{}
		}()
	}

	// Wait for all goroutines
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestManager_WatchConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
defaults:
  target: "en"
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	// Verify initial value
	if got := mgr.Get().Defaults.Target; got != "en" {
		t.Errorf("initial value mismatch: expected en, got %s", got)
	}

	// Track callback invocations
	var callbackCount atomic.Int32
	var lastValue atomic.Value

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastValue.Store(cfg.Defaults.Target)
	})

	// Start watching
	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	// Update the config file
	newContent := `
defaults:
  target: "es"
`
	if err := os.WriteFile(configFile, []byte(newContent), 0644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// Wait for the watcher to detect the change (fsnotify is async)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Error("callback was not invoked after config file change")
	}

	// Verify the config was updated
	if got := mgr.Get().Defaults.Target; got != "es" {
		t.Errorf("config not updated: expected es, got %s", got)
	}

	// Verify callback received the updated value
	if v := lastValue.Load(); v != "es" {
		t.Errorf("callback received wrong value: expected es, got %v", v)
	}
}
