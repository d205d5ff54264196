package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-lenslate")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-lenslate" {
			t.Errorf("expected path /tmp/test-lenslate, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-lenslate")

	t.Run("CapturesPath", func(t *testing.T) {
		expected := "/tmp/test-lenslate/captures"
		if dir.CapturesPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.CapturesPath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-lenslate/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("CapturePath", func(t *testing.T) {
		expected := "/tmp/test-lenslate/captures/abc.png"
		if dir.CapturePath("abc") != expected {
			t.Errorf("expected %s, got %s", expected, dir.CapturePath("abc"))
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	homeDir := filepath.Join(tmpDir, "lenslate-test")

	dir, err := New(homeDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Directory shouldn't exist yet
	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	// Create it
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	// Now it should exist
	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	// Captures directory should also exist
	if _, err := os.Stat(dir.CapturesPath()); os.IsNotExist(err) {
		t.Error("captures directory should exist after EnsureExists")
	}
}

func TestDir_ConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(tmpDir)

	// Config doesn't exist
	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}

	// Create a config file
	configPath := dir.ConfigPath()
	if err := os.WriteFile(configPath, []byte("test: true\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Now it should exist
	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}

func TestDir_SettingsVersion(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(filepath.Join(tmpDir, "home"))

	if got := dir.SettingsVersion(); got != 0 {
		t.Errorf("expected version 0 before stamping, got %d", got)
	}

	if err := dir.WriteSettingsVersion(); err != nil {
		t.Fatalf("WriteSettingsVersion failed: %v", err)
	}

	if got := dir.SettingsVersion(); got != CurrentSettingsVersion {
		t.Errorf("expected version %d, got %d", CurrentSettingsVersion, got)
	}

	t.Run("stale config triggers reset", func(t *testing.T) {
		staleDir, _ := New(filepath.Join(tmpDir, "stale"))
		if err := staleDir.EnsureExists(); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(staleDir.ConfigPath(), []byte("defaults: {}\n"), 0644); err != nil {
			t.Fatal(err)
		}

		// Config present but no version stamp means pre-versioning settings.
		if !staleDir.NeedsSettingsReset() {
			t.Error("expected reset for unstamped config")
		}

		if err := staleDir.WriteSettingsVersion(); err != nil {
			t.Fatal(err)
		}
		if staleDir.NeedsSettingsReset() {
			t.Error("expected no reset after stamping")
		}
	})
}
