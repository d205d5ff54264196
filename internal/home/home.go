package home

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultDirName is the default name for the lenslate home directory.
	DefaultDirName = ".lenslate"

	// CapturesDirName is the subdirectory for saved screen captures.
	CapturesDirName = "captures"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// SettingsVersionFileName records the settings schema version that
	// last wrote the config.
	SettingsVersionFileName = "settings_version"
)

// CurrentSettingsVersion is bumped when the config schema changes shape
// in a way that invalidates stored settings.
const CurrentSettingsVersion = 1

// Dir represents the lenslate home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.lenslate).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// CapturesPath returns the path to the captures directory.
func (d *Dir) CapturesPath() string {
	return filepath.Join(d.path, CapturesDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

func (d *Dir) settingsVersionPath() string {
	return filepath.Join(d.path, SettingsVersionFileName)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	// Create captures directory (this also creates the parent)
	if err := os.MkdirAll(d.CapturesPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create captures directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// SettingsVersion returns the recorded settings schema version, or 0 when
// no version has been recorded yet.
func (d *Dir) SettingsVersion() int {
	data, err := os.ReadFile(d.settingsVersionPath())
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return v
}

// NeedsSettingsReset reports whether stored settings predate the current
// schema version and should be replaced with fresh defaults.
func (d *Dir) NeedsSettingsReset() bool {
	return d.ConfigExists() && d.SettingsVersion() < CurrentSettingsVersion
}

// WriteSettingsVersion stamps the home directory with the current
// settings schema version.
func (d *Dir) WriteSettingsVersion() error {
	if err := d.EnsureExists(); err != nil {
		return err
	}
	data := []byte(strconv.Itoa(CurrentSettingsVersion) + "\n")
	return os.WriteFile(d.settingsVersionPath(), data, 0o644)
}

// CapturePath returns the path for a saved capture image.
func (d *Dir) CapturePath(captureID string) string {
	return filepath.Join(d.CapturesPath(), captureID+".png")
}
