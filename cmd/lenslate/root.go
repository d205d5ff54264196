package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/config"
	"github.com/lenslate/lenslate/internal/engines"
	"github.com/lenslate/lenslate/internal/home"
	"github.com/lenslate/lenslate/internal/orchestrator"
	"github.com/lenslate/lenslate/version"
)

var (
	cfgFile    string
	homePath   string
	engineName string
	sourceLang string
	targetLang string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lenslate",
	Short: "Screen capture translation with OCR cleanup",
	Long: `Lenslate translates text captured from the screen. It reassembles raw
OCR output into readable lines, repairs recognizer glyph noise, and
drives translation backends with batching and retry handling.

Pipelines include:
  - OCR line reconstruction with wrap merging and duplicate removal
  - Glyph noise correction for Cyrillic and Spanish sources
  - Marker-based batch translation with per-line fallback`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.lenslate/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homePath, "home", "", "lenslate home directory (default: ~/.lenslate)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable debug logging",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	}

	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(ocrCmd)
	rootCmd.AddCommand(enginesCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadManager resolves the config file and loads configuration.
func loadManager() (*config.Manager, error) {
	path := cfgFile
	if path == "" {
		dir, err := home.New(homePath)
		if err != nil {
			return nil, err
		}
		if dir.ConfigExists() {
			path = dir.ConfigPath()
		}
	}
	return config.NewManager(path)
}

// buildOrchestrator assembles the engine registry and orchestrator for
// the selected (or default) engine.
func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, engines.Engine, error) {
	registry := engines.NewRegistryFromConfig(cfg.ToRegistryConfig(), slog.Default())

	name := engineName
	if name == "" {
		name = cfg.Defaults.Engine
	}
	engine, err := registry.Get(name)
	if err != nil {
		return nil, nil, fmt.Errorf("engine %q: %w", name, err)
	}

	opts := orchestrator.Options{
		MaxChunkLines: cfg.Orchestrator.MaxChunkLines,
		MaxChunkChars: cfg.Orchestrator.MaxChunkChars,
		Cooldown:      time.Duration(cfg.Orchestrator.CooldownSeconds) * time.Second,
		Debounce:      time.Duration(cfg.Orchestrator.DebounceMillis) * time.Millisecond,
		SlowAfter:     time.Duration(cfg.Orchestrator.SlowAfterSecs) * time.Second,
	}
	orc := orchestrator.New(engine, opts, slog.Default(), nil)
	return orc, engine, nil
}

// resolveLangs applies config defaults to unset language flags.
func resolveLangs(cfg *config.Config) (source, target string) {
	source = sourceLang
	if source == "" {
		source = cfg.Defaults.Source
	}
	target = targetLang
	if target == "" {
		target = cfg.Defaults.Target
	}
	return source, target
}
