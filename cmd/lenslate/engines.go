package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/engines"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List configured translation engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadManager()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		registry := engines.NewRegistryFromConfig(cfg.ToRegistryConfig(), slog.Default())
		available := make(map[string]bool)
		for _, name := range registry.List() {
			available[name] = true
		}

		names := make([]string, 0, len(cfg.Engines))
		for name := range cfg.Engines {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ec := cfg.Engines[name]
			status := "disabled"
			switch {
			case available[name]:
				status = "ready"
			case ec.Enabled:
				status = "unavailable"
			}
			marker := " "
			if name == cfg.Defaults.Engine {
				marker = "*"
			}
			fmt.Printf("%s %-12s %-8s %s\n", marker, name, ec.Type, status)
		}
		return nil
	},
}
