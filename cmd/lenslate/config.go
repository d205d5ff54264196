package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/config"
	"github.com/lenslate/lenslate/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage lenslate configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file to the home directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := home.New(homePath)
		if err != nil {
			return err
		}
		if err := dir.EnsureExists(); err != nil {
			return err
		}

		if dir.ConfigExists() && !configForce && !dir.NeedsSettingsReset() {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", dir.ConfigPath())
		}

		if err := config.WriteDefault(dir.ConfigPath()); err != nil {
			return err
		}
		if err := dir.WriteSettingsVersion(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", dir.ConfigPath())
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}
