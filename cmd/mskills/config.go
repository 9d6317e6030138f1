package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/mskills/pkg/registry"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration paths",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		current.out.Section("Configuration Info")
		current.out.Info("  Config File:   %s", current.paths.RegistryFile)
		current.out.Info("  Settings File: %s", current.paths.SettingsFile)
		current.out.Info("  Skills Dir:    %s", current.settings.StoreDir)
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the registry file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		data, err := json.MarshalIndent(registry.Schema(), "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal schema")
		}
		fmt.Fprintln(current.out.Writer(), string(data))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSchemaCmd)
	rootCmd.AddCommand(configCmd)
}
