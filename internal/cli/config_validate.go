package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigValidateCmd creates the config validate command for validating configuration.
func newConfigValidateCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file, the project overlay and CARELIST_*
environment overrides for syntax, schema version and semantic correctness.`,
		Example: `  # Validate current configuration
  carelist config validate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := state.config(); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			cmd.Println("Configuration is valid")
			return nil
		},
	}
}

// newConfigShowCmd prints the effective configuration.
func newConfigShowCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := state.config()
			if err != nil {
				return err
			}
			out := *cfg
			if out.Source.DSN != "" {
				out.Source.DSN = redacted
			}
			data, err := yaml.Marshal(&out)
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

const redacted = "<redacted>"
