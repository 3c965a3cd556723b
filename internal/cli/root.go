package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/carelist/internal/config"
	"github.com/rshade/carelist/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// rootState is shared between the root command and its subcommands.
type rootState struct {
	configPath string
	debug      bool
	lookupEnv  func(string) (string, bool)

	cfg       *config.Config
	cfgErr    error
	logResult *logging.LogPathResult
}

// config returns the loaded configuration, or the error that prevented loading it.
func (s *rootState) config() (*config.Config, error) {
	if s.cfgErr != nil {
		return nil, s.cfgErr
	}
	return s.cfg, nil
}

// NewRootCmd creates the root Cobra command for the carelist CLI.
// It loads configuration, wires up logging and tracing, and adds the
// patients, config and cache subcommands.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	state := &rootState{lookupEnv: lookupEnv}

	cmd := &cobra.Command{
		Use:           "carelist",
		Short:         "Browse patient lists that load as you scroll",
		Long:          "carelist: a terminal patient list backed by paged fixture, HTTP or Postgres sources",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A broken config file still gets default logging so that
			// `config validate` can report it.
			cfg, err := loadConfig(state)
			if err != nil {
				state.cfgErr = err
				cfg = config.New()
			}
			state.cfg = cfg

			result := setupLogging(cmd, state)
			state.logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, state.logResult)
		},
	}

	cmd.PersistentFlags().StringVar(&state.configPath, "config", "",
		"config file (default ~/.carelist/config.yaml)")
	cmd.PersistentFlags().BoolVar(&state.debug, "debug", false, "enable debug logging to stderr")

	cmd.AddCommand(
		newPatientsCmd(state),
		newConfigCmd(state),
		newCacheCmd(state),
	)
	return cmd
}

// loadConfig reads the user config and the project overlay in the working directory.
func loadConfig(state *rootState) (*config.Config, error) {
	path := state.configPath
	if path == "" {
		if v, ok := state.lookupEnv("CARELIST_CONFIG"); ok && v != "" {
			path = v
		} else {
			path = config.DefaultPath()
		}
	}
	return config.Load(path, config.ProjectFileName)
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(state), newConfigValidateCmd(state), newConfigShowCmd(state))
	return cmd
}

const rootCmdExample = `  # Browse generated patients
  carelist patients

  # Browse patients from the EHR API for one workspace
  carelist patients --source http --workspace north-clinic --user nurse.joy

  # Read straight from Postgres, 100 rows per page, sorted by next pickup
  carelist patients --source postgres --page-size 100 --sort nextPickup:asc

  # Print the first 500 patients as a table
  carelist patients --plain --max-items 500

  # Write a default configuration file
  carelist config init`
