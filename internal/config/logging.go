package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rshade/carelist/internal/logging"
)

// ToLoggingConfig converts the logging section for the logging package.
// A configured file selects file output; otherwise logs go to stderr.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:      lc.Level,
		Format:     lc.Format,
		Output:     output,
		File:       lc.File,
		MaxSizeMB:  lc.MaxSizeMB,
		MaxBackups: lc.MaxBackups,
		MaxAgeDays: lc.MaxAgeDays,
		Caller:     lc.Caller,
	}
}

// EnsureLogDir creates the directory of the configured log file.
func (lc LoggingConfig) EnsureLogDir() error {
	if lc.File == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(lc.File), dirPerm); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	return nil
}
