package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rojournal-dev/rojournal/internal/buildinfo"
	"github.com/rojournal-dev/rojournal/internal/config"
	"github.com/rojournal-dev/rojournal/internal/logger"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:     "rojournal",
		Short:   "Romanian sale/purchase VAT journal reports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Setup(config.LoggingConfig{Level: logLevel, Format: logFormat})
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newSchemaCommand())

	return rootCmd
}

// loadConfig reads the config file, falling back to defaults when no
// path is given and no rojournal.yaml exists in the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cfg, err := config.Load("rojournal.yaml")
	if err == nil {
		return cfg, nil
	}
	return config.Default("", ""), nil
}
