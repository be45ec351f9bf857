package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hector-sim/hector-core/sim/simerr"
)

var logLevel string // Process log verbosity

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:           "hector",
	Short:         "Component runtime for discrete-time model runs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			return simerr.RethrowAs(simerr.ConfigError, err, "invalid log level "+logLevel)
		}
		logrus.SetLevel(level)
		return nil
	},
}

// Execute runs the CLI root command. Any failure is logged with its full error report.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(simerr.Report(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
