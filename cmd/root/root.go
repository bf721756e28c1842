// Package root contains the root command for the application
package root

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gannet/booking-reports/internal/common"
	"gannet/booking-reports/internal/config"
	"gannet/booking-reports/internal/crmparser"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "booking-reports",
		Short: "A CLI tool to enrich CRM booking exports with FX rates and build analytical views.",
		Long: `booking-reports ingests reservation CSV exports, enriches each record with a
historical exchange rate resolved by its creation date, flags data-quality
anomalies and builds the booking-window sales matrix.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to booking-reports!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
			Log = config.ConfigureLogging()

			crmparser.SetLogger(Log)

			if delim := os.Getenv("CSV_DELIMITER"); delim != "" {
				Log.WithField("delimiter", delim).Debug("Setting CSV delimiter from environment")
				common.SetDelimiter([]rune(delim)[0])
			}
		},
	}
)

// Init configures the root command. Called once from main before
// subcommands are attached.
func Init() {
	Cmd.SilenceUsage = true
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := Cmd.Execute(); err != nil {
		Log.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}
