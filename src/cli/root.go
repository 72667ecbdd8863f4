// Package cli defines the foliomap command tree. Every command resolves the
// configuration up front and reports failures through the shared error
// contract; main formats whatever comes back.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/username/foliomap/src/config"
	"github.com/username/foliomap/src/logger"
)

var (
	cfgPath  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "foliomap",
	Short: "Portfolio allocation charts from a Google Sheets worksheet",
	Long: `Foliomap reads a holdings worksheet from Google Sheets, cleans it and
renders interactive sunburst and treemap allocation charts as standalone
HTML pages, either exported to disk or served as a small dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		logger.InitLogger(loaded.LogLevel)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the settings file (default settings.toml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.AddCommand(exportCmd, serveCmd, checkCmd)
}

// Execute runs the selected command.
func Execute() error {
	return rootCmd.Execute()
}
