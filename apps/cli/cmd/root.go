package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/fauxhttp/packages/core/config"
	"github.com/abdul-hamid-achik/fauxhttp/packages/logging"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag    string
	logLevelFlag  string
	logFormatFlag string
	noColorFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "fauxhttp",
	Short: "Canned HTTP responses from plain fixture files.",
	Long: `fauxhttp answers HTTP requests from registered canned responses.
Describe the responses in YAML or JSON fixture files, then validate them,
check which route a request would hit, or serve them on a local port.`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitFailure)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default: .fauxhttp.json in the current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies the
// persistent flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, err
	}

	cfg = cfg.Merge(&config.Config{
		LogLevel:  logLevelFlag,
		LogFormat: logFormatFlag,
	})
	if noColorFlag {
		cfg.NoColor = config.BoolPtr(true)
	}
	if cfg.GetNoColor() {
		color.NoColor = true
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logrus.Logger {
	return logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}
