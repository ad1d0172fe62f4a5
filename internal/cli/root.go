// Package cli wires the ingestion pipeline and report generator into cobra
// commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jamesaloy3/hospitality-outlook/internal/config"
)

// Exit codes.
const (
	ExitSuccess          = 0
	ExitGenericError     = 1
	ExitConfigInvalid    = 2
	ExitLedgerCorrupt    = 3
	ExitLedgerLocked     = 4
	ExitGenerationFailed = 5
)

// GlobalFlags holds flags shared across all commands.
type GlobalFlags struct {
	ConfigPath string
	StateDir   string
	Quiet      bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "hospitality-outlook",
	Short: "Earnings-document pipeline and lodging industry outlook generator",
	Long: "hospitality-outlook ingests a folder of earnings PDFs into a remote search index,\n" +
		"extracts structured attributes per document, and generates a periodized U.S.\n" +
		"Lodging Industry Outlook report through a tool-calling model session.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", config.DefaultConfigPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&globalFlags.StateDir, "state-dir", "", "state directory (default: ./.outlook)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.Quiet, "quiet", false, "reduce output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listFilesCmd)
	rootCmd.AddCommand(showAttributesCmd)
	rootCmd.AddCommand(exportAttributesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// exitWith prints message to stderr and exits with code.
func exitWith(code int, msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}

// loadConfig applies the global flags and loads the config.
func loadConfig(skipValidate bool) (*config.Config, error) {
	overrides := &config.Overrides{}
	if globalFlags.StateDir != "" {
		overrides.StateDir = &globalFlags.StateDir
	}
	return config.Load(config.Options{
		ConfigPath:   globalFlags.ConfigPath,
		SkipValidate: skipValidate,
		Overrides:    overrides,
	})
}

// newLogger builds the process logger. Quiet mode keeps warnings and errors.
func newLogger() *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if globalFlags.Quiet {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return log.Sugar()
}
