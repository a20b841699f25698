package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	dryRun  bool
	verbose bool
	output  string
	cfgFile string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "iviz",
	Short: "Insight scaling visualization extractor",
	Long: `iviz scans experiment run directories for validated insight scores
and emits the JSON bundles and sample images consumed by the static
visualization webpage.

Core Commands:
  extract      Build visualization bundles from run outputs
  datasets     List configured datasets
  version      Show version information

The pipeline per dataset: load scored insights from run_* directories,
sort by score, sample first/last plus evenly spaced points, copy the
sampled images, and write data/interactive_<key>.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		syncConfigFlagToEnv()

		// Initialize logger
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./insightviz.yaml)")
}

// GetDryRun returns the dry-run flag value for use by subcommands.
func GetDryRun() bool {
	return dryRun
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

func syncConfigFlagToEnv() {
	path := strings.TrimSpace(cfgFile)
	if path == "" {
		return
	}
	_ = os.Setenv("INSIGHTVIZ_CONFIG", path)
}
