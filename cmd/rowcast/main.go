// Command rowcast predicts the unseen positions of a row/column event sequence.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jsnanigans/rowcast/internal/config"
	"github.com/jsnanigans/rowcast/internal/logging"
)

var (
	configPath string
	verbose    bool
	maxRows    int
	maxCols    int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rowcast",
	Short: "Predict where the next events of a row/column sequence land",
	Long: `rowcast reads known (row, column) positions, learns the column pattern and
the spacing between rows, and guesses where the remaining positions are.

Positions are given as [7,2],[19,5] or 7,2 19,5, or read from a YAML, JSON or
text file with --file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if maxRows > 0 {
			cfg.Grid.MaxRows = maxRows
		}
		if maxCols > 0 {
			cfg.Grid.MaxCols = maxCols
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Logging, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVar(&maxRows, "max-rows", 0, "Deepest row a prediction may use (overrides config)")
	rootCmd.PersistentFlags().IntVar(&maxCols, "max-cols", 0, "Number of columns (overrides config)")

	rootCmd.AddCommand(predictCmd, analyzeCmd, statsCmd, compareCmd, serveCmd, configCmd)
	configCmd.AddCommand(configInitCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
