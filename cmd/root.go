package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jinhak-lab/admitscan/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "admitscan",
	Short: "Korean university admission-data extraction pipeline",
	Long:  "Fetches raw admission-result tables per university, parses them by rules with an LLM fallback, and persists grade cutoffs for downstream charting.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
