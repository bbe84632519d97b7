package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepkitchen/label-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "label-cli",
	Short: "Nutrition label computation and verification engine",
	Long:  "Resolves multi-source nutrient data into consensus profiles, calibrates cooking yields from weigh-ins, validates plausibility, and freezes immutable versioned nutrition labels.",
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
