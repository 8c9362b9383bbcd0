package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "appwatch",
	Short: "Principal-officer appointments monitor",
	Long:  "Watches public personnel-change feeds for evidence that a tracked organization's principal officer changed, and cross-checks listed officers against departure notices. Produces ranked candidates for analyst review; never edits the registry.",
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
