package main

import (
	"os"

	"github.com/cmeetit/cmeetit/cmd/goalctl/cmd"
	"github.com/cmeetit/cmeetit/internal/config"
	"github.com/cmeetit/cmeetit/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "goalctl",
		Short:        "Operator tools for cmeetit",
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), "")
		},
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.SweepCmd())
	rootCmd.AddCommand(cmd.TokenCmd())
	rootCmd.AddCommand(cmd.ConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
