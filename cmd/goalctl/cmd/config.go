package cmd

import (
	"github.com/cmeetit/cmeetit/internal/config"
	"github.com/spf13/cobra"
)

func ConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration without secrets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load().Sanitized()

			return printJSON(cmd.OutOrStdout(), struct {
				*config.Config
				Timezone string
			}{
				Config:   cfg,
				Timezone: cfg.Timezone.String(),
			})
		},
	}
}
