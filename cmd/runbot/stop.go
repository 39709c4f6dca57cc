package main

import (
	"github.com/spf13/cobra"

	"github.com/mmalewski/runbot/internal/appconfig"
)

func newStopCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "stop <name>",
		Short: "Stop a running container by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(configPath)
			if err != nil {
				return err
			}
			return newEngine(cfg).Stop(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
