package main

import (
	"github.com/spf13/cobra"

	"github.com/mmalewski/runbot/engine"
	"github.com/mmalewski/runbot/internal/appconfig"
)

func newBuildCmd() *cobra.Command {
	var configPath string
	var tag string
	cmd := &cobra.Command{
		Use:   "build <build_dir>",
		Short: "Build the odoo test image from a build directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(configPath)
			if err != nil {
				return err
			}
			return newEngine(cfg).Build(cmd.Context(), engine.BuildSpec{
				BuildDir: args[0],
				Tag:      tag,
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "image tag (default from config)")
	return cmd
}
