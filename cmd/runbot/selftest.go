package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/mmalewski/runbot/engine/dockerapi"
	"github.com/mmalewski/runbot/internal/appconfig"
	"github.com/mmalewski/runbot/internal/selftest"
)

func newSelfTestCmd() *cobra.Command {
	var configPath string
	var skipDB bool
	cmd := &cobra.Command{
		Use:   "selftest <build_dir> <odoo_version> <odoo_port> <db_name>",
		Short: "Exercise build, run, lock and stop against a real engine",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(configPath)
			if err != nil {
				return err
			}
			port, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid odoo_port %q", args[2])
			}
			logger := pslog.Ctx(cmd.Context())

			var probe selftest.Probe
			if apiProbe, err := dockerapi.New(); err != nil {
				logger.Warn("engine api unavailable, skipping state checks", "err", err)
			} else {
				defer func() { _ = apiProbe.Close() }()
				probe = apiProbe
			}

			stCfg := selftest.Config{
				BuildDir:    args[0],
				OdooVersion: args[1],
				Port:        port,
				DBName:      args[3],
				KillAfter:   time.Duration(cfg.SelfTest.KillAfterSeconds) * time.Second,
				WaitTimeout: time.Duration(cfg.SelfTest.WaitTimeoutMinutes) * time.Minute,
				PortWait:    time.Duration(cfg.SelfTest.PortWaitSeconds) * time.Second,
			}
			if !skipDB {
				stCfg.PostgresSocket = cfg.Engine.PostgresSocket
			}
			driver, err := selftest.New(newEngine(cfg), probe, stCfg)
			if err != nil {
				return err
			}
			return driver.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&skipDB, "skip-db", false, "do not create the test database")
	return cmd
}
