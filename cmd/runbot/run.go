package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"github.com/mmalewski/runbot/engine"
	"github.com/mmalewski/runbot/internal/appconfig"
	"github.com/mmalewski/runbot/internal/builddir"
)

func newRunCmd() *cobra.Command {
	var configPath string
	var logPath string
	var name string
	var port int
	var cpuLimit int
	var detach bool
	var lock bool
	var wait bool
	cmd := &cobra.Command{
		Use:   "run <build_dir> -- <command...>",
		Short: "Start a build container running the given command",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(configPath)
			if err != nil {
				return err
			}
			layout := builddir.New(args[0])
			if err := layout.Ensure(); err != nil {
				return err
			}
			if name == "" {
				name = fmt.Sprintf("odoo-container-%d", time.Now().Nanosecond()/1000)
			}
			if logPath == "" {
				logPath = layout.LogPath(name + ".txt")
			}
			spec := engine.RunSpec{
				BuildDir:    layout.Root,
				LogPath:     logPath,
				Command:     args[1:],
				Name:        name,
				ExposedPort: port,
				CPULimit:    cpuLimit,
				Detach:      detach,
			}
			if lock {
				spec.LockPath = layout.LockPath
			}
			h, err := newEngine(cfg).Start(cmd.Context(), spec)
			if err != nil {
				return err
			}
			logger := pslog.Ctx(cmd.Context())
			logger.Info("container run started", "container", name, "pid", h.Pid(), "log", logPath)
			if !wait {
				return nil
			}
			status, err := h.Wait(cmd.Context())
			if err != nil {
				return err
			}
			if status.Code != 0 {
				return fmt.Errorf("container %s exited with code %d", name, status.Code)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&logPath, "log", "", "log file path (default <build_dir>/logs/<name>.txt)")
	cmd.Flags().StringVar(&name, "name", "", "container name (default derived from the clock)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "publish the odoo port on 127.0.0.1:<port>")
	cmd.Flags().IntVar(&cpuLimit, "cpu-limit", 0, "cpu time ulimit in seconds")
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "run the container in its own session")
	cmd.Flags().BoolVar(&lock, "lock", false, "hold <build_dir>/logs/lock.txt for the run's lifetime")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "block until the container exits")
	return cmd
}
