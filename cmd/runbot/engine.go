package main

import (
	"time"

	"github.com/mmalewski/runbot/engine/dockercli"
	"github.com/mmalewski/runbot/internal/appconfig"
)

func newEngine(cfg appconfig.Config) *dockercli.Runtime {
	return dockercli.New(dockercli.Config{
		Binary:         cfg.Engine.Binary,
		ImageTag:       cfg.Engine.ImageTag,
		PostgresSocket: cfg.Engine.PostgresSocket,
		BuildTimeout:   time.Duration(cfg.Engine.BuildTimeout) * time.Minute,
		StopTimeout:    time.Duration(cfg.Engine.StopTimeout) * time.Second,
	})
}
