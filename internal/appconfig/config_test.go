package appconfig

import "testing"

func TestDefaultConfigEngineDefaults(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.ConfigVersion != CurrentConfigVersion {
		t.Fatalf("config version %d", cfg.ConfigVersion)
	}
	if cfg.Engine.Binary != "docker" {
		t.Fatalf("engine binary %q", cfg.Engine.Binary)
	}
	if cfg.Engine.PostgresSocket != "/var/run/postgresql" {
		t.Fatalf("postgres socket %q", cfg.Engine.PostgresSocket)
	}
	if cfg.Engine.BuildTimeout <= 0 || cfg.Engine.StopTimeout <= 0 {
		t.Fatalf("timeouts not defaulted: %+v", cfg.Engine)
	}
}
