package appconfig

import (
	"os"
	"path/filepath"

	"github.com/mmalewski/runbot/engine"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Engine        EngineConfig   `mapstructure:"engine" yaml:"engine"`
	SelfTest      SelfTestConfig `mapstructure:"selftest" yaml:"selftest"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// EngineConfig configures the container engine driver.
type EngineConfig struct {
	Binary         string `mapstructure:"binary" yaml:"binary"`
	ImageTag       string `mapstructure:"image_tag" yaml:"image_tag"`
	PostgresSocket string `mapstructure:"postgres_socket" yaml:"postgres_socket"`
	BuildTimeout   int    `mapstructure:"build_timeout_minutes" yaml:"build_timeout_minutes"`
	StopTimeout    int    `mapstructure:"stop_timeout_seconds" yaml:"stop_timeout_seconds"`
}

// SelfTestConfig tunes the self-test scenarios.
type SelfTestConfig struct {
	KillAfterSeconds   int `mapstructure:"kill_after_seconds" yaml:"kill_after_seconds"`
	WaitTimeoutMinutes int `mapstructure:"wait_timeout_minutes" yaml:"wait_timeout_minutes"`
	PortWaitSeconds    int `mapstructure:"port_wait_seconds" yaml:"port_wait_seconds"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Engine: EngineConfig{
			Binary:         "docker",
			ImageTag:       engine.DefaultImageTag,
			PostgresSocket: engine.PostgresSocket,
			BuildTimeout:   20,
			StopTimeout:    60,
		},
		SelfTest: SelfTestConfig{
			KillAfterSeconds:   30,
			WaitTimeoutMinutes: 10,
			PortWaitSeconds:    60,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".runbot", "config.yaml"), nil
}
