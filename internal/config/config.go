package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/zeusync/behave/internal/core/observability/log"
)

var ErrInvalid = errors.New("invalid config")

// Config holds application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Sim    SimConfig    `mapstructure:"sim"`
	Runner RunnerConfig `mapstructure:"runner"`
	Server ServerConfig `mapstructure:"server"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SimConfig controls the simulation loop.
type SimConfig struct {
	// Tick is the wall-clock and simulated length of one step.
	Tick time.Duration `mapstructure:"tick"`
	// Ticks stops the loop after that many steps; 0 runs until interrupted.
	Ticks     int   `mapstructure:"ticks"`
	Scenarios int   `mapstructure:"scenarios"`
	Seed      int64 `mapstructure:"seed"`
	// GuardTree optionally points at a YAML tree replacing the built-in
	// guard behavior.
	GuardTree string `mapstructure:"guard_tree"`
	History   int    `mapstructure:"history"`
}

type RunnerConfig struct {
	Shards int `mapstructure:"shards"`
}

type ServerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Addr       string `mapstructure:"addr"`
	Token      string `mapstructure:"token"`
	MaxClients int    `mapstructure:"max_clients"`
	SendBuffer int    `mapstructure:"send_buffer"`
}

// Load reads configuration from path, or from $BTSIM_CONFIG, or from
// ./btsim.yaml when present. Env var overrides use prefix BTSIM_, e.g.
// BTSIM_SIM_SCENARIOS.
func Load(path string) (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("log.level", "info")
	v.SetDefault("sim.tick", 50*time.Millisecond)
	v.SetDefault("sim.ticks", 0)
	v.SetDefault("sim.scenarios", 4)
	v.SetDefault("sim.seed", 1)
	v.SetDefault("sim.guard_tree", "")
	v.SetDefault("sim.history", 0)
	v.SetDefault("runner.shards", 2)
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.token", "")
	v.SetDefault("server.max_clients", 1000)
	v.SetDefault("server.send_buffer", 16)

	v.SetConfigType("yaml")

	if path == "" {
		path = os.Getenv("BTSIM_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("btsim")
	}

	v.SetEnvPrefix("BTSIM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	switch {
	case c.Sim.Tick <= 0:
		return fmt.Errorf("%w: sim.tick must be positive", ErrInvalid)
	case c.Sim.Ticks < 0:
		return fmt.Errorf("%w: sim.ticks must not be negative", ErrInvalid)
	case c.Sim.Scenarios <= 0:
		return fmt.Errorf("%w: sim.scenarios must be positive", ErrInvalid)
	case c.Runner.Shards <= 0:
		return fmt.Errorf("%w: runner.shards must be positive", ErrInvalid)
	case c.Server.Enabled && c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr required", ErrInvalid)
	}
	return nil
}
