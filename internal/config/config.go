package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "ACTORSIM_CONFIG"

// DefaultPath is read when EnvPath is unset.
const DefaultPath = "config/arena.toml"

type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	AI         AIConfig         `toml:"ai"`
	Data       DataConfig       `toml:"data"`
	Logging    LoggingConfig    `toml:"logging"`
	Debug      DebugConfig      `toml:"debug"`
	Replay     ReplayConfig     `toml:"replay"`
}

type SimulationConfig struct {
	TickRate       time.Duration `toml:"tick_rate"`       // wall-clock frame; 0 runs as fast as possible
	FixedStep      time.Duration `toml:"fixed_step"`      // physics and FixedTick delta
	GlobalCooldown float64       `toml:"global_cooldown"` // seconds; 0 disables
	MaxTicks       int           `toml:"max_ticks"`       // 0 = until interrupted
	Seed           int64         `toml:"seed"`            // spawn jitter; 0 = no jitter
	CellSize       float64       `toml:"cell_size"`
	DespawnDelay   float64       `toml:"despawn_delay"`
}

type AIConfig struct {
	ReacquireInterval  float64 `toml:"reacquire_interval"`
	StopBuffer         float64 `toml:"stop_buffer"`
	RequireLineOfSight bool    `toml:"require_line_of_sight"`
	TargetMask         uint32  `toml:"target_mask"` // hurtbox layers brains acquire; 0 = all
	ScriptsDir         string  `toml:"scripts_dir"`
}

type DataConfig struct {
	Catalog  string `toml:"catalog"`
	Scenario string `toml:"scenario"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
	FrameEvery  int    `toml:"frame_every"` // publish a world frame every N steps
	Buffer      int    `toml:"buffer"`
}

type ReplayConfig struct {
	RecordPath string `toml:"record_path"` // record the player's commands here
	PlayPath   string `toml:"play_path"`   // drive the player from this recording
}

var (
	errFixedStep = errors.New("simulation.fixed_step must be positive")
	errBothModes = errors.New("replay.record_path and replay.play_path are exclusive")
	errNoCatalog = errors.New("data.catalog is required")
)

// Path returns the config path, honoring EnvPath.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Simulation.FixedStep <= 0:
		return errFixedStep
	case c.Replay.RecordPath != "" && c.Replay.PlayPath != "":
		return errBothModes
	case c.Data.Catalog == "":
		return errNoCatalog
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:       20 * time.Millisecond,
			FixedStep:      20 * time.Millisecond,
			GlobalCooldown: 0.2,
			MaxTicks:       0,
			CellSize:       4,
			DespawnDelay:   2,
		},
		AI: AIConfig{
			ReacquireInterval: 0.25,
			StopBuffer:        0.05,
			ScriptsDir:        "scripts/ai",
		},
		Data: DataConfig{
			Catalog:  "data/yaml/catalog.yaml",
			Scenario: "skirmish",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1:7070",
			FrameEvery:  3,
			Buffer:      1024,
		},
	}
}
