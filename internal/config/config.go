package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

type Config struct {
	Environment string `json:"environment"`
	Server      struct {
		Host         string `json:"host"`
		Port         int    `json:"port"`
		AllowOrigins string `json:"allowOrigins"`
	} `json:"server"`
	Log struct {
		Level string `json:"level"` // debug, info, warn or error
	} `json:"log"`
	Game struct {
		ClockSeconds        int `json:"clockSeconds"`
		MatchmakingInterval int `json:"matchmakingInterval"` // in seconds
	} `json:"game"`
	Store struct {
		Driver   string `json:"driver"` // memory or mongo
		MongoURI string `json:"mongoUri"`
		Database string `json:"database"`
	} `json:"store"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	cfg := &Config{Environment: "dev"}
	cfg.Server.Host = ""
	cfg.Server.Port = 3000
	cfg.Server.AllowOrigins = "http://localhost:5173"
	cfg.Log.Level = "info"
	cfg.Game.ClockSeconds = 600
	cfg.Game.MatchmakingInterval = 1
	cfg.Store.Driver = "memory"
	cfg.Store.Database = "chessrules"
	return cfg
}

// Load reads configs/config.<env>.json (directory overridable with
// CONFIG_DIR) over the defaults. A missing file is not an error.
func Load(env string) (*Config, error) {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "configs"
	}

	cfg := Default()
	cfg.Environment = env

	configPath := filepath.Join(configDir, fmt.Sprintf("config.%s.json", env))
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := json.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	cfg.Environment = env
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Game.ClockSeconds <= 0 {
		return fmt.Errorf("invalid game.clockSeconds %d", c.Game.ClockSeconds)
	}
	if c.Game.MatchmakingInterval <= 0 {
		return fmt.Errorf("invalid game.matchmakingInterval %d", c.Game.MatchmakingInterval)
	}
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Store.MongoURI == "" {
			return errors.New("store.mongoUri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		return os.Getenv(key)
	})
}

func GetEnv() string {
	env := os.Getenv("CHESS_ENV")
	if env == "" {
		return "dev"
	}
	return env
}
