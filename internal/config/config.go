package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

type GameConfig struct {
	// TickRate is the number of match loop ticks per second.
	TickRate int `json:"tick_rate"`
	// BotDelayTicks is how many ticks an AI team waits before acting.
	BotDelayTicks int    `json:"bot_delay_ticks"`
	BotLevel      string `json:"bot_level"`

	AdvisorModel          string `json:"advisor_model"`
	AdvisorTimeoutSeconds int    `json:"advisor_timeout_seconds"`

	DefaultMaxTeams      int `json:"default_max_teams"`
	AdminTokenTTLMinutes int `json:"admin_token_ttl_minutes"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// Default returns the configuration used when no file is loaded.
func Default() GameConfig {
	return GameConfig{
		TickRate:              5,
		BotDelayTicks:         8, // 1.5s at 5 ticks/s, rounded up
		BotLevel:              "cautious",
		AdvisorModel:          "gemini-2.5-flash",
		AdvisorTimeoutSeconds: 15,
		DefaultMaxTeams:       12,
		AdminTokenTTLMinutes:  12 * 60,
	}
}

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c, err := parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &c
	})
	return loadErr
}

func parse(data []byte) (GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	return c.withDefaults(), nil
}

// GetGameConfig returns the global game configuration, or defaults when none was loaded.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return Default()
	}
	return *cfg
}

func (c GameConfig) withDefaults() GameConfig {
	def := Default()
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if c.BotDelayTicks < 0 {
		c.BotDelayTicks = def.BotDelayTicks
	}
	if c.BotLevel == "" {
		c.BotLevel = def.BotLevel
	}
	if c.AdvisorModel == "" {
		c.AdvisorModel = def.AdvisorModel
	}
	if c.AdvisorTimeoutSeconds <= 0 {
		c.AdvisorTimeoutSeconds = def.AdvisorTimeoutSeconds
	}
	if c.DefaultMaxTeams <= 0 {
		c.DefaultMaxTeams = def.DefaultMaxTeams
	}
	if c.AdminTokenTTLMinutes <= 0 {
		c.AdminTokenTTLMinutes = def.AdminTokenTTLMinutes
	}
	return c
}

// AdvisorTimeout returns the advisor deadline as a duration.
func (c GameConfig) AdvisorTimeout() time.Duration {
	return time.Duration(c.AdvisorTimeoutSeconds) * time.Second
}

// AdminTokenTTL returns the admin session lifetime as a duration.
func (c GameConfig) AdminTokenTTL() time.Duration {
	return time.Duration(c.AdminTokenTTLMinutes) * time.Minute
}
