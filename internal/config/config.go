package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds the tunables for match pacing and clocks.
type GameConfig struct {
	// InitialClockMs is each side's starting time in milliseconds.
	InitialClockMs int64 `json:"initial_clock_ms"`
	// ClockTickRate is the match loop frequency in ticks per second.
	ClockTickRate int `json:"clock_tick_rate"`
	// HouseDrawDelayMs paces the house's automatic draws.
	HouseDrawDelayMs int `json:"house_draw_delay_ms"`
	// ResolutionDelayMs holds the resolved duel broadcast back so clients can
	// show the final hands before the board updates.
	ResolutionDelayMs int `json:"resolution_delay_ms"`
	// InviteTokenTTLHours bounds how long an invite token stays valid.
	InviteTokenTTLHours int `json:"invite_token_ttl_hours"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// DefaultGameConfig returns the built-in defaults: 10 minute clocks, 500ms
// ticks, 700ms between house draws, a 2s resolution hold and 24h invites.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		InitialClockMs:      10 * 60 * 1000,
		ClockTickRate:       2,
		HouseDrawDelayMs:    700,
		ResolutionDelayMs:   2000,
		InviteTokenTTLHours: 24,
	}
}

// LoadGameConfig loads the game configuration from the given path once.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		c := DefaultGameConfig()
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the loaded configuration or the defaults.
func GetGameConfig() GameConfig {
	if cfg == nil {
		return DefaultGameConfig()
	}
	return *cfg
}
