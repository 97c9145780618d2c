package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultGameConfig(t *testing.T) {
	c := DefaultGameConfig()
	if c.InitialClockMs != 600000 {
		t.Fatalf("initial clock = %d, want 600000", c.InitialClockMs)
	}
	if c.ClockTickRate != 2 {
		t.Fatalf("tick rate = %d, want 2", c.ClockTickRate)
	}
	if c.HouseDrawDelayMs != 700 || c.ResolutionDelayMs != 2000 {
		t.Fatalf("pacing = %d/%d, want 700/2000", c.HouseDrawDelayMs, c.ResolutionDelayMs)
	}
}

func TestGetGameConfigFallsBackToDefaults(t *testing.T) {
	if got := GetGameConfig(); got != DefaultGameConfig() {
		t.Fatalf("unloaded config = %+v, want defaults", got)
	}
}

func TestLoadGameConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.json")
	if err := os.WriteFile(path, []byte(`{"house_draw_delay_ms": 250}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := LoadGameConfig(path); err != nil {
		t.Fatalf("load config: %v", err)
	}
	c := GetGameConfig()
	if c.HouseDrawDelayMs != 250 {
		t.Fatalf("house draw delay = %d, want 250", c.HouseDrawDelayMs)
	}
	// Fields absent from the file keep their defaults.
	if c.InitialClockMs != 600000 || c.ClockTickRate != 2 {
		t.Fatalf("defaults lost: %+v", c)
	}
}
