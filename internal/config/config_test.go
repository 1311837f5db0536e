package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("CONFIG_ENV", "none")
	defer os.Unsetenv("CONFIG_ENV")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.Mode != "release" {
		t.Errorf("Mode = %q, want release", cfg.Mode)
	}
	if cfg.SweepInterval != 5*time.Second {
		t.Errorf("SweepInterval = %v, want 5s", cfg.SweepInterval)
	}
	if cfg.StaleAfter != 5*time.Second {
		t.Errorf("StaleAfter = %v, want 5s", cfg.StaleAfter)
	}
	if cfg.ChatBurst != 10 {
		t.Errorf("ChatBurst = %d, want 10", cfg.ChatBurst)
	}
}
