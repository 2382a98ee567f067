package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestInitConfigDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_ADDR", "CORS_ORIGINS", "MONGO_URI", "AI_THINK_TIMEOUT", "AI_BRANCH_CAP", "GAME_RETAIN_FINISHED", "GAME_IDLE_TIMEOUT", "GAME_SWEEP_INTERVAL"} {
		t.Setenv(key, "unused")
		os.Unsetenv(key)
	}

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if diff := cmp.Diff([]string{"http://localhost:5173"}, cfg.Server.CorsOrigins); diff != "" {
		t.Errorf("CorsOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.AI.ThinkTimeout != 5*time.Second || cfg.AI.BranchCap != 5 {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.Games.RetainFinished != 5*time.Minute || cfg.Games.IdleTimeout != 30*time.Minute || cfg.Games.SweepInterval != time.Minute {
		t.Errorf("Games = %+v", cfg.Games)
	}
	if cfg.Database.StatsCollection != "player_stats" {
		t.Errorf("StatsCollection = %q", cfg.Database.StatsCollection)
	}
	if cfg.PersistenceEnabled() {
		t.Errorf("persistence should be off without MONGO_URI")
	}
}

func TestInitConfigOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":8080")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("AI_THINK_TIMEOUT", "250ms")
	t.Setenv("AI_BRANCH_CAP", "8")

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.Server.CorsOrigins); diff != "" {
		t.Errorf("CorsOrigins mismatch (-want +got):\n%s", diff)
	}
	if cfg.AI.ThinkTimeout != 250*time.Millisecond || cfg.AI.BranchCap != 8 {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if !cfg.PersistenceEnabled() {
		t.Errorf("persistence should be on")
	}
}

func TestInitConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("AI_THINK_TIMEOUT", "soon")
	if _, err := InitConfig(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}
