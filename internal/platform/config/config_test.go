package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load defaults failed: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.Moderation.MaxPendingQueueSize != 50 {
		t.Fatalf("expected default queue size 50, got %d", cfg.Moderation.MaxPendingQueueSize)
	}
	if cfg.Moderation.QuorumFraction != 0.5 {
		t.Fatalf("expected default quorum fraction 0.5, got %f", cfg.Moderation.QuorumFraction)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TARMAC_HTTP_PORT", "9191")
	t.Setenv("TARMAC_MODERATION__WEEKLY_SUBMISSION_LIMIT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load with env failed: %v", err)
	}
	if cfg.HTTPPort != "9191" {
		t.Fatalf("expected env port 9191, got %s", cfg.HTTPPort)
	}
	if cfg.Moderation.WeeklySubmissionLimit != 3 {
		t.Fatalf("expected weekly limit 3, got %d", cfg.Moderation.WeeklySubmissionLimit)
	}
}

func TestLoadRejectsBadFile(t *testing.T) {
	t.Setenv("TARMAC_CONFIG", os.TempDir()+"/definitely-missing-tarmac.yaml")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
