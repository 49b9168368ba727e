package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/config"
)

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		MediaUploadTimeout: time.Minute,
		ObjectStore:        config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps, err := buildDependencies(context.Background(), nil, cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Videos == nil {
		t.Fatal("expected video repository to be configured")
	}
	if deps.Comments == nil {
		t.Fatal("expected comment repository to be configured")
	}
	if deps.Tweets == nil {
		t.Fatal("expected tweet repository to be configured")
	}
	if deps.Likes == nil {
		t.Fatal("expected like repository to be configured")
	}
	if deps.Subscriptions == nil {
		t.Fatal("expected subscription repository to be configured")
	}
	if deps.Playlists == nil {
		t.Fatal("expected playlist repository to be configured")
	}
	if deps.Dashboard == nil {
		t.Fatal("expected dashboard repository to be configured")
	}
	if deps.Tokens == nil || deps.TokenVerifier == nil {
		t.Fatal("expected token service to be configured")
	}
	if deps.Media == nil {
		t.Fatal("expected media storage to be configured")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected auth rate limiter to be configured")
	}
	if deps.UploadTimeout != cfg.MediaUploadTimeout {
		t.Fatalf("expected upload timeout %v, got %v", cfg.MediaUploadTimeout, deps.UploadTimeout)
	}
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for name, want := range cases {
		if got := logLevel(name); got != want {
			t.Errorf("logLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
