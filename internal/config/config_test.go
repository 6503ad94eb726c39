package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("AFFLUX_JWT_SECRET", "s3cret")
	t.Setenv("AFFLUX_CREDENTIAL_KEY", "k3y")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.Addr)
	}
	if cfg.CollectPause != time.Second {
		t.Errorf("CollectPause = %v, want 1s", cfg.CollectPause)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret = %q, want env value", cfg.JWTSecret)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "addr: \":8080\"\njwt_secret: filesecret\ncredential_key: filekey\ncollect_pause: 2s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AFFLUX_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, env should override file", cfg.Addr)
	}
	if cfg.JWTSecret != "filesecret" {
		t.Errorf("JWTSecret = %q, want filesecret", cfg.JWTSecret)
	}
	if cfg.CollectPause != 2*time.Second {
		t.Errorf("CollectPause = %v, want 2s", cfg.CollectPause)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("AFFLUX_JWT_SECRET", "")
	t.Setenv("AFFLUX_CREDENTIAL_KEY", "")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error when jwt_secret is missing")
	}
}
