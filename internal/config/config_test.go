package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")

	cfg := Load()

	if cfg.DBPath != defaultDBPath {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, defaultDBPath)
	}
	if cfg.Port != defaultPort {
		t.Fatalf("Port = %q, want %q", cfg.Port, defaultPort)
	}
	if !cfg.IsDev() {
		t.Fatal("expected default environment to be development")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_PATH", "/var/lib/erp/erp.db")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	if cfg.DBPath != "/var/lib/erp/erp.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Port != "9090" {
		t.Fatalf("Port = %q", cfg.Port)
	}
	if cfg.IsDev() {
		t.Fatal("expected production environment")
	}
}
