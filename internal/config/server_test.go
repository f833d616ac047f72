package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/casino?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.InitialBalance != 10000 {
		t.Fatalf("InitialBalance = %d, want 10000", cfg.InitialBalance)
	}
	if cfg.FaucetAmount != 1000 {
		t.Fatalf("FaucetAmount = %d, want 1000", cfg.FaucetAmount)
	}
	if cfg.FaucetCooldownMins != 30 {
		t.Fatalf("FaucetCooldownMins = %d, want 30", cfg.FaucetCooldownMins)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadAppParsesBothSections(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/casino?sslmode=disable")
	t.Setenv("FAUCET_AMOUNT", "2500")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "1")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Server.FaucetAmount != 2500 {
		t.Fatalf("FaucetAmount = %d, want 2500", cfg.Server.FaucetAmount)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Pretty {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}
