package config

import "github.com/caarlos0/env/v11"

// TestConfig gates the Postgres-backed tests; each test carves its own
// schema out of this DSN and drops it on cleanup. Leaving the variable
// unset skips them.
type TestConfig struct {
	TestPostgresDSN string `env:"TEST_POSTGRES_DSN,required,notEmpty"`
}

func LoadTest() (TestConfig, error) {
	var cfg TestConfig
	err := env.Parse(&cfg)
	return cfg, err
}
