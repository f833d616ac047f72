package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminToken    string `env:"ADMIN_TOKEN"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	InitialBalance     int64 `env:"INITIAL_BALANCE" envDefault:"10000"`
	FaucetAmount       int64 `env:"FAUCET_AMOUNT" envDefault:"1000"`
	FaucetCooldownMins int   `env:"FAUCET_COOLDOWN_MINUTES" envDefault:"30"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
