package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Env holds process configuration read from the environment. Flags take
// precedence; these are the fallback defaults.
type Env struct {
	PostgresDSN   string
	ClickHouseDSN string
	EngineWSURL   string
	MetricsAddr   string
}

// LoadEnv loads a .env file if present (never overriding existing
// variables) and reads the known configuration keys.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		EngineWSURL:   os.Getenv("ENGINE_WS_URL"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
	}
}
