package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (ECOPOS_ prefix), flags, or YAML config files.
type Config struct {
	LogFile  string `default:"transactions_log.txt" usage:"Append-only transaction log path" flag:"log-file"`
	SeedFile string `default:"" usage:"Seed data file overriding the embedded EcoMarket dataset" flag:"seed-file"`
	Health   HealthConfig
}

// HealthConfig controls the background health checks.
type HealthConfig struct {
	Interval       time.Duration `default:"30s" usage:"Background health check interval"`
	GoroutineLimit int           `default:"1000" usage:"Goroutine count considered unhealthy" flag:"goroutine-limit"`
}

// LoadConfig loads configuration from environment variables, flags, and YAML
// config files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ECOPOS",
		Files:     []string{"config.yaml", "/etc/ecopos/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}
