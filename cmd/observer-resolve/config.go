package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/aalemi-dev/observer-lab/catalog"
	"github.com/aalemi-dev/observer-lab/dispatch"
	"github.com/aalemi-dev/observer-lab/logger"
	"github.com/aalemi-dev/observer-lab/metaclient"
	"github.com/aalemi-dev/observer-lab/metrics"
	"github.com/aalemi-dev/observer-lab/registry"
	"github.com/aalemi-dev/observer-lab/resolver"
	"github.com/aalemi-dev/observer-lab/tracer"
)

// Metadata sources selectable with OBSERVER_METADATA_SOURCE or --metadata.
const (
	sourceCatalog  = "catalog"
	sourceHTTP     = "http"
	sourceSnapshot = "snapshot"
)

type config struct {
	Logger   logger.Config
	Tracer   tracer.Config
	Metrics  metrics.Config
	Resolver resolver.Config
	Registry registry.Config

	Catalog  catalog.Config    `envPrefix:"OBSERVER_CATALOG_"`
	Metadata metaclient.Config `envPrefix:"OBSERVER_METADATA_"`
	Dispatch dispatch.Config   `envPrefix:"OBSERVER_KAFKA_"`

	// MetadataSource picks the metadata.Service used by serve.
	MetadataSource string `env:"OBSERVER_METADATA_SOURCE" envDefault:"catalog"`
}

// loadConfig reads envFile, if given, into the process environment and
// parses the configuration from it. Variables already set take precedence
// over the file.
func loadConfig(envFile string) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return config{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("parse environment: %w", err)
	}
	if _, ok := os.LookupEnv("OBSERVER_METRICS_ADDRESS"); !ok {
		cfg.Metrics.Address = nil
	}
	return cfg, nil
}

func (c config) validate() error {
	switch c.MetadataSource {
	case sourceCatalog, sourceHTTP, sourceSnapshot:
		return nil
	}
	return fmt.Errorf("unknown metadata source %q (want %s, %s or %s)",
		c.MetadataSource, sourceCatalog, sourceHTTP, sourceSnapshot)
}
