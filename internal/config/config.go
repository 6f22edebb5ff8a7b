package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/timezone-region-service/internal/domain"
)

// Store backends.
const (
	BackendMemory  = "memory"
	BackendPostGIS = "postgis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	StoreBackend   string
	DatabaseURL    string
	ShapesPath     string
	BandsPath      string
	ShapeNameField string

	TerritorialSeaNM float64
	UninhabitedName  string
	SRID             int

	// Resolution event publishing.
	KafkaEnabled         bool
	KafkaBrokers         []string
	KafkaResolutionTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	seaNM, err := parsePositiveFloat("TERRITORIAL_SEA_NM", "12")
	if err != nil {
		return nil, err
	}

	srid, err := strconv.Atoi(sharedcfg.EnvOrDefault("SRID", strconv.Itoa(domain.SRIDWGS84)))
	if err != nil || srid <= 0 {
		return nil, errors.New("invalid SRID")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StoreBackend:   sharedcfg.EnvOrDefault("STORE_BACKEND", BackendMemory),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ShapesPath:     sharedcfg.EnvOrDefault("SHAPES_PATH", "data/shapes.geojson"),
		BandsPath:      sharedcfg.EnvOrDefault("BANDS_PATH", "data/bands.json"),
		ShapeNameField: sharedcfg.EnvOrDefault("SHAPE_NAME_FIELD", "tzid"),

		TerritorialSeaNM: seaNM,
		UninhabitedName:  sharedcfg.EnvOrDefault("UNINHABITED_NAME", domain.DefaultUninhabitedName),
		SRID:             srid,

		KafkaEnabled:         os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResolutionTopic: sharedcfg.EnvOrDefault("KAFKA_RESOLUTION_TOPIC", "timezone-resolutions"),
	}

	switch cfg.StoreBackend {
	case BackendMemory:
		if cfg.ShapesPath == "" || cfg.BandsPath == "" {
			return nil, errors.New("SHAPES_PATH and BANDS_PATH are required for the memory backend")
		}
	case BackendPostGIS:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgis backend")
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaResolutionTopic == "" {
			return nil, errors.New("KAFKA_RESOLUTION_TOPIC is required")
		}
	}

	return cfg, nil
}

// Settings returns the resolution constants for the resolver and catalog.
func (c *Config) Settings() domain.Settings {
	s := domain.DefaultSettings()
	s.TerritorialSeaNM = c.TerritorialSeaNM
	s.UninhabitedName = c.UninhabitedName
	s.SRID = c.SRID
	return s
}

func parsePositiveFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || !(v > 0) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
