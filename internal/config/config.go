// Package config loads the node settings: built-in defaults, then the YAML file, then
// .env, then GALLERY_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"okinoko_gallery/internal/logger"
	"okinoko_gallery/sdk"
)

type ctxKey string

const configContextKey ctxKey = "gallery.config"

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "gallery"

const (
	DriverSqlite = "sqlite"
	DriverMysql  = "mysql"
	// DriverNone switches the indexer off.
	DriverNone = "none"
)

var ErrInvalidConfig = errors.New("invalid config")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type IndexerConfig struct {
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite, a go-sql-driver dsn for mysql.
	DSN string `yaml:"dsn" envconfig:"DSN"`
}

type Config struct {
	// DataDir holds the badger chain state. Empty runs everything in memory.
	DataDir     string               `yaml:"dataDir"     split_words:"true"`
	Admin       string               `yaml:"admin"`
	MetricsAddr string               `yaml:"metricsAddr" split_words:"true"`
	Logging     logger.Configuration `yaml:"logging"     envconfig:"LOG"`
	Indexer     IndexerConfig        `yaml:"indexer"`
}

// Default is the config before any file or environment is applied.
func Default() *Config {
	return &Config{
		DataDir:     ".gallery",
		Admin:       "hive:tibfox",
		MetricsAddr: "127.0.0.1:9464",
		Logging: logger.Configuration{
			Level:   "info",
			Console: true,
		},
		Indexer: IndexerConfig{
			Driver: DriverSqlite,
		},
	}
}

// Load applies configFile and envFile (both optional, a missing .env is fine) on top
// of the defaults, then the environment.
func Load(configFile, envFile string) (*Config, error) {
	cfg := Default()
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if envFile != "" {
		// existing environment variables win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the fields and fills the derived defaults.
func (c *Config) Validate() error {
	if !sdk.Address(c.Admin).IsValid() {
		return fmt.Errorf("%w: admin %q is not an address", ErrInvalidConfig, c.Admin)
	}
	switch c.Indexer.Driver {
	case DriverSqlite:
		if c.Indexer.DSN == "" {
			if c.DataDir == "" {
				c.Indexer.DSN = "file::memory:?cache=shared"
			} else {
				c.Indexer.DSN = filepath.Join(c.DataDir, "index.db")
			}
		}
	case DriverMysql:
		if c.Indexer.DSN == "" {
			return fmt.Errorf("%w: the mysql indexer needs a dsn", ErrInvalidConfig)
		}
	case DriverNone, "":
		c.Indexer.Driver = DriverNone
	default:
		return fmt.Errorf("%w: unknown indexer driver %q (sqlite, mysql or none)", ErrInvalidConfig, c.Indexer.Driver)
	}
	return nil
}

// ChainDir is where badger keeps its files, empty for an in-memory chain.
func (c *Config) ChainDir() string {
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "chain")
}
