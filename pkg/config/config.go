// Package config loads the application configuration with viper.
package config

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"

	"github.com/goliatone/go-domain-repository/cache"
)

// EnvPrefix prefixes environment overrides, e.g. DOMAINREPO_DATABASE_DSN.
const EnvPrefix = "DOMAINREPO"

// Config is the application configuration.
type Config struct {
	Env      string         `mapstructure:"env"` // development, production
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // memory, sqlite3, postgres
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig toggles the read-through entity cache and sizes it.
type CacheConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	cache.Config `mapstructure:",squash"`
}

// Supported database drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// IsProduction reports whether Env is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	err := validation.Errors{
		"env": validation.Validate(c.Env, validation.Required, validation.In("development", "production")),
		"log.level": validation.Validate(c.Log.Level,
			validation.Required, validation.In("debug", "info", "warn", "error")),
		"log.format": validation.Validate(c.Log.Format, validation.In("json", "console")),
		"database.driver": validation.Validate(c.Database.Driver,
			validation.Required, validation.In(DriverMemory, DriverSQLite, DriverPostgres)),
		"database.dsn": validation.Validate(c.Database.DSN,
			validation.When(c.Database.Driver != DriverMemory, validation.Required)),
		"database.max_open_conns": validation.Validate(c.Database.MaxOpenConns, validation.Min(0)),
	}.Filter()
	if err != nil {
		return err
	}
	if c.Cache.Enabled {
		if err := c.Cache.Validate(); err != nil {
			return errors.Wrap(err, "cache")
		}
	}
	return nil
}

// Load reads configPath, or config.yaml from the working directory or
// ./config when configPath is empty. A missing file is not an error;
// defaults and DOMAINREPO_ environment variables still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// Default returns the configuration built from defaults alone, without
// reading files or the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(errors.Wrap(err, "unmarshal defaults"))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("database.driver", DriverMemory)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	defaults := cache.DefaultConfig()
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.capacity", defaults.Capacity)
	v.SetDefault("cache.num_shards", defaults.NumShards)
	v.SetDefault("cache.ttl", defaults.TTL.String())
	v.SetDefault("cache.eviction_percentage", defaults.EvictionPercentage)
	v.SetDefault("cache.missing_record_storage", defaults.MissingRecordStorage)
	v.SetDefault("cache.eviction_interval", "0s")
}
