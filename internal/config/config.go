// Package config provides configuration loading for the SigV4 auth gateway.
// Configuration can be loaded from a YAML file and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CredSource CredSourceConfig `mapstructure:"credential_source"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Origin     OriginConfig     `mapstructure:"origin"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthConfig holds SigV4 verification settings.
type AuthConfig struct {
	// Region is the default region for signature verification.
	Region string `mapstructure:"region"`

	// Service is the service name folded into the credential scope ("s3").
	Service string `mapstructure:"service"`

	// MaxSignatureAge bounds how far in the past a request timestamp may be
	// (auth.MaxSkewTime uses a fixed 15 minutes; this field is carried for
	// operators who want the config round-trippable even though the
	// current implementation does not yet make it tunable).
	MaxSignatureAge time.Duration `mapstructure:"max_signature_age"`

	// PresignDefaultExpiry and PresignMaxExpiry bound pre-signed URL lifetimes.
	PresignDefaultExpiry time.Duration `mapstructure:"presign_default_expiry"`
	PresignMaxExpiry     time.Duration `mapstructure:"presign_max_expiry"`

	// SkipPaths bypasses authentication for exact path matches.
	SkipPaths []string `mapstructure:"skip_paths"`
}

// CredSourceConfig selects where the Credential Registry's rows come from
// at startup.
type CredSourceConfig struct {
	// Driver is "static", "sqlite", or "postgres".
	Driver string `mapstructure:"driver"`

	// Static entries, used when Driver is "static".
	StaticAccessKeyID     string `mapstructure:"static_access_key_id"`
	StaticSecretAccessKey string `mapstructure:"static_secret_access_key"`

	// SQLite settings, used when Driver is "sqlite".
	SQLitePath string `mapstructure:"sqlite_path"`

	// Postgres settings, used when Driver is "postgres".
	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDatabase string `mapstructure:"postgres_database"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode"`

	// EncryptionKeyHex is the hex-encoded AES-256 key used to decrypt
	// secret keys at rest for the sqlite/postgres drivers.
	EncryptionKeyHex string `mapstructure:"encryption_key_hex"`
}

// CacheConfig controls the optional signing-key cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	TTL      time.Duration `mapstructure:"ttl"`
	RedisDSN string        `mapstructure:"redis_dsn"` // empty uses the in-memory cache
}

// OriginConfig describes the upstream bucket the protected-resource proxy
// forwards to.
type OriginConfig struct {
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from the given file (optional) and from
// ALEXGATE_-prefixed environment variables, which take precedence.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ALEXGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/s3gate")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("auth.region", "us-east-1")
	v.SetDefault("auth.service", "s3")
	v.SetDefault("auth.max_signature_age", 15*time.Minute)
	v.SetDefault("auth.presign_default_expiry", 15*time.Minute)
	v.SetDefault("auth.presign_max_expiry", 7*24*time.Hour)
	v.SetDefault("auth.skip_paths", []string{"/healthz"})

	v.SetDefault("credential_source.driver", "static")
	v.SetDefault("credential_source.sqlite_path", "./data/credentials.db")
	v.SetDefault("credential_source.postgres_host", "localhost")
	v.SetDefault("credential_source.postgres_port", 5432)
	v.SetDefault("credential_source.postgres_ssl_mode", "prefer")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("origin.use_path_style", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9091)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate checks the configuration for required values and valid ranges,
// following the teacher's driver-enum-plus-required-fields-per-driver style.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	validDrivers := map[string]bool{"static": true, "sqlite": true, "postgres": true}
	if !validDrivers[c.CredSource.Driver] {
		return fmt.Errorf("credential_source.driver must be 'static', 'sqlite', or 'postgres'")
	}

	switch c.CredSource.Driver {
	case "static":
		if c.CredSource.StaticAccessKeyID == "" || c.CredSource.StaticSecretAccessKey == "" {
			return fmt.Errorf("credential_source.static_access_key_id and static_secret_access_key are required for the static driver")
		}
	case "sqlite":
		if c.CredSource.SQLitePath == "" {
			return fmt.Errorf("credential_source.sqlite_path is required for the sqlite driver")
		}
		if c.CredSource.EncryptionKeyHex == "" {
			return fmt.Errorf("credential_source.encryption_key_hex is required for the sqlite driver")
		}
	case "postgres":
		if c.CredSource.PostgresHost == "" || c.CredSource.PostgresDatabase == "" {
			return fmt.Errorf("credential_source.postgres_host and postgres_database are required for the postgres driver")
		}
		if c.CredSource.EncryptionKeyHex == "" {
			return fmt.Errorf("credential_source.encryption_key_hex is required for the postgres driver")
		}
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}

	return nil
}

// MustLoad loads configuration or panics. Useful for main-function init.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
