package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process configuration. Values come from a yaml file when
// present, overridden by PAYSTREAM_-prefixed environment variables.
type Config struct {
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`

	HTTP struct {
		Addr         string        `mapstructure:"addr"`
		CORSOrigins  []string      `mapstructure:"cors_origins"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"http"`

	Database struct {
		Driver string `mapstructure:"driver"` // postgres or sqlite
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	Feed FeedConfig `mapstructure:"feed"`
}

// FeedConfig is passed explicitly into feed sessions so tests can run with
// arbitrary cadences instead of the production tick.
type FeedConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	FetchLimit   int           `mapstructure:"fetch_limit"`
}

// Load reads configuration from the given path (optional) plus environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("PAYSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=paystream dbname=paystream sslmode=disable")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("feed.poll_interval", 2*time.Second)
	v.SetDefault("feed.fetch_limit", 50)
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" && c.Environment != "development" {
		return fmt.Errorf("auth.jwt_secret is required outside development")
	}
	if c.Feed.PollInterval <= 0 {
		return fmt.Errorf("feed.poll_interval must be positive, got %s", c.Feed.PollInterval)
	}
	if c.Feed.FetchLimit <= 0 {
		return fmt.Errorf("feed.fetch_limit must be positive, got %d", c.Feed.FetchLimit)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	return nil
}
