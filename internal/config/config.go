// Package config loads runtime settings from configs/config.yml and
// STORYHOUSE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix     = "STORYHOUSE"
	defaultSecret = "change-me"
)

type Config struct {
	Port string `mapstructure:"port"`
	DB   DB     `mapstructure:"db"`
	Log  Log    `mapstructure:"log"`
	Auth Auth   `mapstructure:"auth"`
}

type DB struct {
	Path string `mapstructure:"path"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Auth struct {
	Secret        string        `mapstructure:"secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	RememberTTL   time.Duration `mapstructure:"remember_ttl"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
}

// Load reads config.yml from the given directories (first match wins).
// A missing file is not an error: defaults and environment still apply.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "storyhouse.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("auth.secret", defaultSecret)
	v.SetDefault("auth.session_ttl", 12*time.Hour)
	v.SetDefault("auth.remember_ttl", 30*24*time.Hour)
	v.SetDefault("auth.secure_cookies", false)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret must not be empty")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.RememberTTL <= 0 {
		return fmt.Errorf("auth.remember_ttl must be positive, got %s", c.Auth.RememberTTL)
	}
	if c.DB.Path == "" {
		return errors.New("db.path must not be empty")
	}
	return nil
}

// UsesDefaultSecret reports whether the signing secret was left at the shipped value.
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.Secret == defaultSecret
}
