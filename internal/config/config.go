// Package config loads hxblog settings from the environment.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/pthm/hxblog/lib/i18n"
)

// Config holds all configuration for the blog server.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":3000"`

	// GraphQL backend
	GraphQLEndpoint string        `env:"GRAPHQL_ENDPOINT" envDefault:"http://localhost:8080/modules/graphql"`
	GraphQLTimeout  time.Duration `env:"GRAPHQL_TIMEOUT" envDefault:"10s"`

	// PropsKey signs and encrypts island props. Hex encoded, or a raw
	// passphrase of at least 16 bytes.
	PropsKey string `env:"PROPS_KEY"`

	// SessionKey signs the session cookie. Defaults to PropsKey.
	SessionKey string `env:"SESSION_KEY"`

	// CSRFToken pins the token for every session. Used in development when
	// no CMS session issues one.
	CSRFToken string `env:"CSRF_TOKEN"`

	ContentFile   string `env:"CONTENT_FILE" envDefault:"content/sample.yaml"`
	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en"`
}

// Load parses environment variables into cfg.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from files (default ".env") into the process
// environment. Missing files are ignored and existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Server reads the server configuration from the environment.
func Server() (*Config, error) {
	cfg := &Config{}
	if err := Load(cfg); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if c.GraphQLTimeout <= 0 {
		return fmt.Errorf("invalid GRAPHQL_TIMEOUT: %s", c.GraphQLTimeout)
	}
	if c.PropsKey != "" && len(c.PropsKeyBytes()) < 16 {
		return errors.New("PROPS_KEY must be at least 16 bytes")
	}
	c.DefaultLocale = i18n.Locale(c.DefaultLocale)
	return nil
}

// PropsKeyBytes returns the decoded props key, nil when unset.
func (c *Config) PropsKeyBytes() []byte {
	return keyBytes(c.PropsKey)
}

// SessionKeyBytes returns the decoded session key, falling back to the
// props key.
func (c *Config) SessionKeyBytes() []byte {
	if c.SessionKey == "" {
		return c.PropsKeyBytes()
	}
	return keyBytes(c.SessionKey)
}

func keyBytes(s string) []byte {
	if s == "" {
		return nil
	}
	if b, err := hex.DecodeString(s); err == nil {
		return b
	}
	return []byte(s)
}
