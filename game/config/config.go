package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// History backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the server configuration read from the environment
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console or json

	DictionaryDir     string `env:"DICTIONARY_DIR" envDefault:"dictionaries"`
	DefaultDictionary string `env:"DEFAULT_DICTIONARY" envDefault:"default"`

	HistoryBackend string `env:"HISTORY_BACKEND" envDefault:"sqlite"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"scrabble.db"`
	HistoryDir     string `env:"HISTORY_DIR" envDefault:"history"`

	DisconnectGrace time.Duration `env:"DISCONNECT_GRACE" envDefault:"5s"`

	// TokenSecret signs player tokens. A random secret is generated when
	// empty, so tokens do not survive a restart.
	TokenSecret string `env:"TOKEN_SECRET"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthtoken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}
	switch c.HistoryBackend {
	case BackendSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: DATABASE_PATH is required for the sqlite backend", ErrInvalidConfig)
		}
	case BackendFile:
		if c.HistoryDir == "" {
			return fmt.Errorf("%w: HISTORY_DIR is required for the file backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown history backend %q", ErrInvalidConfig, c.HistoryBackend)
	}
	if c.DisconnectGrace <= 0 {
		return fmt.Errorf("%w: DISCONNECT_GRACE must be positive", ErrInvalidConfig)
	}
	if c.NgrokEnabled && c.NgrokAuthtoken == "" {
		return fmt.Errorf("%w: NGROK_AUTHTOKEN is required when ngrok is enabled", ErrInvalidConfig)
	}
	return nil
}

// Addr is the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
