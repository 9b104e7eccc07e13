package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env             string `yaml:"env"`
	ShortCodeLength int    `yaml:"short_code_length"`
	BaseURL         string `yaml:"base_url"`
	HTTPServer      `yaml:"http_server"`
	Log             `yaml:"log"`
	Store           `yaml:"store"`
	CORS            `yaml:"cors"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

var defaultLog = Log{
	Level: "info",
}

// SlogLevel parses Level, falling back to info for unknown values.
func (l *Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

type Store struct {
	TopURLsLimit      int `yaml:"top_urls_limit"`
	ClickHistoryLimit int `yaml:"click_history_limit"`
	ClicksByDayWindow int `yaml:"clicks_by_day_window"`
}

var defaultStore = Store{
	TopURLsLimit:      10,
	ClickHistoryLimit: 1000,
	ClicksByDayWindow: 7,
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Load reads the config file at path on top of the defaults.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	var cfg Config
	setDefaults(&cfg)

	if path == "" {
		return &cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return &cfg, nil
}

const (
	MinShortCodeLength = 3
	MaxShortCodeLength = 10

	maxClicksByDayWindow = 366
)

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) validate() error {
	if c.ShortCodeLength < MinShortCodeLength || c.ShortCodeLength > MaxShortCodeLength {
		return fmt.Errorf("%w: short_code_length must be between %d and %d, got %d",
			ErrInvalidConfig, MinShortCodeLength, MaxShortCodeLength, c.ShortCodeLength)
	}
	if c.Store.TopURLsLimit <= 0 {
		return fmt.Errorf("%w: store.top_urls_limit must be positive, got %d", ErrInvalidConfig, c.Store.TopURLsLimit)
	}
	if c.Store.ClickHistoryLimit <= 0 {
		return fmt.Errorf("%w: store.click_history_limit must be positive, got %d", ErrInvalidConfig, c.Store.ClickHistoryLimit)
	}
	if c.Store.ClicksByDayWindow <= 0 || c.Store.ClicksByDayWindow > maxClicksByDayWindow {
		return fmt.Errorf("%w: store.clicks_by_day_window must be between 1 and %d, got %d",
			ErrInvalidConfig, maxClicksByDayWindow, c.Store.ClicksByDayWindow)
	}
	return nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 6
	cfg.HTTPServer = defaultHTTPServer
	cfg.Log = defaultLog
	cfg.Store = defaultStore
}
