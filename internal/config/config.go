// Package config loads runtime settings for the games service.
//
// Precedence, lowest first: built-in defaults, an optional TOML file named by
// GAMES_CONFIG, then individual environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvConfigFile       = "GAMES_CONFIG"
	envPort             = "PORT"
	envDatabaseURL      = "DATABASE_URL"
	envLogLevel         = "LOG_LEVEL"
	envMetricsEnabled   = "METRICS_ENABLED"
	envMetricsToken     = "METRICS_TOKEN"
	envWriteLimitPerMin = "WRITE_LIMIT_PER_MIN"
	envShutdownTimeout  = "SHUTDOWN_TIMEOUT"
	envTrustProxy       = "TRUST_PROXY"

	defaultPort            = "8082"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	Port        string `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	LogLevel    string `toml:"log_level"`

	MetricsEnabled bool   `toml:"metrics_enabled"`
	MetricsToken   string `toml:"metrics_token"`

	// WriteLimitPerMin caps mutating requests per client IP; 0 disables it.
	WriteLimitPerMin int `toml:"write_limit_per_min"`

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `toml:"trust_proxy"`

	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration lets TOML files spell timeouts as "15s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func Default() Config {
	return Config{
		Port:            defaultPort,
		LogLevel:        defaultLogLevel,
		ShutdownTimeout: Duration{defaultShutdownTimeout},
	}
}

// Load applies the file named by GAMES_CONFIG (if any) and then the environment.
func Load() (Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit file path; an empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("read config %s: unknown keys %v", path, undecoded)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envOrDefault(envPort, cfg.Port)
	cfg.DatabaseURL = envOrDefault(envDatabaseURL, cfg.DatabaseURL)
	cfg.LogLevel = envOrDefault(envLogLevel, cfg.LogLevel)
	cfg.MetricsEnabled = boolEnvOrDefault(envMetricsEnabled, cfg.MetricsEnabled)
	cfg.MetricsToken = envOrDefault(envMetricsToken, cfg.MetricsToken)
	cfg.WriteLimitPerMin = intEnvOrDefault(envWriteLimitPerMin, cfg.WriteLimitPerMin)
	cfg.TrustProxy = boolEnvOrDefault(envTrustProxy, cfg.TrustProxy)
	cfg.ShutdownTimeout.Duration = durationEnvOrDefault(envShutdownTimeout, cfg.ShutdownTimeout.Duration)
}

func (c Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port is required")
	}
	if c.WriteLimitPerMin < 0 {
		return fmt.Errorf("config: write_limit_per_min must be >= 0, got %d", c.WriteLimitPerMin)
	}
	if c.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("config: shutdown_timeout must be positive")
	}
	return nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return ":" + c.Port
}
