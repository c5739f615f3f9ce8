// Package config loads run configuration from a YAML file, a .env file,
// environment variables and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"wallet-credit-score/internal/normalization"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// MaxDecimals bounds configured token decimals.
const MaxDecimals = 36

// Config holds all app configuration.
type Config struct {
	Input       string `yaml:"input"`
	OutputDir   string `yaml:"output_dir"`
	UseFixtures bool   `yaml:"use_fixtures"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // auto, console or json

	Postgres   PostgresConfig   `yaml:"postgres"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Redis      RedisConfig      `yaml:"redis"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	Server     ServerConfig     `yaml:"server"`
	Decimals   DecimalsConfig   `yaml:"decimals"`
	Verify     VerifyConfig     `yaml:"verify"`
}

// PostgresConfig configures the raw event and score stores.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

// ClickHouseConfig configures the feature store.
type ClickHouseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig configures the score cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// AMQPConfig configures score publication.
type AMQPConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DecimalsConfig extends or overrides the builtin token decimals table.
type DecimalsConfig struct {
	Default *int32           `yaml:"default"`
	Symbols map[string]int32 `yaml:"symbols"`
}

// VerifyConfig configures the determinism check.
type VerifyConfig struct {
	Seed int64 `yaml:"seed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:     "user-wallet-transactions.json",
		OutputDir: ".",
		LogLevel:  "info",
		LogFormat: "auto",
		Postgres:  PostgresConfig{MaxConns: 10},
		Redis:     RedisConfig{Key: "wcs:scores"},
		AMQP:      AMQPConfig{Exchange: "wallet-scores", RoutingKey: "wallet.score"},
		Server:    ServerConfig{Addr: ":8080"},
		Verify:    VerifyConfig{Seed: 1},
	}
}

// Load returns Default overlaid with the YAML file at path.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads variables from .env files into the process environment.
// Missing files are ignored; existing variables are not overwritten.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load env file %s: %w", p, err)
		}
	}
	return nil
}

// Environment variable names.
const (
	EnvInput          = "WCS_INPUT"
	EnvOutputDir      = "WCS_OUTPUT_DIR"
	EnvLogLevel       = "WCS_LOG_LEVEL"
	EnvPostgresDSN    = "POSTGRES_DSN"
	EnvClickHouseDSN  = "CLICKHOUSE_DSN"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvRedisDB        = "REDIS_DB"
	EnvAMQPURL        = "AMQP_URL"
	EnvServerAddr     = "WCS_SERVER_ADDR"
	EnvAllowedOrigins = "WCS_ALLOWED_ORIGINS"
)

// ApplyEnv overrides fields from environment variables found by lookup.
// Pass os.LookupEnv in production.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvInput, &c.Input)
	str(EnvOutputDir, &c.OutputDir)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvPostgresDSN, &c.Postgres.DSN)
	str(EnvClickHouseDSN, &c.ClickHouse.DSN)
	str(EnvRedisAddr, &c.Redis.Addr)
	str(EnvRedisPassword, &c.Redis.Password)
	str(EnvAMQPURL, &c.AMQP.URL)
	str(EnvServerAddr, &c.Server.Addr)

	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, EnvRedisDB, v)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup(EnvAllowedOrigins); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

// DecimalsTable builds the token decimals table from the builtin table and the overrides.
func (c *Config) DecimalsTable() (normalization.DecimalsTable, error) {
	table := normalization.DefaultDecimalsTable()
	for sym, d := range c.Decimals.Symbols {
		if d < 0 || d > MaxDecimals {
			return table, fmt.Errorf("%w: decimals for %s must be in [0, %d], got %d", ErrInvalidConfig, sym, MaxDecimals, d)
		}
	}
	if len(c.Decimals.Symbols) > 0 {
		table = table.WithOverrides(c.Decimals.Symbols)
	}
	if c.Decimals.Default != nil {
		d := *c.Decimals.Default
		if d < 0 || d > MaxDecimals {
			return table, fmt.Errorf("%w: default decimals must be in [0, %d], got %d", ErrInvalidConfig, MaxDecimals, d)
		}
		table = table.WithFallback(d)
	}
	return table, nil
}

// Requirement names a field a command cannot run without.
type Requirement int

const (
	RequireInput Requirement = iota
	RequirePostgres
	RequireClickHouse
	RequireRedis
)

// Validate checks that the fields needed by a command are set.
func (c *Config) Validate(reqs ...Requirement) error {
	var missing []string
	for _, r := range reqs {
		switch r {
		case RequireInput:
			if c.Input == "" && !c.UseFixtures {
				missing = append(missing, "input")
			}
		case RequirePostgres:
			if c.Postgres.DSN == "" {
				missing = append(missing, "postgres.dsn")
			}
		case RequireClickHouse:
			if c.ClickHouse.DSN == "" {
				missing = append(missing, "clickhouse.dsn")
			}
		case RequireRedis:
			if c.Redis.Addr == "" {
				missing = append(missing, "redis.addr")
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidConfig, strings.Join(missing, ", "))
	}
	if _, err := c.DecimalsTable(); err != nil {
		return err
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
