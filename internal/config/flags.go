package config

import (
	"github.com/spf13/pflag"
)

// Flag names shared by the commands.
const (
	FlagConfig        = "config"
	FlagInput         = "input"
	FlagOutputDir     = "output-dir"
	FlagUseFixtures   = "use-fixtures"
	FlagLogLevel      = "log-level"
	FlagLogFormat     = "log-format"
	FlagPostgresDSN   = "postgres-dsn"
	FlagClickHouseDSN = "clickhouse-dsn"
	FlagRedisAddr     = "redis-addr"
	FlagAMQPURL       = "amqp-url"
	FlagServerAddr    = "addr"
	FlagSeed          = "seed"
)

// RegisterFlags adds the shared flags to fs. Defaults are empty so that
// only explicitly set flags override file and environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "Path to YAML config file")
	fs.String(FlagInput, "", "Path to transaction JSON file")
	fs.String(FlagOutputDir, "", "Output directory for CSV and report files")
	fs.Bool(FlagUseFixtures, false, "Use built-in fixture events instead of an input source")
	fs.String(FlagLogLevel, "", "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, "", "Log format (auto, console, json)")
	fs.String(FlagPostgresDSN, "", "PostgreSQL connection string")
	fs.String(FlagClickHouseDSN, "", "ClickHouse connection string")
	fs.String(FlagRedisAddr, "", "Redis address for the score cache")
	fs.String(FlagAMQPURL, "", "AMQP URL for score publication")
	fs.String(FlagServerAddr, "", "HTTP listen address")
	fs.Int64(FlagSeed, 0, "Shuffle seed for the determinism check")
}

// ApplyFlags overrides fields with the flags explicitly set on fs.
// Flags not registered on fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	str := func(name string, dst *string) error {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return nil
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}

	for name, dst := range map[string]*string{
		FlagInput:         &c.Input,
		FlagOutputDir:     &c.OutputDir,
		FlagLogLevel:      &c.LogLevel,
		FlagLogFormat:     &c.LogFormat,
		FlagPostgresDSN:   &c.Postgres.DSN,
		FlagClickHouseDSN: &c.ClickHouse.DSN,
		FlagRedisAddr:     &c.Redis.Addr,
		FlagAMQPURL:       &c.AMQP.URL,
		FlagServerAddr:    &c.Server.Addr,
	} {
		if err := str(name, dst); err != nil {
			return err
		}
	}

	if f := fs.Lookup(FlagUseFixtures); f != nil && f.Changed {
		v, err := fs.GetBool(FlagUseFixtures)
		if err != nil {
			return err
		}
		c.UseFixtures = v
	}
	if f := fs.Lookup(FlagSeed); f != nil && f.Changed {
		v, err := fs.GetInt64(FlagSeed)
		if err != nil {
			return err
		}
		c.Verify.Seed = v
	}
	return nil
}

// FromFlags runs the full precedence chain: YAML file named by --config,
// .env, environment variables, then explicit flags.
func FromFlags(fs *pflag.FlagSet, lookup func(string) (string, bool)) (*Config, error) {
	path, _ := fs.GetString(FlagConfig)
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := LoadEnvFile(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	return cfg, nil
}
