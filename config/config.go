package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "AERO"

	LogLevelKey   = "log-level"
	SeedFileKey   = "seed-file"
	StrictKey     = "strict"
	BackupKey     = "backup"
	MaxBackupsKey = "max-backups"

	defaultLogLevel   = "info"
	defaultMaxBackups = 5
)

// Config is the runtime configuration shared by the aerodb commands.
type Config struct {
	LogLevel   string
	SeedFile   string // empty means the compiled-in dataset
	Strict     bool   // unresolved seed references abort the load
	Backup     bool
	MaxBackups int
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(LogLevelKey, defaultLogLevel, "Log level: debug, info, warn or error")
	fs.String(SeedFileKey, "", "YAML dataset to load instead of the built-in one")
	fs.Bool(StrictKey, false, "Fail when seed data refers to an unknown passenger, company or plane")
	fs.Bool(BackupKey, false, "Back up an existing database file before it is replaced")
	fs.Int(MaxBackupsKey, defaultMaxBackups, "Maximum number of backups to retain")
}

// NewViper returns a viper bound to fs and to AERO_* environment variables.
// A .env file in the working directory is read first if present.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	_ = godotenv.Load() // optional

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(MaxBackupsKey, defaultMaxBackups)
	return v, nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		LogLevel:   strings.ToLower(strings.TrimSpace(v.GetString(LogLevelKey))),
		SeedFile:   v.GetString(SeedFileKey),
		Strict:     v.GetBool(StrictKey),
		Backup:     v.GetBool(BackupKey),
		MaxBackups: v.GetInt(MaxBackupsKey),
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("config: invalid %s %q", LogLevelKey, cfg.LogLevel)
	}
	if cfg.MaxBackups < 1 {
		return nil, fmt.Errorf("config: %s must be at least 1, got %d", MaxBackupsKey, cfg.MaxBackups)
	}
	return cfg, nil
}
