package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rpattn/finsheet/internal/db"
	"github.com/rpattn/finsheet/internal/ingestion"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. FINSHEET_SERVER_PORT.
const EnvPrefix = "FINSHEET"

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

type DatabaseConfig struct {
	Enabled bool `mapstructure:"enabled"`
	db.Config `mapstructure:",squash"`
}

type IngestionConfig struct {
	MaxPeriods     int    `mapstructure:"max_periods"`
	DefaultPeriods int    `mapstructure:"default_periods"`
	ProbeRows      int    `mapstructure:"probe_rows"`
	SampleRows     int    `mapstructure:"sample_rows"`
	PeriodTypeHint string `mapstructure:"period_type_hint"`
}

// PeriodSettings converts the ingestion block into engine settings.
func (c IngestionConfig) PeriodSettings() ingestion.PeriodSettings {
	return ingestion.PeriodSettings{
		MaxPeriods:     c.MaxPeriods,
		DefaultPeriods: c.DefaultPeriods,
		ProbeRows:      c.ProbeRows,
		SampleRows:     c.SampleRows,
	}
}

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Ingestion IngestionConfig `mapstructure:"ingestion"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()
	periods := ingestion.DefaultPeriodSettings()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.max_upload_mb", 32)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)
	v.SetDefault("database.max_conns", dbDefaults.MaxConns)

	v.SetDefault("ingestion.max_periods", periods.MaxPeriods)
	v.SetDefault("ingestion.default_periods", periods.DefaultPeriods)
	v.SetDefault("ingestion.probe_rows", periods.ProbeRows)
	v.SetDefault("ingestion.sample_rows", periods.SampleRows)
	v.SetDefault("ingestion.period_type_hint", "")
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv() // FINSHEET_DATABASE_HOST overrides database.host
	setDefaults(v)
	return v
}

func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("[CONFIG] no config.yaml found, using defaults and env vars")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	log.Printf("[CONFIG] loaded %s", v.ConfigFileUsed())
	return nil
}

// Load reads config.yaml from configPath (if present) layered over defaults
// and FINSHEET_* environment variables.
func Load(configPath string) (Config, error) {
	v := newViper(configPath)
	if err := readConfigFile(v); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Server.Port <= 0 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("invalid upload limit %dMB", cfg.Server.MaxUploadMB)
	}
	return cfg, nil
}

// LoadDBConfig returns only the database section.
func LoadDBConfig(configPath string) (db.Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return db.Config{}, err
	}
	return cfg.Database.Config, nil
}
