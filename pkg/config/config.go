package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"workerscope/pkg/constants"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

const defaultConfigPath = "config/config.yaml"

// Config global configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logger  LoggerConfig  `yaml:"logger"`
	Sources SourcesConfig `yaml:"sources"`
	Report  ReportConfig  `yaml:"report"`
	Cache   CacheConfig   `yaml:"cache"`
}

// ServerConfig serve mode configuration
type ServerConfig struct {
	Port         int           `yaml:"port"`
	Mode         string        `yaml:"mode"`          // debug, release
	APIKey       string        `yaml:"api_key"`       // bearer token (optional, if empty, auth is disabled)
	Deployment   string        `yaml:"deployment"`    // default bosh deployment for requests
	Target       string        `yaml:"target"`        // default fly target for requests
	WarmInterval time.Duration `yaml:"warm_interval"` // cache warmer period, 0 disables
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// SourcesConfig external tool configuration
type SourcesConfig struct {
	BoshBinary string        `yaml:"bosh_binary"`
	FlyBinary  string        `yaml:"fly_binary"`
	Timeout    time.Duration `yaml:"timeout"` // per command
}

// ReportConfig attribution configuration
type ReportConfig struct {
	TopN           int                     `yaml:"top_n"`
	ShortIDLength  int                     `yaml:"short_id_length"`
	JobNameSource  constants.JobNameSource `yaml:"job_name_source"` // build, container
	StrictShortIDs bool                    `yaml:"strict_short_ids"`
}

// CacheConfig source output cache configuration
type CacheConfig struct {
	TTL   time.Duration `yaml:"ttl"` // 0 disables caching
	Redis RedisConfig   `yaml:"redis"`
}

// RedisConfig Redis configuration, empty Addr keeps the cache in memory
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default values
const (
	DefaultPort          = 8080
	DefaultServerMode    = "release"
	DefaultBoshBinary    = "bosh"
	DefaultFlyBinary     = "fly"
	DefaultSourceTimeout = 60 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogOutput     = "console"
)

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: DefaultPort,
			Mode: DefaultServerMode,
		},
		Logger: LoggerConfig{
			Level:  DefaultLogLevel,
			Output: DefaultLogOutput,
		},
		Sources: SourcesConfig{
			BoshBinary: DefaultBoshBinary,
			FlyBinary:  DefaultFlyBinary,
			Timeout:    DefaultSourceTimeout,
		},
		Report: ReportConfig{
			TopN:          constants.DefaultTopN,
			ShortIDLength: constants.DefaultShortIDLength,
			JobNameSource: constants.JobNameFromBuild,
		},
	}
}

// Init initializes configuration. path overrides CONFIG_PATH; a missing
// file at the default path yields DefaultConfig.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	GlobalConfig = cfg
	return nil
}

// Load reads and validates configuration without touching GlobalConfig
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
		explicit = false
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	validateAndApplyDefaults(cfg)
	return cfg, nil
}

// validateAndApplyDefaults replaces invalid values with defaults
func validateAndApplyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = DefaultPort
	}
	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.WarmInterval < 0 {
		cfg.Server.WarmInterval = 0
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = DefaultLogLevel
	}
	if cfg.Logger.Output == "" {
		cfg.Logger.Output = DefaultLogOutput
	}
	if cfg.Sources.BoshBinary == "" {
		cfg.Sources.BoshBinary = DefaultBoshBinary
	}
	if cfg.Sources.FlyBinary == "" {
		cfg.Sources.FlyBinary = DefaultFlyBinary
	}
	if cfg.Sources.Timeout <= 0 {
		cfg.Sources.Timeout = DefaultSourceTimeout
	}
	if cfg.Report.TopN <= 0 {
		cfg.Report.TopN = constants.DefaultTopN
	}
	if cfg.Report.ShortIDLength <= 0 {
		cfg.Report.ShortIDLength = constants.DefaultShortIDLength
	}
	if !cfg.Report.JobNameSource.Valid() {
		cfg.Report.JobNameSource = constants.JobNameFromBuild
	}
	if cfg.Cache.TTL < 0 {
		cfg.Cache.TTL = 0
	}
}
