// Package config loads the settings shared by the CLI and the server.
//
// Values come from LDS_* environment variables, then from the YAML file
// named by LDS_CONFIG, then from defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/etnz/ledgerdiff"
)

// Prefix of every environment variable.
const Prefix = "LDS"

// EnvConfigFile names the optional YAML configuration file.
const EnvConfigFile = Prefix + "_CONFIG"

// Config represents the complete application configuration
type Config struct {
	// Currency of the balances, display only.
	Currency string `yaml:"currency" envconfig:"CURRENCY" validate:"omitempty,iso4217"`
	// ExcludedAccountTypes replaces the default staff loan exclusions when
	// set. An empty list excludes nothing.
	ExcludedAccountTypes []string `yaml:"excluded_account_types" envconfig:"EXCLUDED_ACCOUNT_TYPES"`
	// Sheet is the table compared account by account, the first one when empty.
	Sheet    string       `yaml:"sheet" envconfig:"SHEET"`
	LogLevel string       `yaml:"log_level" envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error disabled"`
	Server   ServerConfig `yaml:"server" envconfig:"SERVER"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr           string        `yaml:"addr" envconfig:"ADDR" default:":8080" validate:"required"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432" validate:"gt=0"`
	ReadTimeout    time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s" validate:"gt=0"`
	WriteTimeout   time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		fileConfig, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfigs merges file config with env config. A variable set in the
// environment wins, otherwise a value from the file replaces the default.
func mergeConfigs(fileConfig, envConfig Config) Config {
	set := func(key string) bool {
		_, ok := os.LookupEnv(Prefix + "_" + key)
		return ok
	}
	if !set("CURRENCY") && fileConfig.Currency != "" {
		envConfig.Currency = fileConfig.Currency
	}
	if !set("EXCLUDED_ACCOUNT_TYPES") && fileConfig.ExcludedAccountTypes != nil {
		envConfig.ExcludedAccountTypes = fileConfig.ExcludedAccountTypes
	}
	if !set("SHEET") && fileConfig.Sheet != "" {
		envConfig.Sheet = fileConfig.Sheet
	}
	if !set("LOG_LEVEL") && fileConfig.LogLevel != "" {
		envConfig.LogLevel = fileConfig.LogLevel
	}

	srv, file := &envConfig.Server, fileConfig.Server
	if !set("SERVER_ADDR") && file.Addr != "" {
		srv.Addr = file.Addr
	}
	if !set("SERVER_MAX_UPLOAD_BYTES") && file.MaxUploadBytes != 0 {
		srv.MaxUploadBytes = file.MaxUploadBytes
	}
	if !set("SERVER_READ_TIMEOUT") && file.ReadTimeout != 0 {
		srv.ReadTimeout = file.ReadTimeout
	}
	if !set("SERVER_WRITE_TIMEOUT") && file.WriteTimeout != 0 {
		srv.WriteTimeout = file.WriteTimeout
	}
	return envConfig
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: invalid value %q (%s)", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Options returns the comparison options described by c.
func (c *Config) Options() ledgerdiff.Options {
	opts := ledgerdiff.Options{Currency: c.Currency, Sheet: c.Sheet}
	if c.ExcludedAccountTypes != nil {
		opts.Exclusions = ledgerdiff.NewExclusionSet(c.ExcludedAccountTypes...)
	}
	return opts
}
