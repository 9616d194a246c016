// Package config provides configuration loading for the jobquery command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/herpritts/jobquery/usajobs"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JOBQUERY_"

// Config represents the complete jobquery configuration
type Config struct {
	Schema    SchemaConfig   `yaml:"schema"`
	CodeLists CodeListConfig `yaml:"codelists"`
	Log       LogConfig      `yaml:"log"`
	Server    ServerConfig   `yaml:"server"`
	// Language selects the issue message language ("en" or "es")
	Language string `yaml:"language"`
}

// SchemaConfig locates the parameter schema
type SchemaConfig struct {
	// Path is a JSON or YAML schema file (empty = embedded USAJobs schema)
	Path string `yaml:"path"`
	// Strict rejects unknown descriptor attributes
	Strict bool `yaml:"strict"`
}

// CodeListConfig configures code-list sources
type CodeListConfig struct {
	// Dir holds code-list files (empty = embedded snapshot)
	Dir string `yaml:"dir"`
	// BaseURL is the code-list API root used by `codes update`
	BaseURL string `yaml:"base_url"`
	// Endpoints maps code-list file names to API paths below BaseURL
	Endpoints map[string]string `yaml:"endpoints"`
	// LoadTimeout bounds each code-list load
	LoadTimeout time.Duration `yaml:"load_timeout"`
	RetryMax    int           `yaml:"retry_max"`
	UserAgent   string        `yaml:"user_agent"`
	// SkipDisabled drops entries marked IsDisabled=Yes
	SkipDisabled bool `yaml:"skip_disabled"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
	// Pretty selects the console writer instead of JSON lines
	Pretty bool `yaml:"pretty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	endpoints := make(map[string]string, len(usajobs.Endpoints))
	for k, v := range usajobs.Endpoints {
		endpoints[k] = v
	}
	return &Config{
		CodeLists: CodeListConfig{
			BaseURL:      usajobs.BaseURL,
			Endpoints:    endpoints,
			LoadTimeout:  10 * time.Second,
			RetryMax:     3,
			SkipDisabled: true,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		Language: "en",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.CodeLists.LoadTimeout <= 0 {
		return fmt.Errorf("codelists.load_timeout must be positive")
	}
	if c.CodeLists.RetryMax < 0 {
		return fmt.Errorf("codelists.retry_max must not be negative")
	}
	if c.CodeLists.BaseURL != "" {
		u, err := url.Parse(c.CodeLists.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("codelists.base_url %q is not an absolute URL", c.CodeLists.BaseURL)
		}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Language {
	case "en", "es":
	default:
		return fmt.Errorf("language must be en or es, got %q", c.Language)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Load builds the effective configuration:
//  1. defaults
//  2. the YAML file at path, when path is not empty
//  3. variables from envFile (a missing file is ignored)
//  4. JOBQUERY_* environment variables
func Load(path, envFile string) (*Config, error) {
	config := DefaultConfig()
	if path != "" {
		fromFile, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		config = fromFile
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from JOBQUERY_* variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("SCHEMA", &c.Schema.Path)
	str("CODELIST_DIR", &c.CodeLists.Dir)
	str("BASE_URL", &c.CodeLists.BaseURL)
	str("USER_AGENT", &c.CodeLists.UserAgent)
	str("LOG_LEVEL", &c.Log.Level)
	str("LANGUAGE", &c.Language)
	str("LISTEN_ADDR", &c.Server.Addr)

	if v, ok := lookup(EnvPrefix + "LOAD_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sLOAD_TIMEOUT: %w", EnvPrefix, err)
		}
		c.CodeLists.LoadTimeout = d
	}
	if v, ok := lookup(EnvPrefix + "RETRY_MAX"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRETRY_MAX: %w", EnvPrefix, err)
		}
		c.CodeLists.RetryMax = n
	}
	for name, dst := range map[string]*bool{
		"METRICS":       &c.Server.Metrics,
		"SCHEMA_STRICT": &c.Schema.Strict,
		"SKIP_DISABLED": &c.CodeLists.SkipDisabled,
		"LOG_PRETTY":    &c.Log.Pretty,
	} {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}
