package core

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Defaults applied after every layer has been merged.
const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultTimeout   = 10 * time.Minute
	DefaultOutputDir = "."
)

// FileConfig is the persisted config file. Every field is optional.
type FileConfig struct {
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	OutputDir    string `yaml:"output_dir,omitempty"`
	Timeout      string `yaml:"timeout,omitempty"` // Go duration, e.g. "5m"
}

// EnvConfig holds the values read from the process environment.
// Fields without a default stay empty so lower layers can fill them.
type EnvConfig struct {
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	BaseURL      string        `env:"OPENAI_BASE_URL"`
	Timeout      time.Duration `env:"IMGEN_TIMEOUT"`
	OutputDir    string        `env:"IMGEN_OUTPUT_DIR"`
	LogLevel     string        `env:"IMGEN_LOG_LEVEL"`
	LogFile      string        `env:"IMGEN_LOG_FILE"`
	History      bool          `env:"IMGEN_HISTORY" envDefault:"true"`
	DataDir      string        `env:"IMGEN_DATA_DIR"`
}

// Config is the merged configuration for one invocation.
type Config struct {
	OpenAIAPIKey string
	BaseURL      string
	Timeout      time.Duration
	OutputDir    string
	LogLevel     string
	LogFile      string
	History      bool
	DataDir      string

	// ConfigPath is the config file that was consulted, "" if unknown.
	ConfigPath string

	// Warnings collects non-fatal problems with the config file. The
	// caller logs them once a logger exists.
	Warnings []error
}

// Overrides are values given on the command line. Zero values leave the
// loaded configuration unchanged.
type Overrides struct {
	APIKey    string
	LogFile   string
	NoHistory bool
	Verbose   bool
}

// LoadOptions controls where LoadConfig reads from. The zero value reads
// the default config file and the process environment.
type LoadOptions struct {
	ConfigPath  string            // config file; "" uses GetConfigFilePath
	Environment map[string]string // environment; nil uses os.Environ
}

// LoadEnvConfig parses environment variables into an EnvConfig.
func LoadEnvConfig(environment map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return EnvConfig{}, fmt.Errorf("core: failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFileConfig reads the config file at path. A missing file is not an
// error and yields an empty FileConfig.
func LoadFileConfig(path string) (FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, ErrConfigRead(path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, ErrConfigParse(path, err)
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return FileConfig{}, ErrConfigParse(path, fmt.Errorf("timeout: %w", err))
		}
	}
	return cfg, nil
}

// SaveFileConfig writes cfg to path with owner-only permissions, creating
// the parent directory as needed. The file holds the API key.
func SaveFileConfig(path string, cfg FileConfig) error {
	if path == "" {
		return ErrConfigDirUnknown()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return ErrConfigWrite(path, err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return ErrConfigWrite(path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return ErrConfigWrite(path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return ErrConfigWrite(path, err)
	}
	if err := f.Close(); err != nil {
		return ErrConfigWrite(path, err)
	}
	// OpenFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return ErrConfigWrite(path, err)
	}
	return nil
}

// LoadConfig merges the config file and the environment, then applies
// defaults. Config file problems are recorded in Warnings and do not fail
// the load; environment parse errors do.
func LoadConfig(opts LoadOptions) (*Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = GetConfigFilePath()
	}

	cfg := &Config{ConfigPath: path}

	var file FileConfig
	if path == "" {
		cfg.Warnings = append(cfg.Warnings, ErrConfigDirUnknown())
	} else {
		var err error
		file, err = LoadFileConfig(path)
		if err != nil {
			cfg.Warnings = append(cfg.Warnings, err)
		}
	}

	envCfg, err := LoadEnvConfig(opts.Environment)
	if err != nil {
		return nil, err
	}

	cfg.OpenAIAPIKey = firstNonEmpty(envCfg.OpenAIAPIKey, file.OpenAIAPIKey)
	cfg.BaseURL = strings.TrimRight(firstNonEmpty(envCfg.BaseURL, file.BaseURL, DefaultBaseURL), "/")
	cfg.OutputDir = firstNonEmpty(envCfg.OutputDir, file.OutputDir, DefaultOutputDir)
	cfg.LogLevel = envCfg.LogLevel
	cfg.LogFile = envCfg.LogFile
	cfg.History = envCfg.History
	cfg.DataDir = envCfg.DataDir

	switch {
	case envCfg.Timeout > 0:
		cfg.Timeout = envCfg.Timeout
	case file.Timeout != "":
		// Already validated by LoadFileConfig.
		cfg.Timeout, _ = time.ParseDuration(file.Timeout)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return cfg, nil
}

// Apply layers command-line overrides on top of the loaded config.
func (c *Config) Apply(o Overrides) {
	if o.APIKey != "" {
		c.OpenAIAPIKey = o.APIKey
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.NoHistory {
		c.History = false
	}
	if o.Verbose {
		c.LogLevel = "debug"
	}
}

// RequireAPIKey returns ErrMissingAPIKey when no key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.OpenAIAPIKey) == "" {
		return ErrMissingAPIKey()
	}
	return nil
}

// GetHTTPClient returns the HTTP client used for all API requests.
// The timeout covers the whole request including reading the body.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
