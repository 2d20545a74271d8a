package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ServerConfig holds the HTTP API settings. Values come from an optional YAML
// file and are overridden by API_* environment variables (API_PORT,
// API_BATTERY_DIR, API_RESULT_TTL, ...).
type ServerConfig struct {
	Port       string `json:"port"`
	Env        string `json:"env"`
	BatteryDir string `json:"battery_dir"`
	StaticDir  string `json:"static_dir"`
	LogLevel   string `json:"log_level"`
	// ResultTTL is how long finished runs stay available for ledger export.
	ResultTTL      time.Duration `json:"result_ttl"`
	AllowedOrigins []string      `json:"allowed_origins"`
	MaxUploadMB    int64         `json:"max_upload_mb"`
	// MaxResults caps how many finished runs are kept in memory.
	MaxResults int `json:"max_results"`
}

// LoadServer reads path (skipped when empty) and then the environment.
func LoadServer(path string) (*ServerConfig, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("API_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "api_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg ServerConfig
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
	if c.Env == "" {
		c.Env = "development"
	}
	if c.BatteryDir == "" {
		c.BatteryDir = "./examples/batteries"
	}
	if c.StaticDir == "" {
		c.StaticDir = "./web/dist"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ResultTTL == 0 {
		c.ResultTTL = time.Hour
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 32
	}
	if c.MaxResults == 0 {
		c.MaxResults = 256
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.ResultTTL < 0 {
		return fmt.Errorf("result_ttl must be >= 0, got %s", c.ResultTTL)
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("max_upload_mb must be >= 0, got %d", c.MaxUploadMB)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0, got %d", c.MaxResults)
	}
	return nil
}

func (c ServerConfig) Production() bool { return c.Env == "production" }
