package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		CORSOrigins     []string      `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	TuShare struct {
		Token         string        `yaml:"token"`
		BaseURL       string        `yaml:"base_url"`
		Timeout       time.Duration `yaml:"timeout"`
		CallsPerMin   int           `yaml:"calls_per_min"`
		QuotaWait     time.Duration `yaml:"quota_wait"` // max wait when the bucket is empty
	} `yaml:"tushare"`
	News struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		MaxItems int          `yaml:"max_items"`
	} `yaml:"news"`
	Quotes struct {
		Enabled        bool          `yaml:"enabled"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Indices        []string      `yaml:"indices"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"quotes"`
	Ollama struct {
		URL        string        `yaml:"url"`
		Model      string        `yaml:"model"`
		Timeout    time.Duration `yaml:"timeout"`
		NumPredict int           `yaml:"num_predict"`
	} `yaml:"ollama"`
	Forecast struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
		Horizon string        `yaml:"horizon"`
	} `yaml:"forecast"`
	Cache struct {
		Dir     string `yaml:"dir"` // file-backed entries; empty disables the file layer
		MaxSize int    `yaml:"max_size"`
		Redis   struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
		TTL map[string]time.Duration `yaml:"ttl"` // per data category
	} `yaml:"cache"`
	Reports struct {
		Dir       string `yaml:"dir"`
		Workers   int    `yaml:"workers"`
		Scheduler struct {
			Enabled  bool   `yaml:"enabled"`
			Timezone string `yaml:"timezone"`
			Morning  string `yaml:"morning"` // cron specs
			Noon     string `yaml:"noon"`
			Evening  string `yaml:"evening"`
		} `yaml:"scheduler"`
	} `yaml:"reports"`
	Resolver struct {
		SymbolMapPath string `yaml:"symbol_map_path"`
	} `yaml:"resolver"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("TUSHARE_TOKEN"); v != "" {
		c.TuShare.Token = v
	}
	if v := os.Getenv("TUSHARE_URL"); v != "" {
		c.TuShare.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Enabled = true
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.TuShare.Token == "" && os.Getenv("TUSHARE_TOKEN") == "" {
		return fmt.Errorf("tushare.token is required (yaml or TUSHARE_TOKEN)")
	}
	if c.TuShare.CallsPerMin <= 0 {
		return fmt.Errorf("tushare.calls_per_min must be positive")
	}
	if c.Ollama.URL == "" {
		return fmt.Errorf("ollama.url is required")
	}
	if c.Reports.Dir == "" {
		return fmt.Errorf("reports.dir is required")
	}
	return nil
}

// CategoryTTL returns the configured TTL for a data category, falling back
// to one hour when the category is not listed.
func (c *Config) CategoryTTL(category string) time.Duration {
	if ttl, ok := c.Cache.TTL[category]; ok && ttl > 0 {
		return ttl
	}
	return time.Hour
}
