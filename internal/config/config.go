package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Storage struct {
		Backend    string `yaml:"backend"` // "sqlite" or "redis"
		SQLitePath string `yaml:"sqlite_path"`
		Redis      struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"storage"`

	Gateway struct {
		BaseURL           string `yaml:"base_url"`
		APIKey            string `yaml:"api_key"`
		Model             string `yaml:"model"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
		RequestsPerMinute int    `yaml:"requests_per_minute"`
	} `yaml:"gateway"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.Backend != "sqlite" && cfg.Storage.Backend != "redis" {
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/rotaboard.db"
	}

	return &cfg, nil
}

func (c *Config) GatewayTimeout() time.Duration {
	if c.Gateway.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Gateway.TimeoutSeconds) * time.Second
}
