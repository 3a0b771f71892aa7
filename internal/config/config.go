// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`

	Tenancy struct {
		// BaseDomains are the platform apex domains tenant subdomains hang
		// off, tried in order during resolution.
		BaseDomains []string `yaml:"base_domains"`
		// PlatformHosts render the platform shell directly (apex and admin
		// hostnames owned by the operator).
		PlatformHosts []string `yaml:"platform_hosts"`
		// PreviewSuffixes are ephemeral preview-hosting patterns treated as
		// platform hosts (e.g. ".vercel.app").
		PreviewSuffixes []string `yaml:"preview_suffixes"`
	} `yaml:"tenancy"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return cfg, nil
}
