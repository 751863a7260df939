package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the client configuration. Every field has an environment
// override so containerized deployments can skip the file entirely.
type Config struct {
	Server struct {
		Transport     string `yaml:"transport"` // "websocket" or "nats"
		URL           string `yaml:"url"`
		NATSURL       string `yaml:"nats_url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"server"`
	Session struct {
		Path string `yaml:"path"`
	} `yaml:"session"`
	State struct {
		Addr string `yaml:"addr"`
	} `yaml:"state"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Server.Transport = "websocket"
	cfg.Server.URL = "ws://localhost:3000/socket"
	cfg.Server.NATSURL = "nats://localhost:4222"
	cfg.Server.SubjectPrefix = "room.events"
	cfg.Session.Path = ".songquiz-session.json"
	cfg.State.Addr = ":8090"
	return &cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// loadConfig reads the YAML config file if it exists, then applies env
// overrides on top.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.Server.Transport = getEnv("TRANSPORT", cfg.Server.Transport)
	cfg.Server.URL = getEnv("SERVER_URL", cfg.Server.URL)
	cfg.Server.NATSURL = getEnv("NATS_URL", cfg.Server.NATSURL)
	cfg.Server.SubjectPrefix = getEnv("SUBJECT_PREFIX", cfg.Server.SubjectPrefix)
	cfg.Session.Path = getEnv("SESSION_PATH", cfg.Session.Path)
	cfg.State.Addr = getEnv("STATE_ADDR", cfg.State.Addr)

	return cfg, nil
}
