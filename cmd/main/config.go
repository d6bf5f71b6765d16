package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/CTAG07/Verbena/pkg/render"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the configuration for the HTTP servers.
type ServerConfig struct {
	ServerAddr   string `json:"server_addr" yaml:"server_addr"`
	ApiAddr      string `json:"api_addr" yaml:"api_addr"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
	LogJournal   bool   `json:"log_journal" yaml:"log_journal"`
	DatabasePath string `json:"database_path" yaml:"database_path"`
	// ApiToken guards the admin API. When empty only /api/health is served.
	ApiToken  string `json:"api_token" yaml:"api_token"`
	EnableH2C bool   `json:"enable_h2c" yaml:"enable_h2c"`
	// Site values are available to every view under "site".
	Site map[string]string `json:"site" yaml:"site"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server ServerConfig  `json:"server_config" yaml:"server_config"`
	Render render.Config `json:"render_config" yaml:"render_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ServerAddr:   ":7277",
		ApiAddr:      ":7278",
		LogLevel:     "info",
		DatabasePath: "./data/verbena.db?_journal_mode=WAL&_busy_timeout=5000",
		Site: map[string]string{
			"name": "Verbena",
		},
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig reads the configuration from a JSON or YAML file at the given path,
// chosen by extension. If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Server: DefaultServerConfig(),
		Render: render.DefaultConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			if isYAML(path) {
				data, err = yaml.Marshal(config)
			} else {
				data, err = json.MarshalIndent(config, "", "  ")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}
