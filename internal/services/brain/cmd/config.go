package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the brain service configuration. Decision thresholds are
// fixed policy and intentionally absent here.
type Config struct {
	MQTT struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		ClientID string `yaml:"client_id"`
	} `yaml:"mqtt"`
	Topics struct {
		Telemetry string `yaml:"telemetry"`
		Manual    string `yaml:"manual"`
		Update    string `yaml:"update"`
	} `yaml:"topics"`
	Weather struct {
		BaseURL   string `yaml:"base_url"`
		APIKey    string `yaml:"api_key"`
		City      string `yaml:"city"`
		TimeoutMS int    `yaml:"timeout_ms"`
	} `yaml:"weather"`
	HTTPPort int `yaml:"http_port"`
}

// loadConfig reads the YAML file (missing file is fine), then applies
// environment overrides and defaults.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("MQTT_HOST"); v != "" {
		cfg.MQTT.Host = v
	}
	if v := os.Getenv("MQTT_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Port = n
		}
	}
	if v := os.Getenv("MQTT_USER"); v != "" {
		cfg.MQTT.User = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("OPENWEATHER_CITY"); v != "" {
		cfg.Weather.City = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = n
		}
	}

	// Defaults
	if cfg.MQTT.Host == "" {
		cfg.MQTT.Host = "localhost"
	}
	if cfg.MQTT.Port == 0 {
		cfg.MQTT.Port = 1883
	}
	if cfg.MQTT.User == "" {
		cfg.MQTT.User = "guest"
	}
	if cfg.MQTT.Password == "" {
		cfg.MQTT.Password = "guest"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "brain-service"
	}
	if cfg.Topics.Telemetry == "" {
		cfg.Topics.Telemetry = "sensor/data/#"
	}
	if cfg.Topics.Manual == "" {
		cfg.Topics.Manual = "control/manual/#"
	}
	if cfg.Topics.Update == "" {
		cfg.Topics.Update = "event/systemUpdate/{device}"
	}
	if cfg.Weather.City == "" {
		cfg.Weather.City = "Kuala Lumpur"
	}
	if cfg.Weather.TimeoutMS == 0 {
		cfg.Weather.TimeoutMS = 5000
	}
	if cfg.HTTPPort == 0 {
		cfg.HTTPPort = 8080
	}
	return cfg, nil
}
