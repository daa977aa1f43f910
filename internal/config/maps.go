package config

import (
	"time"
)

type MapsConfig struct {
	Provider       string        `yaml:"provider"`
	APIKey         string        `yaml:"api_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		Provider:       getEnv("MAPS_PROVIDER", "google"),
		APIKey:         getEnv("GOOGLE_MAPS_API_KEY", ""),
		RequestTimeout: getEnvAsDuration("MAPS_REQUEST_TIMEOUT", 8*time.Second),
	}
}
