package application

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AlertConfig defines low-stock alerting thresholds.
type AlertConfig struct {
	// DefaultMinActive applies to every blade type without an override.
	DefaultMinActive int `yaml:"default_min_active"`
	// BladeTypes maps blade type id to a minimum active count.
	BladeTypes map[string]int `yaml:"blade_types"`
	WebhookURL string         `yaml:"webhook_url"`
}

// LoadAlertConfig loads alerting config from yaml or env.
func LoadAlertConfig() (AlertConfig, error) {
	cfg := AlertConfig{
		DefaultMinActive: getenvIntDefault("ALERT_MIN_ACTIVE", 0),
		WebhookURL:       os.Getenv("ALERT_WEBHOOK_URL"),
	}
	if path := os.Getenv("ALERT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// ThresholdFor returns the minimum active count for a blade type.
func (c AlertConfig) ThresholdFor(bladeTypeID string) int {
	if c.BladeTypes != nil {
		if threshold, ok := c.BladeTypes[bladeTypeID]; ok {
			return threshold
		}
	}
	return c.DefaultMinActive
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
