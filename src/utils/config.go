package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// LoadPricingConfig reads the yaml config at path, when present, and applies the PORT,
// QUOTE_SOURCE and LOG_LEVEL environment overrides.
func LoadPricingConfig(path string) (*eventmodels.PricingConfigYAML, error) {
	config := eventmodels.NewDefaultPricingConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadPricingConfig: failed to read %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("LoadPricingConfig: failed to unmarshal %s: %w", path, err)
		}
	}

	if port, err := GetEnv("PORT"); err == nil {
		config.Port = port
	}

	if source, err := GetEnv("QUOTE_SOURCE"); err == nil {
		config.QuoteSource = eventmodels.QuoteSource(source)
	}

	if level, err := GetEnv("LOG_LEVEL"); err == nil {
		config.LogLevel = level
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("LoadPricingConfig: %w", err)
	}

	return config, nil
}
