package eventmodels

import (
	"fmt"
	"time"
)

type QuoteSource string

const (
	QuoteSourcePolygon  QuoteSource = "polygon"
	QuoteSourceYahoo    QuoteSource = "yahoo"
	QuoteSourceYahooCsv QuoteSource = "yahoo_csv"
	QuoteSourceTradier  QuoteSource = "tradier"
)

func (s QuoteSource) Validate() error {
	switch s {
	case QuoteSourcePolygon, QuoteSourceYahoo, QuoteSourceYahooCsv, QuoteSourceTradier:
		return nil
	default:
		return fmt.Errorf("unknown quote source %q", s)
	}
}

const (
	DefaultPort                = "5000"
	DefaultQuoteLookback       = "168h"
	DefaultQuoteTimeout        = "10s"
	DefaultYahooCsvURLTemplate = "https://query1.finance.yahoo.com/v7/finance/download/%s?period1=%d&period2=%d&interval=1d&events=history&includeAdjustedClose=true"
	DefaultTradierHistoryURL   = "https://api.tradier.com/v1/markets/history"
)

type PricingConfigYAML struct {
	Port                string      `yaml:"port"`
	LogLevel            string      `yaml:"log_level"`
	LogFormat           string      `yaml:"log_format"`
	QuoteSource         QuoteSource `yaml:"quote_source"`
	QuoteLookback       string      `yaml:"quote_lookback"`
	QuoteTimeout        string      `yaml:"quote_timeout"`
	YahooCsvURLTemplate string      `yaml:"yahoo_csv_url_template"`
	TradierHistoryURL   string      `yaml:"tradier_history_url"`
	OtelEnabled         bool        `yaml:"otel_enabled"`
	ServiceName         string      `yaml:"service_name"`
}

func NewDefaultPricingConfig() *PricingConfigYAML {
	return &PricingConfigYAML{
		Port:                DefaultPort,
		LogLevel:            "info",
		LogFormat:           "text",
		QuoteSource:         QuoteSourcePolygon,
		QuoteLookback:       DefaultQuoteLookback,
		QuoteTimeout:        DefaultQuoteTimeout,
		YahooCsvURLTemplate: DefaultYahooCsvURLTemplate,
		TradierHistoryURL:   DefaultTradierHistoryURL,
		ServiceName:         "option-pricer",
	}
}

func (c *PricingConfigYAML) GetQuoteLookback() (time.Duration, error) {
	d, err := time.ParseDuration(c.QuoteLookback)
	if err != nil {
		return 0, fmt.Errorf("PricingConfigYAML: quote_lookback: %w", err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("PricingConfigYAML: quote_lookback must be positive, got %v", d)
	}

	return d, nil
}

func (c *PricingConfigYAML) GetQuoteTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.QuoteTimeout)
	if err != nil {
		return 0, fmt.Errorf("PricingConfigYAML: quote_timeout: %w", err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("PricingConfigYAML: quote_timeout must be positive, got %v", d)
	}

	return d, nil
}

func (c *PricingConfigYAML) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PricingConfigYAML: port is required")
	}

	if err := c.QuoteSource.Validate(); err != nil {
		return fmt.Errorf("PricingConfigYAML: %w", err)
	}

	if _, err := c.GetQuoteLookback(); err != nil {
		return err
	}

	if _, err := c.GetQuoteTimeout(); err != nil {
		return err
	}

	return nil
}
