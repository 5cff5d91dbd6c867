package eventmodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingConfigYAML(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		cfg := NewDefaultPricingConfig()
		require.NoError(t, cfg.Validate())

		lookback, err := cfg.GetQuoteLookback()
		require.NoError(t, err)
		assert.Equal(t, 7*24*time.Hour, lookback)

		timeout, err := cfg.GetQuoteTimeout()
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, timeout)
	})

	t.Run("unknown source", func(t *testing.T) {
		cfg := NewDefaultPricingConfig()
		cfg.QuoteSource = "bloomberg"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non positive timeout", func(t *testing.T) {
		cfg := NewDefaultPricingConfig()
		cfg.QuoteTimeout = "0s"
		assert.Error(t, cfg.Validate())
	})
}
