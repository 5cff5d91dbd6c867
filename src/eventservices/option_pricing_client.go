package eventservices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// ErrorResponseDTO is the error body written by the pricing api.
type ErrorResponseDTO struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

// OptionPricingApiError is returned by OptionPricingClient for any non 200 response.
type OptionPricingApiError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *OptionPricingApiError) Error() string {
	return fmt.Sprintf("pricing api returned %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

func IsQuoteUnavailable(err error) bool {
	var apiErr *OptionPricingApiError
	if errors.As(err, &apiErr) {
		return apiErr.Type == "quote_unavailable"
	}

	return false
}

// OptionPricingClient talks to the pricing api over http.
type OptionPricingClient struct {
	BaseURL string
	Client  *http.Client
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *OptionPricingClient) FetchCallPrice(ctx context.Context, underlying eventmodels.Underlying, strike, timeToExpiration, volatility, riskFreeRate float64) (*eventmodels.OptionPriceResultDTO, error) {
	u, err := url.JoinPath(c.BaseURL, "stock", underlying.String(), formatFloat(strike), formatFloat(timeToExpiration), formatFloat(volatility), formatFloat(riskFreeRate))
	if err != nil {
		return nil, fmt.Errorf("FetchCallPrice: failed to build url: %w", err)
	}

	var dto eventmodels.OptionPriceResultDTO
	if err := c.get(ctx, u, &dto); err != nil {
		return nil, fmt.Errorf("FetchCallPrice: %w", err)
	}

	return &dto, nil
}

func (c *OptionPricingClient) FetchQuote(ctx context.Context, symbol eventmodels.StockSymbol) (*eventmodels.QuoteDTO, error) {
	u, err := url.JoinPath(c.BaseURL, "quote", symbol.String())
	if err != nil {
		return nil, fmt.Errorf("FetchQuote: failed to build url: %w", err)
	}

	var dto eventmodels.QuoteDTO
	if err := c.get(ctx, u, &dto); err != nil {
		return nil, fmt.Errorf("FetchQuote: %w", err)
	}

	return &dto, nil
}

func (c *OptionPricingClient) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call pricing api: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		apiErr := &OptionPricingApiError{StatusCode: res.StatusCode}

		var errDTO ErrorResponseDTO
		if jsonErr := json.NewDecoder(res.Body).Decode(&errDTO); jsonErr == nil {
			apiErr.Type = errDTO.Type
			apiErr.Message = errDTO.Msg
		} else {
			apiErr.Message = res.Status
		}

		return apiErr
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}

	return nil
}

func NewOptionPricingClient(baseURL string, client *http.Client) *OptionPricingClient {
	if client == nil {
		client = newDefaultHTTPClient()
	}

	return &OptionPricingClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}
