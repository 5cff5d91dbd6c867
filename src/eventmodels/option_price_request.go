package eventmodels

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return decoder
}

type OptionPriceRequest struct {
	RequestID        uuid.UUID
	Underlying       Underlying
	Strike           float64
	TimeToExpiration float64
	Volatility       float64
	RiskFreeRate     float64
	Window           *QuoteWindow
}

func (r *OptionPriceRequest) Validate() error {
	if err := r.Underlying.Validate(); err != nil {
		return fmt.Errorf("OptionPriceRequest.Validate: %w", err)
	}

	if r.Strike <= 0 {
		return fmt.Errorf("OptionPriceRequest.Validate: %w: strike must be positive, got %v", ErrInvalidParameter, r.Strike)
	}

	if r.TimeToExpiration <= 0 {
		return fmt.Errorf("OptionPriceRequest.Validate: %w: time to expiration must be positive, got %v", ErrInvalidParameter, r.TimeToExpiration)
	}

	if r.Volatility <= 0 {
		return fmt.Errorf("OptionPriceRequest.Validate: %w: volatility must be positive, got %v", ErrInvalidParameter, r.Volatility)
	}

	if r.Window != nil {
		if err := r.Window.Validate(); err != nil {
			return fmt.Errorf("OptionPriceRequest.Validate: %w", err)
		}
	}

	return nil
}

type quoteWindowQuery struct {
	From *int64 `schema:"from"`
	To   *int64 `schema:"to"`
}

// OptionPriceRequestDTO holds the raw path segments of a pricing request. PeriodStart and
// PeriodEnd are only present on the legacy route that carries the window in the path.
type OptionPriceRequestDTO struct {
	Underlying       string
	PeriodStart      string
	PeriodEnd        string
	Strike           string
	TimeToExpiration string
	Volatility       string
	RiskFreeRate     string
	query            quoteWindowQuery
}

func (dto *OptionPriceRequestDTO) ParseHTTPRequest(r *http.Request) error {
	vars := mux.Vars(r)

	dto.Underlying = vars["underlying"]
	dto.PeriodStart = vars["period_start"]
	dto.PeriodEnd = vars["period_end"]
	dto.Strike = vars["strike"]
	dto.TimeToExpiration = vars["time_to_expiration"]
	dto.Volatility = vars["volatility"]
	dto.RiskFreeRate = vars["risk_free_rate"]

	if err := queryDecoder.Decode(&dto.query, r.URL.Query()); err != nil {
		return fmt.Errorf("OptionPriceRequestDTO.ParseHTTPRequest: %w: query: %v", ErrMalformedRequest, err)
	}

	return nil
}

func (dto *OptionPriceRequestDTO) ToModel() (*OptionPriceRequest, error) {
	underlying, err := ParseUnderlying(dto.Underlying)
	if err != nil {
		return nil, fmt.Errorf("OptionPriceRequestDTO.ToModel: %w", err)
	}

	strike, err := parseFiniteFloat("strike", dto.Strike)
	if err != nil {
		return nil, fmt.Errorf("OptionPriceRequestDTO.ToModel: %w", err)
	}

	timeToExpiration, err := parseFiniteFloat("time_to_expiration", dto.TimeToExpiration)
	if err != nil {
		return nil, fmt.Errorf("OptionPriceRequestDTO.ToModel: %w", err)
	}

	volatility, err := parseFiniteFloat("volatility", dto.Volatility)
	if err != nil {
		return nil, fmt.Errorf("OptionPriceRequestDTO.ToModel: %w", err)
	}

	riskFreeRate, err := parseFiniteFloat("risk_free_rate", dto.RiskFreeRate)
	if err != nil {
		return nil, fmt.Errorf("OptionPriceRequestDTO.ToModel: %w", err)
	}

	window, err := dto.window()
	if err != nil {
		return nil, fmt.Errorf("OptionPriceRequestDTO.ToModel: %w", err)
	}

	return &OptionPriceRequest{
		Underlying:       underlying,
		Strike:           strike,
		TimeToExpiration: timeToExpiration,
		Volatility:       volatility,
		RiskFreeRate:     riskFreeRate,
		Window:           window,
	}, nil
}

func (dto *OptionPriceRequestDTO) window() (*QuoteWindow, error) {
	if dto.PeriodStart != "" || dto.PeriodEnd != "" {
		start, err := parseUnixSeconds("period_start", dto.PeriodStart)
		if err != nil {
			return nil, err
		}

		end, err := parseUnixSeconds("period_end", dto.PeriodEnd)
		if err != nil {
			return nil, err
		}

		w := NewUnixQuoteWindow(start, end)
		return &w, nil
	}

	if dto.query.From == nil && dto.query.To == nil {
		return nil, nil
	}

	if dto.query.From == nil || dto.query.To == nil {
		return nil, fmt.Errorf("%w: query parameters from and to must be supplied together", ErrMalformedRequest)
	}

	w := NewUnixQuoteWindow(*dto.query.From, *dto.query.To)
	return &w, nil
}

func parseFiniteFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a number", ErrMalformedRequest, name, raw)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be finite, got %q", ErrMalformedRequest, name, raw)
	}

	return v, nil
}

func parseUnixSeconds(name, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a unix timestamp", ErrMalformedRequest, name, raw)
	}

	return v, nil
}
