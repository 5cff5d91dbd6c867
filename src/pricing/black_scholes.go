package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

var ErrInvalidParameter = errors.New("invalid pricing parameter")

// NormCdf is the standard normal cumulative distribution function.
func NormCdf(x float64) float64 {
	return stats.NormCdf(x, 0, 1)
}

func validate(underlying, strike, timeToExpiration, riskFreeRate, volatility float64) error {
	inputs := []struct {
		name  string
		value float64
	}{
		{"underlying", underlying},
		{"strike", strike},
		{"time_to_expiration", timeToExpiration},
		{"risk_free_rate", riskFreeRate},
		{"volatility", volatility},
	}

	for _, in := range inputs {
		if math.IsNaN(in.value) || math.IsInf(in.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameter, in.name, in.value)
		}
	}

	if underlying <= 0 {
		return fmt.Errorf("%w: underlying must be positive, got %v", ErrInvalidParameter, underlying)
	}

	if strike <= 0 {
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameter, strike)
	}

	if volatility <= 0 {
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrInvalidParameter, volatility)
	}

	if timeToExpiration <= 0 {
		return fmt.Errorf("%w: time to expiration must be positive, got %v", ErrInvalidParameter, timeToExpiration)
	}

	return nil
}

// PriceCall returns the Black-Scholes premium of a European call. A call struck at or above
// the underlying is priced at exactly zero.
func PriceCall(underlying, strike, timeToExpiration, riskFreeRate, volatility float64) (float64, error) {
	if err := validate(underlying, strike, timeToExpiration, riskFreeRate, volatility); err != nil {
		return 0, fmt.Errorf("PriceCall: %w", err)
	}

	if strike >= underlying {
		return 0, nil
	}

	volSqrtT := volatility * math.Sqrt(timeToExpiration)
	d1 := (math.Log(underlying/strike) + (riskFreeRate+volatility*volatility/2)*timeToExpiration) / volSqrtT
	d2 := d1 - volSqrtT

	call := NormCdf(d1)*underlying - NormCdf(d2)*strike*math.Exp(-riskFreeRate*timeToExpiration)

	if math.IsNaN(call) || math.IsInf(call, 0) {
		return 0, fmt.Errorf("PriceCall: %w: non-finite premium for underlying=%v strike=%v t=%v r=%v vol=%v", ErrInvalidParameter, underlying, strike, timeToExpiration, riskFreeRate, volatility)
	}

	// cancellation deep in the money can leave a tiny negative residue
	if call < 0 {
		call = 0
	}

	return call, nil
}
