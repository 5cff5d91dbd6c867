package run

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

var ErrValidation = errors.New("validation error")

func parsePositiveFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: you need to give a floating value for %s", ErrValidation, name)
	}

	if v <= 0 {
		return 0, fmt.Errorf("%w: you need to enter a positive value for %s", ErrValidation, name)
	}

	return v, nil
}

func ValidateTicker(raw string) (eventmodels.StockSymbol, error) {
	symbol := eventmodels.NewStockSymbol(raw)
	if err := symbol.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return symbol, nil
}

func ValidateStrike(raw string) (float64, error) {
	return parsePositiveFloat("strike", raw)
}

func ValidateVolatility(raw string) (float64, error) {
	return parsePositiveFloat("volatility", raw)
}

func ValidateRiskFreeRate(raw string) (float64, error) {
	return parsePositiveFloat("the risk free interest rate", raw)
}

func ValidateUnderlyingPrice(raw string) (float64, error) {
	return parsePositiveFloat("the underlying price", raw)
}

// ValidateExpirationDate requires a calendar date that exists and is not before today.
func ValidateExpirationDate(year, month, day string, today time.Time) (time.Time, error) {
	y, errY := strconv.Atoi(strings.TrimSpace(year))
	m, errM := strconv.Atoi(strings.TrimSpace(month))
	d, errD := strconv.Atoi(strings.TrimSpace(day))
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, fmt.Errorf("%w: expiry date needs to be of the form YYYY-MM-DD", ErrValidation)
	}

	exp := time.Date(y, time.Month(m), d, 0, 0, 0, 0, today.Location())

	// time.Date normalizes out of range values, e.g. Feb 30 becomes Mar 1
	if exp.Year() != y || int(exp.Month()) != m || exp.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d is not an existing date", ErrValidation, y, m, d)
	}

	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if exp.Before(todayStart) {
		return time.Time{}, fmt.Errorf("%w: you need to enter a date in the future (today onwards)", ErrValidation)
	}

	return exp, nil
}
