package eventmodels

import (
	"fmt"
	"regexp"
	"strconv"
)

var literalPricePattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Underlying is either a symbol to resolve or a literal price, never both.
type Underlying struct {
	Symbol StockSymbol
	Price  *float64
}

func (u Underlying) IsLiteral() bool {
	return u.Price != nil
}

func (u Underlying) String() string {
	if u.Price != nil {
		return strconv.FormatFloat(*u.Price, 'f', -1, 64)
	}

	return u.Symbol.String()
}

func (u Underlying) Validate() error {
	if u.Price != nil {
		if *u.Price <= 0 {
			return fmt.Errorf("%w: underlying price must be positive, got %v", ErrInvalidParameter, *u.Price)
		}

		return nil
	}

	return u.Symbol.Validate()
}

// ParseUnderlying treats anything that looks like a decimal number as a literal price.
func ParseUnderlying(raw string) (Underlying, error) {
	if raw == "" {
		return Underlying{}, fmt.Errorf("%w: underlying is required", ErrMalformedRequest)
	}

	if literalPricePattern.MatchString(raw) {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Underlying{}, fmt.Errorf("%w: underlying price %q: %v", ErrMalformedRequest, raw, err)
		}

		return Underlying{Price: &price}, nil
	}

	return Underlying{Symbol: NewStockSymbol(raw)}, nil
}

func NewSymbolUnderlying(symbol StockSymbol) Underlying {
	return Underlying{Symbol: symbol}
}

func NewLiteralUnderlying(price float64) Underlying {
	return Underlying{Price: &price}
}
