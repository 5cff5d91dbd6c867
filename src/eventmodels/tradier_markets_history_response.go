package eventmodels

import (
	"encoding/json"
	"fmt"
	"time"
)

type TradierMarketsHistoryDayDTO struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int     `json:"volume"`
}

type tradierMarketsHistory struct {
	Day *json.RawMessage `json:"day"`
}

// TradierMarketsHistoryResponseDTO mirrors /v1/markets/history. Tradier returns a single
// object for a one day range, a list otherwise, and a null history when nothing matched.
type TradierMarketsHistoryResponseDTO struct {
	History *tradierMarketsHistory `json:"history"`
}

func (dto *TradierMarketsHistoryResponseDTO) Parse() ([]TradierMarketsHistoryDayDTO, error) {
	if dto.History == nil || dto.History.Day == nil {
		return nil, nil
	}

	var days []TradierMarketsHistoryDayDTO
	if listErr := json.Unmarshal(*dto.History.Day, &days); listErr != nil {
		var day TradierMarketsHistoryDayDTO
		if singleErr := json.Unmarshal(*dto.History.Day, &day); singleErr != nil {
			return nil, fmt.Errorf("TradierMarketsHistoryResponseDTO.Parse: error decoding day: %v", singleErr)
		}

		days = append(days, day)
	}

	return days, nil
}

func (dto *TradierMarketsHistoryResponseDTO) ToModel() ([]DailyBar, error) {
	days, err := dto.Parse()
	if err != nil {
		return nil, err
	}

	bars := make([]DailyBar, 0, len(days))
	for _, d := range days {
		ts, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return nil, fmt.Errorf("TradierMarketsHistoryResponseDTO.ToModel: failed to parse date %q: %w", d.Date, err)
		}

		bars = append(bars, DailyBar{Timestamp: ts, Close: d.Close})
	}

	return bars, nil
}
