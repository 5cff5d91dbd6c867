package eventmodels

import (
	"fmt"
	"strconv"
	"time"
)

// YahooCsvCandleDTO is one row of the Yahoo history download. Numeric columns are kept as
// strings because Yahoo writes "null" for days without a print.
type YahooCsvCandleDTO struct {
	Date     string `csv:"Date"`
	Open     string `csv:"Open"`
	High     string `csv:"High"`
	Low      string `csv:"Low"`
	Close    string `csv:"Close"`
	AdjClose string `csv:"Adj Close"`
	Volume   string `csv:"Volume"`
}

// ToModel returns false when the row has no usable close.
func (dto *YahooCsvCandleDTO) ToModel() (DailyBar, bool, error) {
	ts, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		return DailyBar{}, false, fmt.Errorf("YahooCsvCandleDTO.ToModel: failed to parse date %q: %w", dto.Date, err)
	}

	if dto.Close == "" || dto.Close == "null" {
		return DailyBar{}, false, nil
	}

	closePrice, err := strconv.ParseFloat(dto.Close, 64)
	if err != nil {
		return DailyBar{}, false, fmt.Errorf("YahooCsvCandleDTO.ToModel: failed to parse close %q: %w", dto.Close, err)
	}

	return DailyBar{Timestamp: ts, Close: closePrice}, true, nil
}
