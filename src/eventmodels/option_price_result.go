package eventmodels

type OptionPriceResultDTO struct {
	Call float64 `json:"call"`
}
