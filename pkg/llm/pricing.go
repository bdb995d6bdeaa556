package llm

import "unicode/utf8"

const (
	// USD per million tokens.
	InputPricePerMillion  = 5.0
	OutputPricePerMillion = 15.0
	BatchDiscount         = 0.5

	charsPerToken = 4
)

// Estimate is the projected token count and price of a set of prompts.
// Output tokens are assumed equal to input tokens.
type Estimate struct {
	Prompts      int
	InputTokens  int
	OutputTokens int
	InputCost    float64
	OutputCost   float64
	TotalCost    float64
	Batch        bool
}

// EstimateTokens approximates the token count of s at four characters per token.
func EstimateTokens(s string) int {
	return utf8.RuneCountInString(s) / charsPerToken
}

// EstimateCost prices prompts[start:stop]. Out of range bounds are clamped,
// stop <= 0 means the end of the list. Batch jobs are billed at half price.
func EstimateCost(prompts []string, start, stop int, batch bool) Estimate {
	if stop <= 0 || stop > len(prompts) {
		stop = len(prompts)
	}
	start = max(0, min(start, stop))

	e := Estimate{Prompts: stop - start, Batch: batch}
	for _, p := range prompts[start:stop] {
		e.InputTokens += EstimateTokens(p)
	}
	e.OutputTokens = e.InputTokens
	e.InputCost = InputPrice(e.InputTokens)
	e.OutputCost = OutputPrice(e.OutputTokens)
	if batch {
		e.InputCost *= BatchDiscount
		e.OutputCost *= BatchDiscount
	}
	e.TotalCost = e.InputCost + e.OutputCost
	return e
}

func InputPrice(tokens int) float64 {
	return float64(tokens) / 1e6 * InputPricePerMillion
}

func OutputPrice(tokens int) float64 {
	return float64(tokens) / 1e6 * OutputPricePerMillion
}
