// Package cost estimates the API spend of a pipeline run from the
// token usage reported by the model provider.
package cost

// ModelRate holds per-model token pricing in USD per million tokens.
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// Rates maps model identifiers to their pricing.
type Rates map[string]ModelRate

// Calculator computes estimated costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Model computes the cost of the given token counts for one model.
// Unknown models cost zero; the estimate is best-effort.
func (c *Calculator) Model(model string, inputTokens, outputTokens int64) float64 {
	rate, ok := c.rates[model]
	if !ok {
		return 0
	}
	return (float64(inputTokens)/1e6)*rate.Input + (float64(outputTokens)/1e6)*rate.Output
}

// Total sums the cost over a per-model usage map of
// {model: [input, output]} token counts.
func (c *Calculator) Total(usage map[string][2]int64) float64 {
	var total float64
	for model, tokens := range usage {
		total += c.Model(model, tokens[0], tokens[1])
	}
	return total
}

// DefaultRates returns the published pricing for the models the
// pipeline roles run on.
func DefaultRates() Rates {
	return Rates{
		"claude-haiku-4-5-20251001": {
			Input: 0.80, Output: 4.00,
		},
		"claude-sonnet-4-5-20250929": {
			Input: 3.00, Output: 15.00,
		},
		"claude-opus-4-1-20250805": {
			Input: 15.00, Output: 75.00,
		},
	}
}
