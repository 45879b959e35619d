package agent

// Approximate token prices in USD per 1K tokens.
type tokenPrice struct {
	input  float64
	output float64
}

var modelCosts = map[string]tokenPrice{
	"gpt-4o":      {input: 0.0025, output: 0.01},
	"gpt-4o-mini": {input: 0.00015, output: 0.0006},
}

// Models not in the table get a conservative estimate.
var defaultCost = tokenPrice{input: 0.003, output: 0.015}

// EstimateCost returns the approximate USD cost of one LLM call.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	price, ok := modelCosts[model]
	if !ok {
		price = defaultCost
	}
	return float64(inputTokens)/1000*price.input + float64(outputTokens)/1000*price.output
}
