package valuation

// Model names, also the JSON keys of the per-model results.
const (
	ModelFCFE        = "fcfe"
	ModelFCFF        = "fcff"
	ModelJustifiedPE = "justified_pe"
	ModelJustifiedPB = "justified_pb"
)

// ModelNames lists the four models in reporting order.
var ModelNames = []string{ModelFCFE, ModelFCFF, ModelJustifiedPE, ModelJustifiedPB}

// Unavailable is the sentinel a model returns when it cannot produce a
// usable value. The aggregator drops non-positive results, so a failed
// model never pulls the average toward zero.
const Unavailable = 0.0

// Assumptions drives the four models. All rates are fractions (0.05 means
// 5%), ForecastYears is a period count, and ModelWeights need not sum to
// one; qualifying weights are renormalized at aggregation time.
type Assumptions struct {
	ShortTermGrowth float64            `json:"short_term_growth" yaml:"short_term_growth"`
	TerminalGrowth  float64            `json:"terminal_growth" yaml:"terminal_growth"`
	WACC            float64            `json:"wacc" yaml:"wacc"`
	CostOfEquity    float64            `json:"cost_of_equity" yaml:"cost_of_equity"`
	TaxRate         float64            `json:"tax_rate" yaml:"tax_rate"`
	ForecastYears   int                `json:"forecast_years" yaml:"forecast_years"`
	TargetROE       float64            `json:"roe" yaml:"roe"`
	PayoutRatio     float64            `json:"payout_ratio" yaml:"payout_ratio"`
	ModelWeights    map[string]float64 `json:"model_weights" yaml:"model_weights"`
}

// DefaultAssumptions returns the conservative baseline scenario used when
// a request leaves fields unset.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		ShortTermGrowth: 0.05,
		TerminalGrowth:  0.02,
		WACC:            0.10,
		CostOfEquity:    0.12,
		TaxRate:         0.20,
		ForecastYears:   5,
		TargetROE:       0.15,
		PayoutRatio:     0.40,
		ModelWeights:    DefaultWeights(),
	}
}

// DefaultWeights spreads the four models evenly.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		ModelFCFE:        0.25,
		ModelFCFF:        0.25,
		ModelJustifiedPE: 0.25,
		ModelJustifiedPB: 0.25,
	}
}

// Summary describes the models that produced a usable value. A failed
// model is excluded entirely rather than dragging the range toward zero.
type Summary struct {
	Average     float64 `json:"average"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	ModelsUsed  int     `json:"models_used"`
	TotalModels int     `json:"total_models"`
}

// Result carries the per-model share values and their aggregate.
type Result struct {
	Models          map[string]float64 `json:"models"`
	WeightedAverage float64            `json:"weighted_average"`
	Summary         *Summary           `json:"summary,omitempty"`
}
