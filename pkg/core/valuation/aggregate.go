package valuation

import "math"

// usable reports whether a model output can enter the weighted average.
// Sentinels, negative values and non-finite values are all excluded.
func usable(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Aggregate combines model outputs into a weighted average. Weights of the
// qualifying models are renormalized by their sum, so dropping a failed
// model never changes the relative contribution of the survivors. Summary
// statistics cover qualifying models only.
//
// With no qualifying model the weighted average stays at Unavailable and
// the summary is nil.
func Aggregate(models map[string]float64, weights map[string]float64) *Result {
	if weights == nil {
		weights = DefaultWeights()
	}

	res := &Result{
		Models:          models,
		WeightedAverage: Unavailable,
	}

	var (
		totalWeight float64
		weightedSum float64
		values      []float64
	)
	for name, v := range models {
		w, ok := weights[name]
		if !ok || !usable(v) {
			continue
		}
		totalWeight += w
		weightedSum += v * w
		values = append(values, v)
	}

	if len(values) == 0 || totalWeight <= 0 {
		return res
	}

	res.WeightedAverage = weightedSum / totalWeight

	min, max, sum := values[0], values[0], 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	res.Summary = &Summary{
		Average:     sum / float64(len(values)),
		Min:         min,
		Max:         max,
		ModelsUsed:  len(values),
		TotalModels: len(models),
	}
	return res
}
