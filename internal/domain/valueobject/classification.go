package valueobject

import (
	"fmt"
	"math"
	"sort"
)

// Prediction pairs a category with its softmax probability.
type Prediction struct {
	Category    FraudCategory `json:"category"`
	Probability float64       `json:"probability"`
}

// ClassificationResult is the full probability distribution over all
// categories, ordered by descending probability. Ties keep label order.
type ClassificationResult struct {
	predictions []Prediction
}

// NewClassificationResult applies softmax to raw model logits and ranks the
// categories. len(logits) must equal NumFraudCategories.
func NewClassificationResult(logits []float64) (ClassificationResult, error) {
	if len(logits) != NumFraudCategories {
		return ClassificationResult{}, fmt.Errorf("expected %d logits, got %d", NumFraudCategories, len(logits))
	}

	probs := softmax(logits)
	preds := make([]Prediction, len(probs))
	for i, p := range probs {
		preds[i] = Prediction{Category: fraudCategories[i], Probability: p}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Probability > preds[j].Probability
	})

	return ClassificationResult{predictions: preds}, nil
}

// ReconstructClassificationResult rebuilds a result from stored predictions
// without renormalizing.
func ReconstructClassificationResult(preds []Prediction) ClassificationResult {
	out := make([]Prediction, len(preds))
	copy(out, preds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return ClassificationResult{predictions: out}
}

// Top returns the most probable prediction. Zero value when empty.
func (r ClassificationResult) Top() Prediction {
	if len(r.predictions) == 0 {
		return Prediction{}
	}
	return r.predictions[0]
}

// Predictions returns a copy of the ranked predictions.
func (r ClassificationResult) Predictions() []Prediction {
	out := make([]Prediction, len(r.predictions))
	copy(out, r.predictions)
	return out
}

func (r ClassificationResult) IsZero() bool { return len(r.predictions) == 0 }

func softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
