package port

import (
	"context"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// TextClassifier runs the sequence classifier over text.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (valueobject.ClassificationResult, error)
}

// Segmenter splits Chinese text into words (accurate mode with HMM).
type Segmenter interface {
	Cut(text string) []string
}

// ResultCache stores scoring results keyed by text hash. Misses return
// (zero, false, nil).
type ResultCache interface {
	Get(ctx context.Context, textHash string) (model.MessageRiskResult, bool, error)
	Set(ctx context.Context, textHash string, result model.MessageRiskResult) error
}
