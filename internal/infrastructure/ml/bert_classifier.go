package ml

import (
	"context"
	"fmt"

	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// LogitsSource returns raw classifier logits for an encoded sequence.
type LogitsSource interface {
	Infer(ctx context.Context, enc Encoding) ([]float64, error)
}

// BertClassifier implements port.TextClassifier: local WordPiece
// tokenization, remote inference, local softmax and ranking.
type BertClassifier struct {
	tokenizer *Tokenizer
	source    LogitsSource
}

// NewBertClassifier creates a BertClassifier.
func NewBertClassifier(tokenizer *Tokenizer, source LogitsSource) *BertClassifier {
	return &BertClassifier{tokenizer: tokenizer, source: source}
}

// Classify returns the ranked category distribution for text. All failures
// wrap port.ErrInference.
func (c *BertClassifier) Classify(ctx context.Context, text string) (valueobject.ClassificationResult, error) {
	logits, err := c.source.Infer(ctx, c.tokenizer.Encode(text))
	if err != nil {
		return valueobject.ClassificationResult{}, fmt.Errorf("%w: %w", port.ErrInference, err)
	}

	result, err := valueobject.NewClassificationResult(logits)
	if err != nil {
		return valueobject.ClassificationResult{}, fmt.Errorf("%w: %w", port.ErrInference, err)
	}
	return result, nil
}
