package service

import (
	"context"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// RiskScorer runs the classifier, the keyword extractor and the feature
// calculator over one message and combines their output. It holds no
// mutable state and is safe for concurrent use.
type RiskScorer struct {
	classifier port.TextClassifier
	segmenter  port.Segmenter
	keywords   *KeywordExtractor
	features   *FeatureCalculator
}

// NewRiskScorer creates a RiskScorer.
func NewRiskScorer(
	classifier port.TextClassifier,
	segmenter port.Segmenter,
	vocab *valueobject.KeywordVocabulary,
	topK int,
) *RiskScorer {
	return &RiskScorer{
		classifier: classifier,
		segmenter:  segmenter,
		keywords:   NewKeywordExtractor(segmenter, vocab, topK),
		features:   NewFeatureCalculator(segmenter, vocab),
	}
}

// Score classifies text and attaches the level, keywords and features.
// Classifier errors are returned unchanged; no partial result is produced.
func (s *RiskScorer) Score(ctx context.Context, text string) (model.MessageRiskResult, error) {
	cls, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return model.MessageRiskResult{}, err
	}

	top := cls.Top()
	tokens := s.segmenter.Cut(text)

	return model.MessageRiskResult{
		Classification: cls,
		RiskLevel:      valueobject.RiskLevelFromPrediction(top.Category, top.Probability),
		Keywords:       s.keywords.fromTokens(tokens),
		Features:       s.features.fromTokens(text, tokens, top),
	}, nil
}

// Keywords exposes keyword extraction alone, which needs no model.
func (s *RiskScorer) Keywords(text string) []string {
	return s.keywords.Extract(text)
}
