package usecase

import (
	"github.com/antifraud/msgrisk/internal/domain/service"
)

// ExtractKeywords runs keyword extraction alone; no model is involved.
type ExtractKeywords struct {
	extractor *service.KeywordExtractor
}

// NewExtractKeywords creates a new ExtractKeywords use case.
func NewExtractKeywords(extractor *service.KeywordExtractor) *ExtractKeywords {
	return &ExtractKeywords{extractor: extractor}
}

// Execute returns up to top_k vocabulary keywords, or ["无"].
func (uc *ExtractKeywords) Execute(text string) []string {
	return uc.extractor.Extract(text)
}
