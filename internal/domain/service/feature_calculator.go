package service

import (
	"regexp"

	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

var urlPattern = regexp.MustCompile(
	`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+|www\.[^\s\p{Z}]+`,
)

var urgencyWords = map[string]struct{}{
	"立即": {}, "马上": {}, "尽快": {}, "赶快": {}, "今天": {}, "现在": {}, "机会": {},
}

const (
	linkWeight    = 60
	linkBase      = 30
	keywordWeight = 20
	keywordBase   = 28
	urgencyWeight = 25
	urgencyBase   = 32
)

// FeatureCalculator derives the heuristic sub-scores shown next to the
// classifier verdict. It never fails.
type FeatureCalculator struct {
	segmenter port.Segmenter
	vocab     *valueobject.KeywordVocabulary
}

// NewFeatureCalculator creates a FeatureCalculator.
func NewFeatureCalculator(segmenter port.Segmenter, vocab *valueobject.KeywordVocabulary) *FeatureCalculator {
	return &FeatureCalculator{segmenter: segmenter, vocab: vocab}
}

// LinkRisk counts URLs in text.
func (c *FeatureCalculator) LinkRisk(text string) int {
	return valueobject.BoundedScore(len(urlPattern.FindAllStringIndex(text, -1)), linkWeight, linkBase)
}

// KeywordRisk counts every vocabulary token occurrence, without filtering.
func (c *FeatureCalculator) KeywordRisk(text string) int {
	return c.keywordRisk(c.segmenter.Cut(text))
}

// UrgencyIndex counts urgency words among the segmented tokens.
func (c *FeatureCalculator) UrgencyIndex(text string) int {
	return urgencyIndex(c.segmenter.Cut(text))
}

// Calculate builds the full feature set; semantic anomaly is the top
// probability scaled to [0,100].
func (c *FeatureCalculator) Calculate(text string, top valueobject.Prediction) valueobject.RiskFeatureSet {
	return c.fromTokens(text, c.segmenter.Cut(text), top)
}

func (c *FeatureCalculator) fromTokens(text string, tokens []string, top valueobject.Prediction) valueobject.RiskFeatureSet {
	return valueobject.RiskFeatureSet{
		KeywordRisk:     c.keywordRisk(tokens),
		LinkRisk:        c.LinkRisk(text),
		UrgencyIndex:    urgencyIndex(tokens),
		SemanticAnomaly: top.Probability * 100,
	}
}

func (c *FeatureCalculator) keywordRisk(tokens []string) int {
	hits := 0
	for _, tok := range tokens {
		if c.vocab.Contains(tok) {
			hits++
		}
	}
	return valueobject.BoundedScore(hits, keywordWeight, keywordBase)
}

func urgencyIndex(tokens []string) int {
	hits := 0
	for _, tok := range tokens {
		if _, ok := urgencyWords[tok]; ok {
			hits++
		}
	}
	return valueobject.BoundedScore(hits, urgencyWeight, urgencyBase)
}
