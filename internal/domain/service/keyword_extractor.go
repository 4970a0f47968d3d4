package service

import (
	"sort"
	"unicode/utf8"

	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// NoKeywords is returned in place of an empty keyword list.
const NoKeywords = "无"

// DefaultTopK is the number of keywords returned when none is configured.
const DefaultTopK = 3

var stopwords = map[string]struct{}{
	"的": {}, "了": {}, "是": {}, "在": {}, "和": {}, "就": {}, "都": {},
	"而": {}, "及": {}, "与": {}, "这": {}, "那": {}, "有": {},
}

// KeywordExtractor picks the most frequent suspicious vocabulary words out
// of a message.
type KeywordExtractor struct {
	segmenter port.Segmenter
	vocab     *valueobject.KeywordVocabulary
	topK      int
}

// NewKeywordExtractor creates a KeywordExtractor. topK <= 0 selects DefaultTopK.
func NewKeywordExtractor(segmenter port.Segmenter, vocab *valueobject.KeywordVocabulary, topK int) *KeywordExtractor {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &KeywordExtractor{segmenter: segmenter, vocab: vocab, topK: topK}
}

// Extract segments text and returns up to topK keywords, or [NoKeywords].
func (e *KeywordExtractor) Extract(text string) []string {
	return e.fromTokens(e.segmenter.Cut(text))
}

func (e *KeywordExtractor) fromTokens(tokens []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		if !e.vocab.Contains(tok) {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	if len(order) == 0 {
		return []string{NoKeywords}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > e.topK {
		order = order[:e.topK]
	}
	return order
}
