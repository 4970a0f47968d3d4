package service_test

import (
	"context"
	"unicode/utf8"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// dictSegmenter does greedy longest-match over a fixed word list and emits
// single runes otherwise.
type dictSegmenter struct {
	words  map[string]struct{}
	maxLen int
}

func newDictSegmenter(words ...string) *dictSegmenter {
	s := &dictSegmenter{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.words[w] = struct{}{}
		s.maxLen = max(s.maxLen, utf8.RuneCountInString(w))
	}
	return s
}

func (s *dictSegmenter) Cut(text string) []string {
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); {
		n := 1
		for l := min(s.maxLen, len(runes)-i); l > 1; l-- {
			if _, ok := s.words[string(runes[i:i+l])]; ok {
				n = l
				break
			}
		}
		out = append(out, string(runes[i:i+n]))
		i += n
	}
	return out
}

type mockClassifier struct {
	err    error
	logits []float64
	calls  int
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (valueobject.ClassificationResult, error) {
	m.calls++
	if m.err != nil {
		return valueobject.ClassificationResult{}, m.err
	}
	return valueobject.NewClassificationResult(m.logits)
}

func logitsFavoring(index int, value float64) []float64 {
	l := make([]float64, valueobject.NumFraudCategories)
	l[index] = value
	return l
}

type mockCache struct {
	getErr  error
	setErr  error
	entries map[string]model.MessageRiskResult
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]model.MessageRiskResult)}
}

func (m *mockCache) Get(_ context.Context, key string) (model.MessageRiskResult, bool, error) {
	if m.getErr != nil {
		return model.MessageRiskResult{}, false, m.getErr
	}
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *mockCache) Set(_ context.Context, key string, r model.MessageRiskResult) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = r
	return nil
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveCacheLookup(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

var testWords = []string{"立即", "点击", "领取", "奖品", "今天", "最后", "机会", "中奖", "马上", "转账", "验证码"}

func testVocabulary(words ...string) *valueobject.KeywordVocabulary {
	entries := make([]valueobject.KeywordEntry, len(words))
	for i, w := range words {
		entries[i] = valueobject.KeywordEntry{Keyword: w, Frequency: 10}
	}
	return valueobject.NewKeywordVocabulary(entries)
}
