package segmenter

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antifraud/msgrisk/internal/domain/service"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

var (
	loadOnce sync.Once
	shared   *GSE
	loadErr  error
)

func embedded(t *testing.T) *GSE {
	t.Helper()
	loadOnce.Do(func() { shared, loadErr = New("") })
	require.NoError(t, loadErr)
	return shared
}

func TestGSE_CutCoversInput(t *testing.T) {
	seg := embedded(t)
	text := "立即点击 http://example.com 领取奖品，今天是最后机会"

	tokens := seg.Cut(text)
	require.NotEmpty(t, tokens)
	assert.Contains(t, strings.Join(tokens, ""), "http://example.com")
	assert.Contains(t, tokens, "立即")
	assert.Contains(t, tokens, "今天")
	assert.Contains(t, tokens, "机会")
}

func TestGSE_UrgentLinkScenario(t *testing.T) {
	vocab := valueobject.NewKeywordVocabulary([]valueobject.KeywordEntry{{Keyword: "奖品", Frequency: 1}})
	calc := service.NewFeatureCalculator(embedded(t), vocab)
	text := "立即点击 http://example.com 领取奖品，今天是最后机会"

	assert.Equal(t, 90, calc.LinkRisk(text))
	assert.Equal(t, 100, calc.UrgencyIndex(text))
}

func TestGSE_Deterministic(t *testing.T) {
	seg := embedded(t)
	text := "您的快递已丢失，请联系客服办理理赔"
	assert.Equal(t, seg.Cut(text), seg.Cut(text))
}

func TestGSE_Empty(t *testing.T) {
	assert.Empty(t, embedded(t).Cut(""))
}

func TestNew_MissingDictionary(t *testing.T) {
	_, err := New("/nonexistent/dict.txt")
	require.Error(t, err)
}
