package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

func resultFavoring(t *testing.T, idx int, level valueobject.RiskLevel, keywords []string) model.MessageRiskResult {
	t.Helper()
	logits := make([]float64, valueobject.NumFraudCategories)
	logits[idx] = 5
	cls, err := valueobject.NewClassificationResult(logits)
	require.NoError(t, err)
	return model.MessageRiskResult{
		Classification: cls,
		RiskLevel:      level,
		Keywords:       keywords,
		Features: valueobject.RiskFeatureSet{
			KeywordRisk:     88,
			LinkRisk:        90,
			UrgencyIndex:    100,
			SemanticAnomaly: cls.Top().Probability * 100,
		},
	}
}

func TestScoreFromResult(t *testing.T) {
	t.Run("fraud result shows anomaly label and keywords", func(t *testing.T) {
		r := resultFavoring(t, valueobject.CategoryFakeShopping.Index(), valueobject.RiskLevelHigh, []string{"点击", "领取"})

		resp := ScoreFromResult(r)

		assert.Equal(t, SemanticLabelAnomaly, resp.SemanticLabel)
		assert.Equal(t, []string{"点击", "领取"}, resp.DisplayKeywords)
		assert.Equal(t, "高风险", resp.RiskLevel)
		assert.Equal(t, valueobject.CategoryFakeShopping.String(), resp.Prediction)
		assert.Len(t, resp.FullPredictions, valueobject.NumFraudCategories)
		assert.Equal(t, 90, resp.LinkRisk)
	})

	t.Run("safe result hides keywords", func(t *testing.T) {
		r := resultFavoring(t, valueobject.CategoryNoRisk.Index(), valueobject.RiskLevelNone, []string{"点击"})

		resp := ScoreFromResult(r)

		assert.Equal(t, SemanticLabelSafe, resp.SemanticLabel)
		assert.Equal(t, []string{"无"}, resp.DisplayKeywords)
		assert.Equal(t, []string{"点击"}, resp.Keywords)
	})
}

func TestFromModel(t *testing.T) {
	a, err := model.NewMessageAssessment("tenant-1", "立即点击链接领取奖品", "sms", "10690000")
	require.NoError(t, err)
	require.NoError(t, a.Assess(resultFavoring(t, 0, valueobject.RiskLevelHigh, []string{"点击"})))

	resp := FromModel(a)

	assert.Equal(t, a.ID(), resp.ID)
	assert.Equal(t, "tenant-1", resp.TenantID)
	assert.Equal(t, "sms", resp.Channel)
	assert.Equal(t, model.HashText("立即点击链接领取奖品"), resp.TextHash)
	assert.Equal(t, "高风险", resp.Result.RiskLevel)
	assert.Equal(t, 2, resp.Version)
	assert.False(t, resp.AssessedAt.IsZero())

	page := FromModels([]*model.MessageAssessment{a}, 7)
	assert.Equal(t, 7, page.Total)
	require.Len(t, page.Assessments, 1)
	assert.Equal(t, a.ID(), page.Assessments[0].ID)
}
