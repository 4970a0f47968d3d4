package valueobject

// RiskFeatureSet holds the auxiliary heuristic scores. All values lie in [0,100].
type RiskFeatureSet struct {
	KeywordRisk     int     `json:"keyword_risk"`
	LinkRisk        int     `json:"link_risk"`
	UrgencyIndex    int     `json:"urgency_index"`
	SemanticAnomaly float64 `json:"semantic_anomaly"`
}

// BoundedScore returns min(hits*weight+base, 100).
func BoundedScore(hits, weight, base int) int {
	return min(hits*weight+base, 100)
}
