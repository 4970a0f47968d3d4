package valueobject

import "fmt"

// RiskLevel is the coarse, ordered risk of a message.
type RiskLevel struct {
	value string
	rank  int
}

var (
	RiskLevelNone   = RiskLevel{value: "无风险", rank: 1}
	RiskLevelLow    = RiskLevel{value: "低风险", rank: 2}
	RiskLevelMedium = RiskLevel{value: "中风险", rank: 3}
	RiskLevelHigh   = RiskLevel{value: "高风险", rank: 4}
)

const (
	highRiskThreshold   = 0.7
	mediumRiskThreshold = 0.5
)

// RiskLevelFromPrediction maps the classifier's top category and its
// probability to a RiskLevel. Thresholds are strict.
func RiskLevelFromPrediction(category FraudCategory, probability float64) RiskLevel {
	switch {
	case category.IsNoRisk():
		return RiskLevelNone
	case probability > highRiskThreshold:
		return RiskLevelHigh
	case probability > mediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// RiskLevelFromString reconstructs a RiskLevel from its string representation.
func RiskLevelFromString(s string) (RiskLevel, error) {
	for _, l := range []RiskLevel{RiskLevelNone, RiskLevelLow, RiskLevelMedium, RiskLevelHigh} {
		if l.value == s {
			return l, nil
		}
	}
	return RiskLevel{}, fmt.Errorf("invalid risk level: %q", s)
}

func (r RiskLevel) String() string { return r.value }

// Rank orders levels: 无风险=1 < 低风险 < 中风险 < 高风险=4. Zero value is 0.
func (r RiskLevel) Rank() int { return r.rank }

// AtLeast reports whether r is as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool { return r.rank >= other.rank }

func (r RiskLevel) IsZero() bool { return r.value == "" }

func (r RiskLevel) Equal(other RiskLevel) bool { return r.value == other.value }

func (r RiskLevel) MarshalText() ([]byte, error) { return []byte(r.value), nil }

func (r *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := RiskLevelFromString(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
