package valueobject

import "fmt"

// FraudCategory is one of the ten labels the message classifier emits.
type FraudCategory struct {
	value string
}

var (
	CategoryImpersonatingAuthorities      = FraudCategory{value: "冒充公检法及政府机关类"}
	CategoryImpersonatingMilitaryPurchase = FraudCategory{value: "冒充军警购物类诈骗"}
	CategoryImpersonatingCustomerService  = FraudCategory{value: "冒充电商物流客服类"}
	CategoryImpersonatingAcquaintance     = FraudCategory{value: "冒充领导、熟人类"}
	CategoryNoRisk                        = FraudCategory{value: "无风险"}
	CategoryOnlineRomance                 = FraudCategory{value: "网络婚恋、交友类"}
	CategoryBlacklistedCase               = FraudCategory{value: "网黑案件"}
	CategoryFakeCreditService             = FraudCategory{value: "虚假信用服务类"}
	CategoryFakeInvestment                = FraudCategory{value: "虚假网络投资理财类"}
	CategoryFakeShopping                  = FraudCategory{value: "虚假购物、服务类"}
)

// Label-encoder order; logit i belongs to fraudCategories[i].
var fraudCategories = [...]FraudCategory{
	CategoryImpersonatingAuthorities,
	CategoryImpersonatingMilitaryPurchase,
	CategoryImpersonatingCustomerService,
	CategoryImpersonatingAcquaintance,
	CategoryNoRisk,
	CategoryOnlineRomance,
	CategoryBlacklistedCase,
	CategoryFakeCreditService,
	CategoryFakeInvestment,
	CategoryFakeShopping,
}

// NumFraudCategories is the number of classifier labels.
const NumFraudCategories = len(fraudCategories)

// FraudCategories returns all categories in label order.
func FraudCategories() []FraudCategory {
	out := make([]FraudCategory, NumFraudCategories)
	copy(out, fraudCategories[:])
	return out
}

// FraudCategoryAt returns the category for logit index i.
func FraudCategoryAt(i int) (FraudCategory, error) {
	if i < 0 || i >= NumFraudCategories {
		return FraudCategory{}, fmt.Errorf("fraud category index %d out of range [0,%d)", i, NumFraudCategories)
	}
	return fraudCategories[i], nil
}

// FraudCategoryFromString reconstructs a FraudCategory from its label.
func FraudCategoryFromString(s string) (FraudCategory, error) {
	for _, c := range fraudCategories {
		if c.value == s {
			return c, nil
		}
	}
	return FraudCategory{}, fmt.Errorf("invalid fraud category: %q", s)
}

// Index returns the label position, or -1 for the zero value.
func (c FraudCategory) Index() int {
	for i, fc := range fraudCategories {
		if fc == c {
			return i
		}
	}
	return -1
}

func (c FraudCategory) String() string { return c.value }

// IsNoRisk reports whether c is the 无风险 label.
func (c FraudCategory) IsNoRisk() bool { return c == CategoryNoRisk }

func (c FraudCategory) IsZero() bool { return c.value == "" }

func (c FraudCategory) Equal(other FraudCategory) bool { return c.value == other.value }

func (c FraudCategory) MarshalText() ([]byte, error) { return []byte(c.value), nil }

func (c *FraudCategory) UnmarshalText(b []byte) error {
	parsed, err := FraudCategoryFromString(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
