package enums

import "fmt"

// TierCondition selects which metric a discount tier threshold compares against.
type TierCondition string

const (
	TierConditionQuantity   TierCondition = "quantity"
	TierConditionTotalPrice TierCondition = "total_price"
)

var validTierConditions = []TierCondition{
	TierConditionQuantity,
	TierConditionTotalPrice,
}

// String implements fmt.Stringer.
func (t TierCondition) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TierCondition.
func (t TierCondition) IsValid() bool {
	for _, candidate := range validTierConditions {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTierCondition converts raw input into a TierCondition.
func ParseTierCondition(value string) (TierCondition, error) {
	for _, candidate := range validTierConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tier condition %q", value)
}
