package enums

import "fmt"

// DiscountTarget identifies the dimension a discount applies to.
type DiscountTarget string

const (
	DiscountTargetProduct    DiscountTarget = "product"
	DiscountTargetCategory   DiscountTarget = "category"
	DiscountTargetOrderTotal DiscountTarget = "order_total"
)

var validDiscountTargets = []DiscountTarget{
	DiscountTargetProduct,
	DiscountTargetCategory,
	DiscountTargetOrderTotal,
}

// String implements fmt.Stringer.
func (d DiscountTarget) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountTarget.
func (d DiscountTarget) IsValid() bool {
	for _, candidate := range validDiscountTargets {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountTarget converts raw input into a DiscountTarget.
func ParseDiscountTarget(value string) (DiscountTarget, error) {
	for _, candidate := range validDiscountTargets {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount target %q", value)
}
