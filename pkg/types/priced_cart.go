package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppliedDiscount names the rule that won a line (or the order total) and the
// effective percent it granted.
type AppliedDiscount struct {
	DiscountID uuid.UUID       `json:"discount_id"`
	Name       string          `json:"name"`
	Percent    decimal.Decimal `json:"percent"`
}

// PricedCartItem is one cart line after discount resolution.
type PricedCartItem struct {
	ProductID           uuid.UUID        `json:"product_id"`
	ProductName         string           `json:"product_name"`
	Quantity            int              `json:"quantity"`
	UnitPrice           int64            `json:"price_original"`
	DiscountedUnitPrice int64            `json:"price_discount"`
	LineTotal           int64            `json:"total_price"`
	Savings             int64            `json:"savings"`
	AppliedDiscount     *AppliedDiscount `json:"applied_discount,omitempty"`
}

// CartWarning flags a line that was excluded from totals instead of failing
// the whole cart view.
type CartWarning struct {
	ProductID uuid.UUID `json:"product_id"`
	Message   string    `json:"message"`
}

// PricedCart is the full priced snapshot returned by every cart read/write.
type PricedCart struct {
	CartID              uuid.UUID        `json:"cart_id"`
	Items               []PricedCartItem `json:"items"`
	TotalOriginalPrice  int64            `json:"total_original_price"`
	TotalDiscountAmount int64            `json:"total_discount_amount"`
	FinalTotalPrice     int64            `json:"final_total_price"`
	OrderDiscount       *AppliedDiscount `json:"order_discount,omitempty"`
	Warnings            []CartWarning    `json:"warnings,omitempty"`
}
