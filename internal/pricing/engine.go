package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	"github.com/paintmart/paintmart-backend/pkg/types"
)

var hundred = decimal.NewFromInt(100)

// Line is one raw cart entry before pricing.
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Input carries everything the engine needs. Products and discounts are
// already fetched and filtered by the caller; the engine never touches
// storage.
type Input struct {
	Now       time.Time
	Role      enums.UserRole
	Lines     []Line
	Products  map[uuid.UUID]models.Product
	Discounts []models.Discount
}

// PriceCart resolves discounts for every line and the order total. Lines
// whose product is missing or inactive are excluded from totals and reported
// as warnings rather than failing the whole cart.
func PriceCart(in Input) types.PricedCart {
	out := types.PricedCart{Items: make([]types.PricedCartItem, 0, len(in.Lines))}

	for _, line := range in.Lines {
		product, ok := in.Products[line.ProductID]
		if !ok {
			out.Warnings = append(out.Warnings, types.CartWarning{
				ProductID: line.ProductID,
				Message:   "product is no longer available",
			})
			continue
		}
		if !product.IsActive {
			out.Warnings = append(out.Warnings, types.CartWarning{
				ProductID: line.ProductID,
				Message:   "product is inactive",
			})
			continue
		}
		if line.Quantity <= 0 {
			continue
		}

		item := priceLine(in, line, product)
		out.Items = append(out.Items, item)
		out.TotalOriginalPrice += item.UnitPrice * int64(item.Quantity)
		out.FinalTotalPrice += item.LineTotal
	}

	applyOrderDiscount(in, &out)
	out.TotalDiscountAmount = out.TotalOriginalPrice - out.FinalTotalPrice
	return out
}

func priceLine(in Input, line Line, product models.Product) types.PricedCartItem {
	item := types.PricedCartItem{
		ProductID:           product.ID,
		ProductName:         product.Name,
		Quantity:            line.Quantity,
		UnitPrice:           product.Price,
		DiscountedUnitPrice: product.Price,
	}

	lineOriginal := product.Price * int64(line.Quantity)
	best := selectBestDiscount(in, func(d models.Discount) bool {
		return matchesLine(d, product)
	}, line.Quantity, lineOriginal)

	if best != nil {
		item.DiscountedUnitPrice = applyPercent(product.Price, best.Percent)
		item.AppliedDiscount = best
	}

	item.LineTotal = item.DiscountedUnitPrice * int64(line.Quantity)
	item.Savings = lineOriginal - item.LineTotal
	return item
}

// applyOrderDiscount runs ORDER_TOTAL rules once against the aggregate that
// remains after line discounts. Tier thresholds see the total item count and
// the post-line-discount subtotal.
func applyOrderDiscount(in Input, out *types.PricedCart) {
	if out.FinalTotalPrice <= 0 {
		return
	}

	var totalQty int
	for _, item := range out.Items {
		totalQty += item.Quantity
	}

	best := selectBestDiscount(in, func(d models.Discount) bool {
		return d.TargetType == enums.DiscountTargetOrderTotal
	}, totalQty, out.FinalTotalPrice)
	if best == nil {
		return
	}

	discounted := applyPercent(out.FinalTotalPrice, best.Percent)
	out.OrderDiscount = best
	out.FinalTotalPrice = discounted
}

// selectBestDiscount returns the single highest effective percent among the
// candidates accepted by match. Competing discounts never stack.
func selectBestDiscount(in Input, match func(models.Discount) bool, qty int, amount int64) *types.AppliedDiscount {
	var best *types.AppliedDiscount
	for _, d := range in.Discounts {
		if !d.ActiveAt(in.Now) {
			continue
		}
		if d.Type == enums.DiscountTypeAgency && !roleGetsAgencyPricing(in.Role) {
			continue
		}
		if !match(d) {
			continue
		}
		percent, ok := effectivePercent(d, qty, amount)
		if !ok {
			continue
		}
		if best == nil || percent.GreaterThan(best.Percent) {
			best = &types.AppliedDiscount{
				DiscountID: d.ID,
				Name:       d.Name,
				Percent:    percent,
			}
		}
	}
	return best
}

func matchesLine(d models.Discount, product models.Product) bool {
	switch d.TargetType {
	case enums.DiscountTargetProduct:
		return d.TargetIDs.Contains(product.ID)
	case enums.DiscountTargetCategory:
		return d.TargetIDs.Contains(product.CategoryID)
	default:
		return false
	}
}

// effectivePercent resolves a discount to its usable percent: the best
// satisfied tier wins, otherwise the flat percent when present.
func effectivePercent(d models.Discount, qty int, amount int64) (decimal.Decimal, bool) {
	if tier := selectTier(d.Tiers, qty, amount); tier != nil {
		return clampPercent(tier.Percent), true
	}
	if d.DiscountPercent != nil {
		return clampPercent(*d.DiscountPercent), true
	}
	return decimal.Zero, false
}

// selectTier picks the satisfied tier with the highest threshold;
// tiers sharing a threshold resolve to the larger percent.
func selectTier(tiers []models.DiscountTier, qty int, amount int64) *models.DiscountTier {
	var selected *models.DiscountTier
	for _, tier := range tiers {
		var satisfied bool
		switch tier.ConditionType {
		case enums.TierConditionQuantity:
			satisfied = int64(qty) >= tier.MinValue
		case enums.TierConditionTotalPrice:
			satisfied = amount >= tier.MinValue
		}
		if !satisfied {
			continue
		}
		if selected == nil || tier.MinValue > selected.MinValue ||
			(tier.MinValue == selected.MinValue && tier.Percent.GreaterThan(selected.Percent)) {
			copy := tier
			selected = &copy
		}
	}
	return selected
}

func roleGetsAgencyPricing(role enums.UserRole) bool {
	return role == enums.UserRoleAgency || role == enums.UserRoleAdmin
}

// applyPercent discounts a whole-VND amount, rounding to the nearest dong.
func applyPercent(amount int64, percent decimal.Decimal) int64 {
	remaining := hundred.Sub(percent)
	discounted := decimal.NewFromInt(amount).Mul(remaining).Div(hundred)
	return discounted.Round(0).IntPart()
}

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}
