package invoices

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
)

// StockReservation asks for qty units of one product.
type StockReservation struct {
	ProductID   uuid.UUID
	ProductName string
	Qty         int
}

// ReserveStock decrements stock and increments the sold counter for each
// request with a single guarded UPDATE per product. The stock >= qty
// predicate closes the window between checking and decrementing; a zero
// RowsAffected means another checkout got there first. Callers run this
// inside the checkout transaction so any failure rolls everything back.
func ReserveStock(ctx context.Context, tx *gorm.DB, requests []StockReservation) error {
	for _, req := range requests {
		if req.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "reservation qty must be positive")
		}

		result := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ? AND stock >= ?", req.ProductID, req.Qty).
			Updates(map[string]any{
				"stock": gorm.Expr("stock - ?", req.Qty),
				"sold":  gorm.Expr("sold + ?", req.Qty),
			})
		if result.Error != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, result.Error, "reserving stock")
		}
		if result.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", req.ProductName))
		}
	}
	return nil
}

// ReleaseStock returns previously reserved units, used when an order is
// canceled before fulfillment.
func ReleaseStock(ctx context.Context, tx *gorm.DB, requests []StockReservation) error {
	for _, req := range requests {
		if req.Qty <= 0 {
			continue
		}
		if err := tx.WithContext(ctx).
			Model(&models.Product{}).
			Where("id = ?", req.ProductID).
			Updates(map[string]any{
				"stock": gorm.Expr("stock + ?", req.Qty),
				"sold":  gorm.Expr("sold - ?", req.Qty),
			}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "releasing stock")
		}
	}
	return nil
}
