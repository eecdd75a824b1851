package models

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceItem snapshots one priced line at checkout time.
type InvoiceItem struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID           uuid.UUID  `gorm:"column:invoice_id;type:uuid;not null;index:idx_invoice_items_invoice"`
	ProductID           *uuid.UUID `gorm:"column:product_id;type:uuid"`
	ProductName         string     `gorm:"column:product_name;not null"`
	Quantity            int        `gorm:"column:quantity;not null"`
	UnitPrice           int64      `gorm:"column:unit_price;not null"`
	DiscountedUnitPrice int64      `gorm:"column:discounted_unit_price;not null"`
	LineTotal           int64      `gorm:"column:line_total;not null"`
	AppliedDiscountName *string    `gorm:"column:applied_discount_name"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
}
