package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paintmart/paintmart-backend/pkg/enums"
)

// Invoice is the immutable checkout snapshot. Item prices are copied at
// creation so later catalog or discount changes never alter history.
type Invoice struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID            *uuid.UUID          `gorm:"column:user_id;type:uuid;index:idx_invoices_user"`
	RecipientName     string              `gorm:"column:recipient_name;not null"`
	RecipientPhone    string              `gorm:"column:recipient_phone;not null"`
	ShippingAddress   string              `gorm:"column:shipping_address;not null"`
	PaymentMethod     enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	ShippingFee       int64               `gorm:"column:shipping_fee;not null;default:0"`
	SubtotalAmount    int64               `gorm:"column:subtotal_amount;not null"`
	DiscountAmount    int64               `gorm:"column:discount_amount;not null;default:0"`
	TotalAmount       int64               `gorm:"column:total_amount;not null"`
	OrderStatus       enums.OrderStatus   `gorm:"column:order_status;type:order_status;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	ShippingStartedAt *time.Time          `gorm:"column:shipping_started_at"`
	Items             []InvoiceItem       `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
