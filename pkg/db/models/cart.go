package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paintmart/paintmart-backend/pkg/enums"
)

// Cart holds raw line items for a registered user or a guest token. Exactly
// one of UserID and GuestToken is set.
type Cart struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID     *uuid.UUID       `gorm:"column:user_id;type:uuid;index:idx_carts_user"`
	GuestToken *string          `gorm:"column:guest_token;index:idx_carts_guest"`
	Status     enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	Items      []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
