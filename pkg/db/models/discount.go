package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/paintmart/paintmart-backend/pkg/db/types"
	"github.com/paintmart/paintmart-backend/pkg/enums"
)

// Discount is a percentage price rule scoped to products, categories, or the
// order total. ProgramID is the single source of truth for sale program
// membership; the program side is resolved by query, never stored.
type Discount struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name            string               `gorm:"column:name;not null"`
	Type            enums.DiscountType   `gorm:"column:type;type:discount_type;not null;default:'sale'"`
	TargetType      enums.DiscountTarget `gorm:"column:target_type;type:discount_target;not null"`
	TargetIDs       dbtypes.UUIDArray    `gorm:"column:target_ids;type:uuid[];not null;default:'{}'"`
	DiscountPercent *decimal.Decimal     `gorm:"column:discount_percent;type:numeric(5,2)"`
	IsActive        bool                 `gorm:"column:is_active;not null;default:true"`
	StartSale       time.Time            `gorm:"column:start_sale;not null"`
	EndSale         *time.Time           `gorm:"column:end_sale"`
	ProgramID       *uuid.UUID           `gorm:"column:program_id;type:uuid"`
	Tiers           []DiscountTier       `gorm:"foreignKey:DiscountID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveAt reports whether the discount is enabled and inside its sale window.
func (d Discount) ActiveAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.StartSale) {
		return false
	}
	if d.EndSale != nil && now.After(*d.EndSale) {
		return false
	}
	return true
}
