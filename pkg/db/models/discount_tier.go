package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paintmart/paintmart-backend/pkg/enums"
)

// DiscountTier grants a percent once a quantity or spend threshold is met.
type DiscountTier struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	DiscountID    uuid.UUID           `gorm:"column:discount_id;type:uuid;not null"`
	ConditionType enums.TierCondition `gorm:"column:condition_type;type:tier_condition;not null"`
	MinValue      int64               `gorm:"column:min_value;not null"`
	Percent       decimal.Decimal     `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
