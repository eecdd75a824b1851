package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleProgram is a named umbrella over discounts sharing a campaign window.
// Discounts point at the program via Discount.ProgramID; the association here
// is loaded by query so there is no stored reverse list to drift.
type SaleProgram struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Name        string     `gorm:"column:name;not null;uniqueIndex:idx_sale_programs_name"`
	Description *string    `gorm:"column:description"`
	StartDate   time.Time  `gorm:"column:start_date;not null"`
	EndDate     *time.Time `gorm:"column:end_date"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	Discounts   []Discount `gorm:"foreignKey:ProgramID"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
