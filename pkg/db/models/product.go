package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the canonical catalog listing. Prices are whole VND.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	Brand       *string   `gorm:"column:brand"`
	ImageURL    *string   `gorm:"column:image_url"`
	CategoryID  uuid.UUID `gorm:"column:category_id;type:uuid;not null"`
	Price       int64     `gorm:"column:price;not null"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	Sold        int       `gorm:"column:sold;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
