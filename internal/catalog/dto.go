package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
)

// ProductDTO is the public product shape returned by the API.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	Brand       *string      `json:"brand,omitempty"`
	ImageURL    *string      `json:"image_url,omitempty"`
	CategoryID  uuid.UUID    `json:"category_id"`
	Category    *CategoryDTO `json:"category,omitempty"`
	Price       int64        `json:"price"`
	Stock       int          `json:"stock"`
	Sold        int          `json:"sold"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CategoryDTO is the public category shape.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Brand:       product.Brand,
		ImageURL:    product.ImageURL,
		CategoryID:  product.CategoryID,
		Price:       product.Price,
		Stock:       product.Stock,
		Sold:        product.Sold,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Category != nil {
		dto.Category = toCategoryDTO(product.Category)
	}
	return dto
}

func toCategoryDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	}
}
