package saleprograms

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
)

// Repository owns sale program persistence. Discount membership is stored on
// the discount side only (discounts.program_id).
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the program.
func (r *Repository) Create(ctx context.Context, program *models.SaleProgram) (*models.SaleProgram, error) {
	if err := r.db.WithContext(ctx).Omit("Discounts").Create(program).Error; err != nil {
		return nil, err
	}
	return program, nil
}

// Update persists program columns.
func (r *Repository) Update(ctx context.Context, program *models.SaleProgram) (*models.SaleProgram, error) {
	if err := r.db.WithContext(ctx).Omit("Discounts").Save(program).Error; err != nil {
		return nil, err
	}
	return program, nil
}

// Delete removes the program row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.SaleProgram{}, "id = ?", id).Error
}

// FindByID loads the program with its member discounts.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SaleProgram, error) {
	var program models.SaleProgram
	if err := r.db.WithContext(ctx).
		Preload("Discounts").
		Preload("Discounts.Tiers").
		First(&program, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &program, nil
}

// ListExpiredActive returns active programs whose end date has passed.
func (r *Repository) ListExpiredActive(ctx context.Context, now time.Time) ([]models.SaleProgram, error) {
	var programs []models.SaleProgram
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("end_date IS NOT NULL AND end_date < ?", now).
		Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

// List returns a page of programs with discounts preloaded.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.SaleProgram, int64, error) {
	params = pagination.Normalize(params)
	query := r.db.WithContext(ctx).Model(&models.SaleProgram{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var programs []models.SaleProgram
	if err := query.
		Preload("Discounts").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&programs).Error; err != nil {
		return nil, 0, err
	}
	return programs, total, nil
}
