package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
)

// Repository owns discount and tier persistence.
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

// Create inserts the discount with its tiers.
func (r *Repository) Create(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

// Update persists discount columns, excluding tiers.
func (r *Repository) Update(ctx context.Context, discount *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Omit("Tiers").Save(discount).Error; err != nil {
		return nil, err
	}
	return discount, nil
}

// Delete removes the discount; tier rows cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("discount_id = ?", id).Delete(&models.DiscountTier{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Discount{}, "id = ?", id).Error
}

// FindByID loads the discount with its tiers.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).Preload("Tiers").First(&discount, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &discount, nil
}

// List returns a page of discounts with tiers preloaded.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Discount, int64, error) {
	params = pagination.Normalize(params)
	query := r.db.WithContext(ctx).Model(&models.Discount{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var discounts []models.Discount
	if err := query.
		Preload("Tiers").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// ListActive returns enabled discounts whose sale window covers now, tiers
// preloaded. This is the working set handed to the pricing engine.
func (r *Repository) ListActive(ctx context.Context, now time.Time) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.WithContext(ctx).
		Preload("Tiers").
		Where("is_active = ?", true).
		Where("start_sale <= ?", now).
		Where("end_sale IS NULL OR end_sale >= ?", now).
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// ReplaceTiers swaps the full tier set for the discount.
func (r *Repository) ReplaceTiers(ctx context.Context, discountID uuid.UUID, tiers []models.DiscountTier) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("discount_id = ?", discountID).Delete(&models.DiscountTier{}).Error; err != nil {
		return err
	}
	if len(tiers) == 0 {
		return nil
	}
	for i := range tiers {
		tiers[i].DiscountID = discountID
	}
	return tx.Create(&tiers).Error
}

// ListByProgram returns discounts attached to the sale program.
func (r *Repository) ListByProgram(ctx context.Context, programID uuid.UUID) ([]models.Discount, error) {
	var discounts []models.Discount
	if err := r.db.WithContext(ctx).
		Preload("Tiers").
		Where("program_id = ?", programID).
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// SetProgram attaches the given discounts to a program.
func (r *Repository) SetProgram(ctx context.Context, discountIDs []uuid.UUID, programID uuid.UUID) error {
	if len(discountIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id IN ?", discountIDs).
		Update("program_id", programID).Error
}

// ClearProgram detaches the given discounts from whatever program they are in.
func (r *Repository) ClearProgram(ctx context.Context, discountIDs []uuid.UUID) error {
	if len(discountIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("id IN ?", discountIDs).
		Update("program_id", nil).Error
}

// DetachAllFromProgram clears program membership for every discount in the program.
func (r *Repository) DetachAllFromProgram(ctx context.Context, programID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("program_id = ?", programID).
		Update("program_id", nil).Error
}

// DeactivateByProgram disables every discount in the program.
func (r *Repository) DeactivateByProgram(ctx context.Context, programID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Discount{}).
		Where("program_id = ?", programID).
		Update("is_active", false).Error
}

// CountExisting reports how many of the given discount ids exist.
func (r *Repository) CountExisting(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Discount{}).Where("id IN ?", ids).Count(&count).Error
	return count, err
}
