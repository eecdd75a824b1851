package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	dbtypes "github.com/paintmart/paintmart-backend/pkg/db/types"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
)

// Service exposes discount management.
type Service interface {
	Create(ctx context.Context, input DiscountInput) (*models.Discount, error)
	Update(ctx context.Context, discountID uuid.UUID, input DiscountInput) (*models.Discount, error)
	Delete(ctx context.Context, discountID uuid.UUID) error
	Get(ctx context.Context, discountID uuid.UUID) (*models.Discount, error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Discount], error)
	ListActive(ctx context.Context, now time.Time) ([]models.Discount, error)
}

// TierInput defines one threshold of a tiered discount.
type TierInput struct {
	ConditionType enums.TierCondition
	MinValue      int64
	Percent       decimal.Decimal
}

// DiscountInput is the full create/replace payload. Update replaces the tier
// set wholesale rather than patching individual tiers.
type DiscountInput struct {
	Name            string
	Type            enums.DiscountType
	TargetType      enums.DiscountTarget
	TargetIDs       []uuid.UUID
	DiscountPercent *decimal.Decimal
	IsActive        bool
	StartSale       time.Time
	EndSale         *time.Time
	Tiers           []TierInput
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a discount service.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Create validates and inserts a discount with its tiers.
func (s *service) Create(ctx context.Context, input DiscountInput) (*models.Discount, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	discount := buildDiscount(input)
	created, err := s.repo.Create(ctx, discount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating discount")
	}
	return created, nil
}

// Update replaces the discount fields and its whole tier set in one
// transaction.
func (s *service) Update(ctx context.Context, discountID uuid.UUID, input DiscountInput) (*models.Discount, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, discountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading discount")
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing.Name = strings.TrimSpace(input.Name)
		existing.Type = input.Type
		existing.TargetType = input.TargetType
		existing.TargetIDs = dbtypes.UUIDArray(input.TargetIDs)
		existing.DiscountPercent = input.DiscountPercent
		existing.IsActive = input.IsActive
		existing.StartSale = input.StartSale
		existing.EndSale = input.EndSale
		existing.Tiers = nil

		if _, err := repo.Update(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating discount")
		}
		if err := repo.ReplaceTiers(ctx, discountID, buildTiers(input.Tiers)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing tiers")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, discountID)
}

// Delete hard-deletes the discount and its tiers in one transaction.
func (s *service) Delete(ctx context.Context, discountID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, discountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading discount")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, discountID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting discount")
		}
		return nil
	})
}

// Get loads a single discount with tiers.
func (s *service) Get(ctx context.Context, discountID uuid.UUID) (*models.Discount, error) {
	discount, err := s.repo.FindByID(ctx, discountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading discount")
	}
	return discount, nil
}

// List returns a page of discounts.
func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.Discount], error) {
	discounts, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing discounts")
	}
	page := pagination.NewPage(discounts, params, total)
	return &page, nil
}

// ListActive exposes the pricing working set.
func (s *service) ListActive(ctx context.Context, now time.Time) ([]models.Discount, error) {
	discounts, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing active discounts")
	}
	return discounts, nil
}

func buildDiscount(input DiscountInput) *models.Discount {
	return &models.Discount{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(input.Name),
		Type:            input.Type,
		TargetType:      input.TargetType,
		TargetIDs:       dbtypes.UUIDArray(input.TargetIDs),
		DiscountPercent: input.DiscountPercent,
		IsActive:        input.IsActive,
		StartSale:       input.StartSale,
		EndSale:         input.EndSale,
		Tiers:           buildTiers(input.Tiers),
	}
}

func buildTiers(inputs []TierInput) []models.DiscountTier {
	if len(inputs) == 0 {
		return nil
	}
	tiers := make([]models.DiscountTier, 0, len(inputs))
	for _, in := range inputs {
		tiers = append(tiers, models.DiscountTier{
			ID:            uuid.New(),
			ConditionType: in.ConditionType,
			MinValue:      in.MinValue,
			Percent:       in.Percent,
		})
	}
	return tiers
}

func validateInput(input DiscountInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount name is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	if !input.TargetType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid discount target")
	}
	if input.TargetType != enums.DiscountTargetOrderTotal && len(input.TargetIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "target_ids are required for product and category discounts")
	}
	if input.StartSale.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start_sale is required")
	}
	if input.EndSale != nil && !input.EndSale.After(input.StartSale) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_sale must be after start_sale")
	}
	if input.DiscountPercent == nil && len(input.Tiers) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "either discount_percent or tiers are required")
	}
	if input.DiscountPercent != nil {
		if err := validatePercent(*input.DiscountPercent); err != nil {
			return err
		}
	}

	seen := map[string]struct{}{}
	for _, tier := range input.Tiers {
		if !tier.ConditionType.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid tier condition type")
		}
		if tier.MinValue < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "tier min_value cannot be negative")
		}
		if err := validatePercent(tier.Percent); err != nil {
			return err
		}
		key := fmt.Sprintf("%s:%d", tier.ConditionType, tier.MinValue)
		if _, dup := seen[key]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate tier threshold")
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validatePercent(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
	}
	return nil
}
