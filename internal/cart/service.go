package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/internal/pricing"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/types"
)

// Service exposes cart reads and mutations. Every call returns the freshly
// re-priced snapshot so clients never cache stale prices.
type Service interface {
	GetCart(ctx context.Context, owner Owner, role enums.UserRole) (*types.PricedCart, error)
	AddItem(ctx context.Context, owner Owner, role enums.UserRole, productID uuid.UUID, quantity int) (*types.PricedCart, error)
	UpdateItem(ctx context.Context, owner Owner, role enums.UserRole, productID uuid.UUID, quantity int) (*types.PricedCart, error)
	RemoveItem(ctx context.Context, owner Owner, role enums.UserRole, productID uuid.UUID) (*types.PricedCart, error)
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type discountSource interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Discount, error)
}

type service struct {
	repo      *Repository
	products  productLoader
	discounts discountSource
	dbClient  *db.Client
	now       func() time.Time
}

// NewService constructs a cart service.
func NewService(repo *Repository, products productLoader, discounts discountSource, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount source required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:      repo,
		products:  products,
		discounts: discounts,
		dbClient:  dbClient,
		now:       time.Now,
	}, nil
}

// GetCart returns the priced snapshot of the owner's active cart. Owners
// without a cart get an empty snapshot; no row is created on reads.
func (s *service) GetCart(ctx context.Context, owner Owner, role enums.UserRole) (*types.PricedCart, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &types.PricedCart{Items: []types.PricedCartItem{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return s.price(ctx, cart, role)
}

// AddItem increments the line for the product, creating the cart and the line
// as needed.
func (s *service) AddItem(ctx context.Context, owner Owner, role enums.UserRole, productID uuid.UUID, quantity int) (*types.PricedCart, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindItem(ctx, cart.ID, productID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
		}

		newQty := quantity
		if existing != nil {
			newQty += existing.Quantity
		}
		if newQty > product.Stock {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", product.Name))
		}

		if existing != nil {
			return repo.UpdateItemQuantity(ctx, existing.ID, newQty)
		}
		return repo.CreateItem(ctx, &models.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  newQty,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, owner, role)
}

// UpdateItem sets the line quantity outright. Zero removes the line.
func (s *service) UpdateItem(ctx context.Context, owner Owner, role enums.UserRole, productID uuid.UUID, quantity int) (*types.PricedCart, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, owner, role, productID)
	}

	product, err := s.loadSellableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if quantity > product.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for %q", product.Name))
	}

	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}
	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
	}

	return s.reload(ctx, owner, role)
}

// RemoveItem drops the line for the product.
func (s *service) RemoveItem(ctx context.Context, owner Owner, role enums.UserRole, productID uuid.UUID) (*types.PricedCart, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	if err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
	}

	return s.reload(ctx, owner, role)
}

func (s *service) getOrCreateCart(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	created, err := s.repo.Create(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return created, nil
}

func (s *service) loadSellableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	return product, nil
}

func (s *service) reload(ctx context.Context, owner Owner, role enums.UserRole) (*types.PricedCart, error) {
	cart, err := s.repo.FindActiveByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading cart")
	}
	return s.price(ctx, cart, role)
}

// price assembles the pricing engine input for the cart.
func (s *service) price(ctx context.Context, cart *models.Cart, role enums.UserRole) (*types.PricedCart, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
		lines = append(lines, pricing.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart products")
	}
	active, err := s.discounts.ListActive(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading active discounts")
	}

	priced := pricing.PriceCart(pricing.Input{
		Now:       s.now(),
		Role:      role,
		Lines:     lines,
		Products:  products,
		Discounts: active,
	})
	priced.CartID = cart.ID
	return &priced, nil
}
