package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
)

// Owner identifies who a cart belongs to: a registered user or a guest token.
// Exactly one of the two is set.
type Owner struct {
	UserID     *uuid.UUID
	GuestToken *string
}

// Valid reports whether exactly one owner handle is present.
func (o Owner) Valid() bool {
	return (o.UserID != nil) != (o.GuestToken != nil && *o.GuestToken != "")
}

// Repository owns cart persistence.
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

func (r *Repository) ownerScope(query *gorm.DB, owner Owner) *gorm.DB {
	if owner.UserID != nil {
		return query.Where("user_id = ?", *owner.UserID)
	}
	return query.Where("guest_token = ?", *owner.GuestToken)
}

// FindActiveByOwner loads the owner's active cart with items.
func (r *Repository) FindActiveByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	var cart models.Cart
	query := r.db.WithContext(ctx).Preload("Items").Where("status = ?", enums.CartStatusActive)
	if err := r.ownerScope(query, owner).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create inserts a fresh active cart for the owner.
func (r *Repository) Create(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart := &models.Cart{
		ID:         uuid.New(),
		UserID:     owner.UserID,
		GuestToken: owner.GuestToken,
		Status:     enums.CartStatusActive,
	}
	if err := r.db.WithContext(ctx).Omit("Items").Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// FindItem loads one cart line by product.
func (r *Repository) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity sets the quantity on an existing line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes a line by product.
func (r *Repository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// DeleteItems clears every line in the cart.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// MarkConverted flips the cart out of the active state at checkout.
func (r *Repository) MarkConverted(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("status", enums.CartStatusConverted).Error
}
