package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
)

// Repository owns invoice persistence.
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

// Create inserts the invoice with its item snapshot rows.
func (r *Repository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if err := r.db.WithContext(ctx).Create(invoice).Error; err != nil {
		return nil, err
	}
	return invoice, nil
}

// FindByID loads the invoice with items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByUser returns the user's invoices, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Invoice, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Invoice{}).Where("user_id = ?", userID), params)
}

// List returns every invoice, optionally filtered by order status.
func (r *Repository) List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) ([]models.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	if status != nil {
		query = query.Where("order_status = ?", *status)
	}
	return r.list(ctx, query, params)
}

func (r *Repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) ([]models.Invoice, int64, error) {
	params = pagination.Normalize(params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []models.Invoice
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// UpdateStatus persists order/payment status columns.
func (r *Repository) UpdateStatus(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"order_status":        invoice.OrderStatus,
			"payment_status":      invoice.PaymentStatus,
			"shipping_started_at": invoice.ShippingStartedAt,
		}).Error
}

// ListShippingSince returns invoices still marked shipping whose shipment
// started at or before the cutoff. Used by the auto-completion job.
func (r *Repository) ListShippingSince(ctx context.Context, cutoff time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.WithContext(ctx).
		Where("order_status = ?", enums.OrderStatusShipping).
		Where("shipping_started_at IS NOT NULL AND shipping_started_at <= ?", cutoff).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
