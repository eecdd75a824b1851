package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/internal/cart"
	"github.com/paintmart/paintmart-backend/internal/pricing"
	"github.com/paintmart/paintmart-backend/pkg/config"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
	"github.com/paintmart/paintmart-backend/pkg/types"
)

// Service finalizes carts into invoices and manages the invoice lifecycle.
type Service interface {
	Checkout(ctx context.Context, owner cart.Owner, role enums.UserRole, input CheckoutInput) (*models.Invoice, error)
	Get(ctx context.Context, invoiceID uuid.UUID, viewer Viewer) (*models.Invoice, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Invoice], error)
	ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*pagination.Page[models.Invoice], error)
	UpdateStatus(ctx context.Context, invoiceID uuid.UUID, input StatusUpdateInput) (*models.Invoice, error)
	AutoCompleteShipped(ctx context.Context, completeAfter time.Duration) (int, error)
}

// CheckoutInput is the validated finalize payload. Prices never appear here;
// the server reprices the cart itself.
type CheckoutInput struct {
	RecipientName   string
	RecipientPhone  string
	ShippingAddress string
	PaymentMethod   enums.PaymentMethod
}

// StatusUpdateInput mutates the order and/or payment status.
type StatusUpdateInput struct {
	OrderStatus   *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
}

// Viewer scopes invoice reads: admins see everything, everyone else only
// their own documents.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type productLoader interface {
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type discountSource interface {
	ListActive(ctx context.Context, now time.Time) ([]models.Discount, error)
}

type service struct {
	repo      *Repository
	cartRepo  *cart.Repository
	products  productLoader
	discounts discountSource
	dbClient  *db.Client
	checkout  config.CheckoutConfig
	now       func() time.Time
}

// NewService constructs the invoice service.
func NewService(
	repo *Repository,
	cartRepo *cart.Repository,
	products productLoader,
	discounts discountSource,
	dbClient *db.Client,
	checkout config.CheckoutConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	if cartRepo == nil {
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
		cartRepo:  cartRepo,
		products:  products,
		discounts: discounts,
		dbClient:  dbClient,
		checkout:  checkout,
		now:       time.Now,
	}, nil
}

// Checkout finalizes the owner's active cart: reprice server-side, reserve
// stock with guarded decrements, snapshot the priced lines into an invoice,
// and mark the cart converted. Everything runs in one transaction; a failed
// reservation aborts the whole checkout and names the product.
func (s *service) Checkout(ctx context.Context, owner cart.Owner, role enums.UserRole, input CheckoutInput) (*models.Invoice, error) {
	if err := validateCheckoutInput(input); err != nil {
		return nil, err
	}
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}

	var invoiceID uuid.UUID
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		activeCart, err := cartRepo.FindActiveByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(activeCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		priced, err := s.priceCart(ctx, activeCart, role)
		if err != nil {
			return err
		}
		if len(priced.Warnings) > 0 {
			w := priced.Warnings[0]
			return pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("cannot checkout: product %s %s", w.ProductID, w.Message))
		}

		reservations := make([]StockReservation, 0, len(priced.Items))
		for _, line := range priced.Items {
			reservations = append(reservations, StockReservation{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Qty:         line.Quantity,
			})
		}
		if err := ReserveStock(ctx, tx, reservations); err != nil {
			return err
		}

		invoice := s.buildInvoice(owner, priced, input)
		if _, err := repo.Create(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating invoice")
		}
		if err := cartRepo.MarkConverted(ctx, activeCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "converting cart")
		}

		invoiceID = invoice.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading invoice")
	}
	return invoice, nil
}

// Get loads the invoice with owner/admin access control.
func (s *service) Get(ctx context.Context, invoiceID uuid.UUID, viewer Viewer) (*models.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invoice")
	}
	if viewer.Role != enums.UserRoleAdmin {
		if invoice.UserID == nil || *invoice.UserID != viewer.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your invoice")
		}
	}
	return invoice, nil
}

// ListForUser returns the user's own invoices.
func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[models.Invoice], error) {
	invoices, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing invoices")
	}
	page := pagination.NewPage(invoices, params, total)
	return &page, nil
}

// ListAll is the admin listing, optionally filtered by status.
func (s *service) ListAll(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*pagination.Page[models.Invoice], error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	invoices, total, err := s.repo.List(ctx, status, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing invoices")
	}
	page := pagination.NewPage(invoices, params, total)
	return &page, nil
}

// UpdateStatus applies an admin status mutation, enforcing the lifecycle.
// Moving to shipping stamps ShippingStartedAt; canceling a not-yet-shipped
// order returns its reserved stock.
func (s *service) UpdateStatus(ctx context.Context, invoiceID uuid.UUID, input StatusUpdateInput) (*models.Invoice, error) {
	if input.OrderStatus == nil && input.PaymentStatus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}

	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading invoice")
	}

	var releaseStock bool
	if input.OrderStatus != nil {
		next := *input.OrderStatus
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		}
		if !orderTransitionAllowed(invoice.OrderStatus, next) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("cannot move order from %s to %s", invoice.OrderStatus, next))
		}
		if next == enums.OrderStatusShipping && invoice.ShippingStartedAt == nil {
			now := s.now()
			invoice.ShippingStartedAt = &now
		}
		releaseStock = next == enums.OrderStatusCanceled && invoice.OrderStatus != enums.OrderStatusCanceled
		invoice.OrderStatus = next
	}
	if input.PaymentStatus != nil {
		next := *input.PaymentStatus
		if !next.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
		}
		invoice.PaymentStatus = next
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if releaseStock {
			requests := make([]StockReservation, 0, len(invoice.Items))
			for _, item := range invoice.Items {
				if item.ProductID == nil {
					continue
				}
				requests = append(requests, StockReservation{
					ProductID: *item.ProductID,
					Qty:       item.Quantity,
				})
			}
			if err := ReleaseStock(ctx, tx, requests); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, invoice); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating invoice status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, invoiceID)
}

// AutoCompleteShipped marks invoices stuck in shipping as completed once the
// grace window has passed. Returns how many invoices were closed.
func (s *service) AutoCompleteShipped(ctx context.Context, completeAfter time.Duration) (int, error) {
	cutoff := s.now().Add(-completeAfter)
	stale, err := s.repo.ListShippingSince(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing shipped invoices")
	}

	completed := 0
	for i := range stale {
		invoice := stale[i]
		invoice.OrderStatus = enums.OrderStatusCompleted
		if err := s.repo.UpdateStatus(ctx, &invoice); err != nil {
			return completed, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "completing invoice")
		}
		completed++
	}
	return completed, nil
}

func (s *service) priceCart(ctx context.Context, activeCart *models.Cart, role enums.UserRole) (*types.PricedCart, error) {
	ids := make([]uuid.UUID, 0, len(activeCart.Items))
	lines := make([]pricing.Line, 0, len(activeCart.Items))
	for _, item := range activeCart.Items {
		ids = append(ids, item.ProductID)
		lines = append(lines, pricing.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	products, err := s.products.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading products")
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
	priced.CartID = activeCart.ID
	return &priced, nil
}

func (s *service) buildInvoice(owner cart.Owner, priced *types.PricedCart, input CheckoutInput) *models.Invoice {
	items := make([]models.InvoiceItem, 0, len(priced.Items))
	for _, line := range priced.Items {
		productID := line.ProductID
		item := models.InvoiceItem{
			ID:                  uuid.New(),
			ProductID:           &productID,
			ProductName:         line.ProductName,
			Quantity:            line.Quantity,
			UnitPrice:           line.UnitPrice,
			DiscountedUnitPrice: line.DiscountedUnitPrice,
			LineTotal:           line.LineTotal,
		}
		if line.AppliedDiscount != nil {
			name := line.AppliedDiscount.Name
			item.AppliedDiscountName = &name
		}
		items = append(items, item)
	}

	shippingFee := s.shippingFee(priced.FinalTotalPrice)
	return &models.Invoice{
		ID:              uuid.New(),
		UserID:          owner.UserID,
		RecipientName:   strings.TrimSpace(input.RecipientName),
		RecipientPhone:  strings.TrimSpace(input.RecipientPhone),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		PaymentMethod:   input.PaymentMethod,
		ShippingFee:     shippingFee,
		SubtotalAmount:  priced.TotalOriginalPrice,
		DiscountAmount:  priced.TotalDiscountAmount,
		TotalAmount:     priced.FinalTotalPrice + shippingFee,
		OrderStatus:     enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusUnpaid,
		Items:           items,
	}
}

func (s *service) shippingFee(orderTotal int64) int64 {
	if s.checkout.FreeShippingOver > 0 && orderTotal >= s.checkout.FreeShippingOver {
		return 0
	}
	return s.checkout.DefaultShippingFee
}

// orderTransitionAllowed encodes the lifecycle:
// pending -> confirmed | canceled
// confirmed -> shipping | canceled
// shipping -> completed
// completed / canceled are terminal.
func orderTransitionAllowed(from, to enums.OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case enums.OrderStatusPending:
		return to == enums.OrderStatusConfirmed || to == enums.OrderStatusCanceled
	case enums.OrderStatusConfirmed:
		return to == enums.OrderStatusShipping || to == enums.OrderStatusCanceled
	case enums.OrderStatusShipping:
		return to == enums.OrderStatusCompleted
	default:
		return false
	}
}

func validateCheckoutInput(input CheckoutInput) error {
	if strings.TrimSpace(input.RecipientName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient_name is required")
	}
	if strings.TrimSpace(input.RecipientPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient_phone is required")
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping_address is required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return nil
}
