package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paintmart/paintmart-backend/api/middleware"
	"github.com/paintmart/paintmart-backend/internal/auth"
	"github.com/paintmart/paintmart-backend/internal/cart"
	"github.com/paintmart/paintmart-backend/internal/catalog"
	"github.com/paintmart/paintmart-backend/internal/discounts"
	"github.com/paintmart/paintmart-backend/internal/invoices"
	"github.com/paintmart/paintmart-backend/internal/saleprograms"
	"github.com/paintmart/paintmart-backend/internal/users"
	pkgauth "github.com/paintmart/paintmart-backend/pkg/auth"
	"github.com/paintmart/paintmart-backend/pkg/config"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	"github.com/paintmart/paintmart-backend/pkg/logger"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
	"github.com/paintmart/paintmart-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Register(context.Context, auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{AccessToken: "token"}, nil
}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{AccessToken: "token"}, nil
}

func (stubAuthService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) CreateProduct(context.Context, catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) UpdateProduct(context.Context, uuid.UUID, catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) DeleteProduct(context.Context, uuid.UUID) error { return nil }

func (stubCatalogService) GetProduct(context.Context, uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{}, nil
}

func (stubCatalogService) ListProducts(_ context.Context, _ catalog.ProductListFilters, params pagination.Params) (*pagination.Page[catalog.ProductDTO], error) {
	page := pagination.NewPage([]catalog.ProductDTO{}, params, 0)
	return &page, nil
}

func (stubCatalogService) CreateCategory(context.Context, catalog.CategoryInput) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{}, nil
}

func (stubCatalogService) UpdateCategory(context.Context, uuid.UUID, catalog.CategoryInput) (*catalog.CategoryDTO, error) {
	return &catalog.CategoryDTO{}, nil
}

func (stubCatalogService) DeleteCategory(context.Context, uuid.UUID) error { return nil }

func (stubCatalogService) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	return []catalog.CategoryDTO{}, nil
}

type stubCartService struct{}

func (stubCartService) GetCart(context.Context, cart.Owner, enums.UserRole) (*types.PricedCart, error) {
	return &types.PricedCart{}, nil
}

func (stubCartService) AddItem(context.Context, cart.Owner, enums.UserRole, uuid.UUID, int) (*types.PricedCart, error) {
	return &types.PricedCart{}, nil
}

func (stubCartService) UpdateItem(context.Context, cart.Owner, enums.UserRole, uuid.UUID, int) (*types.PricedCart, error) {
	return &types.PricedCart{}, nil
}

func (stubCartService) RemoveItem(context.Context, cart.Owner, enums.UserRole, uuid.UUID) (*types.PricedCart, error) {
	return &types.PricedCart{}, nil
}

type stubDiscountService struct{}

func (stubDiscountService) Create(context.Context, discounts.DiscountInput) (*models.Discount, error) {
	return &models.Discount{}, nil
}

func (stubDiscountService) Update(context.Context, uuid.UUID, discounts.DiscountInput) (*models.Discount, error) {
	return &models.Discount{}, nil
}

func (stubDiscountService) Delete(context.Context, uuid.UUID) error { return nil }

func (stubDiscountService) Get(context.Context, uuid.UUID) (*models.Discount, error) {
	return &models.Discount{}, nil
}

func (stubDiscountService) List(_ context.Context, params pagination.Params) (*pagination.Page[models.Discount], error) {
	page := pagination.NewPage([]models.Discount{}, params, 0)
	return &page, nil
}

func (stubDiscountService) ListActive(context.Context, time.Time) ([]models.Discount, error) {
	return nil, nil
}

type stubProgramService struct{}

func (stubProgramService) Create(context.Context, saleprograms.ProgramInput) (*models.SaleProgram, error) {
	return &models.SaleProgram{}, nil
}

func (stubProgramService) Update(context.Context, uuid.UUID, saleprograms.ProgramInput) (*models.SaleProgram, error) {
	return &models.SaleProgram{}, nil
}

func (stubProgramService) SoftDelete(context.Context, uuid.UUID) error { return nil }

func (stubProgramService) HardDelete(context.Context, uuid.UUID) error { return nil }

func (stubProgramService) Get(context.Context, uuid.UUID) (*models.SaleProgram, error) {
	return &models.SaleProgram{}, nil
}

func (stubProgramService) List(_ context.Context, params pagination.Params) (*pagination.Page[models.SaleProgram], error) {
	page := pagination.NewPage([]models.SaleProgram{}, params, 0)
	return &page, nil
}

type stubInvoiceService struct{}

func (stubInvoiceService) Checkout(context.Context, cart.Owner, enums.UserRole, invoices.CheckoutInput) (*models.Invoice, error) {
	return &models.Invoice{}, nil
}

func (stubInvoiceService) Get(_ context.Context, invoiceID uuid.UUID, _ invoices.Viewer) (*models.Invoice, error) {
	return &models.Invoice{ID: invoiceID}, nil
}

func (stubInvoiceService) ListForUser(_ context.Context, _ uuid.UUID, params pagination.Params) (*pagination.Page[models.Invoice], error) {
	page := pagination.NewPage([]models.Invoice{}, params, 0)
	return &page, nil
}

func (stubInvoiceService) ListAll(_ context.Context, _ *enums.OrderStatus, params pagination.Params) (*pagination.Page[models.Invoice], error) {
	page := pagination.NewPage([]models.Invoice{}, params, 0)
	return &page, nil
}

func (stubInvoiceService) UpdateStatus(context.Context, uuid.UUID, invoices.StatusUpdateInput) (*models.Invoice, error) {
	return &models.Invoice{}, nil
}

func (stubInvoiceService) AutoCompleteShipped(context.Context, time.Duration) (int, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "paintmart", ExpirationMinutes: 30},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil,
		stubAuthService{},
		stubCatalogService{},
		stubCartService{},
		stubDiscountService{},
		stubProgramService{},
		stubInvoiceService{},
	)
}

func mintToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "user@example.com",
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPublicCatalogNeedsNoAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{"/api/v1/products", "/api/v1/categories"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, rec.Code)
		}
	}
}

func TestInvoiceHistoryRequiresAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAdminRoutesRejectCustomers(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintToken(t, cfg, enums.UserRoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", rec.Code)
	}
}

func TestAdminRoutesAllowAdmins(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	token := mintToken(t, cfg, enums.UserRoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartMintsGuestToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for anonymous cart, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(middleware.GuestTokenHeader) == "" {
		t.Fatalf("expected %s header minted for anonymous cart", middleware.GuestTokenHeader)
	}
}

func TestCartEchoesExistingGuestToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(middleware.GuestTokenHeader, "guest-abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(middleware.GuestTokenHeader); got != "guest-abc" {
		t.Fatalf("expected guest token echoed, got %q", got)
	}
}

func TestMeRequiresToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
