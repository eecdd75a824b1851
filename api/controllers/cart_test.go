package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paintmart/paintmart-backend/api/middleware"
	cartsvc "github.com/paintmart/paintmart-backend/internal/cart"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	"github.com/paintmart/paintmart-backend/pkg/types"
)

type stubCartService struct {
	owner    cartsvc.Owner
	product  uuid.UUID
	quantity int
}

func (s *stubCartService) GetCart(_ context.Context, owner cartsvc.Owner, _ enums.UserRole) (*types.PricedCart, error) {
	s.owner = owner
	return &types.PricedCart{}, nil
}

func (s *stubCartService) AddItem(_ context.Context, owner cartsvc.Owner, _ enums.UserRole, productID uuid.UUID, quantity int) (*types.PricedCart, error) {
	s.owner = owner
	s.product = productID
	s.quantity = quantity
	return &types.PricedCart{}, nil
}

func (s *stubCartService) UpdateItem(_ context.Context, owner cartsvc.Owner, _ enums.UserRole, productID uuid.UUID, quantity int) (*types.PricedCart, error) {
	s.owner = owner
	s.product = productID
	s.quantity = quantity
	return &types.PricedCart{}, nil
}

func (s *stubCartService) RemoveItem(_ context.Context, owner cartsvc.Owner, _ enums.UserRole, productID uuid.UUID) (*types.PricedCart, error) {
	s.owner = owner
	s.product = productID
	return &types.PricedCart{}, nil
}

func TestGetCart(t *testing.T) {
	logg := testLogger()

	t.Run("no owner", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		rec := httptest.NewRecorder()
		GetCart(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user or guest token, got %d", rec.Code)
		}
	})

	t.Run("authenticated user wins over guest token", func(t *testing.T) {
		userID := uuid.New()
		ctx := middleware.WithUserID(context.Background(), userID)
		ctx = middleware.WithGuestToken(ctx, "guest-abc")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)
		stub := &stubCartService{}
		rec := httptest.NewRecorder()
		GetCart(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.owner.UserID == nil || *stub.owner.UserID != userID {
			t.Fatalf("expected user owner, got %+v", stub.owner)
		}
		if stub.owner.GuestToken != nil {
			t.Fatalf("expected guest token ignored for authed user")
		}
	})

	t.Run("guest token", func(t *testing.T) {
		ctx := middleware.WithGuestToken(context.Background(), "guest-abc")
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil).WithContext(ctx)
		stub := &stubCartService{}
		rec := httptest.NewRecorder()
		GetCart(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.owner.GuestToken == nil || *stub.owner.GuestToken != "guest-abc" {
			t.Fatalf("expected guest owner, got %+v", stub.owner)
		}
	})
}

func TestCartAddItem(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("ok", func(t *testing.T) {
		ctx := middleware.WithGuestToken(context.Background(), "guest-abc")
		body := `{"product_id":"` + productID.String() + `","quantity":3}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)).WithContext(ctx)
		stub := &stubCartService{}
		rec := httptest.NewRecorder()
		CartAddItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.product != productID || stub.quantity != 3 {
			t.Fatalf("expected product %s qty 3, got %s qty %d", productID, stub.product, stub.quantity)
		}
	})

	t.Run("zero quantity rejected", func(t *testing.T) {
		ctx := middleware.WithGuestToken(context.Background(), "guest-abc")
		body := `{"product_id":"` + productID.String() + `","quantity":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		CartAddItem(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
		}
	})

	t.Run("bad product id", func(t *testing.T) {
		ctx := middleware.WithGuestToken(context.Background(), "guest-abc")
		body := `{"product_id":"not-a-uuid","quantity":1}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		CartAddItem(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid product id, got %d", rec.Code)
		}
	})
}

func TestCartUpdateItem(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("zero quantity allowed", func(t *testing.T) {
		ctx := middleware.WithGuestToken(context.Background(), "guest-abc")
		body := `{"product_id":"` + productID.String() + `","quantity":0}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items", strings.NewReader(body)).WithContext(ctx)
		stub := &stubCartService{quantity: -1}
		rec := httptest.NewRecorder()
		CartUpdateItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.quantity != 0 {
			t.Fatalf("expected quantity 0 forwarded, got %d", stub.quantity)
		}
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		ctx := middleware.WithGuestToken(context.Background(), "guest-abc")
		body := `{"product_id":"` + productID.String() + `","quantity":-1}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/cart/items", strings.NewReader(body)).WithContext(ctx)
		rec := httptest.NewRecorder()
		CartUpdateItem(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for negative quantity, got %d", rec.Code)
		}
	})
}

func TestCartRemoveItem(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("ok", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", productID.String())
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
		ctx = middleware.WithGuestToken(ctx, "guest-abc")
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+productID.String(), nil).WithContext(ctx)
		stub := &stubCartService{}
		rec := httptest.NewRecorder()
		CartRemoveItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.product != productID {
			t.Fatalf("expected remove for %s, got %s", productID, stub.product)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", "not-a-uuid")
		ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
		ctx = middleware.WithGuestToken(ctx, "guest-abc")
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/not-a-uuid", nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		CartRemoveItem(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
