package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/internal/catalog"
	"github.com/paintmart/paintmart-backend/internal/discounts"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	dbtypes "github.com/paintmart/paintmart-backend/pkg/db/types"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
)

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc  Service
	conn *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Category{}, &models.Product{},
		&models.Discount{}, &models.DiscountTier{},
		&models.Cart{}, &models.CartItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(
		NewRepository(conn),
		catalog.NewRepository(conn),
		discounts.NewRepository(conn),
		db.NewWithConn(conn),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.(*service).now = func() time.Time { return testNow }
	return &testEnv{svc: svc, conn: conn}
}

func (e *testEnv) seedProduct(t *testing.T, name string, price int64, stock int, active bool) *models.Product {
	t.Helper()
	category := &models.Category{ID: uuid.New(), Name: "cat-" + uuid.NewString()}
	if err := e.conn.Create(category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := &models.Product{
		ID:         uuid.New(),
		Name:       name,
		CategoryID: category.ID,
		Price:      price,
		Stock:      stock,
		IsActive:   active,
	}
	if err := e.conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (e *testEnv) seedProductDiscount(t *testing.T, name, percent string, productID uuid.UUID) {
	t.Helper()
	p := decimal.RequireFromString(percent)
	discount := &models.Discount{
		ID:              uuid.New(),
		Name:            name,
		Type:            enums.DiscountTypeSale,
		TargetType:      enums.DiscountTargetProduct,
		TargetIDs:       dbtypes.UUIDArray{productID},
		DiscountPercent: &p,
		IsActive:        true,
		StartSale:       testNow.Add(-time.Hour),
	}
	if err := e.conn.Create(discount).Error; err != nil {
		t.Fatalf("seed discount: %v", err)
	}
}

func userOwner() Owner {
	id := uuid.New()
	return Owner{UserID: &id}
}

func guestOwner() Owner {
	token := uuid.NewString()
	return Owner{GuestToken: &token}
}

func TestGetCartEmptyWithoutCreating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	snapshot, err := env.svc.GetCart(ctx, userOwner(), enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(snapshot.Items) != 0 || snapshot.FinalTotalPrice != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}

	var count int64
	if err := env.conn.Model(&models.Cart{}).Count(&count).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if count != 0 {
		t.Fatal("read must not create a cart row")
	}
}

func TestAddItemCreatesCartAndPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := userOwner()

	product := env.seedProduct(t, "Matte White 5L", 300000, 50, true)
	env.seedProductDiscount(t, "opening sale", "10", product.ID)

	snapshot, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, product.ID, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if snapshot.CartID == uuid.Nil {
		t.Fatal("expected cart id on snapshot")
	}
	if len(snapshot.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(snapshot.Items))
	}
	line := snapshot.Items[0]
	if line.DiscountedUnitPrice != 270000 {
		t.Fatalf("expected discounted price 270000, got %d", line.DiscountedUnitPrice)
	}
	if snapshot.FinalTotalPrice != 540000 {
		t.Fatalf("expected final total 540000, got %d", snapshot.FinalTotalPrice)
	}
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := userOwner()
	product := env.seedProduct(t, "Roller", 80000, 10, true)

	if _, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, product.ID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	snapshot, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, product.ID, 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if snapshot.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", snapshot.Items[0].Quantity)
	}
}

func TestAddItemRejectsOverstock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := userOwner()
	product := env.seedProduct(t, "Limited Primer", 100000, 3, true)

	if _, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, product.ID, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, product.ID, 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Retired Color", 100000, 5, false)

	_, err := env.svc.AddItem(context.Background(), userOwner(), enums.UserRoleCustomer, product.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateItemSetsQuantityAndZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := userOwner()
	product := env.seedProduct(t, "Gloss Red 1L", 120000, 20, true)

	if _, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, product.ID, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	snapshot, err := env.svc.UpdateItem(ctx, owner, enums.UserRoleCustomer, product.ID, 7)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if snapshot.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", snapshot.Items[0].Quantity)
	}

	snapshot, err = env.svc.UpdateItem(ctx, owner, enums.UserRoleCustomer, product.ID, 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(snapshot.Items) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(snapshot.Items))
	}
}

func TestRemoveItemReturnsRepricedCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := userOwner()

	keep := env.seedProduct(t, "Keep", 100000, 10, true)
	remove := env.seedProduct(t, "Remove", 50000, 10, true)

	if _, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, keep.ID, 1); err != nil {
		t.Fatalf("add keep: %v", err)
	}
	if _, err := env.svc.AddItem(ctx, owner, enums.UserRoleCustomer, remove.ID, 2); err != nil {
		t.Fatalf("add remove: %v", err)
	}

	snapshot, err := env.svc.RemoveItem(ctx, owner, enums.UserRoleCustomer, remove.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(snapshot.Items) != 1 || snapshot.Items[0].ProductID != keep.ID {
		t.Fatalf("unexpected items after removal: %+v", snapshot.Items)
	}
	if snapshot.FinalTotalPrice != 100000 {
		t.Fatalf("expected total 100000, got %d", snapshot.FinalTotalPrice)
	}
}

func TestGuestCartsAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.seedProduct(t, "Shared Product", 100000, 50, true)

	alice := guestOwner()
	bob := guestOwner()

	if _, err := env.svc.AddItem(ctx, alice, enums.UserRoleCustomer, product.ID, 1); err != nil {
		t.Fatalf("alice add: %v", err)
	}
	if _, err := env.svc.AddItem(ctx, bob, enums.UserRoleCustomer, product.ID, 3); err != nil {
		t.Fatalf("bob add: %v", err)
	}

	aliceCart, err := env.svc.GetCart(ctx, alice, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("alice get: %v", err)
	}
	bobCart, err := env.svc.GetCart(ctx, bob, enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("bob get: %v", err)
	}

	if aliceCart.CartID == bobCart.CartID {
		t.Fatal("guest carts must not collide")
	}
	if aliceCart.Items[0].Quantity != 1 || bobCart.Items[0].Quantity != 3 {
		t.Fatal("guest cart contents leaked between owners")
	}
}

func TestAgencyRoleSeesAgencyPricing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.seedProduct(t, "Contractor Bundle", 1000000, 50, true)

	p := decimal.RequireFromString("20")
	discount := &models.Discount{
		ID:              uuid.New(),
		Name:            "trade pricing",
		Type:            enums.DiscountTypeAgency,
		TargetType:      enums.DiscountTargetProduct,
		TargetIDs:       dbtypes.UUIDArray{product.ID},
		DiscountPercent: &p,
		IsActive:        true,
		StartSale:       testNow.Add(-time.Hour),
	}
	if err := env.conn.Create(discount).Error; err != nil {
		t.Fatalf("seed discount: %v", err)
	}

	customer := userOwner()
	snapshot, err := env.svc.AddItem(ctx, customer, enums.UserRoleCustomer, product.ID, 1)
	if err != nil {
		t.Fatalf("customer add: %v", err)
	}
	if snapshot.Items[0].AppliedDiscount != nil {
		t.Fatal("customer must not receive agency pricing")
	}

	agency := userOwner()
	snapshot, err = env.svc.AddItem(ctx, agency, enums.UserRoleAgency, product.ID, 1)
	if err != nil {
		t.Fatalf("agency add: %v", err)
	}
	if snapshot.Items[0].AppliedDiscount == nil || snapshot.Items[0].DiscountedUnitPrice != 800000 {
		t.Fatalf("agency pricing not applied: %+v", snapshot.Items[0])
	}
}

func TestOwnerValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.GetCart(context.Background(), Owner{}, enums.UserRoleCustomer)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
