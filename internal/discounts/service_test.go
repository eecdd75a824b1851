package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:discounts_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Discount{}, &models.DiscountTier{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *Repository, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewWithConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, conn
}

func percentPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func validInput() DiscountInput {
	return DiscountInput{
		Name:            "spring paint sale",
		Type:            enums.DiscountTypeSale,
		TargetType:      enums.DiscountTargetProduct,
		TargetIDs:       []uuid.UUID{uuid.New()},
		DiscountPercent: percentPtr("15"),
		IsActive:        true,
		StartSale:       testNow,
	}
}

func TestCreateDiscountValidations(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*DiscountInput)
	}{
		{"missingName", func(in *DiscountInput) { in.Name = " " }},
		{"badType", func(in *DiscountInput) { in.Type = "flash" }},
		{"badTarget", func(in *DiscountInput) { in.TargetType = "store" }},
		{"emptyTargets", func(in *DiscountInput) { in.TargetIDs = nil }},
		{"zeroStart", func(in *DiscountInput) { in.StartSale = time.Time{} }},
		{"endBeforeStart", func(in *DiscountInput) {
			end := in.StartSale.Add(-time.Hour)
			in.EndSale = &end
		}},
		{"noPercentNoTiers", func(in *DiscountInput) { in.DiscountPercent = nil }},
		{"percentOver100", func(in *DiscountInput) { in.DiscountPercent = percentPtr("101") }},
		{"duplicateTierThreshold", func(in *DiscountInput) {
			in.Tiers = []TierInput{
				{ConditionType: enums.TierConditionQuantity, MinValue: 5, Percent: decimal.RequireFromString("5")},
				{ConditionType: enums.TierConditionQuantity, MinValue: 5, Percent: decimal.RequireFromString("10")},
			}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(ctx, input)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateDiscountWithTiers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	input := validInput()
	input.Tiers = []TierInput{
		{ConditionType: enums.TierConditionQuantity, MinValue: 5, Percent: decimal.RequireFromString("10")},
		{ConditionType: enums.TierConditionQuantity, MinValue: 10, Percent: decimal.RequireFromString("20")},
	}

	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	loaded, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(loaded.Tiers))
	}
}

func TestUpdateReplacesTierSet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	input := validInput()
	input.Tiers = []TierInput{
		{ConditionType: enums.TierConditionQuantity, MinValue: 5, Percent: decimal.RequireFromString("10")},
		{ConditionType: enums.TierConditionQuantity, MinValue: 10, Percent: decimal.RequireFromString("20")},
	}
	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	input.Name = "renamed sale"
	input.Tiers = []TierInput{
		{ConditionType: enums.TierConditionTotalPrice, MinValue: 1000000, Percent: decimal.RequireFromString("25")},
	}
	updated, err := svc.Update(ctx, created.ID, input)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "renamed sale" {
		t.Fatalf("expected renamed discount, got %q", updated.Name)
	}
	if len(updated.Tiers) != 1 {
		t.Fatalf("expected tier set replaced, got %d tiers", len(updated.Tiers))
	}
	if updated.Tiers[0].ConditionType != enums.TierConditionTotalPrice {
		t.Fatalf("unexpected tier condition %s", updated.Tiers[0].ConditionType)
	}
}

func TestDeleteRemovesTiers(t *testing.T) {
	svc, _, conn := newTestService(t)
	ctx := context.Background()

	input := validInput()
	input.Tiers = []TierInput{
		{ConditionType: enums.TierConditionQuantity, MinValue: 3, Percent: decimal.RequireFromString("5")},
	}
	created, err := svc.Create(ctx, input)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var tierCount int64
	if err := conn.Model(&models.DiscountTier{}).Where("discount_id = ?", created.ID).Count(&tierCount).Error; err != nil {
		t.Fatalf("count tiers: %v", err)
	}
	if tierCount != 0 {
		t.Fatalf("expected tiers cascaded, found %d", tierCount)
	}

	_, err = svc.Get(ctx, created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteUnknownDiscount(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.Delete(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListActiveFiltersWindowAndFlag(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	mustSeed := func(name string, active bool, start time.Time, end *time.Time) {
		t.Helper()
		_, err := repo.Create(ctx, &models.Discount{
			ID:              uuid.New(),
			Name:            name,
			Type:            enums.DiscountTypeSale,
			TargetType:      enums.DiscountTargetOrderTotal,
			DiscountPercent: percentPtr("10"),
			IsActive:        active,
			StartSale:       start,
			EndSale:         end,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	past := testNow.Add(-48 * time.Hour)
	ended := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	mustSeed("live", true, past, &future)
	mustSeed("open-ended", true, past, nil)
	mustSeed("ended", true, past, &ended)
	mustSeed("not-started", true, future, nil)
	mustSeed("disabled", false, past, nil)

	active, err := svc.ListActive(ctx, testNow)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		names := make([]string, 0, len(active))
		for _, d := range active {
			names = append(names, d.Name)
		}
		t.Fatalf("expected 2 active discounts, got %v", names)
	}
}

func TestOrderTotalDiscountNeedsNoTargets(t *testing.T) {
	svc, _, _ := newTestService(t)
	input := validInput()
	input.TargetType = enums.DiscountTargetOrderTotal
	input.TargetIDs = nil

	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("order_total discount should not need target_ids: %v", err)
	}
}
