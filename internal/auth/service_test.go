package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/internal/users"
	pkgauth "github.com/paintmart/paintmart-backend/pkg/auth"
	"github.com/paintmart/paintmart-backend/pkg/config"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "paintmart",
	ExpirationMinutes: 30,
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(ServiceParams{
		DB:        db.NewWithConn(conn),
		UserRepo:  users.NewRepository(conn),
		JWTConfig: testJWTConfig,
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		FullName: "Tran Thi B",
		Email:    "buyer@example.com",
		Password: "paint-it-all",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if registered.User.Role != enums.UserRoleCustomer {
		t.Fatalf("new accounts must start as customers, got %s", registered.User.Role)
	}
	if registered.AccessToken == "" {
		t.Fatal("expected an access token on registration")
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "buyer@example.com", Password: "paint-it-all"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != registered.User.ID {
		t.Fatal("token subject mismatch")
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role claim, got %s", claims.Role)
	}
	if claims.Email != "buyer@example.com" {
		t.Fatalf("unexpected email claim %q", claims.Email)
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := registerRequest()
	req.Email = "  Buyer@Example.COM "
	resp, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User.Email != "buyer@example.com" {
		t.Fatalf("email not normalized: %q", resp.User.Email)
	}

	if _, err := svc.Login(ctx, LoginRequest{Email: "BUYER@example.com", Password: "paint-it-all"}); err != nil {
		t.Fatalf("login with differently cased email: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerRequest()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, registerRequest())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
	}{
		{"missing email", func(r *RegisterRequest) { r.Email = " " }},
		{"missing name", func(r *RegisterRequest) { r.FullName = "" }},
		{"short password", func(r *RegisterRequest) { r.Password = "short" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := registerRequest()
			tc.mutate(&req)
			_, err := svc.Register(ctx, req)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "buyer@example.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "paint-it-all"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}

	err = conn.Model(&models.User{}).Where("id = ?", registered.User.ID).Update("is_active", false).Error
	if err != nil {
		t.Fatalf("deactivate user: %v", err)
	}
	_, err = svc.Login(ctx, LoginRequest{Email: "buyer@example.com", Password: "paint-it-all"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for deactivated account, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	profile, err := svc.Me(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if profile.Email != "buyer@example.com" || profile.FullName != "Tran Thi B" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	_, err = svc.Me(ctx, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
