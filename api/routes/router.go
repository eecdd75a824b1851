package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paintmart/paintmart-backend/api/controllers"
	"github.com/paintmart/paintmart-backend/api/middleware"
	"github.com/paintmart/paintmart-backend/internal/auth"
	"github.com/paintmart/paintmart-backend/internal/cart"
	"github.com/paintmart/paintmart-backend/internal/catalog"
	"github.com/paintmart/paintmart-backend/internal/discounts"
	"github.com/paintmart/paintmart-backend/internal/invoices"
	"github.com/paintmart/paintmart-backend/internal/saleprograms"
	"github.com/paintmart/paintmart-backend/pkg/config"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/logger"
	"github.com/paintmart/paintmart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService auth.Service,
	catalogService catalog.Service,
	cartService cart.Service,
	discountService discounts.Service,
	saleProgramService saleprograms.Service,
	invoiceService invoices.Service,
) http.Handler {
	var idemStore redis.IdempotencyStore
	if redisClient != nil {
		idemStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.Idempotency(idemStore, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(authService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/{productId}", controllers.GetProduct(catalogService, logg))
	})
	r.Get("/api/v1/categories", controllers.ListCategories(catalogService, logg))

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.GuestToken())
		r.Use(middleware.Idempotency(idemStore, logg))
		r.Get("/", controllers.GetCart(cartService, logg))
		r.Post("/items", controllers.CartAddItem(cartService, logg))
		r.Put("/items", controllers.CartUpdateItem(cartService, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, logg))
	})

	r.Route("/api/v1/invoices", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, logg))
		r.Use(middleware.GuestToken())
		r.With(middleware.Idempotency(idemStore, logg)).Post("/", controllers.Checkout(invoiceService, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/", controllers.ListMyInvoices(invoiceService, logg))
			r.Get("/{invoiceId}", controllers.GetInvoice(invoiceService, logg))
		})
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateCategory(catalogService, logg))
			r.Put("/{categoryId}", controllers.AdminUpdateCategory(catalogService, logg))
			r.Delete("/{categoryId}", controllers.AdminDeleteCategory(catalogService, logg))
		})
		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", controllers.AdminListDiscounts(discountService, logg))
			r.Post("/", controllers.AdminCreateDiscount(discountService, logg))
			r.Get("/{discountId}", controllers.AdminGetDiscount(discountService, logg))
			r.Put("/{discountId}", controllers.AdminUpdateDiscount(discountService, logg))
			r.Delete("/{discountId}", controllers.AdminDeleteDiscount(discountService, logg))
		})
		r.Route("/sale-programs", func(r chi.Router) {
			r.Get("/", controllers.AdminListSalePrograms(saleProgramService, logg))
			r.Post("/", controllers.AdminCreateSaleProgram(saleProgramService, logg))
			r.Get("/{programId}", controllers.AdminGetSaleProgram(saleProgramService, logg))
			r.Put("/{programId}", controllers.AdminUpdateSaleProgram(saleProgramService, logg))
			r.Delete("/{programId}", controllers.AdminDeactivateSaleProgram(saleProgramService, logg))
			r.Delete("/{programId}/hard", controllers.AdminPurgeSaleProgram(saleProgramService, logg))
		})
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.AdminListInvoices(invoiceService, logg))
			r.Patch("/{invoiceId}/status", controllers.AdminUpdateInvoiceStatus(invoiceService, logg))
		})
	})

	return r
}
