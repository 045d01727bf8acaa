package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/magusbylili/storefront-backend/api/controllers"
	webhookcontrollers "github.com/magusbylili/storefront-backend/api/controllers/webhooks"
	"github.com/magusbylili/storefront-backend/api/middleware"
	"github.com/magusbylili/storefront-backend/internal/auth"
	"github.com/magusbylili/storefront-backend/internal/orders"
	"github.com/magusbylili/storefront-backend/internal/payments"
	"github.com/magusbylili/storefront-backend/internal/products"
	"github.com/magusbylili/storefront-backend/pkg/auth/session"
	"github.com/magusbylili/storefront-backend/pkg/config"
	"github.com/magusbylili/storefront-backend/pkg/db"
	"github.com/magusbylili/storefront-backend/pkg/logger"
	"github.com/magusbylili/storefront-backend/pkg/metrics"
	"github.com/magusbylili/storefront-backend/pkg/redis"
)

// Services groups everything the router wires into controllers.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	PasswordReset auth.PasswordResetService
	EmailChange   auth.EmailChangeService
	Promote       auth.PromoteService
	Products      products.Service
	Orders        orders.Service
	Payments      payments.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.Checker,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/wompi", webhookcontrollers.WompiWebhook(svcs.Payments, logg))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Register, cfg, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, cfg, logg))
		r.Post("/password-reset", controllers.AuthPasswordResetRequest(svcs.PasswordReset, logg))
		r.Post("/password-reset/confirm", controllers.AuthPasswordResetConfirm(svcs.PasswordReset, logg))
		r.Post("/email-change/confirm", controllers.MeEmailChangeConfirm(svcs.EmailChange, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg, logg))
			r.Post("/promote-admin", controllers.AuthPromoteAdmin(svcs.Promote, logg))
		})
	})

	r.Route("/api/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Get("/", controllers.Me(svcs.Auth, logg))
		r.Post("/change-password", controllers.MeChangePassword(svcs.Auth, logg))
		r.Post("/change-email", controllers.MeEmailChangeRequest(svcs.EmailChange, logg))
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(svcs.Products, logg))
		r.Get("/{productId}", controllers.ProductDetail(svcs.Products, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/", controllers.ProductCreate(svcs.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(svcs.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(svcs.Products, logg))
		})
	})

	r.Get("/api/categories", controllers.CategoryList(svcs.Products, logg))

	r.Route("/api/orders", func(r chi.Router) {
		// guests can check out; claims are attached when present
		r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Post("/", controllers.OrderCreate(svcs.Orders, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Get("/", controllers.OrderListMine(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
		})
	})

	r.Route("/api/admin/orders", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Get("/", controllers.AdminOrderList(svcs.Orders, logg))
		r.Patch("/{orderId}/status", controllers.AdminOrderUpdateStatus(svcs.Orders, logg))
	})

	r.Route("/api/payments", func(r chi.Router) {
		// public: the storefront reads this before rendering the widget
		r.Get("/config", controllers.PaymentGatewayConfig(cfg.Wompi, logg))
		r.With(middleware.OptionalAuth(cfg.JWT, sessions, logg)).Post("/", controllers.PaymentCreate(svcs.Payments, logg))
		r.Get("/transactions/{transactionId}", controllers.PaymentTransactionStatus(svcs.Payments, logg))
	})

	return r
}
