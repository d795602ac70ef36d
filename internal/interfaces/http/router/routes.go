package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/infrastructure/config"
	"github.com/buneko/backend/internal/infrastructure/logger"
	"github.com/buneko/backend/internal/interfaces/http/handler"
	"github.com/buneko/backend/internal/interfaces/http/middleware"
)

// Handlers are the storefront HTTP handlers mounted by Mount
type Handlers struct {
	Health        *handler.HealthHandler
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Category      *handler.CategoryHandler
	Product       *handler.ProductHandler
	Wishlist      *handler.WishlistHandler
	Order         *handler.OrderHandler
	Customization *handler.CustomizationHandler
	Content       *handler.ContentHandler
	Dashboard     *handler.DashboardHandler
	Payment       *handler.PaymentHandler
}

// Guards are the per-route middleware. Authenticate is required;
// Idempotency may be nil, in which case POST /orders is not deduplicated.
type Guards struct {
	Authenticate gin.HandlerFunc
	Idempotency  gin.HandlerFunc
}

// NewEngine builds the gin engine with the global middleware chain
func NewEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig(cfg.App.IsProduction())))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.HTTP.CORSAllowOrigins)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)))
		log.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.HTTP.RateLimitRPS),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	return engine
}

// Mount registers every storefront route on r. Public catalog reads,
// register, login, refresh and health need no token.
func Mount(r *Router, h Handlers, g Guards) {
	authed := g.Authenticate
	admin := middleware.RequireAdmin()

	health := NewDomainGroup("health", "/health")
	health.GET("", h.Health.Check)

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", authed, h.Auth.Logout)
	auth.GET("/me", authed, h.Auth.Me)

	users := NewDomainGroup("users", "/users").Use(authed)
	users.PUT("/profile", h.User.UpdateProfile)
	users.PUT("/profile/password", h.User.ChangePassword)
	users.GET("", admin, h.User.List)
	users.GET("/:id", admin, h.User.Get)
	users.PUT("/:id", admin, h.User.Update)
	users.DELETE("/:id", admin, h.User.Delete)

	categories := NewDomainGroup("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.GET("/:id", h.Category.Get)
	categories.POST("", authed, admin, h.Category.Create)
	categories.PUT("/:id", authed, admin, h.Category.Update)
	categories.DELETE("/:id", authed, admin, h.Category.Delete)

	products := NewDomainGroup("products", "/products")
	products.GET("", h.Product.List)
	products.GET("/category/:categoryId", h.Product.ListByCategory)
	products.GET("/:id", h.Product.Get)
	products.POST("", authed, admin, h.Product.Create)
	products.PUT("/:id", authed, admin, h.Product.Update)
	products.DELETE("/:id", authed, admin, h.Product.Delete)

	wishlist := NewDomainGroup("wishlist", "/wishlist").Use(authed)
	wishlist.GET("", h.Wishlist.List)
	wishlist.POST("", h.Wishlist.Add)
	wishlist.DELETE("/:productId", h.Wishlist.Remove)

	orders := NewDomainGroup("orders", "/orders").Use(authed)
	orders.GET("", admin, h.Order.List)
	orders.GET("/my-orders", h.Order.MyOrders)
	orders.GET("/:id", h.Order.Get)
	if g.Idempotency != nil {
		orders.POST("", g.Idempotency, h.Order.Create)
	} else {
		orders.POST("", h.Order.Create)
	}
	orders.PATCH("/:id/status", admin, h.Order.UpdateStatus)
	orders.PATCH("/:id/cancel", h.Order.Cancel)

	customizations := NewDomainGroup("customizations", "/customizations").Use(authed)
	customizations.GET("/my-customizations", h.Customization.Mine)
	customizations.GET("", admin, h.Customization.List)
	customizations.GET("/:id", h.Customization.Get)
	customizations.POST("", h.Customization.Create)
	customizations.PATCH("/:id/status", admin, h.Customization.UpdateStatus)
	customizations.POST("/:id/create-order", admin, h.Customization.CreateOrder)
	customizations.POST("/:id/complete-order", h.Customization.CompleteOrder)

	contents := NewDomainGroup("contents", "/contents")
	contents.GET("", h.Content.List)
	contents.GET("/:id", h.Content.Get)
	contents.POST("", authed, admin, h.Content.Create)
	contents.PUT("/:id", authed, admin, h.Content.Update)
	contents.DELETE("/:id", authed, admin, h.Content.Delete)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(authed)
	dashboard.GET("/admin", admin, h.Dashboard.Admin)
	dashboard.GET("/customer", h.Dashboard.Customer)

	payment := NewDomainGroup("payment", "/payment").Use(authed)
	payment.POST("/create-checkout-session", h.Payment.CreateCheckoutSession)

	r.Register(health, auth, users, categories, products, wishlist,
		orders, customizations, contents, dashboard, payment)
}
