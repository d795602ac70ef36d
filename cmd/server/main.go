package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	billingapp "github.com/buneko/backend/internal/application/billing"
	catalogapp "github.com/buneko/backend/internal/application/catalog"
	identityapp "github.com/buneko/backend/internal/application/identity"
	marketingapp "github.com/buneko/backend/internal/application/marketing"
	"github.com/buneko/backend/internal/application/report"
	tradeapp "github.com/buneko/backend/internal/application/trade"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/domain/trade"
	"github.com/buneko/backend/internal/infrastructure/auth"
	"github.com/buneko/backend/internal/infrastructure/billing"
	"github.com/buneko/backend/internal/infrastructure/cache"
	"github.com/buneko/backend/internal/infrastructure/config"
	"github.com/buneko/backend/internal/infrastructure/event"
	"github.com/buneko/backend/internal/infrastructure/logger"
	"github.com/buneko/backend/internal/infrastructure/mail"
	"github.com/buneko/backend/internal/infrastructure/persistence"
	"github.com/buneko/backend/internal/infrastructure/storage"
	"github.com/buneko/backend/internal/infrastructure/telemetry"
	"github.com/buneko/backend/internal/interfaces/http/handler"
	"github.com/buneko/backend/internal/interfaces/http/middleware"
	"github.com/buneko/backend/internal/interfaces/http/router"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.App, cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting Buneko backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled,
		DBName:          cfg.Database.DBName,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
		log.Info("Schema migrated")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-process token and idempotency stores", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	customizationRepo := persistence.NewGormCustomizationRepository(db.DB)
	contentRepo := persistence.NewGormContentRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Infrastructure adapters
	media := newMediaStore(cfg, log)
	notifier := newNotifier(cfg, log)
	checkout := newCheckoutGateway(cfg, log)
	publisher, kafkaWriter := newOrderPublisher(cfg, log)

	var (
		blacklist   auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
		redisShared redis.UniversalClient
	)
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		redisShared = redisClient
	}
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(redisShared, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	jwtService := auth.NewJWTService(cfg.JWT)

	// Services
	tasks := background.NewRunner(log)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, blacklist, media, tasks, jwtService.RefreshTokenExpiration(), log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, media, tasks, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, media, tasks, log)
	wishlistService := catalogapp.NewWishlistService(wishlistRepo, productRepo)
	orderService := tradeapp.NewOrderService(orderRepo, txScope, tasks, log)
	customizationService := tradeapp.NewCustomizationService(customizationRepo, txScope, tasks, log)
	contentService := marketingapp.NewContentService(contentRepo, log)
	dashboardService := report.NewDashboardService(productRepo, orderRepo, userRepo, wishlistRepo)

	var gateway billingapp.CheckoutGateway
	if checkout != nil {
		gateway = checkout
	}
	checkoutService := billingapp.NewCheckoutService(productRepo, userRepo, gateway, log)

	orderService.SetEventPublisher(publisher)
	customizationService.SetEventPublisher(publisher)
	if notifier != nil {
		orderService.SetNotifier(notifier)
		userService.SetNotifier(notifier)
	}

	if err := authService.EnsureSuperAdmin(ctx, cfg.Bootstrap); err != nil {
		log.Error("Failed to ensure superadmin account", zap.Error(err))
	}

	// HTTP
	engine := router.NewEngine(cfg, log)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	router.Mount(r, router.Handlers{
		Health:        handler.NewHealthHandler(db, version),
		Auth:          handler.NewAuthHandler(authService),
		User:          handler.NewUserHandler(userService),
		Category:      handler.NewCategoryHandler(categoryService),
		Product:       handler.NewProductHandler(productService),
		Wishlist:      handler.NewWishlistHandler(wishlistService),
		Order:         handler.NewOrderHandler(orderService),
		Customization: handler.NewCustomizationHandler(customizationService),
		Content:       handler.NewContentHandler(contentService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Payment:       handler.NewPaymentHandler(checkoutService),
	}, router.Guards{
		Authenticate: middleware.JWTAuth(middleware.JWTConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			Scope:  "orders",
			Logger: log,
		}),
	})
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		log.Warn("Background tasks still running at shutdown", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.Error("Error closing kafka writer", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newMediaStore returns the S3 store, or a store that rejects uploads when
// storage is not configured
func newMediaStore(cfg *config.Config, log *zap.Logger) shared.MediaStore {
	if !cfg.Storage.Enabled {
		log.Info("Media storage disabled, image uploads will be rejected")
		return storage.NewDisabledMediaStore()
	}
	store, err := storage.NewS3MediaStore(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Error("Failed to initialize media storage, image uploads will be rejected", zap.Error(err))
		return storage.NewDisabledMediaStore()
	}
	log.Info("Media storage ready", zap.String("bucket", store.GetBucket()))
	return store
}

// newNotifier sends mail over SMTP when enabled and only logs otherwise
func newNotifier(cfg *config.Config, log *zap.Logger) *mail.Notifier {
	var mailer mail.Mailer = mail.NewLogMailer(log)
	if cfg.Mail.Enabled {
		smtp, err := mail.NewSMTPMailer(cfg.Mail, log)
		if err != nil {
			log.Error("Failed to initialize SMTP mailer, notifications will only be logged", zap.Error(err))
		} else {
			mailer = smtp
		}
	}
	notifier, err := mail.NewNotifier(mailer, cfg.App.FrontendURL, log)
	if err != nil {
		log.Error("Failed to load notification templates, notifications disabled", zap.Error(err))
		return nil
	}
	return notifier
}

func newCheckoutGateway(cfg *config.Config, log *zap.Logger) *billing.StripeCheckout {
	if !cfg.Stripe.Enabled {
		log.Info("Stripe checkout disabled")
		return nil
	}
	checkout, err := billing.NewStripeCheckout(&cfg.Stripe, log)
	if err != nil {
		log.Error("Failed to initialize Stripe checkout, online payment disabled", zap.Error(err))
		return nil
	}
	return checkout
}

// newOrderPublisher returns the Kafka publisher and its writer when Kafka is
// enabled; otherwise events are only logged and the writer is nil
func newOrderPublisher(cfg *config.Config, log *zap.Logger) (trade.OrderEventPublisher, *kafka.Writer) {
	if !cfg.Kafka.Enabled {
		return event.NewLogOrderPublisher(log), nil
	}
	writer := event.NewKafkaWriter(cfg.Kafka)
	log.Info("Publishing order events to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
	)
	return event.NewKafkaOrderPublisher(writer, log), writer
}
