package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/sacchabazaar/api/internal/domain"
	"github.com/sacchabazaar/api/internal/handlers"
	"github.com/sacchabazaar/api/internal/platform/auth"
	"github.com/sacchabazaar/api/internal/platform/config"
	"github.com/sacchabazaar/api/internal/platform/kv"
	"github.com/sacchabazaar/api/internal/platform/observability"
	"github.com/sacchabazaar/api/internal/repositories"
	"github.com/sacchabazaar/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store, closeStore, err := newStore(ctx, cfg.Store)
	if err != nil {
		logger.Fatal("failed to initialise kv store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("kv store close error", zap.Error(err))
		}
	}()

	cartRepo, err := repositories.NewCartRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise cart repository", zap.Error(err))
	}
	userRepo, err := repositories.NewUserRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise user repository", zap.Error(err))
	}
	notificationRepo, err := repositories.NewNotificationRepository(store)
	if err != nil {
		logger.Fatal("failed to initialise notification repository", zap.Error(err))
	}

	signer, err := auth.NewSessionSigner(cfg.Session.SigningSecret, auth.WithSessionTTL(cfg.Session.TTL))
	if err != nil {
		logger.Fatal("failed to initialise session signer", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(signer)

	pricer, err := services.NewDeliveryPricer(domain.DeliveryPolicy{
		FreeThreshold: cfg.Pricing.FreeDeliveryThreshold,
		FlatFee:       cfg.Pricing.DeliveryFee,
		Currency:      cfg.Pricing.Currency,
	})
	if err != nil {
		logger.Fatal("failed to initialise delivery pricer", zap.Error(err))
	}

	newULID := func() string { return ulid.Make().String() }

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: cartRepo,
		Quoter:     pricer,
		Clock:      time.Now,
		Logger:     observability.EventLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	profileService, err := services.NewProfileService(services.ProfileServiceDeps{
		Repository:  userRepo,
		Sessions:    signer,
		Clock:       time.Now,
		IDGenerator: newULID,
		Logger:      observability.EventLogger(logger.Named("profile")),
	})
	if err != nil {
		logger.Fatal("failed to initialise profile service", zap.Error(err))
	}

	notificationService, err := services.NewNotificationService(services.NotificationServiceDeps{
		Repository:  notificationRepo,
		Clock:       time.Now,
		IDGenerator: newULID,
		SeedDemo:    cfg.Features.SeedDemoNotifications,
		Logger:      observability.EventLogger(logger.Named("notifications")),
	})
	if err != nil {
		logger.Fatal("failed to initialise notification service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Logger: observability.EventLogger(logger.Named("catalog")),
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	commerceBackend, err := services.NewSimulatedCommerceBackend(services.SimulatedBackendDeps{
		ConfirmDelay: cfg.Checkout.ConfirmDelay,
		Clock:        time.Now,
		IDGenerator:  newULID,
	})
	if err != nil {
		logger.Fatal("failed to initialise commerce backend", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:         cartService,
		Profiles:      profileService,
		Notifications: notificationService,
		Backend:       commerceBackend,
		Clock:         time.Now,
		Logger:        observability.EventLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	provenanceService, err := services.NewProvenanceService(services.ProvenanceServiceDeps{
		Catalog:       catalogService,
		Notifications: notificationService,
		Clock:         time.Now,
		RandomSuffix:  func() string { return strings.SplitN(uuid.NewString(), "-", 2)[0] },
		Logger:        observability.EventLogger(logger.Named("provenance")),
	})
	if err != nil {
		logger.Fatal("failed to initialise provenance service", zap.Error(err))
	}

	authHandlers := handlers.NewAuthHandlers(authenticator, profileService)
	meHandlers := handlers.NewMeHandlers(authenticator, profileService)
	cartHandlers := handlers.NewCartHandlers(authenticator, cartService, catalogService)
	catalogHandlers := handlers.NewCatalogHandlers(catalogService)
	notificationHandlers := handlers.NewNotificationHandlers(authenticator, notificationService)
	checkoutHandlers := handlers.NewCheckoutHandlers(authenticator, checkoutService)
	provenanceHandlers := handlers.NewProvenanceHandlers(authenticator, provenanceService)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("store", func(ctx context.Context) error {
			probe := "healthz/probe"
			if err := store.Save(ctx, probe, []byte("ok")); err != nil {
				return err
			}
			return store.Delete(ctx, probe)
		}),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithAuthRoutes(authHandlers.Routes),
		handlers.WithMeRoutes(meHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithNotificationRoutes(notificationHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithProvenanceRoutes(provenanceHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("sacchabazaar api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newStore builds the configured kv backend. The returned close function is a
// no-op for backends without connections to release.
func newStore(ctx context.Context, cfg config.StoreConfig) (kv.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "memory":
		return kv.NewMemoryStore(), noop, nil
	case "file":
		store, err := kv.NewFileStore(cfg.Directory)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case "redis":
		store, err := kv.NewRedisStore(ctx, cfg.RedisAddr, kv.WithRedisKeyPrefix(cfg.RedisKeyPrefix))
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
