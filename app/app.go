package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/cache"
	"github.com/bazaarhq/bazaar/internal/config"
	"github.com/bazaarhq/bazaar/internal/crypto"
	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/email"
	"github.com/bazaarhq/bazaar/internal/handlers"
	"github.com/bazaarhq/bazaar/internal/payments"
	"github.com/bazaarhq/bazaar/internal/services"
	"github.com/bazaarhq/bazaar/internal/shipping"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	DB            *pgxpool.Pool
	CacheProvider cache.Provider
	Handlers      *handlers.Handlers
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	database, err := db.Connect(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	cacheProvider, err := cache.NewProvider(cache.Config{
		Provider:              cfg.CacheProvider,
		RedisConnectionString: cfg.RedisConnectionString,
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize cache provider: %w", err)
	}

	verifier, err := auth.NewVerifier(cfg.AuthTokenSecret, cacheProvider)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	storeStore, err := db.NewStoreStore(database, encryptor)
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize store store: %w", err)
	}
	userStore := db.NewUserStore(database)
	productStore := db.NewProductStore(database)
	orderStore := db.NewOrderStore(database)
	walletStore := db.NewWalletStore(database)
	returnStore := db.NewReturnStore(database)
	dealStore := db.NewDealStore(database)
	campaignStore := db.NewCampaignStore(database)

	var rateTable *shipping.RateTable
	if cfg.ShippingRatesPath != "" {
		rateTable, err = shipping.LoadRateTable(cfg.ShippingRatesPath)
		if err != nil {
			closeCacheProvider(logger, cacheProvider)
			database.Close()
			return nil, fmt.Errorf("failed to load shipping rates: %w", err)
		}
	}
	shippingCalc := shipping.NewCalculator(rateTable)

	var paymentsClient services.PaymentClient
	if cfg.CardPaymentsEnabled() {
		paymentsClient = payments.NewClient(cfg.StripeSecretKey)
	}

	orderEmailer := services.NewStoreOrderEmailSender(email.NewProviderFromStore)

	orderService := services.NewOrderService(
		orderStore,
		productStore,
		storeStore,
		walletStore,
		returnStore,
		shippingCalc,
		paymentsClient,
		orderEmailer,
		logger.With("component", "order_service"),
	)
	catalogService := services.NewCatalogService(productStore, logger.With("component", "catalog_service"))
	dealService := services.NewDealService(dealStore, productStore, logger.With("component", "deal_service"))
	walletService := services.NewWalletService(walletStore, cfg.WelcomeBonusCoins, logger.With("component", "wallet_service"))
	returnService := services.NewReturnService(returnStore, orderStore, storeStore, orderEmailer, logger.With("component", "return_service"))
	campaignService := services.NewCampaignService(
		storeStore,
		orderStore,
		campaignStore,
		email.NewProviderFromStore,
		cfg.CampaignSendDelay,
		logger.With("component", "campaign_service"),
	)
	analyticsService := services.NewAnalyticsService(orderStore)

	h, err := handlers.New(handlers.Dependencies{
		Config:          cfg,
		Verifier:        verifier,
		Users:           userStore,
		Stores:          storeStore,
		OrderService:    orderService,
		CatalogService:  catalogService,
		DealService:     dealService,
		WalletService:   walletService,
		ReturnService:   returnService,
		CampaignService: campaignService,
		Analytics:       analyticsService,
		Logger:          logger,
	})
	if err != nil {
		closeCacheProvider(logger, cacheProvider)
		database.Close()
		return nil, fmt.Errorf("failed to initialize handlers: %w", err)
	}

	return &App{
		Config:        cfg,
		Logger:        logger,
		DB:            database,
		CacheProvider: cacheProvider,
		Handlers:      h,
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.CacheProvider != nil {
		closeCacheProvider(a.Logger, a.CacheProvider)
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	format := strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case "text", "":
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: cfg.LogLevel,
		}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: cfg.LogLevel}))
}

func closeCacheProvider(logger *slog.Logger, provider cache.Provider) {
	if provider == nil {
		return
	}
	if err := provider.Close(); err != nil && logger != nil {
		logger.Warn("failed to close cache provider", "error", err)
	}
}
