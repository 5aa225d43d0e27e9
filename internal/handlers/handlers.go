// Package handlers exposes the JSON HTTP API.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/config"
	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/bazaarhq/bazaar/internal/models"
	"github.com/bazaarhq/bazaar/internal/services"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// UserDirectory resolves token identities to user rows, creating them on
// first access.
type UserDirectory interface {
	GetOrCreate(ctx context.Context, id uuid.UUID, email, name string, role models.UserRole, storeID uuid.UUID) (*models.User, error)
}

// StoreSettings is the slice of the store persistence the settings
// endpoints need.
type StoreSettings interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	UpdateShippingSettings(ctx context.Context, id uuid.UUID, flatFee, freeShippingMin float64) error
	UpdateEmailSettings(ctx context.Context, id uuid.UUID, provider, from string, config map[string]any) error
}

// Handlers provides the HTTP request handlers for the marketplace API.
type Handlers struct {
	config          *config.Config
	verifier        *auth.Verifier
	users           UserDirectory
	stores          StoreSettings
	orderService    *services.OrderService
	catalogService  *services.CatalogService
	dealService     *services.DealService
	walletService   *services.WalletService
	returnService   *services.ReturnService
	campaignService *services.CampaignService
	analytics       *services.AnalyticsService
	logger          *slog.Logger
}

type Dependencies struct {
	Config          *config.Config
	Verifier        *auth.Verifier
	Users           UserDirectory
	Stores          StoreSettings
	OrderService    *services.OrderService
	CatalogService  *services.CatalogService
	DealService     *services.DealService
	WalletService   *services.WalletService
	ReturnService   *services.ReturnService
	CampaignService *services.CampaignService
	Analytics       *services.AnalyticsService
	Logger          *slog.Logger
}

func New(deps Dependencies) (*Handlers, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Config == nil {
		return nil, fmt.Errorf("handlers dependencies: config is required")
	}
	if deps.Verifier == nil {
		return nil, fmt.Errorf("handlers dependencies: verifier is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("handlers dependencies: users is required")
	}
	if deps.Stores == nil {
		return nil, fmt.Errorf("handlers dependencies: stores is required")
	}
	if deps.OrderService == nil {
		return nil, fmt.Errorf("handlers dependencies: order service is required")
	}
	if deps.CatalogService == nil {
		return nil, fmt.Errorf("handlers dependencies: catalog service is required")
	}
	if deps.DealService == nil {
		return nil, fmt.Errorf("handlers dependencies: deal service is required")
	}
	if deps.WalletService == nil {
		return nil, fmt.Errorf("handlers dependencies: wallet service is required")
	}
	if deps.ReturnService == nil {
		return nil, fmt.Errorf("handlers dependencies: return service is required")
	}
	if deps.CampaignService == nil {
		return nil, fmt.Errorf("handlers dependencies: campaign service is required")
	}
	if deps.Analytics == nil {
		return nil, fmt.Errorf("handlers dependencies: analytics service is required")
	}

	return &Handlers{
		config:          deps.Config,
		verifier:        deps.Verifier,
		users:           deps.Users,
		stores:          deps.Stores,
		orderService:    deps.OrderService,
		catalogService:  deps.CatalogService,
		dealService:     deps.DealService,
		walletService:   deps.WalletService,
		returnService:   deps.ReturnService,
		campaignService: deps.CampaignService,
		analytics:       deps.Analytics,
		logger:          logger,
	}, nil
}

func (h *Handlers) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, h.logger)
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SecurityHeaders sets baseline security headers for all responses.
func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		headers.Set("Cross-Origin-Opener-Policy", "same-origin")
		headers.Set("Cross-Origin-Resource-Policy", "same-origin")

		next.ServeHTTP(w, r)
	})
}

// storeIDFromContext returns the authenticated seller's store.
func storeIDFromContext(ctx context.Context) uuid.UUID {
	if identity := auth.IdentityFromContext(ctx); identity != nil {
		return identity.StoreID
	}
	return uuid.Nil
}

var _ UserDirectory = (*db.UserStore)(nil)
var _ StoreSettings = (*db.StoreStore)(nil)
