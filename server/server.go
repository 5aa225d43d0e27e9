package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bazaarhq/bazaar/internal/config"
	"github.com/bazaarhq/bazaar/internal/handlers"
)

type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	handlers   *handlers.Handlers
	httpServer *http.Server
}

func New(cfg *config.Config, logger *slog.Logger, h *handlers.Handlers) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if h == nil {
		return nil, fmt.Errorf("handlers are required")
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		handlers: h,
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return s, nil
}

func (s *Server) Run() error {
	s.logger.Info("server starting", "port", s.cfg.Port)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Close(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}

	s.logger.Info("server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) buildRouter() *mux.Router {
	h := s.handlers

	r := mux.NewRouter()
	r.Use(h.RequestLogger)
	r.Use(h.SecurityHeaders)
	r.Use(h.Authenticate)
	r.Use(h.MetricsContext)

	r.HandleFunc("/health", h.Health).Methods("GET").Name("health")

	// Public storefront routes. Checkout is here too: guests may place
	// orders without an account.
	r.HandleFunc("/api/products", h.PublicProducts).Methods("GET").Name("products.list")
	r.HandleFunc("/api/deals", h.PublicDeals).Methods("GET").Name("deals.live")
	r.HandleFunc("/api/orders", h.PlaceOrder).Methods("POST").Name("orders.place")

	// Customer routes require a signed-in user.
	customerRouter := r.PathPrefix("/api").Subrouter()
	customerRouter.Use(h.RequireUser)
	customerRouter.HandleFunc("/orders", h.ListOrders).Methods("GET").Name("orders.list")
	customerRouter.HandleFunc("/orders/{id}", h.GetOrder).Methods("GET").Name("orders.get")
	customerRouter.HandleFunc("/orders/return-request", h.CreateReturnRequest).Methods("POST").Name("orders.return_request")
	customerRouter.HandleFunc("/wallet", h.Wallet).Methods("GET").Name("wallet.get")
	customerRouter.HandleFunc("/wallet/bonus", h.ClaimWelcomeBonus).Methods("POST").Name("wallet.bonus")

	// Seller dashboard routes.
	storeRouter := r.PathPrefix("/api/store").Subrouter()
	storeRouter.Use(h.RequireSeller)
	storeRouter.HandleFunc("/products", h.StoreProducts).Methods("GET").Name("store.products.list")
	storeRouter.HandleFunc("/products", h.CreateProduct).Methods("POST").Name("store.products.create")
	storeRouter.HandleFunc("/products/{id}", h.UpdateProduct).Methods("PATCH").Name("store.products.update")
	storeRouter.HandleFunc("/products/{id}", h.DeleteProduct).Methods("DELETE").Name("store.products.delete")
	storeRouter.HandleFunc("/deals", h.StoreDeals).Methods("GET").Name("store.deals.list")
	storeRouter.HandleFunc("/deals", h.CreateDeal).Methods("POST").Name("store.deals.create")
	storeRouter.HandleFunc("/deals/{id}", h.UpdateDeal).Methods("PATCH").Name("store.deals.update")
	storeRouter.HandleFunc("/deals/{id}", h.DeleteDeal).Methods("DELETE").Name("store.deals.delete")
	storeRouter.HandleFunc("/orders", h.StoreOrders).Methods("GET").Name("store.orders.list")
	storeRouter.HandleFunc("/orders/{id}/status", h.UpdateOrderStatus).Methods("POST").Name("store.orders.status")
	storeRouter.HandleFunc("/return-requests", h.StoreReturns).Methods("GET").Name("store.returns.list")
	storeRouter.HandleFunc("/return-requests", h.DecideReturn).Methods("POST").Name("store.returns.decide")
	storeRouter.HandleFunc("/campaigns", h.SendCampaign).Methods("POST").Name("store.campaigns.send")
	storeRouter.HandleFunc("/analytics/locations", h.LocationAnalytics).Methods("GET").Name("store.analytics.locations")
	storeRouter.HandleFunc("/settings", h.StoreSettingsView).Methods("GET").Name("store.settings.get")
	storeRouter.HandleFunc("/settings/shipping", h.UpdateShippingSettings).Methods("PATCH").Name("store.settings.shipping")
	storeRouter.HandleFunc("/settings/email", h.UpdateEmailSettings).Methods("PATCH").Name("store.settings.email")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})

	return r
}
