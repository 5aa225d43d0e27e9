package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/auth"
	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/bazaarhq/bazaar/internal/models"
)

// ReturnService handles post-delivery return and replacement requests.
type ReturnService struct {
	returns     returnStore
	orders      orderStore
	stores      storeStore
	emailSender OrderEmailSender
	logger      *slog.Logger
}

func NewReturnService(returns returnStore, orders orderStore, stores storeStore, emailSender OrderEmailSender, logger *slog.Logger) *ReturnService {
	if emailSender == nil {
		emailSender = noopOrderEmailSender{}
	}
	return &ReturnService{
		returns:     returns,
		orders:      orders,
		stores:      stores,
		emailSender: emailSender,
		logger:      logger,
	}
}

type CreateReturnInput struct {
	OrderID     uuid.UUID `json:"order_id"`
	ItemIndex   int       `json:"item_index"`
	Type        string    `json:"type"`
	Reason      string    `json:"reason"`
	Description string    `json:"description"`
	ImageURLs   []string  `json:"image_urls"`
}

// Create files a return or replacement request against a delivered order.
// Only the order's customer may file one, and only one open request per
// item is allowed.
func (s *ReturnService) Create(ctx context.Context, identity *auth.Identity, input CreateReturnInput) (*models.ReturnRequest, error) {
	requestType := models.ReturnType(strings.ToLower(strings.TrimSpace(input.Type)))
	if requestType != models.ReturnTypeReturn && requestType != models.ReturnTypeReplacement {
		return nil, Invalidf("request type must be return or replacement")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, Invalidf("a reason is required")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if identity == nil || !order.OwnedBy(identity.UserID, identity.Email) {
		return nil, ErrForbidden
	}
	if order.Status != models.StatusDelivered {
		return nil, Invalidf("returns can only be requested after delivery")
	}
	if input.ItemIndex < 0 || input.ItemIndex >= len(order.Items) {
		return nil, Invalidf("item index %d is out of range", input.ItemIndex)
	}

	existing, err := s.returns.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	for _, request := range existing {
		if request.ItemIndex != input.ItemIndex {
			continue
		}
		if request.Status == models.ReturnRequested || request.Status == models.ReturnApproved {
			return nil, Invalidf("this item already has an open request")
		}
	}

	request := &models.ReturnRequest{
		OrderID:     order.ID,
		ItemIndex:   input.ItemIndex,
		Type:        requestType,
		Reason:      strings.TrimSpace(input.Reason),
		Description: strings.TrimSpace(input.Description),
		ImageURLs:   input.ImageURLs,
	}
	if err := s.returns.Create(ctx, request); err != nil {
		return nil, err
	}

	logging.FromContext(ctx, s.logger).Info("return request filed",
		"order_id", order.ID, "request_id", request.ID, "type", requestType)
	return request, nil
}

type ReturnDecisionInput struct {
	OrderID         uuid.UUID `json:"order_id"`
	ReturnIndex     int       `json:"return_index"`
	Action          string    `json:"action"`
	RejectionReason string    `json:"rejection_reason"`
}

// Decide approves or rejects a pending request on behalf of the order's
// seller. The request is addressed by its position within the order. A
// request that is no longer pending surfaces db.ErrReturnConflict.
func (s *ReturnService) Decide(ctx context.Context, storeID uuid.UUID, input ReturnDecisionInput) (*models.ReturnRequest, error) {
	action := strings.ToLower(strings.TrimSpace(input.Action))
	if action != "approve" && action != "reject" {
		return nil, Invalidf("action must be approve or reject")
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.StoreID != storeID {
		return nil, db.ErrNotFound
	}

	requests, err := s.returns.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if input.ReturnIndex < 0 || input.ReturnIndex >= len(requests) {
		return nil, Invalidf("return index %d is out of range", input.ReturnIndex)
	}
	request := requests[input.ReturnIndex]

	switch action {
	case "approve":
		if err := s.returns.Approve(ctx, request.ID); err != nil {
			return nil, err
		}
		request.Status = models.ReturnApproved
	case "reject":
		reason := strings.TrimSpace(input.RejectionReason)
		if reason == "" {
			return nil, Invalidf("a rejection reason is required")
		}
		if err := s.returns.Reject(ctx, request.ID, reason); err != nil {
			return nil, err
		}
		request.Status = models.ReturnRejected
		request.RejectionReason = reason
	}

	logger := logging.FromContext(ctx, s.logger)
	logger.Info("return request decided",
		"order_id", order.ID, "request_id", request.ID, "action", action)

	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		logger.Warn("failed to load store for return email", "request_id", request.ID, "error", err)
	} else if err := s.emailSender.SendReturnUpdate(ctx, store, order, &request); err != nil {
		logger.Warn("failed to send return update email", "request_id", request.ID, "error", err)
	}

	return &request, nil
}

func (s *ReturnService) ListForStore(ctx context.Context, storeID uuid.UUID) ([]models.ReturnRequest, error) {
	return s.returns.ListByStore(ctx, storeID, defaultListLimit)
}
