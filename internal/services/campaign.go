package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go/attribute"
	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/db"
	"github.com/bazaarhq/bazaar/internal/email"
	"github.com/bazaarhq/bazaar/internal/logging"
	"github.com/bazaarhq/bazaar/internal/observability"
)

// CampaignService sends a seller's promotional email to every past
// customer of the store. Sends run sequentially with a fixed delay so the
// provider's rate limits are respected; a failed recipient is recorded and
// skipped, never retried.
type CampaignService struct {
	stores            storeStore
	recipients        campaignRecipients
	campaigns         campaignStore
	providerFromStore StoreEmailProviderFactory
	sendDelay         time.Duration
	logger            *slog.Logger
}

func NewCampaignService(
	stores storeStore,
	recipients campaignRecipients,
	campaigns campaignStore,
	providerFromStore StoreEmailProviderFactory,
	sendDelay time.Duration,
	logger *slog.Logger,
) *CampaignService {
	if providerFromStore == nil {
		providerFromStore = email.NewProviderFromStore
	}
	return &CampaignService{
		stores:            stores,
		recipients:        recipients,
		campaigns:         campaigns,
		providerFromStore: providerFromStore,
		sendDelay:         sendDelay,
		logger:            logger,
	}
}

type CampaignResult struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
}

// Send creates a campaign and works through its recipient list. It returns
// the partial result with the context error if cancelled mid-batch.
func (s *CampaignService) Send(ctx context.Context, storeID uuid.UUID, subject, body string) (*CampaignResult, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, Invalidf("campaign subject is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, Invalidf("campaign body is required")
	}

	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	provider, err := s.providerFromStore(store)
	if err != nil {
		return nil, Invalidf("store has no working email provider: %v", err)
	}

	recipients, err := s.recipients.DistinctCustomerEmails(ctx, storeID)
	if err != nil {
		return nil, err
	}

	campaignID, err := s.campaigns.Create(ctx, storeID, subject, body)
	if err != nil {
		return nil, err
	}

	logger := logging.FromContext(ctx, s.logger).With("campaign_id", campaignID)
	meter := observability.MeterFromContext(ctx)
	meter.SetAttributes(attribute.String("component", "campaign_service"))

	result := &CampaignResult{CampaignID: campaignID, Recipients: len(recipients)}
	for i, recipient := range recipients {
		if i > 0 && s.sendDelay > 0 {
			select {
			case <-ctx.Done():
				logger.Warn("campaign cancelled mid-batch", "sent", result.Sent, "failed", result.Failed)
				return result, ctx.Err()
			case <-time.After(s.sendDelay):
			}
		}

		sendErr := provider.SendEmail(ctx, &email.Email{
			To:      recipient,
			Subject: subject,
			Text:    body,
		})

		send := db.CampaignSend{
			CampaignID: campaignID,
			Recipient:  recipient,
			Sent:       sendErr == nil,
		}
		if sendErr != nil {
			send.Error = sendErr.Error()
			result.Failed++
			meter.Count("campaign.send_failed", 1)
			logger.Warn("campaign send failed", "recipient", recipient, "error", sendErr)
		} else {
			result.Sent++
			meter.Count("campaign.send_succeeded", 1)
		}

		if err := s.campaigns.RecordSend(ctx, send); err != nil {
			logger.Warn("failed to record campaign send", "recipient", recipient, "error", err)
		}
	}

	logger.Info("campaign finished", "recipients", result.Recipients, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}
