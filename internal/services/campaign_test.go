package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bazaarhq/bazaar/internal/email"
	"github.com/bazaarhq/bazaar/internal/models"
)

type scriptedProvider struct {
	failFor map[string]error
	sent    []string
}

func (p *scriptedProvider) SendEmail(_ context.Context, msg *email.Email) error {
	if err, ok := p.failFor[msg.To]; ok {
		return err
	}
	p.sent = append(p.sent, msg.To)
	return nil
}

func (p *scriptedProvider) ValidateAPIKey(context.Context) error { return nil }

func newCampaignServiceFixture(recipients []string, provider email.Provider, delay time.Duration) (*CampaignService, *fakeCampaignStore, uuid.UUID) {
	store := &models.Store{ID: uuid.New(), Name: "Spice Bazaar", EmailProvider: "resend"}
	campaigns := &fakeCampaignStore{}

	service := NewCampaignService(
		&fakeStoreStore{store: store},
		&fakeRecipients{emails: recipients},
		campaigns,
		func(*models.Store) (email.Provider, error) { return provider, nil },
		delay,
		discardLogger(),
	)
	return service, campaigns, store.ID
}

func TestCampaignSendRecordsEveryRecipient(t *testing.T) {
	provider := &scriptedProvider{
		failFor: map[string]error{"bounce@example.com": fmt.Errorf("mailbox full")},
	}
	recipients := []string{"a@example.com", "bounce@example.com", "c@example.com"}
	service, campaigns, storeID := newCampaignServiceFixture(recipients, provider, 0)

	result, err := service.Send(context.Background(), storeID, "Holi Sale", "Everything 20% off this week.")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if result.Recipients != 3 || result.Sent != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 3 recipients, 2 sent, 1 failed", result)
	}
	if len(campaigns.sends) != 3 {
		t.Fatalf("recorded sends = %d, want 3", len(campaigns.sends))
	}
	for _, send := range campaigns.sends {
		if send.Recipient == "bounce@example.com" {
			if send.Sent || send.Error == "" {
				t.Errorf("failed send not recorded as failure: %+v", send)
			}
		} else if !send.Sent {
			t.Errorf("send to %s recorded as failure", send.Recipient)
		}
	}
	// The failure did not abort the rest of the batch.
	if len(provider.sent) != 2 {
		t.Errorf("provider deliveries = %d, want 2", len(provider.sent))
	}
}

func TestCampaignSendValidation(t *testing.T) {
	service, _, storeID := newCampaignServiceFixture(nil, &scriptedProvider{}, 0)

	if _, err := service.Send(context.Background(), storeID, " ", "body"); !errors.Is(err, ErrValidation) {
		t.Errorf("blank subject = %v, want ErrValidation", err)
	}
	if _, err := service.Send(context.Background(), storeID, "subject", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("blank body = %v, want ErrValidation", err)
	}
}

func TestCampaignSendStopsOnCancelledContext(t *testing.T) {
	provider := &scriptedProvider{}
	recipients := []string{"a@example.com", "b@example.com", "c@example.com"}
	service, campaigns, storeID := newCampaignServiceFixture(recipients, provider, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Let the first send happen, then cancel during the inter-send delay.
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	result, err := service.Send(ctx, storeID, "Holi Sale", "Everything 20% off.")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Send error = %v, want context.Canceled", err)
	}
	if result == nil || result.Sent != 1 {
		t.Errorf("result = %+v, want 1 sent before cancellation", result)
	}
	if len(campaigns.sends) != 1 {
		t.Errorf("recorded sends = %d, want 1", len(campaigns.sends))
	}
}

func TestCampaignSendEmptyAudience(t *testing.T) {
	service, campaigns, storeID := newCampaignServiceFixture(nil, &scriptedProvider{}, time.Second)

	result, err := service.Send(context.Background(), storeID, "Holi Sale", "Everything 20% off.")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if result.Recipients != 0 || result.Sent != 0 || result.Failed != 0 {
		t.Errorf("result = %+v, want all zero", result)
	}
	if len(campaigns.sends) != 0 {
		t.Errorf("recorded sends = %d, want 0", len(campaigns.sends))
	}
}
