// Package email provides email provider interface.
package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bazaarhq/bazaar/internal/models"
)

type Provider interface {
	SendEmail(ctx context.Context, email *Email) error
	ValidateAPIKey(ctx context.Context) error
}

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Config struct {
	Provider string
	APIKey   string
	From     string
	Domain   string // For Mailgun
}

func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "postmark":
		return NewPostmarkProvider(config.APIKey, config.From), nil
	case "mailgun":
		return NewMailgunProvider(config.APIKey, config.Domain, config.From), nil
	case "resend":
		return NewResendProvider(config.APIKey, config.From), nil
	default:
		return nil, fmt.Errorf("email provider must be either 'postmark', 'mailgun', or 'resend'")
	}
}

// NewProviderFromStore builds the provider a seller configured for their
// store. The store's email config carries the (already decrypted) API key.
func NewProviderFromStore(store *models.Store) (Provider, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}

	cfg, err := decodeStoreEmailConfig(store.EmailConfig)
	if err != nil {
		return nil, err
	}
	from := cfg.FromEmail
	if from == "" {
		from = store.EmailFrom
	}

	switch store.EmailProvider {
	case "postmark":
		return NewPostmarkProvider(cfg.APIKey, from), nil
	case "mailgun":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.mailgun.net/v3"
		}
		return NewMailgunProviderWithBaseURL(cfg.APIKey, cfg.Domain, from, baseURL), nil
	case "resend":
		return NewResendProvider(cfg.APIKey, from), nil
	default:
		return nil, fmt.Errorf("store email provider must be either 'postmark', 'mailgun', or 'resend'")
	}
}

type storeEmailConfig struct {
	APIKey    string `json:"api_key"`
	FromEmail string `json:"from_email"`
	Domain    string `json:"domain"`
	BaseURL   string `json:"base_url"`
}

func decodeStoreEmailConfig(config map[string]any) (storeEmailConfig, error) {
	var decoded storeEmailConfig
	payload, err := json.Marshal(config)
	if err != nil {
		return decoded, fmt.Errorf("failed to encode store email config: %w", err)
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return decoded, fmt.Errorf("failed to decode store email config: %w", err)
	}

	return decoded, nil
}
