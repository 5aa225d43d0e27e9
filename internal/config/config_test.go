package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:       "postgres://localhost:5432/bazaar",
		AuthTokenSecret:   strings.Repeat("s", 32),
		EncryptionKey:     strings.Repeat("k", 32),
		CacheProvider:     "memory",
		CampaignSendDelay: time.Second,
		WelcomeBonusCoins: 50,
		LogFormat:         "text",
		Port:              "8080",
	}
}

func TestValidateEncryptionKeyLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		encryptionKey string
		wantErr       bool
	}{
		{
			name:          "valid 32-byte key",
			encryptionKey: strings.Repeat("k", 32),
			wantErr:       false,
		},
		{
			name:          "invalid short key",
			encryptionKey: "short",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			cfg.EncryptionKey = tt.encryptionKey

			err := cfg.validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestValidateCacheProvider(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CacheProvider = "invalid"

	err := cfg.validate()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "CacheProvider") || !strings.Contains(err.Error(), "oneof") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNegativeCampaignDelay(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CampaignSendDelay = -time.Second

	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestCardPaymentsEnabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	if cfg.CardPaymentsEnabled() {
		t.Errorf("expected card payments disabled without a key")
	}

	cfg.StripeSecretKey = "sk_test_123"
	if !cfg.CardPaymentsEnabled() {
		t.Errorf("expected card payments enabled with a key")
	}
}
