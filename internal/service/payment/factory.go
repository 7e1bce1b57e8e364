package payment

import (
	"fmt"
	"log/slog"

	"github.com/cmeetit/cmeetit/internal/config"
	"github.com/cmeetit/cmeetit/internal/model"
)

// NewGateway creates a settlement gateway based on configuration
func NewGateway(cfg *config.Config) (Gateway, error) {
	provider := cfg.PaymentProvider

	slog.Info("initializing payment gateway", "provider", provider)

	switch provider {
	case model.ProviderPolar:
		if cfg.PolarAPIKey == "" {
			return nil, fmt.Errorf("POLAR_API_KEY is required when using Polar provider")
		}
		if cfg.PolarWebhookSecret == "" {
			return nil, fmt.Errorf("POLAR_WEBHOOK_SECRET is required when using Polar provider")
		}
		if cfg.PolarSettlementProductID == "" {
			return nil, fmt.Errorf("POLAR_SETTLEMENT_PRODUCT_ID is required when using Polar provider")
		}
		return NewPolarGateway(PolarConfig{
			APIKey:        cfg.PolarAPIKey,
			WebhookSecret: cfg.PolarWebhookSecret,
			SandboxMode:   cfg.PolarSandboxMode,
			ProductID:     cfg.PolarSettlementProductID,
			AppURL:        cfg.AppURL,
		}), nil

	case model.ProviderStripe:
		if cfg.StripeSecretKey == "" {
			return nil, fmt.Errorf("STRIPE_SECRET_KEY is required when using Stripe provider")
		}
		if cfg.StripeWebhookSecret == "" {
			return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when using Stripe provider")
		}
		return NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret), nil

	case model.ProviderDev:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("dev payment provider is not allowed in production")
		}
		return NewDevGateway(cfg.DevDeclinePayments), nil

	default:
		return nil, fmt.Errorf("unknown payment provider: %s (supported: polar, stripe, dev)", provider)
	}
}
