package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmeetit/cmeetit/internal/model"
	polargo "github.com/polarsource/polar-go"
	"github.com/polarsource/polar-go/models/components"
	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
)

const polarCheckoutSucceeded = "succeeded"

type PolarConfig struct {
	APIKey        string
	WebhookSecret string
	SandboxMode   bool
	// ProductID is a pay-what-you-want product; the checkout sets the amount.
	ProductID string
	AppURL    string
}

type PolarGateway struct {
	cfg    PolarConfig
	client *polargo.Polar
}

func NewPolarGateway(cfg PolarConfig) *PolarGateway {
	var serverOption polargo.SDKOption
	if cfg.SandboxMode {
		serverOption = polargo.WithServer(polargo.ServerSandbox)
		slog.Info("polar using sandbox mode")
	} else {
		serverOption = polargo.WithServer(polargo.ServerProduction)
		slog.Info("polar using production mode")
	}

	client := polargo.New(
		polargo.WithSecurity(cfg.APIKey),
		serverOption,
	)

	return &PolarGateway{
		cfg:    cfg,
		client: client,
	}
}

func (p *PolarGateway) Name() string {
	return model.ProviderPolar
}

func (p *PolarGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentHandle, error) {
	returnURL := fmt.Sprintf("%s/goals/%s", p.cfg.AppURL, req.GoalID)

	metadata := map[string]components.CheckoutCreateMetadata{
		"goal_id": components.CreateCheckoutCreateMetadataStr(req.GoalID),
		"user_id": components.CreateCheckoutCreateMetadataStr(req.UserID),
	}

	res, err := p.client.Checkouts.Create(ctx, components.CheckoutCreate{
		Products:   []string{p.cfg.ProductID},
		Amount:     polargo.Int64(minorUnits(req.Amount)),
		SuccessURL: polargo.String(returnURL),
		ReturnURL:  polargo.String(returnURL),
		Metadata:   metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	if res == nil || res.Checkout == nil {
		return nil, fmt.Errorf("checkout response is nil")
	}

	slog.Info("polar checkout created", "goal_id", req.GoalID, "checkout_id", res.Checkout.ID)
	return &PaymentHandle{
		ID:           res.Checkout.ID,
		ClientSecret: res.Checkout.ClientSecret,
		CheckoutURL:  res.Checkout.URL,
	}, nil
}

func (p *PolarGateway) PaymentSucceeded(ctx context.Context, paymentID string) (bool, error) {
	res, err := p.client.Checkouts.Get(ctx, paymentID)
	if err != nil {
		return false, fmt.Errorf("failed to get checkout: %w", err)
	}

	if res == nil || res.Checkout == nil {
		return false, fmt.Errorf("checkout response is nil")
	}

	return string(res.Checkout.Status) == polarCheckoutSucceeded, nil
}

func (p *PolarGateway) ParseWebhook(payload []byte, headers http.Header) (*PaymentEvent, error) {
	// Unsigned callbacks are never trusted.
	if p.cfg.WebhookSecret == "" {
		slog.Error("polar webhook rejected, no webhook secret configured")
		return nil, fmt.Errorf("%w: no webhook secret configured", ErrInvalidWebhook)
	}

	wh, err := standardwebhooks.NewWebhookRaw([]byte(p.cfg.WebhookSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook verifier: %w", err)
	}

	httpHeaders := http.Header{}
	httpHeaders.Set("webhook-id", headers.Get("webhook-id"))
	httpHeaders.Set("webhook-timestamp", headers.Get("webhook-timestamp"))
	httpHeaders.Set("webhook-signature", headers.Get("webhook-signature"))

	err = wh.Verify(payload, httpHeaders)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}

	err = json.Unmarshal(payload, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to parse webhook: %w", err)
	}

	slog.Info("polar webhook received", "event_type", event.Type)

	if event.Type != "checkout.updated" {
		return nil, nil
	}

	switch event.Data.Status {
	case polarCheckoutSucceeded:
		return &PaymentEvent{PaymentID: event.Data.ID, Succeeded: true}, nil
	case "failed", "expired":
		return &PaymentEvent{PaymentID: event.Data.ID, Succeeded: false}, nil
	default:
		return nil, nil
	}
}
