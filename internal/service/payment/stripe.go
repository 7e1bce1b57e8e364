package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
)

type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	// Set Stripe API key
	stripe.Key = secretKey

	slog.Info("stripe gateway initialized")

	return &StripeGateway{webhookSecret: webhookSecret}
}

func (s *StripeGateway) Name() string {
	return model.ProviderStripe
}

func (s *StripeGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentHandle, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits(req.Amount)),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("goal_id", req.GoalID)
	params.AddMetadata("user_id", req.UserID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	slog.Info("stripe payment intent created", "goal_id", req.GoalID, "payment_intent_id", pi.ID)
	return &PaymentHandle{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *StripeGateway) PaymentSucceeded(ctx context.Context, paymentID string) (bool, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(paymentID, params)
	if err != nil {
		return false, fmt.Errorf("failed to get payment intent: %w", err)
	}

	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

func (s *StripeGateway) ParseWebhook(payload []byte, headers http.Header) (*PaymentEvent, error) {
	signature := headers.Get("Stripe-Signature")

	// Use ConstructEventWithOptions to ignore API version mismatch
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		s.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWebhook, err)
	}

	slog.Info("stripe webhook received", "event_type", event.Type)

	var succeeded bool
	switch event.Type {
	case "payment_intent.succeeded":
		succeeded = true
	case "payment_intent.payment_failed":
		succeeded = false
	default:
		return nil, nil
	}

	var intent struct {
		ID string `json:"id"`
	}
	err = json.Unmarshal(event.Data.Raw, &intent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment intent: %w", err)
	}

	return &PaymentEvent{PaymentID: intent.ID, Succeeded: succeeded}, nil
}
