package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/google/uuid"
)

// DeclineSuffix makes the dev gateway report a payment as declined.
const DeclineSuffix = "_decline"

// DevGateway settles without a provider. Development only.
type DevGateway struct {
	// Decline marks every new payment as one that will be declined.
	Decline bool
}

func NewDevGateway(decline bool) *DevGateway {
	slog.Warn("dev payment gateway in use, settlements are not charged")
	return &DevGateway{Decline: decline}
}

func (d *DevGateway) Name() string {
	return model.ProviderDev
}

func (d *DevGateway) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentHandle, error) {
	id := "dev_" + uuid.New().String()
	if d.Decline {
		id += DeclineSuffix
	}

	slog.Info("dev payment created", "goal_id", req.GoalID, "payment_id", id, "amount", req.Amount.StringFixed(2))
	return &PaymentHandle{ID: id, ClientSecret: id + "_secret"}, nil
}

func (d *DevGateway) PaymentSucceeded(ctx context.Context, paymentID string) (bool, error) {
	if !strings.HasPrefix(paymentID, "dev_") {
		return false, fmt.Errorf("unknown dev payment: %s", paymentID)
	}
	return !strings.HasSuffix(paymentID, DeclineSuffix), nil
}

// ParseWebhook accepts {"payment_id": "...", "succeeded": true}.
func (d *DevGateway) ParseWebhook(payload []byte, headers http.Header) (*PaymentEvent, error) {
	var event struct {
		PaymentID string `json:"payment_id"`
		Succeeded bool   `json:"succeeded"`
	}

	err := json.Unmarshal(payload, &event)
	if err != nil || event.PaymentID == "" {
		return nil, ErrInvalidWebhook
	}

	return &PaymentEvent{PaymentID: event.PaymentID, Succeeded: event.Succeeded}, nil
}
