package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidWebhook = errors.New("invalid webhook")
)

// PaymentRequest asks the provider for a handle to charge a goal's commitment.
type PaymentRequest struct {
	GoalID   string
	UserID   string
	Amount   decimal.Decimal
	Currency string
}

// PaymentHandle is what the client needs to complete the payment. ID is the
// provider's payment identifier used for confirmation.
type PaymentHandle struct {
	ID           string
	ClientSecret string
	CheckoutURL  string
}

// PaymentEvent is a provider callback reduced to what settlement needs.
type PaymentEvent struct {
	PaymentID string
	Succeeded bool
}

// Gateway defines the interface that all settlement providers must implement
type Gateway interface {
	// Name returns the provider name (e.g., "polar", "stripe")
	Name() string

	// CreatePayment obtains a payment handle for the request amount
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentHandle, error)

	// PaymentSucceeded asks the provider whether the payment completed
	PaymentSucceeded(ctx context.Context, paymentID string) (bool, error)

	// ParseWebhook verifies a callback. A nil event means the callback is
	// not about a settlement payment.
	ParseWebhook(payload []byte, headers http.Header) (*PaymentEvent, error)
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
