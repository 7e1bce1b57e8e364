package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SettlementStatusPending   = "pending"
	SettlementStatusSucceeded = "succeeded"
	SettlementStatusFailed    = "failed"
)

const (
	ProviderStripe = "stripe"
	ProviderPolar  = "polar"
	ProviderDev    = "dev"
)

// Settlement is one attempt to pay off a failed goal's commitment.
type Settlement struct {
	ID                string          `db:"id" json:"id"`
	GoalID            string          `db:"goal_id" json:"goal_id"`
	UserID            string          `db:"user_id" json:"user_id"`
	Provider          string          `db:"provider" json:"provider"`
	ProviderPaymentID string          `db:"provider_payment_id" json:"payment_id"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Currency          string          `db:"currency" json:"currency"`
	Status            string          `db:"status" json:"status"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`

	// Returned to the client once, never stored.
	ClientSecret string `db:"-" json:"client_secret,omitempty"`
	CheckoutURL  string `db:"-" json:"checkout_url,omitempty"`
}

func (s *Settlement) IsPending() bool {
	return s.Status == SettlementStatusPending
}

func (s *Settlement) FormatAmount() string {
	currencySymbols := map[string]string{
		"usd": "$",
		"eur": "€",
		"gbp": "£",
	}

	symbol := currencySymbols[s.Currency]
	if symbol == "" {
		symbol = "$"
	}

	return fmt.Sprintf("%s%s", symbol, s.Amount.StringFixed(2))
}
