package model

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/shopspring/decimal"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusFailed    = "failed"
)

const (
	CommitmentStandard  = "standard"
	CommitmentCommitted = "committed"
)

const (
	// PaymentStatusWaived: nothing is ever owed (standard goal, or forgiven).
	PaymentStatusWaived = "waived"
	// PaymentStatusOngoing: committed goal still running, nothing owed yet.
	PaymentStatusOngoing = "ongoing"
	// PaymentStatusPending: failed committed goal that still owes its amount.
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

type Goal struct {
	ID                     string          `json:"id"`
	UserID                 string          `json:"user_id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description,omitempty"`
	Motivation             string          `json:"motivation,omitempty"`
	AccountabilityPartners []string        `json:"accountability_partners,omitempty"`
	StartDate              civil.Date      `json:"start_date"`
	EndDate                civil.Date      `json:"end_date"`
	TargetDays             int             `json:"target_days"`
	CheckIns               []civil.Date    `json:"check_ins"`
	CommitmentType         string          `json:"commitment_type"`
	CommitmentAmount       decimal.Decimal `json:"commitment_amount"`
	Status                 string          `json:"status"`
	PaymentStatus          string          `json:"payment_status"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

func (g *Goal) IsActive() bool {
	return g.Status == GoalStatusActive
}

func (g *Goal) IsCommitted() bool {
	return g.CommitmentType == CommitmentCommitted
}

// NeedsSettlement reports a failed goal whose commitment is still owed.
func (g *Goal) NeedsSettlement() bool {
	return g.Status == GoalStatusFailed && g.PaymentStatus == PaymentStatusPending
}

func (g *Goal) HasCheckIn(d civil.Date) bool {
	return calendar.Contains(g.CheckIns, d)
}

// RemainingCheckIns is the number of check-ins still required, never negative.
func (g *Goal) RemainingCheckIns() int {
	remaining := g.TargetDays - len(g.CheckIns)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Progress returns check-ins over target, capped at 1.
func (g *Goal) Progress() float64 {
	if g.TargetDays <= 0 {
		return 0
	}
	p := float64(len(g.CheckIns)) / float64(g.TargetDays)
	if p > 1 {
		return 1
	}
	return p
}

// FailedPaymentStatus is the payment status a goal takes when it fails.
func (g *Goal) FailedPaymentStatus() string {
	if g.IsCommitted() {
		return PaymentStatusPending
	}
	return PaymentStatusWaived
}
