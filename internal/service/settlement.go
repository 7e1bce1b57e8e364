package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmeetit/cmeetit/internal/lifecycle"
	"github.com/cmeetit/cmeetit/internal/metrics"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/cmeetit/cmeetit/internal/repository"
	"github.com/cmeetit/cmeetit/internal/service/payment"
)

var (
	ErrNoPaymentHandle = errors.New("payment provider returned no payment handle")
	ErrPaymentDeclined = errors.New("payment was not completed")
	ErrUnknownPayment  = errors.New("payment does not belong to this goal")
)

// SettlementService pays off failed committed goals. The goal changes only
// after the gateway reports success; any other outcome leaves it as it was.
type SettlementService struct {
	goalService *GoalService
	goals       repository.GoalRepository
	settlements repository.SettlementRepository
	gateway     payment.Gateway
	currency    string
}

func NewSettlementService(
	goalService *GoalService,
	goals repository.GoalRepository,
	settlements repository.SettlementRepository,
	gateway payment.Gateway,
	currency string,
) *SettlementService {
	return &SettlementService{
		goalService: goalService,
		goals:       goals,
		settlements: settlements,
		gateway:     gateway,
		currency:    currency,
	}
}

// Start obtains a payment handle for the goal's commitment and records a
// pending settlement. The returned settlement carries the client secret.
func (s *SettlementService) Start(ctx context.Context, userID, goalID string) (*model.Settlement, error) {
	goal, err := s.goalService.Goal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if !lifecycle.CanSettle(goal) {
		return nil, lifecycle.ErrNotSettleable
	}

	handle, err := s.gateway.CreatePayment(ctx, payment.PaymentRequest{
		GoalID:   goal.ID,
		UserID:   userID,
		Amount:   goal.CommitmentAmount,
		Currency: s.currency,
	})
	if err != nil {
		metrics.IncrementSettlement(s.gateway.Name(), "error")
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if handle == nil || handle.ID == "" {
		metrics.IncrementSettlement(s.gateway.Name(), "error")
		return nil, ErrNoPaymentHandle
	}

	settlement := &model.Settlement{
		GoalID:            goal.ID,
		UserID:            userID,
		Provider:          s.gateway.Name(),
		ProviderPaymentID: handle.ID,
		Amount:            goal.CommitmentAmount,
		Currency:          s.currency,
		Status:            model.SettlementStatusPending,
	}

	err = s.settlements.Create(ctx, settlement)
	if err != nil {
		return nil, err
	}

	settlement.ClientSecret = handle.ClientSecret
	settlement.CheckoutURL = handle.CheckoutURL

	metrics.IncrementSettlement(s.gateway.Name(), "started")
	slog.Info("settlement started", "goal_id", goal.ID, "user_id", userID, "payment_id", handle.ID, "amount", settlement.FormatAmount())
	return settlement, nil
}

// Confirm asks the gateway whether paymentID succeeded. Confirming a goal
// that is already paid is a no-op.
func (s *SettlementService) Confirm(ctx context.Context, userID, goalID, paymentID string) (*model.Goal, error) {
	goal, err := s.goalService.Goal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if goal.PaymentStatus == model.PaymentStatusPaid {
		return goal, nil
	}
	if !lifecycle.CanSettle(goal) {
		return nil, lifecycle.ErrNotSettleable
	}

	settlement, err := s.settlements.ByProviderPaymentID(ctx, paymentID)
	if errors.Is(err, repository.ErrSettlementNotFound) {
		return nil, ErrUnknownPayment
	}
	if err != nil {
		return nil, err
	}
	if settlement.GoalID != goalID || settlement.UserID != userID {
		return nil, ErrUnknownPayment
	}

	succeeded, err := s.gateway.PaymentSucceeded(ctx, paymentID)
	if err != nil {
		metrics.IncrementSettlement(s.gateway.Name(), "error")
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	if !succeeded {
		s.markSettlement(ctx, settlement, model.SettlementStatusFailed)
		metrics.IncrementSettlement(s.gateway.Name(), "declined")
		return nil, ErrPaymentDeclined
	}

	err = s.settle(ctx, goal, settlement)
	if err != nil {
		return nil, err
	}

	return s.goals.ByID(ctx, userID, goalID)
}

// Latest returns the most recent settlement attempt for the goal.
func (s *SettlementService) Latest(ctx context.Context, userID, goalID string) (*model.Settlement, error) {
	return s.settlements.LatestForGoal(ctx, userID, goalID)
}

// HandleWebhook applies a provider callback. Callbacks for unknown payments
// or unrelated events are acknowledged and ignored.
func (s *SettlementService) HandleWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	event, err := s.gateway.ParseWebhook(payload, headers)
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}

	settlement, err := s.settlements.ByProviderPaymentID(ctx, event.PaymentID)
	if errors.Is(err, repository.ErrSettlementNotFound) {
		slog.Warn("webhook for unknown payment, skipping", "provider", s.gateway.Name(), "payment_id", event.PaymentID)
		return nil
	}
	if err != nil {
		return err
	}

	if !event.Succeeded {
		if settlement.IsPending() {
			s.markSettlement(ctx, settlement, model.SettlementStatusFailed)
			metrics.IncrementSettlement(s.gateway.Name(), "declined")
		}
		return nil
	}

	goal, err := s.goals.ByID(ctx, settlement.UserID, settlement.GoalID)
	if errors.Is(err, repository.ErrGoalNotFound) {
		slog.Warn("webhook for deleted goal, skipping", "goal_id", settlement.GoalID, "payment_id", event.PaymentID)
		return nil
	}
	if err != nil {
		return err
	}

	if !lifecycle.CanSettle(goal) {
		// Paid already (client confirmed first) or nothing owed.
		s.markSettlement(ctx, settlement, model.SettlementStatusSucceeded)
		return nil
	}

	return s.settle(ctx, goal, settlement)
}

func (s *SettlementService) settle(ctx context.Context, goal *model.Goal, settlement *model.Settlement) error {
	patch, err := lifecycle.SettledPatch(goal)
	if err != nil {
		return err
	}

	err = s.goals.Update(ctx, goal.UserID, goal.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to record settlement: %w", err)
	}

	s.markSettlement(ctx, settlement, model.SettlementStatusSucceeded)
	metrics.IncrementSettlement(s.gateway.Name(), "succeeded")
	slog.Info("goal settled", "goal_id", goal.ID, "user_id", goal.UserID, "payment_id", settlement.ProviderPaymentID)
	return nil
}

// markSettlement is bookkeeping only; the goal is the source of truth.
func (s *SettlementService) markSettlement(ctx context.Context, settlement *model.Settlement, status string) {
	if settlement.Status == status {
		return
	}

	err := s.settlements.UpdateStatus(ctx, settlement.ID, status)
	if err != nil {
		slog.Error("failed to update settlement status", "error", err, "settlement_id", settlement.ID, "status", status)
		return
	}
	settlement.Status = status
}
