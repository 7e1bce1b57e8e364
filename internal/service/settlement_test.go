package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/cmeetit/cmeetit/internal/lifecycle"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/cmeetit/cmeetit/internal/service/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failedGoal(id string, amount int64) *model.Goal {
	g := staked(goal(id, "2024-01-01", "2024-01-10", 5), amount)
	g.Status = model.GoalStatusFailed
	g.PaymentStatus = model.PaymentStatusPending
	return g
}

type settlementFixture struct {
	goals       *fakeGoalRepo
	settlements *fakeSettlementRepo
	gateway     *fakeGateway
	svc         *SettlementService
}

func newSettlementFixture(goals ...*model.Goal) *settlementFixture {
	f := &settlementFixture{
		goals:       newFakeGoalRepo(goals...),
		settlements: &fakeSettlementRepo{},
		gateway:     &fakeGateway{handle: &payment.PaymentHandle{ID: "pi_1", ClientSecret: "pi_1_secret"}},
	}
	goalService, _ := newGoalService(f.goals, "2024-01-20")
	f.svc = NewSettlementService(goalService, f.goals, f.settlements, f.gateway, "usd")
	return f
}

func TestSettlementService_Start(t *testing.T) {
	f := newSettlementFixture(failedGoal("a", 50))

	s, err := f.svc.Start(context.Background(), userID, "a")
	require.NoError(t, err)

	assert.Equal(t, "pi_1", s.ProviderPaymentID)
	assert.Equal(t, "pi_1_secret", s.ClientSecret)
	assert.Equal(t, model.SettlementStatusPending, s.Status)
	assert.True(t, s.Amount.Equal(decimal.NewFromInt(50)))

	require.Len(t, f.gateway.requests, 1)
	assert.Equal(t, "usd", f.gateway.requests[0].Currency)
	assert.True(t, f.gateway.requests[0].Amount.Equal(decimal.NewFromInt(50)))

	assert.Equal(t, model.PaymentStatusPending, f.goals.get("a").PaymentStatus, "start never touches the goal")
}

func TestSettlementService_StartErrors(t *testing.T) {
	tests := []struct {
		name    string
		goal    *model.Goal
		gateway func(g *fakeGateway)
		wantErr error
	}{
		{
			name:    "active goal",
			goal:    staked(goal("a", "2024-01-15", "2024-01-30", 5), 50),
			wantErr: lifecycle.ErrNotSettleable,
		},
		{
			name: "already paid",
			goal: func() *model.Goal {
				g := failedGoal("a", 50)
				g.PaymentStatus = model.PaymentStatusPaid
				return g
			}(),
			wantErr: lifecycle.ErrNotSettleable,
		},
		{
			name:    "no handle",
			goal:    failedGoal("a", 50),
			gateway: func(g *fakeGateway) { g.handle = nil },
			wantErr: ErrNoPaymentHandle,
		},
		{
			name:    "empty handle",
			goal:    failedGoal("a", 50),
			gateway: func(g *fakeGateway) { g.handle = &payment.PaymentHandle{} },
			wantErr: ErrNoPaymentHandle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSettlementFixture(tt.goal)
			if tt.gateway != nil {
				tt.gateway(f.gateway)
			}

			_, err := f.svc.Start(context.Background(), userID, "a")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.settlements.settlements)
		})
	}
}

func TestSettlementService_StartGatewayError(t *testing.T) {
	f := newSettlementFixture(failedGoal("a", 50))
	boom := errors.New("provider down")
	f.gateway.createErr = boom

	_, err := f.svc.Start(context.Background(), userID, "a")

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.settlements.settlements)
}

func startedFixture(t *testing.T) *settlementFixture {
	t.Helper()
	f := newSettlementFixture(failedGoal("a", 50))
	_, err := f.svc.Start(context.Background(), userID, "a")
	require.NoError(t, err)
	return f
}

func TestSettlementService_ConfirmSuccess(t *testing.T) {
	f := startedFixture(t)
	f.gateway.succeeded = true

	g, err := f.svc.Confirm(context.Background(), userID, "a", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, g.PaymentStatus)
	assert.Equal(t, model.GoalStatusFailed, g.Status)

	latest, err := f.svc.Latest(context.Background(), userID, "a")
	require.NoError(t, err)
	assert.Equal(t, model.SettlementStatusSucceeded, latest.Status)

	updates := f.goals.updates
	g, err = f.svc.Confirm(context.Background(), userID, "a", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPaid, g.PaymentStatus)
	assert.Equal(t, updates, f.goals.updates, "repeat confirmation is a no-op")
}

func TestSettlementService_ConfirmFailureLeavesGoal(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(g *fakeGateway)
		payment string
		wantErr error
	}{
		{
			name:    "declined",
			setup:   func(g *fakeGateway) { g.succeeded = false },
			payment: "pi_1",
			wantErr: ErrPaymentDeclined,
		},
		{
			name:    "gateway error",
			setup:   func(g *fakeGateway) { g.confirmErr = errStorage },
			payment: "pi_1",
			wantErr: errStorage,
		},
		{
			name:    "unknown payment",
			setup:   func(g *fakeGateway) { g.succeeded = true },
			payment: "pi_other",
			wantErr: ErrUnknownPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := startedFixture(t)
			tt.setup(f.gateway)
			updates := f.goals.updates

			_, err := f.svc.Confirm(context.Background(), userID, "a", tt.payment)
			assert.ErrorIs(t, err, tt.wantErr)

			g := f.goals.get("a")
			assert.Equal(t, model.GoalStatusFailed, g.Status)
			assert.Equal(t, model.PaymentStatusPending, g.PaymentStatus)
			assert.Equal(t, updates, f.goals.updates)
		})
	}
}

func TestSettlementService_ConfirmDeclinedMarksSettlement(t *testing.T) {
	f := startedFixture(t)
	f.gateway.succeeded = false

	_, err := f.svc.Confirm(context.Background(), userID, "a", "pi_1")
	require.ErrorIs(t, err, ErrPaymentDeclined)

	latest, err := f.svc.Latest(context.Background(), userID, "a")
	require.NoError(t, err)
	assert.Equal(t, model.SettlementStatusFailed, latest.Status)
}

func TestSettlementService_HandleWebhook(t *testing.T) {
	tests := []struct {
		name           string
		event          *payment.PaymentEvent
		wantPayment    string
		wantSettlement string
	}{
		{
			name:           "succeeded",
			event:          &payment.PaymentEvent{PaymentID: "pi_1", Succeeded: true},
			wantPayment:    model.PaymentStatusPaid,
			wantSettlement: model.SettlementStatusSucceeded,
		},
		{
			name:           "failed",
			event:          &payment.PaymentEvent{PaymentID: "pi_1", Succeeded: false},
			wantPayment:    model.PaymentStatusPending,
			wantSettlement: model.SettlementStatusFailed,
		},
		{
			name:           "unknown payment",
			event:          &payment.PaymentEvent{PaymentID: "pi_zzz", Succeeded: true},
			wantPayment:    model.PaymentStatusPending,
			wantSettlement: model.SettlementStatusPending,
		},
		{
			name:           "unrelated event",
			event:          nil,
			wantPayment:    model.PaymentStatusPending,
			wantSettlement: model.SettlementStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := startedFixture(t)
			f.gateway.event = tt.event

			require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte(`{}`), http.Header{}))

			assert.Equal(t, tt.wantPayment, f.goals.get("a").PaymentStatus)
			latest, err := f.svc.Latest(context.Background(), userID, "a")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSettlement, latest.Status)
		})
	}
}

func TestSettlementService_HandleWebhookInvalid(t *testing.T) {
	f := startedFixture(t)
	f.gateway.webhookErr = payment.ErrInvalidWebhook

	err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), http.Header{})

	assert.ErrorIs(t, err, payment.ErrInvalidWebhook)
	assert.Equal(t, model.PaymentStatusPending, f.goals.get("a").PaymentStatus)
}
