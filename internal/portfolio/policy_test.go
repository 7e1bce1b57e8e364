package portfolio

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) civil.Date {
	d, err := civil.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func goals(statuses ...[2]string) []*model.Goal {
	out := make([]*model.Goal, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, &model.Goal{
			ID:            string(rune('a' + i)),
			Status:        s[0],
			PaymentStatus: s[1],
		})
	}
	return out
}

var (
	active        = [2]string{model.GoalStatusActive, model.PaymentStatusWaived}
	failedPending = [2]string{model.GoalStatusFailed, model.PaymentStatusPending}
	failedPaid    = [2]string{model.GoalStatusFailed, model.PaymentStatusPaid}
	completed     = [2]string{model.GoalStatusCompleted, model.PaymentStatusOngoing}
)

func TestCanCreateNewGoal(t *testing.T) {
	tests := []struct {
		name  string
		goals []*model.Goal
		want  Decision
	}{
		{"no goals", nil, Decision{Allowed: true}},
		{"four active", goals(active, active, active, active), Decision{Allowed: true}},
		{"five active", goals(active, active, active, active, active), Decision{Reason: ReasonActiveLimit}},
		{"four active and one unpaid", goals(active, active, active, active, failedPending), Decision{Reason: ReasonUnpaidGoal}},
		{"single unpaid", goals(failedPending), Decision{Reason: ReasonUnpaidGoal}},
		{"settled and completed do not count", goals(active, active, active, active, failedPaid, completed), Decision{Allowed: true}},
	}

	policy := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanCreateNewGoal(tt.goals))
		})
	}
}

func TestCanCreateNewGoal_CustomCeiling(t *testing.T) {
	policy := Policy{MaxActiveGoals: 1, DeleteWindowDays: 3}

	assert.False(t, policy.CanCreateNewGoal(goals(active)).Allowed)
	assert.True(t, policy.CanCreateNewGoal(goals(completed)).Allowed)
}

func TestCanDeleteGoal(t *testing.T) {
	goal := &model.Goal{StartDate: day("2024-01-01"), Status: model.GoalStatusActive}

	tests := []struct {
		today string
		want  bool
	}{
		{"2023-12-25", true},
		{"2024-01-01", true},
		{"2024-01-04", true},
		{"2024-01-05", false},
		{"2024-03-01", false},
	}

	policy := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanDeleteGoal(goal, day(tt.today)).Allowed)
		})
	}
}

func TestCanDeleteGoal_IgnoresStatus(t *testing.T) {
	goal := &model.Goal{
		StartDate:     day("2024-01-01"),
		Status:        model.GoalStatusFailed,
		PaymentStatus: model.PaymentStatusPending,
	}

	assert.True(t, DefaultPolicy().CanDeleteGoal(goal, day("2024-01-02")).Allowed)
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, Decision{Allowed: true}.Err())
	assert.ErrorIs(t, Decision{Reason: ReasonActiveLimit}.Err(), ErrCreateDenied)
	assert.ErrorIs(t, Decision{Reason: ReasonUnpaidGoal}.Err(), ErrCreateDenied)
	assert.ErrorIs(t, Decision{Reason: ReasonWindowExpired}.Err(), ErrDeleteDenied)

	var denied *DeniedError
	require.ErrorAs(t, Decision{Reason: ReasonUnpaidGoal}.Err(), &denied)
	assert.Equal(t, ReasonUnpaidGoal, denied.Reason)
	assert.Equal(t, "unpaid or too many ongoing goals: unpaid_goal", denied.Error())
}

func TestNextSettlement(t *testing.T) {
	list := goals(active, failedPaid, failedPending, failedPending)

	next := NextSettlement(list)

	assert.Same(t, list[2], next)
	assert.Nil(t, NextSettlement(goals(active, completed)))
}
