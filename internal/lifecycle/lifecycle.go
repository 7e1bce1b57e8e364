// Package lifecycle is the goal state machine.
//
// Every function here is pure: it takes a goal snapshot and today's date and
// returns a patch (or a decision) that the caller persists. Nothing reads the
// wall clock or touches storage.
package lifecycle

import (
	"errors"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/model"
)

const (
	// GracePeriodDays after the end date before an incomplete goal fails.
	GracePeriodDays = 3
	// BackfillWindowDays is how far back a missed check-in can be recorded.
	BackfillWindowDays = 3
)

var (
	ErrGoalNotActive         = errors.New("goal is not active")
	ErrOutsideGoalRange      = errors.New("date is outside the goal's date range")
	ErrCheckInDateNotAllowed = errors.New("check-in date must be today or within the backfill window")
	ErrFailureNotAllowed     = errors.New("goal can still be completed on schedule")
	ErrNotSettleable         = errors.New("goal has no pending commitment to settle")
)

// CheckIn records date on goal. A date already checked in yields an empty
// patch and no error. Reaching the target completes the goal.
func CheckIn(goal *model.Goal, date, today civil.Date) (model.GoalPatch, error) {
	if goal.HasCheckIn(date) {
		return model.GoalPatch{}, nil
	}
	if !goal.IsActive() {
		return model.GoalPatch{}, ErrGoalNotActive
	}
	if !calendar.Within(date, goal.StartDate, goal.EndDate) {
		return model.GoalPatch{}, ErrOutsideGoalRange
	}
	if date != today && !inBackfillWindow(date, today) {
		return model.GoalPatch{}, ErrCheckInDateNotAllowed
	}

	checkIns := make([]civil.Date, 0, len(goal.CheckIns)+1)
	checkIns = append(checkIns, goal.CheckIns...)
	checkIns = append(checkIns, date)

	patch := model.GoalPatch{CheckIns: checkIns}
	if len(checkIns) >= goal.TargetDays {
		patch.Status = model.StringPtr(model.GoalStatusCompleted)
	}
	return patch, nil
}

// CanBackfill reports whether a past date d may still be checked in.
func CanBackfill(goal *model.Goal, d, today civil.Date) bool {
	return goal.IsActive() &&
		calendar.Within(d, goal.StartDate, goal.EndDate) &&
		inBackfillWindow(d, today) &&
		!goal.HasCheckIn(d)
}

// BackfillDates lists the eligible backfill dates, most recent first.
func BackfillDates(goal *model.Goal, today civil.Date) []civil.Date {
	var dates []civil.Date
	for daysAgo := 1; daysAgo <= BackfillWindowDays; daysAgo++ {
		d := today.AddDays(-daysAgo)
		if CanBackfill(goal, d, today) {
			dates = append(dates, d)
		}
	}
	return dates
}

func inBackfillWindow(d, today civil.Date) bool {
	return calendar.Within(d, today.AddDays(-BackfillWindowDays), today.AddDays(-1))
}

// ShouldAutoFail: the grace period has fully elapsed and the target was not
// reached. Only active goals are repaired; completed goals never fail.
func ShouldAutoFail(goal *model.Goal, today civil.Date) bool {
	if !goal.IsActive() {
		return false
	}
	graceEnds := goal.EndDate.AddDays(GracePeriodDays)
	return today.After(graceEnds) && len(goal.CheckIns) < goal.TargetDays
}

// FailPatch is the transition to failed, shared by auto and manual failure.
func FailPatch(goal *model.Goal) model.GoalPatch {
	return model.GoalPatch{
		Status:        model.StringPtr(model.GoalStatusFailed),
		PaymentStatus: model.StringPtr(goal.FailedPaymentStatus()),
	}
}

// SweepItem is a goal that needs auto-fail repair.
type SweepItem struct {
	Goal  *model.Goal
	Patch model.GoalPatch
}

// Sweep returns the repairs needed across a goal collection.
func Sweep(goals []*model.Goal, today civil.Date) []SweepItem {
	var items []SweepItem
	for _, g := range goals {
		if ShouldAutoFail(g, today) {
			items = append(items, SweepItem{Goal: g, Patch: FailPatch(g)})
		}
	}
	return items
}

// RemainingDays counts the calendar days left to check in, including today
// when today is inside the goal range.
func RemainingDays(goal *model.Goal, today civil.Date) int {
	if today.After(goal.EndDate) {
		return 0
	}
	from := calendar.Max(today, goal.StartDate)
	return calendar.InclusiveDayCount(from, goal.EndDate)
}

// CanMarkFailed reports that completing on schedule is no longer possible.
func CanMarkFailed(goal *model.Goal, today civil.Date) bool {
	return goal.IsActive() && checkInDaysLeft(goal, today) < goal.RemainingCheckIns()
}

// checkInDaysLeft is RemainingDays without today once today is checked in.
func checkInDaysLeft(goal *model.Goal, today civil.Date) int {
	days := RemainingDays(goal, today)
	if days > 0 && goal.HasCheckIn(today) {
		days--
	}
	return days
}

// MarkFailed is the opt-in early failure.
func MarkFailed(goal *model.Goal, today civil.Date) (model.GoalPatch, error) {
	if !CanMarkFailed(goal, today) {
		if !goal.IsActive() {
			return model.GoalPatch{}, ErrGoalNotActive
		}
		return model.GoalPatch{}, ErrFailureNotAllowed
	}
	return FailPatch(goal), nil
}

func CanSettle(goal *model.Goal) bool {
	return goal.NeedsSettlement()
}

// SettledPatch marks a pending commitment as paid.
func SettledPatch(goal *model.Goal) (model.GoalPatch, error) {
	if !CanSettle(goal) {
		return model.GoalPatch{}, ErrNotSettleable
	}
	return model.GoalPatch{PaymentStatus: model.StringPtr(model.PaymentStatusPaid)}, nil
}
