package lifecycle

import (
	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/model"
)

const (
	ActionNone    = "none"
	ActionCheckIn = "check_in"
	ActionSettle  = "settle"
)

// Action is the single primary action offered for a goal.
type Action struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// ActionFor derives the primary action. The checks run in a fixed priority
// order and the first match wins.
func ActionFor(goal *model.Goal, today civil.Date) Action {
	switch {
	case today.Before(goal.StartDate):
		return Action{Kind: ActionNone, Label: "Not Started", Disabled: true}
	case goal.Status == model.GoalStatusCompleted:
		return Action{Kind: ActionNone, Label: "Completed", Disabled: true}
	case goal.Status == model.GoalStatusFailed && goal.PaymentStatus == model.PaymentStatusPaid:
		return Action{Kind: ActionNone, Label: "Settled", Disabled: true}
	case goal.Status == model.GoalStatusFailed && goal.PaymentStatus == model.PaymentStatusPending:
		return Action{Kind: ActionSettle, Label: "Settle Up", Disabled: false}
	case goal.HasCheckIn(today):
		return Action{Kind: ActionNone, Label: "Checked In", Disabled: true}
	default:
		return Action{Kind: ActionCheckIn, Label: "Check In Today", Disabled: false}
	}
}

// Summary is the read model a client renders for one goal.
type Summary struct {
	Goal              *model.Goal  `json:"goal"`
	Action            Action       `json:"action"`
	Progress          float64      `json:"progress"`
	RemainingCheckIns int          `json:"remaining_check_ins"`
	DaysLeft          int          `json:"days_left"`
	BackfillDates     []civil.Date `json:"backfill_dates"`
	CanMarkFailed     bool         `json:"can_mark_failed"`
	CanDelete         bool         `json:"can_delete"`
}

// Summarize builds the read model. canDelete comes from the portfolio policy,
// which owns the deletion window.
func Summarize(goal *model.Goal, today civil.Date, canDelete bool) Summary {
	sorted := *goal
	sorted.CheckIns = calendar.Sorted(goal.CheckIns)

	backfill := BackfillDates(goal, today)
	if backfill == nil {
		backfill = []civil.Date{}
	}

	return Summary{
		Goal:              &sorted,
		Action:            ActionFor(goal, today),
		Progress:          goal.Progress(),
		RemainingCheckIns: goal.RemainingCheckIns(),
		DaysLeft:          RemainingDays(goal, today),
		BackfillDates:     backfill,
		CanMarkFailed:     CanMarkFailed(goal, today),
		CanDelete:         canDelete,
	}
}
