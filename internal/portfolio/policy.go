// Package portfolio holds the rules that look at a user's whole goal
// collection rather than a single goal.
package portfolio

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/model"
)

const (
	DefaultMaxActiveGoals   = 5
	DefaultDeleteWindowDays = 3
)

const (
	ReasonUnpaidGoal    = "unpaid_goal"
	ReasonActiveLimit   = "active_limit"
	ReasonWindowExpired = "delete_window_expired"
)

var (
	ErrCreateDenied = errors.New("unpaid or too many ongoing goals")
	ErrDeleteDenied = errors.New("deletion window has passed")
)

// Decision is an allow/deny answer with a machine-readable reason.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// DeniedError carries the reason of a denied decision. It unwraps to
// ErrCreateDenied or ErrDeleteDenied.
type DeniedError struct {
	Err    error
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return e.Err
}

// Err returns nil when allowed, otherwise a *DeniedError.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonWindowExpired:
		return &DeniedError{Err: ErrDeleteDenied, Reason: d.Reason}
	default:
		return &DeniedError{Err: ErrCreateDenied, Reason: d.Reason}
	}
}

type Policy struct {
	MaxActiveGoals   int
	DeleteWindowDays int
}

func DefaultPolicy() Policy {
	return Policy{
		MaxActiveGoals:   DefaultMaxActiveGoals,
		DeleteWindowDays: DefaultDeleteWindowDays,
	}
}

// CanCreateNewGoal denies while any goal still owes its commitment, or once
// the active ceiling is reached.
func (p Policy) CanCreateNewGoal(goals []*model.Goal) Decision {
	if NextSettlement(goals) != nil {
		return Decision{Reason: ReasonUnpaidGoal}
	}
	if ActiveCount(goals) >= p.MaxActiveGoals {
		return Decision{Reason: ReasonActiveLimit}
	}
	return Decision{Allowed: true}
}

// CanDeleteGoal allows deletion until DeleteWindowDays after the start date,
// whatever the goal's status. Goals that have not started are deletable.
func (p Policy) CanDeleteGoal(goal *model.Goal, today civil.Date) Decision {
	if calendar.DaysBetween(goal.StartDate, today) <= p.DeleteWindowDays {
		return Decision{Allowed: true}
	}
	return Decision{Reason: ReasonWindowExpired}
}

func ActiveCount(goals []*model.Goal) int {
	n := 0
	for _, g := range goals {
		if g.IsActive() {
			n++
		}
	}
	return n
}

// NextSettlement returns the first goal that still needs settling, or nil.
func NextSettlement(goals []*model.Goal) *model.Goal {
	for _, g := range goals {
		if g.NeedsSettlement() {
			return g
		}
	}
	return nil
}
