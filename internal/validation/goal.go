package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/shopspring/decimal"
)

// Field keys reported in FieldErrors.
const (
	FieldTitle      = "title"
	FieldCommitment = "commitment"
	FieldDates      = "dates"
	FieldTargetDays = "target_days"
)

// NewGoalInput is the raw creation form. Numeric fields arrive as text so that
// both JSON numbers and strings can be validated the same way.
type NewGoalInput struct {
	Title                  string
	Description            string
	Motivation             string
	AccountabilityPartners []string
	CommitmentType         string
	CommitmentAmount       string
	StartDate              string
	EndDate                string
	TargetDays             string
}

// GoalRules are the configured creation bounds.
type GoalRules struct {
	MinCommitment    decimal.Decimal
	MaxCommitment    decimal.Decimal
	MaxStartLeadDays int
	MaxDurationDays  int
}

func DefaultGoalRules() GoalRules {
	return GoalRules{
		MinCommitment:    decimal.NewFromInt(3),
		MaxCommitment:    decimal.NewFromInt(500),
		MaxStartLeadDays: 14,
		MaxDurationDays:  365,
	}
}

// FieldErrors maps a field key to its message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid goal: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// ValidateTitle validates a goal title
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return errors.New("goal title is required")
	}

	return nil
}

// ValidateNewGoal checks every field of a creation request against today and
// the rules. All fields are checked even when an earlier one fails. On success
// it returns the goal to persist (no ID, user or timestamps yet).
func ValidateNewGoal(in NewGoalInput, today civil.Date, rules GoalRules) (*model.Goal, FieldErrors) {
	errs := FieldErrors{}

	if err := ValidateTitle(in.Title); err != nil {
		errs[FieldTitle] = err.Error()
	}

	commitmentType := strings.TrimSpace(in.CommitmentType)
	amount := decimal.Zero
	switch commitmentType {
	case model.CommitmentStandard:
	case model.CommitmentCommitted:
		a, err := decimal.NewFromString(strings.TrimSpace(in.CommitmentAmount))
		if err != nil || a.LessThan(rules.MinCommitment) || a.GreaterThan(rules.MaxCommitment) {
			errs[FieldCommitment] = fmt.Sprintf("amount must be %s to %s", rules.MinCommitment, rules.MaxCommitment)
		} else {
			amount = a
		}
	default:
		errs[FieldCommitment] = fmt.Sprintf("commitment type must be %q or %q", model.CommitmentStandard, model.CommitmentCommitted)
	}

	start, end, dateErr := validateDates(in.StartDate, in.EndDate, today, rules)
	if dateErr != "" {
		errs[FieldDates] = dateErr
	}

	// JSON numbers arrive as text, so 3.0 counts as 3.
	targetDays := 0
	d, err := decimal.NewFromString(strings.TrimSpace(in.TargetDays))
	if err == nil && d.IsInteger() && d.IsPositive() && d.LessThan(decimal.NewFromInt(1<<31)) {
		targetDays = int(d.IntPart())
	}
	switch {
	case targetDays < 1:
		errs[FieldTargetDays] = "target days must be a whole number of at least 1"
	case dateErr == "":
		maxTarget := calendar.InclusiveDayCount(start, end)
		if targetDays > maxTarget {
			errs[FieldTargetDays] = fmt.Sprintf("target days must be between 1 and %d", maxTarget)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	paymentStatus := model.PaymentStatusWaived
	if commitmentType == model.CommitmentCommitted {
		paymentStatus = model.PaymentStatusOngoing
	}

	return &model.Goal{
		Title:                  strings.TrimSpace(in.Title),
		Description:            strings.TrimSpace(in.Description),
		Motivation:             strings.TrimSpace(in.Motivation),
		AccountabilityPartners: partnerNames(in.AccountabilityPartners),
		StartDate:              start,
		EndDate:                end,
		TargetDays:             targetDays,
		CheckIns:               []civil.Date{},
		CommitmentType:         commitmentType,
		CommitmentAmount:       amount,
		Status:                 model.GoalStatusActive,
		PaymentStatus:          paymentStatus,
	}, nil
}

func validateDates(startStr, endStr string, today civil.Date, rules GoalRules) (civil.Date, civil.Date, string) {
	start, err := calendar.Parse(strings.TrimSpace(startStr))
	if err != nil {
		return civil.Date{}, civil.Date{}, "start date must be a valid YYYY-MM-DD date"
	}
	end, err := calendar.Parse(strings.TrimSpace(endStr))
	if err != nil {
		return civil.Date{}, civil.Date{}, "end date must be a valid YYYY-MM-DD date"
	}

	if !calendar.Within(start, today, today.AddDays(rules.MaxStartLeadDays)) {
		return start, end, fmt.Sprintf("start must be within the next %d days", rules.MaxStartLeadDays)
	}
	if !end.After(start) {
		return start, end, "end must be after start"
	}
	if end.After(start.AddDays(rules.MaxDurationDays)) {
		return start, end, fmt.Sprintf("end must be within %d days of start", rules.MaxDurationDays)
	}

	return start, end, ""
}

// partnerNames trims the names and drops blanks and repeats.
func partnerNames(names []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
