package service

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/clock"
	"github.com/cmeetit/cmeetit/internal/lifecycle"
	"github.com/cmeetit/cmeetit/internal/metrics"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/cmeetit/cmeetit/internal/portfolio"
	"github.com/cmeetit/cmeetit/internal/repository"
	"github.com/cmeetit/cmeetit/internal/validation"
)

// Eligibility tells a client whether it may offer goal creation, and which
// goal to settle first when it may not.
type Eligibility struct {
	portfolio.Decision
	ActiveGoals    int         `json:"active_goals"`
	MaxActiveGoals int         `json:"max_active_goals"`
	NextSettlement *model.Goal `json:"next_settlement,omitempty"`
}

// GoalService runs each operation as decide, persist, reload. Decisions come
// from the lifecycle and portfolio packages; the service never edits a goal
// itself.
type GoalService struct {
	repo   repository.GoalRepository
	clock  clock.Clock
	policy portfolio.Policy
	rules  validation.GoalRules
}

func NewGoalService(
	repo repository.GoalRepository,
	clk clock.Clock,
	policy portfolio.Policy,
	rules validation.GoalRules,
) *GoalService {
	return &GoalService{
		repo:   repo,
		clock:  clk,
		policy: policy,
		rules:  rules,
	}
}

func (s *GoalService) Today() civil.Date {
	return s.clock.Today()
}

// Goals loads the user's goals and repairs any that should have auto-failed.
// A repair that cannot be persisted is logged and skipped; the goal stays
// stale until the next load.
func (s *GoalService) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals, err := s.repo.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := lifecycle.Sweep(goals, s.clock.Today())
	if len(items) == 0 {
		return goals, nil
	}

	for _, item := range items {
		s.persistAutoFail(ctx, item)
	}

	return s.repo.Goals(ctx, userID)
}

// Goal loads one goal with the same auto-fail repair as Goals.
func (s *GoalService) Goal(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if !lifecycle.ShouldAutoFail(goal, s.clock.Today()) {
		return goal, nil
	}

	if !s.persistAutoFail(ctx, lifecycle.SweepItem{Goal: goal, Patch: lifecycle.FailPatch(goal)}) {
		return goal, nil
	}

	return s.repo.ByID(ctx, userID, goalID)
}

func (s *GoalService) persistAutoFail(ctx context.Context, item lifecycle.SweepItem) bool {
	err := s.repo.Update(ctx, item.Goal.UserID, item.Goal.ID, item.Patch)
	if err != nil {
		metrics.IncrementSweepRepairFailure()
		slog.Error("failed to persist auto-fail", "error", err, "goal_id", item.Goal.ID, "user_id", item.Goal.UserID)
		return false
	}

	metrics.IncrementTransition(model.GoalStatusFailed, "auto_fail")
	slog.Info("goal auto-failed", "goal_id", item.Goal.ID, "user_id", item.Goal.UserID, "payment_status", *item.Patch.PaymentStatus)
	return true
}

// Summary is the lifecycle read model with the portfolio delete decision.
func (s *GoalService) Summary(goal *model.Goal) lifecycle.Summary {
	today := s.clock.Today()
	return lifecycle.Summarize(goal, today, s.policy.CanDeleteGoal(goal, today).Allowed)
}

func (s *GoalService) Summaries(ctx context.Context, userID string) ([]lifecycle.Summary, error) {
	goals, err := s.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]lifecycle.Summary, 0, len(goals))
	for _, g := range goals {
		summaries = append(summaries, s.Summary(g))
	}
	return summaries, nil
}

// Create checks the portfolio first, then validates the input. A denied
// portfolio returns an error wrapping portfolio.ErrCreateDenied; invalid
// input returns validation.FieldErrors.
func (s *GoalService) Create(ctx context.Context, userID string, in validation.NewGoalInput) (*model.Goal, error) {
	goals, err := s.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := s.policy.CanCreateNewGoal(goals)
	if !decision.Allowed {
		return nil, decision.Err()
	}

	goal, errs := validation.ValidateNewGoal(in, s.clock.Today(), s.rules)
	if len(errs) > 0 {
		return nil, errs
	}
	goal.UserID = userID

	_, err = s.repo.Create(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created", "goal_id", goal.ID, "user_id", userID, "commitment_type", goal.CommitmentType)
	return goal, nil
}

// CheckIn records a check-in for date, or for today when date is nil.
// Repeating a check-in returns the goal unchanged.
func (s *GoalService) CheckIn(ctx context.Context, userID, goalID string, date *civil.Date) (*model.Goal, error) {
	goal, err := s.Goal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	day := today
	if date != nil {
		day = *date
	}

	patch, err := lifecycle.CheckIn(goal, day, today)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return goal, nil
	}

	err = s.repo.Update(ctx, userID, goalID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	kind := "today"
	if day != today {
		kind = "backfill"
	}
	metrics.IncrementCheckIn(kind)
	if patch.Status != nil {
		metrics.IncrementTransition(*patch.Status, "check_in")
		slog.Info("goal completed", "goal_id", goalID, "user_id", userID)
	}

	return s.repo.ByID(ctx, userID, goalID)
}

// MarkFailed is the opt-in early failure for goals that can no longer finish.
func (s *GoalService) MarkFailed(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal, err := s.Goal(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	patch, err := lifecycle.MarkFailed(goal, s.clock.Today())
	if err != nil {
		return nil, err
	}

	err = s.repo.Update(ctx, userID, goalID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to mark goal failed: %w", err)
	}

	metrics.IncrementTransition(model.GoalStatusFailed, "manual")
	slog.Info("goal marked failed", "goal_id", goalID, "user_id", userID)

	return s.repo.ByID(ctx, userID, goalID)
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return err
	}

	err = s.policy.CanDeleteGoal(goal, s.clock.Today()).Err()
	if err != nil {
		return err
	}

	err = s.repo.Delete(ctx, userID, goalID)
	if err != nil {
		return err
	}

	slog.Info("goal deleted", "goal_id", goalID, "user_id", userID)
	return nil
}

func (s *GoalService) Eligibility(ctx context.Context, userID string) (*Eligibility, error) {
	goals, err := s.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Eligibility{
		Decision:       s.policy.CanCreateNewGoal(goals),
		ActiveGoals:    portfolio.ActiveCount(goals),
		MaxActiveGoals: s.policy.MaxActiveGoals,
		NextSettlement: portfolio.NextSettlement(goals),
	}, nil
}
