package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cmeetit/cmeetit/internal/calendar"
	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(ctx context.Context, goal *model.Goal) (string, error)
	ByID(ctx context.Context, userID, goalID string) (*model.Goal, error)
	Goals(ctx context.Context, userID string) ([]*model.Goal, error)
	Update(ctx context.Context, userID, goalID string, patch model.GoalPatch) error
	Delete(ctx context.Context, userID, goalID string) error
}

type goalRepository struct {
	db *sqlx.DB
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

// goalRow is the goals table. Dates are stored as YYYY-MM-DD text and
// partners as a JSON array.
type goalRow struct {
	ID                     string          `db:"id"`
	UserID                 string          `db:"user_id"`
	Title                  string          `db:"title"`
	Description            string          `db:"description"`
	Motivation             string          `db:"motivation"`
	AccountabilityPartners string          `db:"accountability_partners"`
	StartDate              string          `db:"start_date"`
	EndDate                string          `db:"end_date"`
	TargetDays             int             `db:"target_days"`
	CommitmentType         string          `db:"commitment_type"`
	CommitmentAmount       decimal.Decimal `db:"commitment_amount"`
	Status                 string          `db:"status"`
	PaymentStatus          string          `db:"payment_status"`
	CreatedAt              time.Time       `db:"created_at"`
	UpdatedAt              time.Time       `db:"updated_at"`
}

type checkInRow struct {
	GoalID      string `db:"goal_id"`
	CheckInDate string `db:"check_in_date"`
}

func (row *goalRow) toModel(checkIns []civil.Date) (*model.Goal, error) {
	start, err := calendar.Parse(row.StartDate)
	if err != nil {
		return nil, fmt.Errorf("goal %s start date: %w", row.ID, err)
	}
	end, err := calendar.Parse(row.EndDate)
	if err != nil {
		return nil, fmt.Errorf("goal %s end date: %w", row.ID, err)
	}
	if checkIns == nil {
		checkIns = []civil.Date{}
	}
	var partners []string
	if row.AccountabilityPartners != "" {
		err = json.Unmarshal([]byte(row.AccountabilityPartners), &partners)
		if err != nil {
			return nil, fmt.Errorf("goal %s accountability partners: %w", row.ID, err)
		}
	}

	return &model.Goal{
		ID:                     row.ID,
		UserID:                 row.UserID,
		Title:                  row.Title,
		Description:            row.Description,
		Motivation:             row.Motivation,
		AccountabilityPartners: partners,
		StartDate:              start,
		EndDate:                end,
		TargetDays:             row.TargetDays,
		CheckIns:               checkIns,
		CommitmentType:         row.CommitmentType,
		CommitmentAmount:       row.CommitmentAmount,
		Status:                 row.Status,
		PaymentStatus:          row.PaymentStatus,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}, nil
}

func (r *goalRepository) Create(ctx context.Context, goal *model.Goal) (string, error) {
	now := time.Now().UTC()
	goal.ID = uuid.New().String()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	partners := []string{}
	if goal.AccountabilityPartners != nil {
		partners = goal.AccountabilityPartners
	}
	partnersJSON, err := json.Marshal(partners)
	if err != nil {
		return "", fmt.Errorf("failed to encode accountability partners: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO goals (id, user_id, title, description, motivation, accountability_partners,
	                             start_date, end_date, target_days, commitment_type, commitment_amount,
	                             status, payment_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = tx.ExecContext(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Motivation,
		string(partnersJSON),
		goal.StartDate.String(),
		goal.EndDate.String(),
		goal.TargetDays,
		goal.CommitmentType,
		goal.CommitmentAmount,
		goal.Status,
		goal.PaymentStatus,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert goal: %w", err)
	}

	err = insertCheckIns(ctx, tx, goal.ID, goal.CheckIns)
	if err != nil {
		return "", err
	}

	err = tx.Commit()
	if err != nil {
		return "", fmt.Errorf("failed to commit goal: %w", err)
	}

	return goal.ID, nil
}

func (r *goalRepository) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	row := &goalRow{}
	query := `SELECT * FROM goals WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, row, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load goal: %w", err)
	}

	var checkIns []checkInRow
	query = `SELECT goal_id, check_in_date FROM goal_check_ins WHERE goal_id = $1 ORDER BY check_in_date ASC`
	err = r.db.SelectContext(ctx, &checkIns, query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}

	byGoal, err := groupCheckIns(checkIns)
	if err != nil {
		return nil, err
	}

	return row.toModel(byGoal[goalID])
}

// Goals returns every goal owned by userID, newest first.
func (r *goalRepository) Goals(ctx context.Context, userID string) ([]*model.Goal, error) {
	var rows []goalRow
	query := `SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at DESC, id ASC`

	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}

	var checkIns []checkInRow
	query = `SELECT c.goal_id, c.check_in_date
	         FROM goal_check_ins c
	         JOIN goals g ON g.id = c.goal_id
	         WHERE g.user_id = $1
	         ORDER BY c.check_in_date ASC`
	err = r.db.SelectContext(ctx, &checkIns, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check-ins: %w", err)
	}

	byGoal, err := groupCheckIns(checkIns)
	if err != nil {
		return nil, err
	}

	goals := make([]*model.Goal, 0, len(rows))
	for i := range rows {
		goal, err := rows[i].toModel(byGoal[rows[i].ID])
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	return goals, nil
}

// Update applies patch to the goal. A patch carrying CheckIns replaces the
// stored set in the same transaction as the status change.
func (r *goalRepository) Update(ctx context.Context, userID, goalID string, patch model.GoalPatch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if patch.PaymentStatus != nil {
		args = append(args, *patch.PaymentStatus)
		sets = append(sets, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	args = append(args, goalID, userID)

	query := fmt.Sprintf(`UPDATE goals SET %s WHERE id = $%d AND user_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	if patch.CheckIns != nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM goal_check_ins WHERE goal_id = $1`, goalID)
		if err != nil {
			return fmt.Errorf("failed to clear check-ins: %w", err)
		}

		err = insertCheckIns(ctx, tx, goalID, patch.CheckIns)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *goalRepository) Delete(ctx context.Context, userID, goalID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `DELETE FROM goal_check_ins
	          WHERE goal_id IN (SELECT id FROM goals WHERE id = $1 AND user_id = $2)`
	_, err = tx.ExecContext(ctx, query, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete check-ins: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return tx.Commit()
}

func insertCheckIns(ctx context.Context, tx *sqlx.Tx, goalID string, dates []civil.Date) error {
	query := `INSERT INTO goal_check_ins (goal_id, check_in_date) VALUES ($1, $2)`

	seen := make(map[civil.Date]bool, len(dates))
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true

		_, err := tx.ExecContext(ctx, query, goalID, d.String())
		if err != nil {
			return fmt.Errorf("failed to insert check-in %s: %w", d, err)
		}
	}
	return nil
}

func groupCheckIns(rows []checkInRow) (map[string][]civil.Date, error) {
	byGoal := make(map[string][]civil.Date)
	for _, row := range rows {
		d, err := calendar.Parse(row.CheckInDate)
		if err != nil {
			return nil, fmt.Errorf("goal %s check-in: %w", row.GoalID, err)
		}
		byGoal[row.GoalID] = append(byGoal[row.GoalID], d)
	}
	return byGoal, nil
}
