package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmeetit/cmeetit/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrSettlementNotFound = errors.New("settlement not found")
)

type SettlementRepository interface {
	Create(ctx context.Context, s *model.Settlement) error
	ByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Settlement, error)
	LatestForGoal(ctx context.Context, userID, goalID string) (*model.Settlement, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type settlementRepository struct {
	db *sqlx.DB
}

func NewSettlementRepository(db *sqlx.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Create(ctx context.Context, s *model.Settlement) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now

	query := `
		INSERT INTO settlements (
			id, goal_id, user_id, provider, provider_payment_id,
			amount, currency, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.GoalID,
		s.UserID,
		s.Provider,
		s.ProviderPaymentID,
		s.Amount,
		s.Currency,
		s.Status,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

func (r *settlementRepository) ByProviderPaymentID(ctx context.Context, providerPaymentID string) (*model.Settlement, error) {
	s := &model.Settlement{}
	query := `SELECT * FROM settlements WHERE provider_payment_id = $1`

	err := r.db.GetContext(ctx, s, query, providerPaymentID)
	if err == sql.ErrNoRows {
		return nil, ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *settlementRepository) LatestForGoal(ctx context.Context, userID, goalID string) (*model.Settlement, error) {
	s := &model.Settlement{}
	query := `SELECT * FROM settlements
	          WHERE goal_id = $1 AND user_id = $2
	          ORDER BY created_at DESC
	          LIMIT 1`

	err := r.db.GetContext(ctx, s, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrSettlementNotFound
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (r *settlementRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE settlements SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSettlementNotFound
	}

	return nil
}
