package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-wheel/internal/model"
)

// Draw repository errors.
var (
	ErrDrawNotFound  = errors.New("draw not found")
	ErrAlreadyShared = errors.New("draw already shared")
)

// DrawRepository persists the authoritative draw ledger. Rows are append
// only except for the is_shared flag, which flips once.
type DrawRepository struct {
	pool *pgxpool.Pool
}

// NewDrawRepository creates a new DrawRepository instance.
func NewDrawRepository(pool *pgxpool.Pool) *DrawRepository {
	return &DrawRepository{pool: pool}
}

// Create persists a confirmed draw and returns the stored record. A nil
// period marks a milestone grant written outside the wheel path.
func (r *DrawRepository) Create(ctx context.Context, userID, merchantID int64, couponID *int64, period *model.Period) (*model.DrawRecord, error) {
	const query = `
		INSERT INTO draws (id, user_id, merchant_id, coupon_id, period, is_shared, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, NOW())
		RETURNING id, user_id, merchant_id, coupon_id, period, is_shared, created_at
	`

	var p *string
	if period != nil {
		s := string(*period)
		p = &s
	}

	row := r.pool.QueryRow(ctx, query, uuid.New(), userID, merchantID, couponID, p)
	draw, err := scanDraw(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}

	return draw, nil
}

// GetByID retrieves a draw by id.
// Returns ErrDrawNotFound if the draw does not exist.
func (r *DrawRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DrawRecord, error) {
	const query = `
		SELECT id, user_id, merchant_id, coupon_id, period, is_shared, created_at
		FROM draws
		WHERE id = $1
	`

	draw, err := scanDraw(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDrawNotFound
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}

	return draw, nil
}

// MarkShared flips the is_shared flag exactly once. The guarded update is
// the idempotence check: a second share attempt affects no rows and returns
// ErrAlreadyShared.
func (r *DrawRepository) MarkShared(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE draws
		SET is_shared = TRUE
		WHERE id = $1 AND is_shared = FALSE
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark draw shared: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrAlreadyShared
	}

	return nil
}

// ListByUser retrieves a user's draws, newest first.
func (r *DrawRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.DrawRecord, error) {
	const query = `
		SELECT id, user_id, merchant_id, coupon_id, period, is_shared, created_at
		FROM draws
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %w", err)
	}
	defer rows.Close()

	var draws []*model.DrawRecord
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, draw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating draws: %w", err)
	}

	return draws, nil
}

func scanDraw(row pgx.Row) (*model.DrawRecord, error) {
	var (
		draw   model.DrawRecord
		period *string
	)
	err := row.Scan(
		&draw.ID,
		&draw.UserID,
		&draw.MerchantID,
		&draw.CouponID,
		&period,
		&draw.IsShared,
		&draw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if period != nil {
		p := model.Period(*period)
		draw.Period = &p
	}
	return &draw, nil
}
