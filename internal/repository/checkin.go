package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-wheel/internal/model"
)

// Check-in repository errors.
var (
	ErrAlreadyCheckedIn = errors.New("already checked in today")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// CheckInRepository persists daily check-in rows. The primary key on
// (user_id, date) is the duplicate-check-in guard: concurrent check-ins race
// on the insert itself, not on a read followed by a write.
type CheckInRepository struct {
	pool *pgxpool.Pool
}

// NewCheckInRepository creates a new CheckInRepository instance.
func NewCheckInRepository(pool *pgxpool.Pool) *CheckInRepository {
	return &CheckInRepository{pool: pool}
}

// Create inserts a check-in row with an already-computed streak value.
// Returns ErrAlreadyCheckedIn when a row for (userID, date) exists.
func (r *CheckInRepository) Create(ctx context.Context, userID int64, date string, consecutiveDays int, rewardClaimed bool) (*model.CheckInRecord, error) {
	const query = `
		INSERT INTO checkins (user_id, date, consecutive_days, reward_claimed, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING user_id, date::text, consecutive_days, reward_claimed, created_at
	`

	var rec model.CheckInRecord
	err := r.pool.QueryRow(ctx, query, userID, date, consecutiveDays, rewardClaimed).Scan(
		&rec.UserID,
		&rec.Date,
		&rec.ConsecutiveDays,
		&rec.RewardClaimed,
		&rec.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to create check-in: %w", err)
	}

	return &rec, nil
}

// GetLatest retrieves a user's most recent check-in, or nil when the user
// has never checked in.
func (r *CheckInRepository) GetLatest(ctx context.Context, userID int64) (*model.CheckInRecord, error) {
	const query = `
		SELECT user_id, date::text, consecutive_days, reward_claimed, created_at
		FROM checkins
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT 1
	`

	var rec model.CheckInRecord
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&rec.UserID,
		&rec.Date,
		&rec.ConsecutiveDays,
		&rec.RewardClaimed,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest check-in: %w", err)
	}

	return &rec, nil
}

// GetByDate retrieves a user's check-in for a specific date, or nil when
// none exists.
func (r *CheckInRepository) GetByDate(ctx context.Context, userID int64, date string) (*model.CheckInRecord, error) {
	const query = `
		SELECT user_id, date::text, consecutive_days, reward_claimed, created_at
		FROM checkins
		WHERE user_id = $1 AND date = $2
	`

	var rec model.CheckInRecord
	err := r.pool.QueryRow(ctx, query, userID, date).Scan(
		&rec.UserID,
		&rec.Date,
		&rec.ConsecutiveDays,
		&rec.RewardClaimed,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get check-in: %w", err)
	}

	return &rec, nil
}

// MarkRewardClaimed records that the milestone bonus was granted on an
// existing check-in row.
func (r *CheckInRepository) MarkRewardClaimed(ctx context.Context, userID int64, date string) error {
	const query = `
		UPDATE checkins
		SET reward_claimed = TRUE
		WHERE user_id = $1 AND date = $2
	`
	if _, err := r.pool.Exec(ctx, query, userID, date); err != nil {
		return fmt.Errorf("failed to mark reward claimed: %w", err)
	}

	return nil
}
