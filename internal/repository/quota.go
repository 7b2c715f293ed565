package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-wheel/internal/model"
)

// Quota errors. Both are expected, user-facing outcomes: the caller waits
// for the next period or the next day.
var (
	ErrPeriodQuotaExceeded = errors.New("period draw quota exceeded")
	ErrDailyQuotaExceeded  = errors.New("daily draw quota exceeded")
)

// QuotaRepository tracks per-user draw consumption. One row per
// (user, date, period); a missing row reads as zero, so date rollover needs
// no reset job.
type QuotaRepository struct {
	pool *pgxpool.Pool
}

// NewQuotaRepository creates a new QuotaRepository instance.
func NewQuotaRepository(pool *pgxpool.Pool) *QuotaRepository {
	return &QuotaRepository{pool: pool}
}

// CheckAndReserve consumes one draw attempt for (userID, date, period),
// enforcing the period ceiling first and the daily ceiling second. Share
// bonuses raise the effective ceilings. The whole read-check-increment runs
// in one transaction with the user's counter rows for the day locked, so two
// concurrent draws cannot both observe the last free slot. Different users
// never contend.
//
// rewarded marks a non-empty outcome and bumps rewarded_count in the same
// statement as the reservation.
func (r *QuotaRepository) CheckAndReserve(ctx context.Context, userID int64, date string, period model.Period, rewarded bool, maxPerPeriod, maxPerDay int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin quota transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const ensure = `
		INSERT INTO quota_counters (user_id, date, period, used_count, rewarded_count, bonus_count)
		VALUES ($1, $2, $3, 0, 0, 0)
		ON CONFLICT (user_id, date, period) DO NOTHING
	`
	if _, err := tx.Exec(ctx, ensure, userID, date, string(period)); err != nil {
		return fmt.Errorf("failed to ensure quota row: %w", err)
	}

	const lock = `
		SELECT period, used_count, bonus_count
		FROM quota_counters
		WHERE user_id = $1 AND date = $2
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, lock, userID, date)
	if err != nil {
		return fmt.Errorf("failed to lock quota rows: %w", err)
	}

	var usedInPeriod, bonusInPeriod, usedInDay, bonusInDay int
	for rows.Next() {
		var (
			p           string
			used, bonus int
		)
		if err := rows.Scan(&p, &used, &bonus); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan quota row: %w", err)
		}
		usedInDay += used
		bonusInDay += bonus
		if p == string(period) {
			usedInPeriod = used
			bonusInPeriod = bonus
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating quota rows: %w", err)
	}

	if usedInPeriod >= maxPerPeriod+bonusInPeriod {
		return ErrPeriodQuotaExceeded
	}
	if usedInDay >= maxPerDay+bonusInDay {
		return ErrDailyQuotaExceeded
	}

	const reserve = `
		UPDATE quota_counters
		SET used_count = used_count + 1, rewarded_count = rewarded_count + $4
		WHERE user_id = $1 AND date = $2 AND period = $3
	`
	rewardedInc := 0
	if rewarded {
		rewardedInc = 1
	}
	if _, err := tx.Exec(ctx, reserve, userID, date, string(period), rewardedInc); err != nil {
		return fmt.Errorf("failed to reserve quota: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quota reservation: %w", err)
	}

	return nil
}

// DayCounters retrieves all of a user's counter rows for a date. Periods
// without a row are simply absent and read as zero.
func (r *QuotaRepository) DayCounters(ctx context.Context, userID int64, date string) ([]model.QuotaCounter, error) {
	const query = `
		SELECT period, used_count, rewarded_count, bonus_count
		FROM quota_counters
		WHERE user_id = $1 AND date = $2
	`

	rows, err := r.pool.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota counters: %w", err)
	}
	defer rows.Close()

	var counters []model.QuotaCounter
	for rows.Next() {
		c := model.QuotaCounter{UserID: userID, Date: date}
		var p string
		if err := rows.Scan(&p, &c.UsedCount, &c.RewardedCount, &c.BonusCount); err != nil {
			return nil, fmt.Errorf("failed to scan quota counter: %w", err)
		}
		c.Period = model.Period(p)
		counters = append(counters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quota counters: %w", err)
	}

	return counters, nil
}

// GrantBonus raises the effective ceiling for (userID, date, period) by one
// extra attempt. Upserts so a share before the user's first draw of the day
// still lands.
func (r *QuotaRepository) GrantBonus(ctx context.Context, userID int64, date string, period model.Period) error {
	const query = `
		INSERT INTO quota_counters (user_id, date, period, used_count, rewarded_count, bonus_count)
		VALUES ($1, $2, $3, 0, 0, 1)
		ON CONFLICT (user_id, date, period)
		DO UPDATE SET bonus_count = quota_counters.bonus_count + 1
	`
	if _, err := r.pool.Exec(ctx, query, userID, date, string(period)); err != nil {
		return fmt.Errorf("failed to grant quota bonus: %w", err)
	}

	return nil
}
