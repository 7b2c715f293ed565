package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-wheel/internal/model"
)

// Coupon repository errors.
var (
	ErrCouponNotFound = errors.New("coupon not found")
)

// CouponRepository reads coupon records owned by the back-office CRUD
// application.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository creates a new CouponRepository instance.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// GetByID retrieves a coupon by id.
// Returns ErrCouponNotFound if the coupon does not exist.
func (r *CouponRepository) GetByID(ctx context.Context, id int64) (*model.Coupon, error) {
	const query = `
		SELECT id, merchant_id, title, weight, active, is_streak_reward, created_at
		FROM coupons
		WHERE id = $1
	`

	var c model.Coupon
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.MerchantID,
		&c.Title,
		&c.Weight,
		&c.Active,
		&c.IsStreakReward,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return &c, nil
}

// ListByMerchantIDs retrieves every coupon belonging to the given merchants,
// grouped by merchant id. Filtering for wheel eligibility is the allocator's
// concern, not the query's.
func (r *CouponRepository) ListByMerchantIDs(ctx context.Context, merchantIDs []int64) (map[int64][]model.Coupon, error) {
	const query = `
		SELECT id, merchant_id, title, weight, active, is_streak_reward, created_at
		FROM coupons
		WHERE merchant_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, merchantIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	byMerchant := make(map[int64][]model.Coupon)
	for rows.Next() {
		var c model.Coupon
		err := rows.Scan(
			&c.ID,
			&c.MerchantID,
			&c.Title,
			&c.Weight,
			&c.Active,
			&c.IsStreakReward,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		byMerchant[c.MerchantID] = append(byMerchant[c.MerchantID], c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return byMerchant, nil
}

// ListActiveStreakRewards retrieves all active streak-reward coupons across
// merchants, for the check-in milestone grant.
func (r *CouponRepository) ListActiveStreakRewards(ctx context.Context) ([]model.Coupon, error) {
	const query = `
		SELECT c.id, c.merchant_id, c.title, c.weight, c.active, c.is_streak_reward, c.created_at
		FROM coupons c
		JOIN merchants m ON m.id = c.merchant_id
		WHERE c.active = TRUE AND c.is_streak_reward = TRUE AND m.active = TRUE
		ORDER BY c.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list streak reward coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		err := rows.Scan(
			&c.ID,
			&c.MerchantID,
			&c.Title,
			&c.Weight,
			&c.Active,
			&c.IsStreakReward,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}
