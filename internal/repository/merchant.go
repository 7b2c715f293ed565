// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lucky-wheel/internal/model"
)

// Common errors for repository operations.
var (
	ErrMerchantNotFound = errors.New("merchant not found")
)

// MerchantRepository reads merchant records. Merchants are written by the
// back-office CRUD application; this engine only consumes them.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository creates a new MerchantRepository instance.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

// GetByID retrieves a merchant by id.
// Returns ErrMerchantNotFound if the merchant does not exist.
func (r *MerchantRepository) GetByID(ctx context.Context, id int64) (*model.Merchant, error) {
	const query = `
		SELECT id, name, active, schedule, created_at, updated_at
		FROM merchants
		WHERE id = $1
	`

	var m model.Merchant
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.Name,
		&m.Active,
		&m.Schedule,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}

	return &m, nil
}

// ListActive retrieves all active merchants, schedule document included, for
// eligibility filtering.
func (r *MerchantRepository) ListActive(ctx context.Context) ([]*model.Merchant, error) {
	const query = `
		SELECT id, name, active, schedule, created_at, updated_at
		FROM merchants
		WHERE active = TRUE
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active merchants: %w", err)
	}
	defer rows.Close()

	return scanMerchants(rows)
}

// ListByIDs retrieves the merchants with the given ids. Missing ids are
// simply absent from the result; callers that need per-id errors compare
// against the requested set.
func (r *MerchantRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.Merchant, error) {
	const query = `
		SELECT id, name, active, schedule, created_at, updated_at
		FROM merchants
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list merchants by ids: %w", err)
	}
	defer rows.Close()

	return scanMerchants(rows)
}

func scanMerchants(rows pgx.Rows) ([]*model.Merchant, error) {
	var merchants []*model.Merchant
	for rows.Next() {
		var m model.Merchant
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Active,
			&m.Schedule,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merchant: %w", err)
		}
		merchants = append(merchants, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating merchants: %w", err)
	}

	return merchants, nil
}
