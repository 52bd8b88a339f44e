package postgres

import (
	"context"
	"errors"
	"fmt"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IdempotencyRepo implements ports.IdempotencyRepository over the
// idempotency_records table with composite primary key (key, user_id).
type IdempotencyRepo struct {
	pool Pool
}

// NewIdempotencyRepo creates a new IdempotencyRepo.
func NewIdempotencyRepo(pool Pool) *IdempotencyRepo {
	return &IdempotencyRepo{pool: pool}
}

const idempotencyColumns = `key, user_id, request_hash, response_payload, created_at`

// Get fetches a record inside the engine's transaction so that any prior
// commit is visible. Returns nil, nil when absent.
func (r *IdempotencyRepo) Get(ctx context.Context, tx pgx.Tx, key, userID string) (*domain.IdempotencyRecord, error) {
	query := `SELECT ` + idempotencyColumns + ` FROM idempotency_records WHERE key = $1 AND user_id = $2`

	rec := &domain.IdempotencyRecord{}
	err := tx.QueryRow(ctx, query, key, userID).Scan(
		&rec.Key, &rec.UserID, &rec.RequestHash, &rec.ResponsePayload, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return rec, nil
}

// GetCommitted fetches a record through the pool, outside any transaction.
// Used after losing the duplicate-key race to read the winner's committed
// record.
func (r *IdempotencyRepo) GetCommitted(ctx context.Context, key, userID string) (*domain.IdempotencyRecord, error) {
	query := `SELECT ` + idempotencyColumns + ` FROM idempotency_records WHERE key = $1 AND user_id = $2`

	rec := &domain.IdempotencyRecord{}
	err := r.pool.QueryRow(ctx, query, key, userID).Scan(
		&rec.Key, &rec.UserID, &rec.RequestHash, &rec.ResponsePayload, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get committed idempotency record: %w", err)
	}
	return rec, nil
}

// Create inserts a record within the engine's transaction. A unique
// violation on (key, user_id) surfaces as domain.ErrDuplicateIdempotencyKey
// so the engine can fall back to the winner's response.
func (r *IdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	query := `INSERT INTO idempotency_records (` + idempotencyColumns + `) VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, rec.Key, rec.UserID, rec.RequestHash, rec.ResponsePayload, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert idempotency record: %w", domain.ErrDuplicateIdempotencyKey)
		}
		return fmt.Errorf("insert idempotency record: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
