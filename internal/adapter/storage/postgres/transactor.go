package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor using pgxpool.Pool.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a new Transactor wrapping the connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin starts the transaction a wallet mutation runs in. Only the
// transaction engine calls this; it commits or rolls back, while the
// repositories just execute within the tx they are handed. The session's
// lock_timeout (set at pool construction) bounds FOR UPDATE waits inside.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
