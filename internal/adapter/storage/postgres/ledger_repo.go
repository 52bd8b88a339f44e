package postgres

import (
	"context"
	"fmt"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository. Entries are insert-only;
// there is no update or delete path.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// InsertPair writes both halves of a double-entry transaction within the
// engine's database transaction. It never writes one entry without the
// other: a failure on either insert aborts the caller's transaction.
func (r *LedgerRepo) InsertPair(ctx context.Context, tx pgx.Tx, first, second *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (transaction_id, wallet_id, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	for _, e := range []*domain.LedgerEntry{first, second} {
		if _, err := tx.Exec(ctx, query, e.TransactionID, e.WalletID, e.Amount, e.Reason, e.CreatedAt); err != nil {
			return fmt.Errorf("insert ledger entry for wallet %d: %w", e.WalletID, err)
		}
	}
	return nil
}

// ListByWallet returns every ledger entry of one wallet, newest first.
// Ties on created_at break by id descending so the order is total.
func (r *LedgerRepo) ListByWallet(ctx context.Context, walletID int64) ([]domain.LedgerEntry, error) {
	query := `SELECT id, transaction_id, wallet_id, amount, reason, created_at
		FROM ledger_entries WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.WalletID, &e.Amount, &e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}
	return entries, nil
}
