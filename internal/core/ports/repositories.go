package ports

import (
	"context"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AssetTypeRepository defines read access to asset reference data.
// Asset types are immutable after seeding, so lookups never need a lock or a
// transaction.
type AssetTypeRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.AssetType, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the engine's transaction; LockByID
// issues the lock-acquiring read (FOR UPDATE) and returns the authoritative
// post-lock row.
type WalletRepository interface {
	GetByUserAndAsset(ctx context.Context, userID string, assetTypeID int64) (*domain.Wallet, error)
	GetByUserAndAssetTx(ctx context.Context, tx pgx.Tx, userID string, assetTypeID int64) (*domain.Wallet, error)
	LockByID(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID int64, newBalance int64) error
}

// LedgerRepository defines persistence for the double-entry ledger.
// InsertPair writes both halves of a transaction; entries are insert-only.
type LedgerRepository interface {
	InsertPair(ctx context.Context, tx pgx.Tx, first, second *domain.LedgerEntry) error
	ListByWallet(ctx context.Context, walletID int64) ([]domain.LedgerEntry, error)
}

// IdempotencyRepository defines persistence for idempotency records.
// Get runs inside the engine's transaction; GetCommitted opens a fresh
// read after a duplicate-key race to fetch the winner's record. Create
// returns domain.ErrDuplicateIdempotencyKey when (key, user_id) exists.
type IdempotencyRepository interface {
	Get(ctx context.Context, tx pgx.Tx, key, userID string) (*domain.IdempotencyRecord, error)
	GetCommitted(ctx context.Context, key, userID string) (*domain.IdempotencyRecord, error)
	Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
}

// DBTransactor provides database transaction management. The transaction
// engine is the sole owner of the outermost transaction; repositories
// operate within it but never commit or roll back themselves.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
