package postgres

import (
	"context"
	"errors"
	"fmt"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `id, user_id, asset_type_id, balance, created_at`

// GetByUserAndAsset fetches a wallet by (user_id, asset_type_id) without
// locking. Returns nil, nil when absent.
func (r *WalletRepo) GetByUserAndAsset(ctx context.Context, userID string, assetTypeID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND asset_type_id = $2`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID, assetTypeID).Scan(
		&w.ID, &w.UserID, &w.AssetTypeID, &w.Balance, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user/asset: %w", err)
	}
	return w, nil
}

// GetByUserAndAssetTx is GetByUserAndAsset inside the engine's transaction.
func (r *WalletRepo) GetByUserAndAssetTx(ctx context.Context, tx pgx.Tx, userID string, assetTypeID int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 AND asset_type_id = $2`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, userID, assetTypeID).Scan(
		&w.ID, &w.UserID, &w.AssetTypeID, &w.Balance, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by user/asset in tx: %w", err)
	}
	return w, nil
}

// LockByID issues the lock-acquiring read for one wallet row. The returned
// row reflects every transaction that committed before the lock was granted.
// A lock_timeout expiry surfaces as domain.ErrLockWaitTimeout.
func (r *WalletRepo) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.AssetTypeID, &w.Balance, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockTimeout(err) {
			return nil, fmt.Errorf("lock wallet %d: %w", id, domain.ErrLockWaitTimeout)
		}
		return nil, fmt.Errorf("lock wallet %d: %w", id, err)
	}
	return w, nil
}

// UpdateBalance sets a wallet's balance within the engine's transaction.
// The caller has already locked the row and computed the new balance.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID int64, newBalance int64) error {
	query := `UPDATE wallets SET balance = $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, newBalance, walletID)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %d", walletID)
	}
	return nil
}

// isLockTimeout reports whether err is SQLSTATE 55P03 (lock_not_available),
// raised when a FOR UPDATE read exceeds lock_timeout.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
