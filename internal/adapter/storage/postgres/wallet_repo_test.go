package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet() *domain.Wallet {
	return &domain.Wallet{
		ID:          42,
		UserID:      "user_123",
		AssetTypeID: 1,
		Balance:     100,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

func walletTestColumns() []string {
	return []string{"id", "user_id", "asset_type_id", "balance", "created_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletTestColumns()).AddRow(
		w.ID, w.UserID, w.AssetTypeID, w.Balance, w.CreatedAt,
	)
}

func TestWalletRepo_GetByUserAndAsset(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(w.UserID, w.AssetTypeID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByUserAndAsset(context.Background(), w.UserID, w.AssetTypeID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.Equal(t, w.Balance, result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserAndAsset_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs("ghost", int64(1)).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByUserAndAsset(context.Background(), "ghost", 1)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByUserAndAssetTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE user_id").
		WithArgs(w.UserID, w.AssetTypeID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByUserAndAssetTx(context.Background(), tx, w.UserID, w.AssetTypeID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_LockByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(w.ID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockByID(context.Background(), tx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.Balance, result.Balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_LockByID_Timeout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE id .+ FOR UPDATE").
		WithArgs(int64(42)).
		WillReturnError(&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockByID(context.Background(), tx, 42)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, domain.ErrLockWaitTimeout))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(int64(150), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, 42, 150)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(int64(150), int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, 42, 150)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
