package service

import (
	"context"
	"testing"
	"time"

	"virtual-wallet-service/internal/core/domain"
	"virtual-wallet-service/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestReportingService_GetBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assetRepo := mocks.NewMockAssetTypeRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	svc := NewReportingService(assetRepo, walletRepo, ledgerRepo)

	ctx := context.Background()
	assetRepo.EXPECT().GetByCode(ctx, "GOLD_COIN").Return(goldCoin(), nil)
	walletRepo.EXPECT().GetByUserAndAsset(ctx, "user_123", int64(1)).Return(&domain.Wallet{
		ID: 42, UserID: "user_123", AssetTypeID: 1, Balance: 150,
	}, nil)

	view, err := svc.GetBalance(ctx, "user_123", "GOLD_COIN")
	require.NoError(t, err)
	assert.Equal(t, "user_123", view.UserID)
	assert.Equal(t, int64(150), view.Balance)
	assert.Equal(t, int64(1), view.AssetTypeID)
	assert.Equal(t, "GOLD_COIN", view.AssetCode)
}

func TestReportingService_GetBalance_AssetNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assetRepo := mocks.NewMockAssetTypeRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	svc := NewReportingService(assetRepo, walletRepo, ledgerRepo)

	ctx := context.Background()
	assetRepo.EXPECT().GetByCode(ctx, "PLATINUM").Return(nil, nil)

	view, err := svc.GetBalance(ctx, "user_123", "PLATINUM")
	assert.Nil(t, view)
	assertAppError(t, err, "WAL_004")
}

func TestReportingService_GetBalance_WalletNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assetRepo := mocks.NewMockAssetTypeRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	svc := NewReportingService(assetRepo, walletRepo, ledgerRepo)

	ctx := context.Background()
	assetRepo.EXPECT().GetByCode(ctx, "GOLD_COIN").Return(goldCoin(), nil)
	walletRepo.EXPECT().GetByUserAndAsset(ctx, "ghost", int64(1)).Return(nil, nil)

	view, err := svc.GetBalance(ctx, "ghost", "GOLD_COIN")
	assert.Nil(t, view)
	assertAppError(t, err, "WAL_005")
}

func TestReportingService_GetHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assetRepo := mocks.NewMockAssetTypeRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	svc := NewReportingService(assetRepo, walletRepo, ledgerRepo)

	ctx := context.Background()
	now := time.Now().UTC()
	assetRepo.EXPECT().GetByCode(ctx, "GOLD_COIN").Return(goldCoin(), nil)
	walletRepo.EXPECT().GetByUserAndAsset(ctx, "user_123", int64(1)).Return(&domain.Wallet{
		ID: 42, UserID: "user_123", AssetTypeID: 1, Balance: 120,
	}, nil)
	ledgerRepo.EXPECT().ListByWallet(ctx, int64(42)).Return([]domain.LedgerEntry{
		{ID: 2, TransactionID: "tx-2", WalletID: 42, Amount: -30, Reason: domain.TransactionTypeSpend, CreatedAt: now},
		{ID: 1, TransactionID: "tx-1", WalletID: 42, Amount: 50, Reason: domain.TransactionTypeTopup, CreatedAt: now.Add(-time.Minute)},
	}, nil)

	view, err := svc.GetHistory(ctx, "user_123", "GOLD_COIN")
	require.NoError(t, err)
	assert.Equal(t, int64(120), view.CurrentBalance)
	require.Len(t, view.Transactions, 2)
	assert.Equal(t, "tx-2", view.Transactions[0].TransactionID)
	assert.Equal(t, "SPEND", view.Transactions[0].Type)
	assert.Equal(t, int64(-30), view.Transactions[0].Amount)
	assert.Equal(t, "tx-1", view.Transactions[1].TransactionID)
}

func TestReportingService_GetHistory_EmptyLedger(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	assetRepo := mocks.NewMockAssetTypeRepository(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)
	ledgerRepo := mocks.NewMockLedgerRepository(ctrl)
	svc := NewReportingService(assetRepo, walletRepo, ledgerRepo)

	ctx := context.Background()
	assetRepo.EXPECT().GetByCode(ctx, "GOLD_COIN").Return(goldCoin(), nil)
	walletRepo.EXPECT().GetByUserAndAsset(ctx, "user_456", int64(1)).Return(&domain.Wallet{
		ID: 43, UserID: "user_456", AssetTypeID: 1, Balance: 50,
	}, nil)
	ledgerRepo.EXPECT().ListByWallet(ctx, int64(43)).Return(nil, nil)

	view, err := svc.GetHistory(ctx, "user_456", "GOLD_COIN")
	require.NoError(t, err)
	assert.NotNil(t, view.Transactions, "empty history must serialize as [], not null")
	assert.Empty(t, view.Transactions)
}
