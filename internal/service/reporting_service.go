package service

import (
	"context"

	"virtual-wallet-service/internal/core/ports"
	"virtual-wallet-service/pkg/apperror"
)

// reportingService implements ports.ReportingService. Reads bypass the
// transaction engine; no locks, read-committed visibility is enough.
type reportingService struct {
	assetRepo  ports.AssetTypeRepository
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	assetRepo ports.AssetTypeRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
) ports.ReportingService {
	return &reportingService{
		assetRepo:  assetRepo,
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
	}
}

// GetBalance returns the materialized balance for one user/asset pair.
// assetCode must already be normalized.
func (s *reportingService) GetBalance(ctx context.Context, userID, assetCode string) (*ports.BalanceView, error) {
	asset, err := s.assetRepo.GetByCode(ctx, assetCode)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}

	wallet, err := s.walletRepo.GetByUserAndAsset(ctx, userID, asset.ID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	return &ports.BalanceView{
		UserID:      userID,
		Balance:     wallet.Balance,
		AssetTypeID: asset.ID,
		AssetCode:   asset.Code,
	}, nil
}

// GetHistory returns every ledger entry of the user's wallet, newest first,
// along with the current balance. The result is unbounded; pagination is a
// known limitation.
func (s *reportingService) GetHistory(ctx context.Context, userID, assetCode string) (*ports.HistoryView, error) {
	asset, err := s.assetRepo.GetByCode(ctx, assetCode)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}

	wallet, err := s.walletRepo.GetByUserAndAsset(ctx, userID, asset.ID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	entries, err := s.ledgerRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	items := make([]ports.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, ports.HistoryItem{
			TransactionID: e.TransactionID,
			Amount:        e.Amount,
			Type:          string(e.Reason),
			CreatedAt:     e.CreatedAt,
		})
	}

	return &ports.HistoryView{
		UserID:         userID,
		AssetCode:      asset.Code,
		AssetTypeID:    asset.ID,
		CurrentBalance: wallet.Balance,
		Transactions:   items,
	}, nil
}
