package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"virtual-wallet-service/internal/core/domain"
	"virtual-wallet-service/internal/core/ports"
	"virtual-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const replayTTL = 24 * time.Hour

// transactResponse is the success body of a mutation. It is serialized once,
// stored in the idempotency record, and replays return the stored bytes
// verbatim.
type transactResponse struct {
	TxID            string `json:"tx_id"`
	UserID          string `json:"user_id"`
	TransactionType string `json:"transaction_type"`
	Amount          int64  `json:"amount"`
	NewBalance      int64  `json:"new_balance"`
	AssetTypeID     int64  `json:"asset_type_id"`
	AssetCode       string `json:"asset_code"`
}

// TransactionServiceImpl implements ports.TransactionService. It owns the
// outermost database transaction for a mutation; the repositories operate
// within it but never commit or roll back themselves.
type TransactionServiceImpl struct {
	assetRepo   ports.AssetTypeRepository
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	idempRepo   ports.IdempotencyRepository
	replayCache ports.ReplayCache // nil when Redis is not configured
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
// replayCache may be nil; the engine then relies on the database alone.
func NewTransactionService(
	assetRepo ports.AssetTypeRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	idempRepo ports.IdempotencyRepository,
	replayCache ports.ReplayCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		assetRepo:   assetRepo,
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		idempRepo:   idempRepo,
		replayCache: replayCache,
		transactor:  transactor,
		log:         log,
	}
}

// Transact executes one wallet mutation with pessimistic locking.
func (s *TransactionServiceImpl) Transact(ctx context.Context, cmd ports.TransactCommand) (*ports.TransactReceipt, error) {
	cacheKey := domain.ReplayCacheKey(cmd.IdempotencyKey, cmd.UserID)

	// Layer 1: Redis replay check. Entries are written post-commit only, so a
	// hit is always a committed record.
	if s.replayCache != nil {
		cached, err := s.replayCache.Get(ctx, cacheKey)
		if err != nil {
			s.log.Warn().Err(err).Str("key", cmd.IdempotencyKey).Msg("redis replay check failed, falling through to DB")
		}
		if cached != nil {
			if cached.RequestHash != cmd.RequestHash {
				return nil, apperror.ErrIdempotencyConflict()
			}
			return &ports.TransactReceipt{Payload: cached.ResponsePayload, Replayed: true}, nil
		}
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Layer 2: DB idempotency check, inside the transaction so a prior commit
	// is visible.
	prior, err := s.idempRepo.Get(ctx, dbTx, cmd.IdempotencyKey, cmd.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if prior != nil {
		if prior.RequestHash != cmd.RequestHash {
			return nil, apperror.ErrIdempotencyConflict()
		}
		s.cacheRecord(ctx, cacheKey, prior)
		return &ports.TransactReceipt{Payload: prior.ResponsePayload, Replayed: true}, nil
	}

	// Resolve asset type
	asset, err := s.assetRepo.GetByCode(ctx, cmd.AssetCode)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve asset type: %w", err))
	}
	if asset == nil {
		return nil, apperror.ErrAssetNotFound()
	}

	// Resolve both wallets
	userWallet, err := s.walletRepo.GetByUserAndAssetTx(ctx, dbTx, cmd.UserID, asset.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve user wallet: %w", err))
	}
	if userWallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}
	treasuryWallet, err := s.walletRepo.GetByUserAndAssetTx(ctx, dbTx, domain.TreasuryUserID, asset.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve treasury wallet: %w", err))
	}
	if treasuryWallet == nil {
		// A seeded deployment always has a treasury wallet per asset; surface
		// the gap to operators but answer the client like any absent wallet.
		s.log.Warn().Str("asset_code", asset.Code).Msg("treasury wallet missing for asset")
		return nil, apperror.ErrWalletNotFound()
	}

	// Lock both rows in ascending wallet-id order, then re-read state from
	// the authoritative post-lock copies.
	userWallet, treasuryWallet, err = s.lockPair(ctx, dbTx, userWallet.ID, treasuryWallet.ID)
	if err != nil {
		return nil, err
	}

	// Signed deltas per transaction type; only the user side is checked
	// non-negative, the treasury may go below zero.
	userDelta, treasuryDelta := cmd.Type.Deltas(cmd.Amount)
	newUserBalance := userWallet.Balance + userDelta
	if newUserBalance < 0 {
		return nil, apperror.ErrInsufficientFunds()
	}
	newTreasuryBalance := treasuryWallet.Balance + treasuryDelta

	// Persist: update both balances
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, userWallet.ID, newUserBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update user balance: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, treasuryWallet.ID, newTreasuryBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update treasury balance: %w", err))
	}

	// Persist: paired ledger entries under one transaction id
	now := time.Now().UTC()
	txID := uuid.NewString()
	userEntry := &domain.LedgerEntry{
		TransactionID: txID,
		WalletID:      userWallet.ID,
		Amount:        userDelta,
		Reason:        cmd.Type,
		CreatedAt:     now,
	}
	treasuryEntry := &domain.LedgerEntry{
		TransactionID: txID,
		WalletID:      treasuryWallet.ID,
		Amount:        treasuryDelta,
		Reason:        cmd.Type,
		CreatedAt:     now,
	}
	if err := s.ledgerRepo.InsertPair(ctx, dbTx, userEntry, treasuryEntry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("write ledger pair: %w", err))
	}

	// Persist: idempotency record with the canonical response bytes
	payload, err := json.Marshal(transactResponse{
		TxID:            txID,
		UserID:          cmd.UserID,
		TransactionType: string(cmd.Type),
		Amount:          cmd.Amount,
		NewBalance:      newUserBalance,
		AssetTypeID:     asset.ID,
		AssetCode:       asset.Code,
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal response: %w", err))
	}

	rec := &domain.IdempotencyRecord{
		Key:             cmd.IdempotencyKey,
		UserID:          cmd.UserID,
		RequestHash:     cmd.RequestHash,
		ResponsePayload: payload,
		CreatedAt:       now,
	}
	if err := s.idempRepo.Create(ctx, dbTx, rec); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			// A concurrent racer with the same key committed first. Abandon
			// our transaction and serve the winner's committed record.
			_ = dbTx.Rollback(ctx)
			return s.resolveRace(ctx, cmd)
		}
		return nil, apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	// Post-process: cache in Redis (best-effort)
	s.cacheRecord(ctx, cacheKey, rec)

	s.log.Info().
		Str("tx_id", txID).
		Str("user_id", cmd.UserID).
		Str("type", string(cmd.Type)).
		Int64("amount", cmd.Amount).
		Int64("new_balance", newUserBalance).
		Msg("transaction committed")

	return &ports.TransactReceipt{Payload: payload, Replayed: false}, nil
}

// lockPair acquires both row locks in ascending wallet-id order so that
// concurrent transactions over the same pair cannot form a hold-and-wait
// cycle, then maps the fresh post-lock rows back to (user, treasury).
func (s *TransactionServiceImpl) lockPair(ctx context.Context, dbTx pgx.Tx, userWalletID, treasuryWalletID int64) (*domain.Wallet, *domain.Wallet, error) {
	lo, hi := domain.LockOrder(userWalletID, treasuryWalletID)

	first, err := s.walletRepo.LockByID(ctx, dbTx, lo)
	if err != nil {
		return nil, nil, s.lockError(lo, err)
	}
	second, err := s.walletRepo.LockByID(ctx, dbTx, hi)
	if err != nil {
		return nil, nil, s.lockError(hi, err)
	}
	if first == nil || second == nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("wallet row vanished during lock (%d, %d)", lo, hi))
	}

	if first.ID == userWalletID {
		return first, second, nil
	}
	return second, first, nil
}

func (s *TransactionServiceImpl) lockError(walletID int64, err error) error {
	if errors.Is(err, domain.ErrLockWaitTimeout) {
		return apperror.ErrLockTimeout(err)
	}
	return apperror.InternalError(fmt.Errorf("lock wallet %d: %w", walletID, err))
}

// resolveRace re-reads the committed winner's record after losing the
// duplicate-key race at insert time.
func (s *TransactionServiceImpl) resolveRace(ctx context.Context, cmd ports.TransactCommand) (*ports.TransactReceipt, error) {
	winner, err := s.idempRepo.GetCommitted(ctx, cmd.IdempotencyKey, cmd.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read idempotency record: %w", err))
	}
	if winner == nil {
		// The insert failed on a duplicate that no committed read can see.
		return nil, apperror.InternalError(fmt.Errorf("idempotency record vanished for key %s", cmd.IdempotencyKey))
	}
	if winner.RequestHash != cmd.RequestHash {
		return nil, apperror.ErrIdempotencyConflict()
	}
	return &ports.TransactReceipt{Payload: winner.ResponsePayload, Replayed: true}, nil
}

// cacheRecord stores a committed record in the replay cache, best-effort.
func (s *TransactionServiceImpl) cacheRecord(ctx context.Context, cacheKey string, rec *domain.IdempotencyRecord) {
	if s.replayCache == nil {
		return
	}
	if err := s.replayCache.Set(ctx, cacheKey, rec, replayTTL); err != nil {
		s.log.Warn().Err(err).Str("key", rec.Key).Msg("failed to cache replay record in redis")
	}
}
