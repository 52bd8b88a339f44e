package ports

import (
	"context"
	"time"

	"virtual-wallet-service/internal/core/domain"
)

// ReplayCache is an optional fast path in front of the transactional
// idempotency store. It only ever holds committed records, written
// best-effort after commit.
type ReplayCache interface {
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) // nil, nil on miss
	Set(ctx context.Context, key string, rec *domain.IdempotencyRecord, ttl time.Duration) error
}

// --- Service Ports (Business Logic) ---

// TransactionService executes the state-changing wallet operation.
type TransactionService interface {
	Transact(ctx context.Context, cmd TransactCommand) (*TransactReceipt, error)
}

// TransactCommand holds a normalized, validated mutation request.
// AssetCode is already uppercased and RequestHash is the canonical payload
// digest; both are produced at the request boundary.
type TransactCommand struct {
	UserID         string
	Amount         int64
	Type           domain.TransactionType
	AssetCode      string
	IdempotencyKey string
	RequestHash    string
}

// TransactReceipt is the engine's result. Payload is the canonical
// serialized response body; replays return the stored payload verbatim.
type TransactReceipt struct {
	Payload  []byte
	Replayed bool
}

// ReportingService serves the read views over the engine's state.
type ReportingService interface {
	GetBalance(ctx context.Context, userID, assetCode string) (*BalanceView, error)
	GetHistory(ctx context.Context, userID, assetCode string) (*HistoryView, error)
}

// BalanceView is the balance lookup result.
type BalanceView struct {
	UserID      string `json:"user_id"`
	Balance     int64  `json:"balance"`
	AssetTypeID int64  `json:"asset_type_id"`
	AssetCode   string `json:"asset_code"`
}

// HistoryView is the per-user, per-asset transaction history, newest first.
// Size is unbounded; pagination is a known limitation.
type HistoryView struct {
	UserID         string        `json:"user_id"`
	AssetCode      string        `json:"asset_code"`
	AssetTypeID    int64         `json:"asset_type_id"`
	CurrentBalance int64         `json:"current_balance"`
	Transactions   []HistoryItem `json:"transactions"`
}

// HistoryItem is one ledger entry as exposed to clients.
type HistoryItem struct {
	TransactionID string    `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}
