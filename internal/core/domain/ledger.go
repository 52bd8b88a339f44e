package domain

import "time"

// TransactionType is the reason tag of a wallet mutation.
type TransactionType string

const (
	TransactionTypeTopup TransactionType = "TOPUP"
	TransactionTypeBonus TransactionType = "BONUS"
	TransactionTypeSpend TransactionType = "SPEND"
)

// IsValid reports whether t is one of the three supported types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeTopup, TransactionTypeBonus, TransactionTypeSpend:
		return true
	}
	return false
}

// Deltas returns the signed balance deltas for the user and treasury wallets.
// amount must be positive. TOPUP and BONUS credit the user from the treasury;
// SPEND debits the user into the treasury. The deltas always sum to zero.
func (t TransactionType) Deltas(amount int64) (user, treasury int64) {
	if t == TransactionTypeSpend {
		return -amount, amount
	}
	return amount, -amount
}

// LedgerEntry is one half of a double-entry record. Entries are insert-only:
// exactly two entries share a transaction ID and their amounts sum to zero.
type LedgerEntry struct {
	ID            int64           `json:"id"`
	TransactionID string          `json:"transaction_id"`
	WalletID      int64           `json:"wallet_id"`
	Amount        int64           `json:"amount"` // Signed, nonzero
	Reason        TransactionType `json:"reason"`
	CreatedAt     time.Time       `json:"created_at"`
}
