package domain

import "time"

// TreasuryUserID is the reserved user_id of the system counterparty wallet.
// It funds credits to user wallets and absorbs their debits, and it is the
// only wallet whose balance is allowed to go negative. Clients may never act
// as this user.
const TreasuryUserID = "SYSTEM_TREASURY"

// Wallet is a per-user, per-asset balance. The surrogate ID doubles as the
// lock-ordering key: concurrent mutations always lock the two wallets of a
// transaction in ascending ID order.
type Wallet struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	AssetTypeID int64     `json:"asset_type_id"`
	Balance     int64     `json:"balance"` // Smallest unit of the asset, signed
	CreatedAt   time.Time `json:"created_at"`
}

// IsTreasury reports whether this is the system counterparty wallet.
func (w *Wallet) IsTreasury() bool {
	return w.UserID == TreasuryUserID
}

// LockOrder returns the two wallet IDs in ascending order. Every transaction
// acquires its row locks in this order, so hold-and-wait cycles cannot form.
func LockOrder(a, b int64) (lo, hi int64) {
	if a <= b {
		return a, b
	}
	return b, a
}
