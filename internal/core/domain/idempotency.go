package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"
)

// Storage sentinels surfaced by the postgres adapter. The engine branches on
// these; everything else from the adapter is an internal error.
var (
	// ErrDuplicateIdempotencyKey is returned when inserting an idempotency
	// record whose (key, user_id) already exists; a concurrent racer won.
	ErrDuplicateIdempotencyKey = errors.New("idempotency key already exists")

	// ErrLockWaitTimeout is returned when a row-lock acquisition exceeds the
	// configured lock_timeout. Retryable.
	ErrLockWaitTimeout = errors.New("lock wait timeout")
)

// IdempotencyRecord maps a client-supplied key, scoped per user, to the
// canonical hash of the request that first used it and the exact response
// that request produced. Two requests are "the same request" iff their
// hashes match; a matching replay returns ResponsePayload verbatim.
type IdempotencyRecord struct {
	Key             string    `json:"key"`
	UserID          string    `json:"user_id"`
	RequestHash     string    `json:"request_hash"`
	ResponsePayload []byte    `json:"response_payload"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReplayCacheKey is the key under which a committed record is cached for the
// Redis fast path.
func ReplayCacheKey(key, userID string) string {
	return key + ":" + userID
}

// canonicalPayload fixes the field set and order of the hashed encoding:
// keys sorted lexicographically, compact JSON, amount as a bare integer.
type canonicalPayload struct {
	Amount          int64  `json:"amount"`
	AssetCode       string `json:"asset_code"`
	TransactionType string `json:"transaction_type"`
	UserID          string `json:"user_id"`
}

// RequestHash computes the SHA-256 hex digest of the canonical mutation
// payload. assetCode must already be normalized. The digest is the equality
// predicate of the idempotency store.
func RequestHash(userID string, amount int64, txType TransactionType, assetCode string) string {
	raw, _ := json.Marshal(canonicalPayload{
		Amount:          amount,
		AssetCode:       assetCode,
		TransactionType: string(txType),
		UserID:          userID,
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
