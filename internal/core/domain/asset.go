package domain

import (
	"strings"
	"time"
)

// AssetType is reference data for one supported virtual currency.
// Rows are inserted by seeding and never mutated or deleted afterwards.
type AssetType struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"` // Canonical uppercase code, e.g. GOLD_COIN
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeAssetCode trims surrounding whitespace and uppercases the code.
// An empty result means the input was invalid.
func NormalizeAssetCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
