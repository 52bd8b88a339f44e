package postgres

import (
	"context"
	"errors"
	"fmt"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AssetRepo implements ports.AssetTypeRepository.
type AssetRepo struct {
	pool Pool
}

// NewAssetRepo creates a new AssetRepo.
func NewAssetRepo(pool Pool) *AssetRepo {
	return &AssetRepo{pool: pool}
}

// GetByCode fetches an asset type by its canonical code.
// Returns nil, nil when the code is unknown.
func (r *AssetRepo) GetByCode(ctx context.Context, code string) (*domain.AssetType, error) {
	query := `SELECT id, code, name, created_at FROM asset_types WHERE code = $1`

	a := &domain.AssetType{}
	err := r.pool.QueryRow(ctx, query, code).Scan(&a.ID, &a.Code, &a.Name, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get asset type by code: %w", err)
	}
	return a, nil
}
