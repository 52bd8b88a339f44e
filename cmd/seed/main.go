// Command seed creates the wallet schema and loads the reference data:
// asset types, the treasury wallets, and a couple of demo user wallets.
// Re-running it makes no duplicate rows.
package main

import (
	"context"
	"fmt"
	"os"

	"virtual-wallet-service/config"
	pgStorage "virtual-wallet-service/internal/adapter/storage/postgres"
	"virtual-wallet-service/internal/core/domain"
	"virtual-wallet-service/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS asset_types (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		asset_type_id BIGINT NOT NULL REFERENCES asset_types(id),
		balance BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, asset_type_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id BIGSERIAL PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		wallet_id BIGINT NOT NULL REFERENCES wallets(id),
		amount BIGINT NOT NULL,
		reason TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_wallet_id ON ledger_entries (wallet_id)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_transaction_id ON ledger_entries (transaction_id)`,
	`CREATE TABLE IF NOT EXISTS idempotency_records (
		key TEXT NOT NULL,
		user_id TEXT NOT NULL,
		request_hash TEXT NOT NULL,
		response_payload BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (key, user_id)
	)`,
}

type assetSeed struct {
	code string
	name string
}

var assetSeeds = []assetSeed{
	{"GOLD_COIN", "Gold Coins"},
	{"DIAMOND", "Diamonds"},
	{"LOYALTY_POINT", "Loyalty Points"},
}

var treasuryBalances = map[string]int64{
	"GOLD_COIN":     1_000_000,
	"DIAMOND":       100_000,
	"LOYALTY_POINT": 10_000_000,
}

type walletSeed struct {
	userID  string
	asset   string
	balance int64
}

var userWallets = []walletSeed{
	{"user_123", "GOLD_COIN", 100},
	{"user_123", "DIAMOND", 10},
	{"user_123", "LOYALTY_POINT", 500},
	{"user_456", "GOLD_COIN", 50},
	{"user_456", "DIAMOND", 5},
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	ctx := context.Background()

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatal().Err(err).Msg("Failed to create schema")
		}
	}
	log.Info().Msg("Schema ready")

	for _, a := range assetSeeds {
		_, err := pool.Exec(ctx,
			`INSERT INTO asset_types (code, name) VALUES ($1, $2) ON CONFLICT (code) DO NOTHING`,
			a.code, a.name)
		if err != nil {
			log.Fatal().Err(err).Str("code", a.code).Msg("Failed to seed asset type")
		}
	}

	assetIDs := make(map[string]int64, len(assetSeeds))
	for _, a := range assetSeeds {
		var id int64
		if err := pool.QueryRow(ctx, `SELECT id FROM asset_types WHERE code = $1`, a.code).Scan(&id); err != nil {
			log.Fatal().Err(err).Str("code", a.code).Msg("Failed to load asset type")
		}
		assetIDs[a.code] = id
	}

	seedWallet := func(userID, asset string, balance int64) {
		tag, err := pool.Exec(ctx,
			`INSERT INTO wallets (user_id, asset_type_id, balance) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, asset_type_id) DO NOTHING`,
			userID, assetIDs[asset], balance)
		if err != nil {
			log.Fatal().Err(err).Str("user_id", userID).Str("asset", asset).Msg("Failed to seed wallet")
		}
		if tag.RowsAffected() > 0 {
			log.Info().Str("user_id", userID).Str("asset", asset).Int64("balance", balance).Msg("Wallet created")
		}
	}

	for asset, balance := range treasuryBalances {
		seedWallet(domain.TreasuryUserID, asset, balance)
	}
	for _, w := range userWallets {
		seedWallet(w.userID, w.asset, w.balance)
	}

	log.Info().Msg("Seed complete")
}
