package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"virtual-wallet-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore emulates the database for end-to-end tests: committed state plus
// per-wallet row locks held until commit/rollback, so the engine's locking
// discipline is exercised for real. Writes are buffered per transaction and
// applied atomically at Commit, and a committed idempotency record makes a
// later insert fail with the duplicate-key sentinel, matching PostgreSQL.
type memStore struct {
	mu           sync.Mutex
	assets       map[string]*domain.AssetType
	wallets      map[int64]*domain.Wallet
	walletByUser map[string]int64 // userID|assetTypeID -> wallet id
	ledger       []domain.LedgerEntry
	idem         map[string]*domain.IdempotencyRecord // key|userID -> record
	rowLocks     map[int64]*sync.Mutex
	nextAssetID  int64
	nextWalletID int64
	nextLedgerID int64
}

func newMemStore() *memStore {
	return &memStore{
		assets:       make(map[string]*domain.AssetType),
		wallets:      make(map[int64]*domain.Wallet),
		walletByUser: make(map[string]int64),
		idem:         make(map[string]*domain.IdempotencyRecord),
		rowLocks:     make(map[int64]*sync.Mutex),
	}
}

func walletKey(userID string, assetTypeID int64) string {
	return fmt.Sprintf("%s|%d", userID, assetTypeID)
}

func idemKey(key, userID string) string {
	return key + "|" + userID
}

func (s *memStore) addAsset(code, name string) *domain.AssetType {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAssetID++
	a := &domain.AssetType{ID: s.nextAssetID, Code: code, Name: name}
	s.assets[code] = a
	return a
}

func (s *memStore) addWallet(userID string, assetTypeID, balance int64) *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextWalletID++
	w := &domain.Wallet{ID: s.nextWalletID, UserID: userID, AssetTypeID: assetTypeID, Balance: balance}
	s.wallets[w.ID] = w
	s.walletByUser[walletKey(userID, assetTypeID)] = w.ID
	s.rowLocks[w.ID] = &sync.Mutex{}
	return w
}

func (s *memStore) balance(walletID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[walletID].Balance
}

// ledgerSum computes the per-wallet sum over all committed entries.
func (s *memStore) ledgerSum(walletID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, e := range s.ledger {
		if e.WalletID == walletID {
			sum += e.Amount
		}
	}
	return sum
}

// entriesByTransaction returns all committed entries sharing a transaction id.
func (s *memStore) entriesByTransaction(txID string) []domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range s.ledger {
		if e.TransactionID == txID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) rowLock(walletID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowLocks[walletID]
}

// --- memTx: a pgx.Tx whose writes are buffered until Commit ---

type memTx struct {
	store *memStore

	mu            sync.Mutex
	held          []int64 // locked wallet ids, in acquisition order
	balanceWrites map[int64]int64
	ledgerWrites  []domain.LedgerEntry
	idemWrite     *domain.IdempotencyRecord
	done          bool
}

func newMemTx(store *memStore) *memTx {
	return &memTx{
		store:         store,
		balanceWrites: make(map[int64]int64),
	}
}

// lockRow blocks until the row lock is granted, like FOR UPDATE.
func (t *memTx) lockRow(walletID int64) {
	t.store.rowLock(walletID).Lock()
	t.mu.Lock()
	t.held = append(t.held, walletID)
	t.mu.Unlock()
}

func (t *memTx) releaseLocks() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.store.rowLocks[t.held[i]].Unlock()
	}
	t.held = nil
}

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	for walletID, balance := range t.balanceWrites {
		s.wallets[walletID].Balance = balance
	}
	for _, e := range t.ledgerWrites {
		s.nextLedgerID++
		e.ID = s.nextLedgerID
		s.ledger = append(s.ledger, e)
	}
	if t.idemWrite != nil {
		s.idem[idemKey(t.idemWrite.Key, t.idemWrite.UserID)] = t.idemWrite
	}
	s.mu.Unlock()

	t.releaseLocks()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.balanceWrites = make(map[int64]int64)
	t.ledgerWrites = nil
	t.idemWrite = nil
	t.releaseLocks()
	return nil
}

// Remaining pgx.Tx methods are unused by the repositories under test.
func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// --- Transactor ---

type memTransactor struct{ store *memStore }

func (tr *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return newMemTx(tr.store), nil
}

// --- Repositories over the store ---

type memAssetRepo struct{ store *memStore }

func (r *memAssetRepo) GetByCode(ctx context.Context, code string) (*domain.AssetType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.assets[code]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

type memWalletRepo struct{ store *memStore }

func (r *memWalletRepo) getCommitted(userID string, assetTypeID int64) *domain.Wallet {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.walletByUser[walletKey(userID, assetTypeID)]
	if !ok {
		return nil
	}
	cp := *r.store.wallets[id]
	return &cp
}

func (r *memWalletRepo) GetByUserAndAsset(ctx context.Context, userID string, assetTypeID int64) (*domain.Wallet, error) {
	return r.getCommitted(userID, assetTypeID), nil
}

func (r *memWalletRepo) GetByUserAndAssetTx(ctx context.Context, tx pgx.Tx, userID string, assetTypeID int64) (*domain.Wallet, error) {
	return r.getCommitted(userID, assetTypeID), nil
}

// LockByID blocks until the row lock is granted, then returns the committed
// row, the same visibility FOR UPDATE gives after a competing commit.
func (r *memWalletRepo) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*domain.Wallet, error) {
	mt := tx.(*memTx)
	mt.lockRow(id)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID int64, newBalance int64) error {
	mt := tx.(*memTx)
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.balanceWrites[walletID] = newBalance
	return nil
}

type memLedgerRepo struct{ store *memStore }

func (r *memLedgerRepo) InsertPair(ctx context.Context, tx pgx.Tx, first, second *domain.LedgerEntry) error {
	mt := tx.(*memTx)
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.ledgerWrites = append(mt.ledgerWrites, *first, *second)
	return nil
}

func (r *memLedgerRepo) ListByWallet(ctx context.Context, walletID int64) ([]domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.store.ledger {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type memIdempotencyRepo struct{ store *memStore }

func (r *memIdempotencyRepo) get(key, userID string) *domain.IdempotencyRecord {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.idem[idemKey(key, userID)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

func (r *memIdempotencyRepo) Get(ctx context.Context, tx pgx.Tx, key, userID string) (*domain.IdempotencyRecord, error) {
	return r.get(key, userID), nil
}

func (r *memIdempotencyRepo) GetCommitted(ctx context.Context, key, userID string) (*domain.IdempotencyRecord, error) {
	return r.get(key, userID), nil
}

// Create enforces the (key, user_id) primary key the way the database does:
// a committed record makes the insert fail with the duplicate-key sentinel.
func (r *memIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	if r.get(rec.Key, rec.UserID) != nil {
		return domain.ErrDuplicateIdempotencyKey
	}
	mt := tx.(*memTx)
	mt.mu.Lock()
	defer mt.mu.Unlock()
	cp := *rec
	mt.idemWrite = &cp
	return nil
}
