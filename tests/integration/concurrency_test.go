package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fifty concurrent mutations against one wallet, distinct keys. Every request
// must succeed and the final balances must be exact: the row locks serialize
// the read-modify-write, so no update may be lost.
func TestTransact_ConcurrentMixedLoadIsExact(t *testing.T) {
	env := newTestEnv(t)

	const (
		topups      = 25
		spends      = 25
		topupAmount = int64(2)
		spendAmount = int64(1)
	)

	var failures []string
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(key string, body map[string]any) {
		defer wg.Done()
		w := env.postTransact(t, key, body)
		if w.Code != http.StatusOK {
			mu.Lock()
			failures = append(failures, fmt.Sprintf("status %d: %s", w.Code, w.Body.String()))
			mu.Unlock()
		}
	}

	wg.Add(topups + spends)
	for i := 0; i < topups; i++ {
		go run(fmt.Sprintf("key-topup-%d", i), topupBody(topupAmount))
	}
	for i := 0; i < spends; i++ {
		go run(fmt.Sprintf("key-spend-%d", i), spendBody(spendAmount))
	}
	wg.Wait()

	for _, failure := range failures {
		t.Errorf("unexpected failure: %s", failure)
	}

	wantUser := userStart + topups*topupAmount - spends*spendAmount
	wantTreasury := treasuryStart - topups*topupAmount + spends*spendAmount
	assert.Equal(t, wantUser, env.store.balance(env.userW.ID))
	assert.Equal(t, wantTreasury, env.store.balance(env.treasury.ID))

	// Ledger reconciliation: each wallet's balance equals its seed plus the
	// sum of its entries, and value only moved between the two wallets.
	assert.Equal(t, wantUser-userStart, env.store.ledgerSum(env.userW.ID))
	assert.Equal(t, wantTreasury-treasuryStart, env.store.ledgerSum(env.treasury.ID))
	assert.Equal(t, int64(0), env.store.ledgerSum(env.userW.ID)+env.store.ledgerSum(env.treasury.ID))
}

// Every committed transaction id must carry exactly one entry pair summing
// to zero, even under concurrent load.
func TestTransact_ConcurrentLoadKeepsEntriesPaired(t *testing.T) {
	env := newTestEnv(t)

	var wg sync.WaitGroup
	const n = 20
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			w := env.postTransact(t, fmt.Sprintf("key-%d", i), topupBody(1))
			assert.Equal(t, http.StatusOK, w.Code)
		}(i)
	}
	wg.Wait()

	env.store.mu.Lock()
	byTx := make(map[string][]int64)
	for _, e := range env.store.ledger {
		byTx[e.TransactionID] = append(byTx[e.TransactionID], e.Amount)
	}
	env.store.mu.Unlock()

	require.Len(t, byTx, n)
	for txID, amounts := range byTx {
		require.Len(t, amounts, 2, "transaction %s", txID)
		assert.Equal(t, int64(0), amounts[0]+amounts[1], "transaction %s", txID)
	}
}

// Concurrent requests reusing one key and payload must all succeed with the
// same response bytes while the operation itself runs exactly once.
func TestTransact_ConcurrentSameKeyRunsOnce(t *testing.T) {
	env := newTestEnv(t)

	const n = 10
	bodies := make([][]byte, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			w := env.postTransact(t, "key-shared", topupBody(50))
			assert.Equal(t, http.StatusOK, w.Code)
			bodies[i] = w.Body.Bytes()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}

	assert.Equal(t, userStart+50, env.store.balance(env.userW.ID))
	assert.Equal(t, int64(50), env.store.ledgerSum(env.userW.ID))
}
