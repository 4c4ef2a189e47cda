// Package mempool maintains the pool of transactions waiting to be mined
// into a block. The pool preserves submission order, since the order of the
// batch determines the merkle root of the block that commits it.
package mempool

import (
	"sync"

	"github.com/hashledger/ledger/foundation/blockchain/database"
)

// Mempool represents a cache of transactions in submission order.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the pool. Identical transactions are kept.
// Two transactions with the same fields are indistinguishable and both
// belong in the next batch.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// PickBest returns up to howMany transactions from the front of the pool
// for the next block. Passing -1 returns the entire pool. The returned
// slice is a copy.
func (mp *Mempool) PickBest(howMany int) []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	if howMany == -1 || howMany > len(mp.pool) {
		howMany = len(mp.pool)
	}

	trans := make([]database.Tx, howMany)
	copy(trans, mp.pool[:howMany])

	return trans
}

// Drop removes the specified number of transactions from the front of the
// pool once they have been admitted into a block.
func (mp *Mempool) Drop(howMany int) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if howMany > len(mp.pool) {
		howMany = len(mp.pool)
	}

	mp.pool = append([]database.Tx{}, mp.pool[howMany:]...)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
}
