package state

import (
	"context"
	"errors"

	"github.com/hashledger/ledger/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are no transactions in the mempool.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNewBlock attempts to create a new block with a proper hash that can
// become the next block in the chain. On success the block has been linked
// to the previous tip, admitted into the chain and written to storage.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	// Are there transactions in the pool.
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.evHandler("state: MineNewBlock: MINING: perform POW")

	// Pick the next batch and attempt to create a new block by solving the
	// POW puzzle. This can be cancelled.
	trans := s.mempool.PickBest(int(s.genesis.TransPerBlock))
	block, err := database.POW(ctx, s.genesis.Difficulty, s.db.LatestBlock(), trans, s.evHandler)
	if err != nil {
		return database.Block{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: update local state")

	if err := s.updateLocalState(block, len(trans)); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// updateLocalState admits the mined block into the chain, including writing
// it to storage, and removes its transactions from the mempool.
func (s *State) updateLocalState(block database.Block, trans int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: updateLocalState: write block to storage")

	if err := s.db.Add(block); err != nil {
		return err
	}

	s.evHandler("state: updateLocalState: remove txs from mempool")

	s.mempool.Drop(trans)

	return nil
}
