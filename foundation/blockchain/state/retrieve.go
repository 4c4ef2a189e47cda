package state

import (
	"github.com/hashledger/ledger/foundation/blockchain/database"
	"github.com/hashledger/ledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy of the current tip of the chain.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the uncommitted transactions.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.PickBest(-1)
}

// RetrieveChain returns a snapshot copy of the full chain of blocks,
// genesis included.
func (s *State) RetrieveChain() []database.Block {
	return s.db.Chain()
}

// RetrieveBlock returns the block with the specified number.
func (s *State) RetrieveBlock(num uint64) (database.Block, error) {
	return s.db.GetBlock(num)
}
