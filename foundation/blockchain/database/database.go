// Package database owns the chain of blocks, from the genesis block to the
// current tip, and the protocol for admitting and validating blocks. The
// chain lives fully in memory and is written through to storage one block
// at a time.
package database

import (
	"fmt"
	"sync"

	"github.com/hashledger/ledger/foundation/blockchain/genesis"
)

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the blockchain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// DatabaseIterator provides support for iterating over the blocks in
// storage, converting each one back into a Block.
type DatabaseIterator struct {
	iterator Iterator
}

// Next retrieves the next block from storage.
func (di *DatabaseIterator) Next() (Block, error) {
	blockData, err := di.iterator.Next()
	if err != nil {
		return Block{}, err
	}

	return ToBlock(blockData)
}

// Done returns the end of chain value.
func (di *DatabaseIterator) Done() bool {
	return di.iterator.Done()
}

// =============================================================================

// Database manages the chain of blocks. The chain is append only. It never
// shrinks or reorders outside of an explicit Reset.
type Database struct {
	mu sync.RWMutex

	genesis    genesis.Genesis
	chain      []Block
	serializer Serializer
}

// New constructs a new database, derives the genesis block from the genesis
// information and reads any blocks the storage already holds. A stored
// chain that does not survive validation fails the construction.
func New(genesis genesis.Genesis, serializer Serializer, evHandler func(v string, args ...any)) (*Database, error) {
	db := Database{
		genesis:    genesis,
		chain:      []Block{Genesis(genesis.Date)},
		serializer: serializer,
	}

	// Read all the blocks from storage. Block numbering in storage starts
	// at 1 since the genesis block is derived, not stored.
	iter := serializer.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block, err := ToBlock(blockData)
		if err != nil {
			return nil, err
		}

		evHandler("database: New: load: blk[%d]: hash[%s]", block.Header.Number, block.Hash())
		db.chain = append(db.chain, block)
	}

	// Prove the loaded chain holds together before accepting it.
	if err := db.ValidateChain(); err != nil {
		return nil, fmt.Errorf("stored chain is corrupt: %w", err)
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() {
	db.serializer.Close()
}

// Reset re-initializes the database back to just the genesis block.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Reset(); err != nil {
		return err
	}

	db.chain = []Block{Genesis(db.genesis.Date)}

	return nil
}

// Add admits a mined block to the chain. The block is written through to
// storage first so the in memory chain never gets ahead of the store.
func (db *Database) Add(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.serializer.Write(NewBlockData(block)); err != nil {
		return err
	}

	db.chain = append(db.chain, block)

	return nil
}

// LatestBlock returns the current tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Height returns the number of blocks in the chain including genesis.
func (db *Database) Height() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// Chain returns a copy of the current chain of blocks. The copy gives
// readers a consistent snapshot while mining is in flight.
func (db *Database) Chain() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	chain := make([]Block, len(db.chain))
	copy(chain, db.chain)

	return chain
}

// GetBlock returns the block with the specified number from the in memory
// chain.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= uint64(len(db.chain)) {
		return Block{}, fmt.Errorf("block %d does not exist", num)
	}

	return db.chain[num], nil
}

// ForEach returns an iterator to walk through all the blocks in storage
// starting with block number 1.
func (db *Database) ForEach() DatabaseIterator {
	return DatabaseIterator{iterator: db.serializer.ForEach()}
}

// ValidateChain re-derives every hash in the chain from the genesis block
// forward and confirms the linkage between each block and its predecessor.
// The first violation stops the walk and is reported with the offending
// block number and the check that failed. A nil error means the chain has
// not been tampered with.
//
// Proof of work compliance is deliberately not re-checked here. Validation
// proves content and linkage integrity only.
func (db *Database) ValidateChain() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for i := 1; i < len(db.chain); i++ {
		block := db.chain[i]
		prevBlock := db.chain[i-1]

		// Content integrity. The transactions must still produce the
		// merkle root the header committed to when the block was mined.
		if block.Header.TransRoot != block.Trans.RootHex() {
			return NewChainError(block.Header.Number, ErrHashMismatch)
		}

		// Linkage integrity. The block must point at the hash its
		// predecessor derives right now.
		if block.Header.PrevBlockHash != prevBlock.Hash() {
			return NewChainError(block.Header.Number, ErrPrevHashMismatch)
		}
	}

	return nil
}
