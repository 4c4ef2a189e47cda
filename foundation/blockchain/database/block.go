package database

import (
	"context"
	"fmt"
	"time"

	"github.com/hashledger/ledger/foundation/blockchain/digest"
	"github.com/hashledger/ledger/foundation/blockchain/merkle"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Position of the block in the chain. Genesis is 0.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain. "0" for genesis.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was mined, seconds since epoch.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
	TransRoot     string `json:"trans_root"`      // Merkle tree root hash for the transactions in this block.
}

// Block represents a group of transactions batched together.
type Block struct {
	Header BlockHeader
	Trans  *merkle.Tree[Tx]
}

// POW constructs a new Block linked to the specified previous block and
// performs the work to find a nonce that solves the cryptographic puzzle.
// The returned block is sealed. A candidate never leaves this function
// half mined.
func POW(ctx context.Context, difficulty uint, prevBlock Block, trans []Tx, evHandler func(v string, args ...any)) (Block, error) {

	// Construct a merkle tree from the transactions for this block. The
	// root of this tree will be part of the block to be mined.
	tree, err := merkle.NewTree(trans)
	if err != nil {
		return Block{}, err
	}

	// Construct the block to be mined.
	nb := Block{
		Header: BlockHeader{
			Number:        prevBlock.Header.Number + 1,
			PrevBlockHash: prevBlock.Hash(),
			TimeStamp:     uint64(time.Now().UTC().Unix()),
			Nonce:         0, // Will be identified by the POW algorithm.
			TransRoot:     tree.RootHex(),
		},
		Trans: tree,
	}

	// Perform the proof of work mining operation.
	if err := nb.performPOW(ctx, difficulty, evHandler); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// Genesis constructs the first block of a chain. The genesis block is fully
// determined by its construction time, so it hashes identically on every
// node holding the same genesis information.
func Genesis(timeStamp time.Time) Block {
	tree, err := merkle.NewTree[Tx](nil)
	if err != nil {
		// An empty batch cannot fail to hash.
		panic(err)
	}

	return Block{
		Header: BlockHeader{
			Number:        0,
			PrevBlockHash: digest.ZeroHash,
			TimeStamp:     uint64(timeStamp.UTC().Unix()),
			Nonce:         0,
			TransRoot:     tree.RootHex(),
		},
		Trans: tree,
	}
}

// performPOW does the work of mining to find a valid hash for the block.
// Pointer semantics are being used since a nonce is being discovered. The
// nonce starts at zero and is incremented by one until the hash solves the
// difficulty. Expected iterations grow by 16x per difficulty level, so the
// difficulty is assumed to be small enough to terminate.
func (b *Block) performPOW(ctx context.Context, difficulty uint, ev func(v string, args ...any)) error {
	ev("database: performPOW: MINING: started: blk[%d]", b.Header.Number)
	defer ev("database: performPOW: MINING: completed: blk[%d]", b.Header.Number)

	for _, tx := range b.Trans.Values() {
		ev("database: performPOW: MINING: tx[%s]", tx)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: performPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := b.Hash()
		if !isHashSolved(difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		ev("database: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, hash)
		ev("database: performPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// Hash returns the unique hash for the block. The hash is recomputed from
// the header fields every time, so it can never drift from the content it
// commits to. The field separator is fixed so no two distinct header tuples
// can produce the same input string.
func (b Block) Hash() string {
	blockString := fmt.Sprintf("%d|%s|%s|%d|%d",
		b.Header.Number,
		b.Header.PrevBlockHash,
		b.Header.TransRoot,
		b.Header.TimeStamp,
		b.Header.Nonce,
	)

	return digest.HashString(blockString)
}

// isHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint, hash string) bool {
	const match = "00000000000000000"

	if len(hash) != 64 || difficulty >= uint(len(match)) {
		return false
	}

	return hash[:difficulty] == match[:difficulty]
}

// =============================================================================

// BlockData represents what is written to and read from storage. The hash
// is stored alongside the header so a load can prove the round-trip kept
// the block intact.
type BlockData struct {
	Hash   string      `json:"hash"`
	Header BlockHeader `json:"block"`
	Trans  []Tx        `json:"trans"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(block Block) BlockData {
	blockData := BlockData{
		Hash:   block.Hash(),
		Header: block.Header,
		Trans:  block.Trans.Values(),
	}

	return blockData
}

// ToBlock converts a BlockData into a Block. The merkle tree is rebuilt
// from the stored transactions and the stored hash is proven against the
// recomputed hash.
func ToBlock(blockData BlockData) (Block, error) {
	tree, err := merkle.NewTree(blockData.Trans)
	if err != nil {
		return Block{}, err
	}

	nb := Block{
		Header: blockData.Header,
		Trans:  tree,
	}

	// The header commits to the merkle root and the hash commits to the
	// header. Both links have to hold for the stored block to be intact.
	if tree.RootHex() != blockData.Header.TransRoot {
		return Block{}, NewChainError(blockData.Header.Number, ErrHashMismatch)
	}
	if blockData.Hash != nb.Hash() {
		return Block{}, NewChainError(blockData.Header.Number, ErrHashMismatch)
	}

	return nb, nil
}
