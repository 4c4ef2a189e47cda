package database_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hashledger/ledger/foundation/blockchain/database"
	"github.com/hashledger/ledger/foundation/blockchain/database/storage"
	"github.com/hashledger/ledger/foundation/blockchain/digest"
	"github.com/hashledger/ledger/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

var nop = func(v string, args ...any) {}

var genDate = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		Date:          genDate,
		ChainID:       "test-chain",
		TransPerBlock: 16,
		Difficulty:    1,
	}
}

// =============================================================================

func Test_BlockHash(t *testing.T) {
	t.Log("Given the need to validate block hashing.")
	{
		t.Logf("\tTest 0:\tWhen hashing the genesis block.")
		{
			gen := database.Genesis(genDate)

			if gen.Header.Number != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould number the genesis block zero: got %d", failed, gen.Header.Number)
			}
			t.Logf("\t%s\tTest 0:\tShould number the genesis block zero.", success)

			if gen.Header.PrevBlockHash != digest.ZeroHash {
				t.Fatalf("\t%s\tTest 0:\tShould carry the zero sentinel as the genesis parent: got[%s]", failed, gen.Header.PrevBlockHash)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the zero sentinel as the genesis parent.", success)

			if gen.Header.TransRoot != digest.EmptyRoot() {
				t.Fatalf("\t%s\tTest 0:\tShould commit to the empty merkle root: got[%s]", failed, gen.Header.TransRoot)
			}
			t.Logf("\t%s\tTest 0:\tShould commit to the empty merkle root.", success)

			blockString := fmt.Sprintf("%d|%s|%s|%d|%d",
				gen.Header.Number,
				gen.Header.PrevBlockHash,
				gen.Header.TransRoot,
				gen.Header.TimeStamp,
				gen.Header.Nonce,
			)
			if gen.Hash() != digest.HashString(blockString) {
				t.Fatalf("\t%s\tTest 0:\tShould derive the hash from the canonical header string.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the hash from the canonical header string.", success)

			if gen.Hash() != database.Genesis(genDate).Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould hash identically on every derivation.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould hash identically on every derivation.", success)
		}

		t.Logf("\tTest 1:\tWhen changing a header field.")
		{
			gen := database.Genesis(genDate)
			hash := gen.Hash()

			gen.Header.Nonce++
			if gen.Hash() == hash {
				t.Fatalf("\t%s\tTest 1:\tShould produce a different hash for a different nonce.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould produce a different hash for a different nonce.", success)
		}
	}
}

func Test_POW(t *testing.T) {
	t.Log("Given the need to validate the mining of a block.")
	{
		t.Logf("\tTest 0:\tWhen mining a block with difficulty 1.")
		{
			gen := database.Genesis(genDate)
			tx, err := database.NewTx("Alice", "Bob", 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a transaction: %v", failed, err)
			}

			block, err := database.POW(context.Background(), 1, gen, []database.Tx{tx}, nop)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			if !strings.HasPrefix(block.Hash(), "0") {
				t.Fatalf("\t%s\tTest 0:\tShould produce a hash meeting the difficulty: got[%s]", failed, block.Hash())
			}
			t.Logf("\t%s\tTest 0:\tShould produce a hash meeting the difficulty.", success)

			if block.Header.Number != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould number the block after its parent: got %d", failed, block.Header.Number)
			}
			t.Logf("\t%s\tTest 0:\tShould number the block after its parent.", success)

			if block.Header.PrevBlockHash != gen.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould link the block to its parent hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould link the block to its parent hash.", success)

			if block.Header.TransRoot != block.Trans.RootHex() {
				t.Fatalf("\t%s\tTest 0:\tShould commit the header to the merkle root of the batch.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould commit the header to the merkle root of the batch.", success)
		}

		t.Logf("\tTest 1:\tWhen mining is cancelled.")
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			gen := database.Genesis(genDate)
			if _, err := database.POW(ctx, 1, gen, nil, nop); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould abandon mining on a cancelled context.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould abandon mining on a cancelled context.", success)
		}
	}
}

func Test_BlockDataRoundTrip(t *testing.T) {
	t.Log("Given the need to validate storing and loading a block.")
	{
		gen := database.Genesis(genDate)
		tx, _ := database.NewTx("Alice", "Bob", 10)
		block, err := database.POW(context.Background(), 1, gen, []database.Tx{tx}, nop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		t.Logf("\tTest 0:\tWhen converting a block to storage form and back.")
		{
			blockData := database.NewBlockData(block)
			back, err := database.ToBlock(blockData)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to convert the block back: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to convert the block back.", success)

			if back.Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould keep the hash across the round trip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the hash across the round trip.", success)
		}

		t.Logf("\tTest 1:\tWhen the stored transactions have been tampered with.")
		{
			blockData := database.NewBlockData(block)
			blockData.Trans[0].Value = 10_000

			_, err := database.ToBlock(blockData)
			if !errors.Is(err, database.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest 1:\tShould report a hash mismatch: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report a hash mismatch.", success)

			var chainErr *database.ChainError
			if !errors.As(err, &chainErr) || chainErr.Number != block.Header.Number {
				t.Fatalf("\t%s\tTest 1:\tShould report the offending block number: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report the offending block number.", success)
		}

		t.Logf("\tTest 2:\tWhen the stored hash has been tampered with.")
		{
			blockData := database.NewBlockData(block)
			blockData.Hash = digest.HashString("not the hash")

			if _, err := database.ToBlock(blockData); !errors.Is(err, database.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest 2:\tShould report a hash mismatch: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould report a hash mismatch.", success)
		}
	}
}

func Test_ChainValidation(t *testing.T) {
	t.Log("Given the need to validate chain integrity checking.")
	{
		t.Logf("\tTest 0:\tWhen loading an intact chain from storage.")
		{
			strg, _ := storage.NewMemory()
			db := mineChain(t, strg, 2)

			if db.Height() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould hold the genesis block plus the mined blocks: got %d", failed, db.Height())
			}
			t.Logf("\t%s\tTest 0:\tShould hold the genesis block plus the mined blocks.", success)

			if err := db.ValidateChain(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould report an intact chain as valid: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report an intact chain as valid.", success)

			db2, err := database.New(testGenesis(), strg, nop)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reload the chain from storage: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to reload the chain from storage.", success)

			if db2.LatestBlock().Hash() != db.LatestBlock().Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould reload the same tip.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reload the same tip.", success)
		}

		t.Logf("\tTest 1:\tWhen a stored header no longer matches its transactions.")
		{
			strg, _ := storage.NewMemory()
			mineChain(t, strg, 2)

			// Rewrite block 2 with a corrupted merkle root. The stored hash
			// is recomputed so only the content check can catch it.
			blockData, err := strg.GetBlock(2)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to read block 2: %v", failed, err)
			}

			blockData.Header.TransRoot = digest.HashString("tampered")
			blockData.Hash = rehash(blockData)

			corrupt, _ := storage.NewMemory()
			copyBlocks(t, strg, corrupt, map[uint64]database.BlockData{2: blockData})

			_, err = database.New(testGenesis(), corrupt, nop)
			if !errors.Is(err, database.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest 1:\tShould report a hash mismatch: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report a hash mismatch.", success)

			var chainErr *database.ChainError
			if !errors.As(err, &chainErr) || chainErr.Number != 2 {
				t.Fatalf("\t%s\tTest 1:\tShould report block 2 as the offender: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report block 2 as the offender.", success)
		}

		t.Logf("\tTest 2:\tWhen a stored block no longer links to its parent.")
		{
			strg, _ := storage.NewMemory()
			mineChain(t, strg, 2)

			blockData, err := strg.GetBlock(2)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to read block 2: %v", failed, err)
			}

			blockData.Header.PrevBlockHash = digest.HashString("not the parent")
			blockData.Hash = rehash(blockData)

			corrupt, _ := storage.NewMemory()
			copyBlocks(t, strg, corrupt, map[uint64]database.BlockData{2: blockData})

			_, err = database.New(testGenesis(), corrupt, nop)
			if !errors.Is(err, database.ErrPrevHashMismatch) {
				t.Fatalf("\t%s\tTest 2:\tShould report a previous hash mismatch: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould report a previous hash mismatch.", success)

			var chainErr *database.ChainError
			if !errors.As(err, &chainErr) || chainErr.Number != 2 {
				t.Fatalf("\t%s\tTest 2:\tShould report block 2 as the offender: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould report block 2 as the offender.", success)
		}
	}
}

// =============================================================================

// mineChain constructs a database over the specified storage and mines the
// specified number of single transaction blocks into it.
func mineChain(t *testing.T, strg database.Serializer, blocks int) *database.Database {
	t.Helper()

	db, err := database.New(testGenesis(), strg, nop)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open the database: %v", failed, err)
	}

	for i := 0; i < blocks; i++ {
		tx, err := database.NewTx("Alice", "Bob", uint64(10+i))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %v", failed, err)
		}

		block, err := database.POW(context.Background(), 1, db.LatestBlock(), []database.Tx{tx}, nop)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		if err := db.Add(block); err != nil {
			t.Fatalf("\t%s\tShould be able to add the block: %v", failed, err)
		}
	}

	return db
}

// rehash recomputes the stored hash for tampered block data so only the
// validation walk can detect the tampering.
func rehash(blockData database.BlockData) string {
	blockString := fmt.Sprintf("%d|%s|%s|%d|%d",
		blockData.Header.Number,
		blockData.Header.PrevBlockHash,
		blockData.Header.TransRoot,
		blockData.Header.TimeStamp,
		blockData.Header.Nonce,
	)

	return digest.HashString(blockString)
}

// copyBlocks copies every block from src to dst, replacing the numbers
// present in the overrides map.
func copyBlocks(t *testing.T, src *storage.Memory, dst *storage.Memory, overrides map[uint64]database.BlockData) {
	t.Helper()

	iter := src.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			t.Fatalf("\t%s\tShould be able to iterate storage: %v", failed, err)
		}

		if override, ok := overrides[blockData.Header.Number]; ok {
			blockData = override
		}

		if err := dst.Write(blockData); err != nil {
			t.Fatalf("\t%s\tShould be able to write storage: %v", failed, err)
		}
	}
}
