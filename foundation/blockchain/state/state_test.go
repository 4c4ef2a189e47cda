package state_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hashledger/ledger/foundation/blockchain/database"
	"github.com/hashledger/ledger/foundation/blockchain/database/storage"
	"github.com/hashledger/ledger/foundation/blockchain/digest"
	"github.com/hashledger/ledger/foundation/blockchain/genesis"
	"github.com/hashledger/ledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testGenesis() genesis.Genesis {
	return genesis.Genesis{
		Date:          time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:       "test-chain",
		TransPerBlock: 16,
		Difficulty:    1,
	}
}

func newTestState(t *testing.T, strg database.Serializer) *state.State {
	t.Helper()

	st, err := state.New(state.Config{
		Genesis: testGenesis(),
		Storage: strg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

// =============================================================================

func Test_Ledger(t *testing.T) {
	t.Log("Given the need to validate the ledger lifecycle.")
	{
		strg, _ := storage.NewMemory()
		st := newTestState(t, strg)
		defer st.Shutdown()

		t.Logf("\tTest 0:\tWhen starting with an empty storage.")
		{
			tip := st.RetrieveLatestBlock()
			if tip.Header.Number != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould start with the genesis block as the tip: got %d", failed, tip.Header.Number)
			}
			t.Logf("\t%s\tTest 0:\tShould start with the genesis block as the tip.", success)

			if tip.Header.PrevBlockHash != digest.ZeroHash {
				t.Fatalf("\t%s\tTest 0:\tShould carry the zero sentinel as the genesis parent: got[%s]", failed, tip.Header.PrevBlockHash)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the zero sentinel as the genesis parent.", success)

			if len(st.RetrieveMempool()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould start with an empty mempool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould start with an empty mempool.", success)
		}

		t.Logf("\tTest 1:\tWhen mining with an empty mempool.")
		{
			if _, err := st.MineNewBlock(context.Background()); !errors.Is(err, state.ErrNoTransactions) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to mine an empty block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to mine an empty block.", success)
		}

		t.Logf("\tTest 2:\tWhen submitting a transaction and mining a block.")
		{
			tx, err := database.NewTx("Alice", "Bob", 10)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to create a transaction: %v", failed, err)
			}

			if err := st.SubmitTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to submit a transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to submit a transaction.", success)

			if len(st.RetrieveMempool()) != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould hold the transaction in the mempool.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould hold the transaction in the mempool.", success)

			genBlock := st.RetrieveLatestBlock()

			block, err := st.MineNewBlock(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to mine a block.", success)

			if block.Header.Number != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould number the block after the genesis block: got %d", failed, block.Header.Number)
			}
			t.Logf("\t%s\tTest 2:\tShould number the block after the genesis block.", success)

			if block.Header.PrevBlockHash != genBlock.Hash() {
				t.Fatalf("\t%s\tTest 2:\tShould link the block to the genesis hash.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould link the block to the genesis hash.", success)

			if !strings.HasPrefix(block.Hash(), "0") {
				t.Fatalf("\t%s\tTest 2:\tShould meet the difficulty: got[%s]", failed, block.Hash())
			}
			t.Logf("\t%s\tTest 2:\tShould meet the difficulty.", success)

			if len(st.RetrieveMempool()) != 0 {
				t.Fatalf("\t%s\tTest 2:\tShould drain the mined transactions from the mempool.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould drain the mined transactions from the mempool.", success)

			tip := st.RetrieveLatestBlock()
			if tip.Hash() != block.Hash() {
				t.Fatalf("\t%s\tTest 2:\tShould make the mined block the new tip.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould make the mined block the new tip.", success)

			if err := st.ValidateChain(); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould report the chain as valid: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould report the chain as valid.", success)
		}

		t.Logf("\tTest 3:\tWhen retrieving blocks from the chain.")
		{
			chain := st.RetrieveChain()
			if len(chain) != 2 {
				t.Fatalf("\t%s\tTest 3:\tShould hold the genesis block and the mined block: got %d", failed, len(chain))
			}
			t.Logf("\t%s\tTest 3:\tShould hold the genesis block and the mined block.", success)

			block, err := st.RetrieveBlock(1)
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to retrieve block 1: %v", failed, err)
			}
			if block.Hash() != st.RetrieveLatestBlock().Hash() {
				t.Fatalf("\t%s\tTest 3:\tShould retrieve the block at the tip.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould be able to retrieve block 1.", success)

			if _, err := st.RetrieveBlock(99); err == nil {
				t.Fatalf("\t%s\tTest 3:\tShould refuse a block number past the tip.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould refuse a block number past the tip.", success)
		}

		t.Logf("\tTest 4:\tWhen restarting on the same storage.")
		{
			tip := st.RetrieveLatestBlock()

			st2 := newTestState(t, strg)
			defer st2.Shutdown()

			if st2.RetrieveLatestBlock().Hash() != tip.Hash() {
				t.Fatalf("\t%s\tTest 4:\tShould reload the same tip from storage.", failed)
			}
			t.Logf("\t%s\tTest 4:\tShould reload the same tip from storage.", success)
		}

		t.Logf("\tTest 5:\tWhen truncating the ledger.")
		{
			if err := st.Truncate(); err != nil {
				t.Fatalf("\t%s\tTest 5:\tShould be able to truncate: %v", failed, err)
			}

			if st.RetrieveLatestBlock().Header.Number != 0 {
				t.Fatalf("\t%s\tTest 5:\tShould be back to the genesis block.", failed)
			}
			t.Logf("\t%s\tTest 5:\tShould be back to the genesis block.", success)
		}
	}
}

func Test_InvalidTransaction(t *testing.T) {
	t.Log("Given the need to reject malformed transactions.")
	{
		strg, _ := storage.NewMemory()
		st := newTestState(t, strg)
		defer st.Shutdown()

		t.Logf("\tTest 0:\tWhen submitting a transaction with a missing party.")
		{
			if err := st.SubmitTransaction(database.Tx{ToID: "Bob", Value: 10}); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a transaction without a sender.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a transaction without a sender.", success)

			if err := st.SubmitTransaction(database.Tx{FromID: "Alice", Value: 10}); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject a transaction without a receiver.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a transaction without a receiver.", success)

			if len(st.RetrieveMempool()) != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould keep rejected transactions out of the mempool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep rejected transactions out of the mempool.", success)
		}
	}
}

func Test_MiningCancel(t *testing.T) {
	t.Log("Given the need to abandon mining on cancellation.")
	{
		strg, _ := storage.NewMemory()
		st := newTestState(t, strg)
		defer st.Shutdown()

		t.Logf("\tTest 0:\tWhen the context is already cancelled.")
		{
			tx, _ := database.NewTx("Alice", "Bob", 10)
			if err := st.SubmitTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to submit a transaction: %v", failed, err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			if _, err := st.MineNewBlock(ctx); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould abandon the mining operation.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould abandon the mining operation.", success)

			if st.RetrieveLatestBlock().Header.Number != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the chain untouched.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the chain untouched.", success)

			if len(st.RetrieveMempool()) != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould keep the transaction in the mempool.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the transaction in the mempool.", success)
		}
	}
}
