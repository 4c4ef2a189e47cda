package public

import (
	"github.com/hashledger/ledger/foundation/blockchain/database"
	"github.com/hashledger/ledger/foundation/validate"
)

// newTx represents a transaction submitted by a client for admission into
// the next block.
type newTx struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Value uint64 `json:"value" validate:"gt=0"`
}

// Validate checks the data in the model is considered clean.
func (app newTx) Validate() error {
	if err := validate.Check(app); err != nil {
		return err
	}
	return nil
}

// tx represents a transaction inside a block or the mempool.
type tx struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value uint64 `json:"value"`
}

func toAppTx(dbTx database.Tx) tx {
	return tx{
		From:  dbTx.FromID,
		To:    dbTx.ToID,
		Value: dbTx.Value,
	}
}

// block represents a block with its recomputed hash for client consumption.
type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	TransRoot     string `json:"trans_root"`
	Hash          string `json:"hash"`
	Transactions  []tx   `json:"transactions"`
}

func toAppBlock(dbBlock database.Block) block {
	values := dbBlock.Trans.Values()
	trans := make([]tx, len(values))
	for i, dbTx := range values {
		trans[i] = toAppTx(dbTx)
	}

	return block{
		Number:        dbBlock.Header.Number,
		PrevBlockHash: dbBlock.Header.PrevBlockHash,
		TimeStamp:     dbBlock.Header.TimeStamp,
		Nonce:         dbBlock.Header.Nonce,
		TransRoot:     dbBlock.Header.TransRoot,
		Hash:          dbBlock.Hash(),
		Transactions:  trans,
	}
}

// validity reports the outcome of a full chain validation.
type validity struct {
	Valid  bool   `json:"valid"`
	Block  uint64 `json:"block,omitempty"`
	Reason string `json:"reason,omitempty"`
}
