package state

import (
	"github.com/hashledger/ledger/foundation/blockchain/database"
)

// SubmitTransaction accepts a transaction into the mempool and signals the
// worker that a block is worth mining.
func (s *State) SubmitTransaction(tx database.Tx) error {
	if _, err := database.NewTx(tx.FromID, tx.ToID, tx.Value); err != nil {
		return err
	}

	count := s.mempool.Add(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: mempool[%d]", tx, count)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}
