package database

import (
	"errors"
	"fmt"

	"github.com/hashledger/ledger/foundation/blockchain/digest"
)

// Tx is the transactional information between two parties. A transaction
// has no identity beyond its field values. Two transactions with identical
// fields are indistinguishable and hash identically.
type Tx struct {
	FromID string `json:"from"`
	ToID   string `json:"to"`
	Value  uint64 `json:"value"`
}

// NewTx constructs a new transaction.
func NewTx(fromID string, toID string, value uint64) (Tx, error) {
	if fromID == "" {
		return Tx{}, errors.New("from account is not properly formatted")
	}
	if toID == "" {
		return Tx{}, errors.New("to account is not properly formatted")
	}

	tx := Tx{
		FromID: fromID,
		ToID:   toID,
		Value:  value,
	}

	return tx, nil
}

// String implements the fmt.Stringer interface and is the canonical
// serialization of a transaction. It feeds the merkle leaf hashing, so the
// format must stay stable between mining and validation.
func (tx Tx) String() string {
	return fmt.Sprintf("%s -> %s: %d", tx.FromID, tx.ToID, tx.Value)
}

// Hash implements the merkle Hashable interface for providing a hash of
// a transaction.
func (tx Tx) Hash() (string, error) {
	return digest.HashString(tx.String()), nil
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx == otherTx
}
