// Package digest provides the one hashing function used across the ledger.
// The merkle tree and block hashing must never mix algorithms, so everything
// funnels through here.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
)

// ZeroHash is the parent hash carried by the genesis block. It is a literal
// sentinel, not a digest.
const ZeroHash = "0"

// Hash returns the sha256 digest of the data as a 64 character lowercase
// hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashString is a convenience for hashing the canonical string form of
// a value.
func HashString(s string) string {
	return Hash([]byte(s))
}

// EmptyRoot returns the canonical merkle root for an empty batch of
// transactions, defined as the digest of the empty byte string.
func EmptyRoot() string {
	return Hash(nil)
}
