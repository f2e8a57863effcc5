// Package crypto provides the hashing and signing primitives used to
// authenticate ledger operations.
package crypto

import (
	"github.com/teut-network/teutledger/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// TaggedHash hashes data under a domain tag so that hashes of different
// record kinds can never collide.
func TaggedHash(tag string, parts ...[]byte) types.Hash {
	h := blake3.NewDeriveKey(tag)
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// AddressFromPubKey derives an address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}
