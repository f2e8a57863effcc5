package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip32"

	"github.com/teut-network/teutledger/pkg/crypto"
	"github.com/teut-network/teutledger/pkg/types"
)

// Derivation path m/44'/7467'/0'/0/index.
const (
	PurposeBIP44  = bip32.FirstHardenedChild + 44
	CoinTypeTeut  = bip32.FirstHardenedChild + 7467
	AccountHarden = bip32.FirstHardenedChild + 0
	ChainExternal = 0
)

// HDKey is a BIP-32 extended key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates the master key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// Derive walks the given child indices from k.
func (k *HDKey) Derive(indices ...uint32) (*HDKey, error) {
	cur := k.key
	for _, idx := range indices {
		child, err := cur.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		cur = child
	}
	return &HDKey{key: cur}, nil
}

// DeriveAccount derives the signing key for account index.
func (k *HDKey) DeriveAccount(index uint32) (*HDKey, error) {
	return k.Derive(PurposeBIP44, CoinTypeTeut, AccountHarden, ChainExternal, index)
}

// PublicKey returns the compressed 33-byte public key.
func (k *HDKey) PublicKey() []byte {
	return k.key.PublicKey().Key
}

// Address returns the ledger address of the key.
func (k *HDKey) Address() types.Address {
	return crypto.AddressFromPubKey(k.PublicKey())
}

// PrivateKey returns the key as a signer.
func (k *HDKey) PrivateKey() (*crypto.PrivateKey, error) {
	if !k.key.IsPrivate {
		return nil, fmt.Errorf("public-only key cannot sign")
	}
	raw := k.key.Key
	// bip32 pads private keys to 33 bytes with a leading zero.
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// Neuter returns a public-only copy.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}
