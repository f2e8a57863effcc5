package token

import (
	"encoding/json"
	"fmt"

	"github.com/teut-network/teutledger/internal/storage"
	"github.com/teut-network/teutledger/pkg/types"
)

var metadataKey = []byte("token")

// Metadata holds descriptive information about the token.
type Metadata struct {
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	Decimals uint8         `json:"decimals"`
	Owner    types.Address `json:"owner"`

	// GenesisHash identifies the genesis the ledger was created from.
	GenesisHash types.Hash `json:"genesis_hash"`
}

// Store persists token metadata.
type Store struct {
	db storage.DB
}

// NewStore creates a token metadata store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Put stores the token metadata.
func (s *Store) Put(meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(metadataKey, data)
}

// Get retrieves the token metadata. It wraps storage.ErrNotFound when the
// ledger has not been initialized.
func (s *Store) Get() (*Metadata, error) {
	data, err := s.db.Get(metadataKey)
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &meta, nil
}

// Has reports whether metadata has been stored.
func (s *Store) Has() (bool, error) {
	return s.db.Has(metadataKey)
}
