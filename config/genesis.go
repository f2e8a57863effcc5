package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/holiman/uint256"
	"github.com/teut-network/teutledger/pkg/crypto"
	"github.com/teut-network/teutledger/pkg/types"
)

// Default token parameters of the TeutToken deployment.
const (
	DefaultName          = "TeutToken"
	DefaultSymbol        = "TTK"
	DefaultDecimals      = 18
	DefaultInitialSupply = "5000000"
)

// GenesisFile is the file name of the genesis inside the network directory.
const GenesisFile = "genesis.json"

// Genesis holds the token definition applied when a ledger is created.
// Amounts are decimal strings in base units.
type Genesis struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`

	// Owner receives the initial supply and is the only authorized minter.
	Owner string `json:"owner"`

	InitialSupply string `json:"initial_supply"`

	// Additional allocations (address -> amount), minted after the owner's supply.
	Alloc map[string]string `json:"alloc,omitempty"`
}

// Allocation is one parsed genesis allocation.
type Allocation struct {
	Address types.Address
	Amount  *uint256.Int
}

// DefaultGenesis returns the built-in token definition for the network.
// Owner is left empty and must be filled before the genesis is valid.
func DefaultGenesis(network NetworkType) *Genesis {
	g := &Genesis{
		Name:          DefaultName,
		Symbol:        DefaultSymbol,
		Decimals:      DefaultDecimals,
		InitialSupply: DefaultInitialSupply,
	}
	if network == Testnet {
		g.Name = DefaultName + " Testnet"
		g.Symbol = "t" + DefaultSymbol
	}
	return g
}

// =============================================================================
// Genesis file I/O
// =============================================================================

// LoadGenesis loads genesis configuration from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}

	return &g, nil
}

// Save writes the genesis configuration to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}

	return nil
}

// Validate checks that the genesis configuration is valid.
func (g *Genesis) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}
	if g.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if _, err := g.OwnerAddress(); err != nil {
		return err
	}

	total, err := g.Supply()
	if err != nil {
		return err
	}
	allocs, err := g.Allocations()
	if err != nil {
		return err
	}
	for _, a := range allocs {
		if _, overflow := total.AddOverflow(total, a.Amount); overflow {
			return fmt.Errorf("genesis allocations overflow total supply")
		}
	}
	return nil
}

// OwnerAddress parses the owner. The zero address is rejected.
func (g *Genesis) OwnerAddress() (types.Address, error) {
	if g.Owner == "" {
		return types.Address{}, fmt.Errorf("owner is required")
	}
	addr, err := types.ParseAddress(g.Owner)
	if err != nil {
		return types.Address{}, fmt.Errorf("invalid owner: %w", err)
	}
	if addr.IsZero() {
		return types.Address{}, fmt.Errorf("owner must not be the zero address")
	}
	return addr, nil
}

// Supply parses the initial supply.
func (g *Genesis) Supply() (*uint256.Int, error) {
	return parseAmount("initial_supply", g.InitialSupply)
}

// Allocations returns the parsed allocations sorted by address.
func (g *Genesis) Allocations() ([]Allocation, error) {
	out := make([]Allocation, 0, len(g.Alloc))
	for addrStr, v := range g.Alloc {
		addr, err := types.ParseAddress(addrStr)
		if err != nil {
			return nil, fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		if addr.IsZero() {
			return nil, fmt.Errorf("alloc to the zero address")
		}
		amt, err := parseAmount("alloc "+addrStr, v)
		if err != nil {
			return nil, err
		}
		out = append(out, Allocation{Address: addr, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		return string(out[i].Address[:]) < string(out[j].Address[:])
	})
	return out, nil
}

// Hash returns a tagged BLAKE3 hash of the genesis configuration.
// Used to detect a genesis file that changed after the ledger was created.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.TaggedHash("teut genesis", data), nil
}

func parseAmount(field, s string) (*uint256.Int, error) {
	if s == "" {
		return new(uint256.Int), nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q: %w", field, s, err)
	}
	return v, nil
}
