// Package node opens a ledger: storage, genesis and the operation processor.
// It can be embedded in any binary (the operator CLI, tests).
package node

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/teut-network/teutledger/config"
	"github.com/teut-network/teutledger/internal/auth"
	klog "github.com/teut-network/teutledger/internal/log"
	"github.com/teut-network/teutledger/internal/metrics"
	"github.com/teut-network/teutledger/internal/processor"
	"github.com/teut-network/teutledger/internal/state"
	"github.com/teut-network/teutledger/internal/storage"
	"github.com/teut-network/teutledger/internal/token"
	"github.com/teut-network/teutledger/pkg/op"
	"github.com/teut-network/teutledger/pkg/types"
)

// Namespaces inside the root database.
var (
	statePrefix = []byte("s/")
	metaPrefix  = []byte("m/")
)

// Node errors.
var (
	ErrNotInitialized  = errors.New("ledger not initialized (run init)")
	ErrGenesisMismatch = errors.New("genesis does not match the initialized ledger")
	ErrOrphanState     = errors.New("ledger state exists without token metadata")
)

// Node is an opened ledger.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger
	now    func() time.Time

	db      storage.DB
	stateDB storage.DB
	meta    *token.Store
	tokMeta *token.Metadata

	metrics *metrics.Metrics
	proc    *processor.Processor
}

// Option configures a Node.
type Option func(*Node)

// WithClock sets the time source used for stake timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Node) { n.now = now }
}

// New opens the storage selected by cfg, applies the genesis if the ledger
// is new and a genesis is available, and wires the processor.
func New(cfg *config.Config, opts ...Option) (*Node, error) {
	n := &Node{
		cfg:     cfg,
		logger:  klog.Node,
		now:     time.Now,
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(n)
	}

	// ── 1. Open storage ─────────────────────────────────────────────
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	n.db = db
	n.stateDB = storage.NewPrefixDB(db, statePrefix)
	n.meta = token.NewStore(storage.NewPrefixDB(db, metaPrefix))

	// ── 2. Genesis ──────────────────────────────────────────────────
	genesis, err := resolveGenesis(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := n.initGenesis(genesis); err != nil {
		db.Close()
		return nil, err
	}

	// ── 3. Processor ────────────────────────────────────────────────
	authz := auth.NewOwner()
	var chain types.Hash
	if n.tokMeta != nil {
		authz = auth.NewOwner(n.tokMeta.Owner)
		chain = n.tokMeta.GenesisHash
	}
	n.proc = processor.New(n.stateDB, authz,
		processor.WithClock(n.now),
		processor.WithMetrics(n.metrics),
		processor.WithChain(chain),
	)

	if err := n.observeSupply(); err != nil {
		db.Close()
		return nil, err
	}

	ev := n.logger.Info().
		Str("network", string(cfg.Network)).
		Str("backend", cfg.Storage.Backend)
	if n.tokMeta != nil {
		ev = ev.Str("symbol", n.tokMeta.Symbol).Str("owner", n.tokMeta.Owner.String())
	}
	ev.Msg("Ledger opened")

	return n, nil
}

// initGenesis applies g when the ledger has no metadata yet. An already
// initialized ledger is checked against g when g is non-nil.
func (n *Node) initGenesis(g *config.Genesis) error {
	has, err := n.meta.Has()
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	if has {
		meta, err := n.meta.Get()
		if err != nil {
			return err
		}
		if g != nil {
			h, err := g.Hash()
			if err != nil {
				return fmt.Errorf("hash genesis: %w", err)
			}
			if h != meta.GenesisHash {
				return fmt.Errorf("%w: ledger %s, genesis file %s", ErrGenesisMismatch, meta.GenesisHash, h)
			}
		}
		n.tokMeta = meta
		return nil
	}

	// No metadata but committed balances means a genesis write was cut short.
	orphan := false
	err = n.stateDB.ForEach(nil, func(_, _ []byte) error {
		orphan = true
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return fmt.Errorf("scan state: %w", err)
	}
	if orphan {
		return ErrOrphanState
	}

	if g == nil {
		n.logger.Debug().Msg("No genesis available, ledger left uninitialized")
		return nil
	}
	meta, err := ApplyGenesis(n.stateDB, g, n.now)
	if err != nil {
		return err
	}
	if err := n.meta.Put(meta); err != nil {
		return fmt.Errorf("store metadata: %w", err)
	}
	n.tokMeta = meta

	n.logger.Info().
		Str("name", meta.Name).
		Str("symbol", meta.Symbol).
		Str("owner", meta.Owner.String()).
		Str("initial_supply", g.InitialSupply).
		Int("allocations", len(g.Alloc)).
		Msg("Ledger initialized from genesis")
	return nil
}

var errStop = errors.New("stop")

// ApplyGenesis mints the genesis supply and allocations into db in one
// commit and returns the metadata to persist alongside it.
func ApplyGenesis(db storage.DB, g *config.Genesis, now func() time.Time) (*token.Metadata, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	owner, _ := g.OwnerAddress()
	supply, _ := g.Supply()
	allocs, _ := g.Allocations()
	hash, err := g.Hash()
	if err != nil {
		return nil, fmt.Errorf("hash genesis: %w", err)
	}

	st := state.New(db)
	tok := token.New(st, nil, auth.AllowAll, now)
	if err := tok.Mint(owner, owner, supply); err != nil {
		st.Discard()
		return nil, fmt.Errorf("genesis mint: %w", err)
	}
	for _, a := range allocs {
		if err := tok.Mint(owner, a.Address, a.Amount); err != nil {
			st.Discard()
			return nil, fmt.Errorf("genesis alloc %s: %w", a.Address, err)
		}
	}
	if err := st.Commit(); err != nil {
		return nil, fmt.Errorf("genesis commit: %w", err)
	}

	return &token.Metadata{
		Name:        g.Name,
		Symbol:      g.Symbol,
		Decimals:    g.Decimals,
		Owner:       owner,
		GenesisHash: hash,
	}, nil
}

// Metadata returns the token metadata, or ErrNotInitialized.
func (n *Node) Metadata() (*token.Metadata, error) {
	if n.tokMeta == nil {
		return nil, ErrNotInitialized
	}
	return n.tokMeta, nil
}

// Initialized reports whether a genesis has been applied.
func (n *Node) Initialized() bool {
	return n.tokMeta != nil
}

// Apply applies a signed operation.
func (n *Node) Apply(o *op.Operation) (*processor.Receipt, error) {
	if n.tokMeta == nil {
		return nil, ErrNotInitialized
	}
	return n.proc.Apply(o)
}

// Nonce returns the next nonce expected from addr.
func (n *Node) Nonce(addr types.Address) (uint64, error) {
	return n.proc.Nonce(addr)
}

// View returns a read-only token over committed state.
func (n *Node) View() *token.Token {
	return n.proc.View()
}

// Metrics returns the node's metrics.
func (n *Node) Metrics() *metrics.Metrics {
	return n.metrics
}

func (n *Node) observeSupply() error {
	view := n.proc.View()
	supply, err := view.TotalSupply()
	if err != nil {
		return err
	}
	locked, err := view.TotalLocked()
	if err != nil {
		return err
	}
	n.metrics.SetSupply(supply, locked)
	return nil
}

// Close exports metrics if configured and closes the database.
func (n *Node) Close() error {
	var errs []error
	if path := n.cfg.Metrics.File; path != "" {
		if err := n.metrics.WriteTextfile(expandHome(path)); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		} else {
			n.logger.Debug().Str("path", path).Msg("Metrics written")
		}
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
