// Package processor applies signed operations to committed ledger state.
//
// Operations are applied one at a time. Each runs against a fresh state
// overlay that is committed in one batch on success and discarded on
// failure, so a rejected operation has no side effects.
package processor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/teut-network/teutledger/internal/auth"
	"github.com/teut-network/teutledger/internal/event"
	klog "github.com/teut-network/teutledger/internal/log"
	"github.com/teut-network/teutledger/internal/metrics"
	"github.com/teut-network/teutledger/internal/state"
	"github.com/teut-network/teutledger/internal/storage"
	"github.com/teut-network/teutledger/internal/token"
	"github.com/teut-network/teutledger/pkg/op"
	"github.com/teut-network/teutledger/pkg/types"
)

// Processing errors.
var (
	ErrBadNonce   = errors.New("bad nonce")
	ErrNilOp      = errors.New("nil operation")
	ErrWrongChain = errors.New("operation signed for another ledger")
)

// EventRecord is a named event in a receipt.
type EventRecord struct {
	Name string      `json:"name"`
	Data event.Event `json:"data"`
}

// Receipt describes a successfully applied operation.
type Receipt struct {
	OpHash    types.Hash    `json:"op_hash"`
	Sender    types.Address `json:"sender"`
	Kind      op.Kind       `json:"kind"`
	Nonce     uint64        `json:"nonce"`
	Events    []EventRecord `json:"events"`
	Index     uint64        `json:"index,omitempty"`
	Remaining *uint256.Int  `json:"remaining,omitempty"`
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the time source used for stake timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithMetrics records every applied operation in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithChain sets the genesis hash operations must be signed for.
func WithChain(h types.Hash) Option {
	return func(p *Processor) { p.chain = h }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// Processor serializes operations against one ledger state.
type Processor struct {
	mu      sync.Mutex
	db      storage.DB
	authz   auth.Authorizer
	chain   types.Hash
	now     func() time.Time
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a processor over db, the ledger state namespace.
func New(db storage.DB, authz auth.Authorizer, opts ...Option) *Processor {
	p := &Processor{
		db:     db,
		authz:  authz,
		now:    time.Now,
		logger: klog.Processor,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func nonceKey(addr types.Address) []byte {
	return append([]byte("nonce/"), addr[:]...)
}

// Nonce returns the next nonce expected from addr.
func (p *Processor) Nonce(addr types.Address) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return state.New(p.db).GetUint64(nonceKey(addr))
}

// View returns a token over committed state for queries. Writes made
// through it are never committed.
func (p *Processor) View() *token.Token {
	return token.New(state.New(p.db), nil, nil, p.now)
}

// Apply validates o, runs it and commits the result.
func (p *Processor) Apply(o *op.Operation) (*Receipt, error) {
	if o == nil {
		return nil, ErrNilOp
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	rcpt, err := p.apply(o)
	if p.metrics != nil {
		p.metrics.ObserveOp(string(o.Kind), err, time.Since(start))
	}
	if err != nil {
		p.logger.Debug().
			Str("kind", string(o.Kind)).
			Uint64("nonce", o.Nonce).
			Err(err).
			Msg("Operation rejected")
		return nil, err
	}
	p.logger.Info().
		Str("kind", string(o.Kind)).
		Str("sender", rcpt.Sender.String()).
		Str("hash", rcpt.OpHash.String()).
		Int("events", len(rcpt.Events)).
		Msg("Operation applied")
	return rcpt, nil
}

func (p *Processor) apply(o *op.Operation) (*Receipt, error) {
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if o.Chain != p.chain {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongChain, o.Chain, p.chain)
	}
	sender := o.Sender()

	st := state.New(p.db)
	expected, err := st.GetUint64(nonceKey(sender))
	if err != nil {
		return nil, err
	}
	if o.Nonce != expected {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBadNonce, o.Nonce, expected)
	}

	log := event.NewLog()
	tok := token.New(st, log, p.authz, p.now)
	rcpt := &Receipt{
		OpHash: o.Hash(),
		Sender: sender,
		Kind:   o.Kind,
		Nonce:  o.Nonce,
	}

	if err := dispatch(tok, o, sender, rcpt); err != nil {
		st.Discard()
		return nil, err
	}

	st.SetUint64(nonceKey(sender), expected+1)
	done := klog.Timed(p.logger, "commit")
	err = st.Commit()
	done()
	if err != nil {
		st.Discard()
		return nil, fmt.Errorf("commit: %w", err)
	}

	for _, ev := range log.Events() {
		rcpt.Events = append(rcpt.Events, EventRecord{Name: ev.Name(), Data: ev})
	}
	p.observeSupply(tok)
	return rcpt, nil
}

func dispatch(tok *token.Token, o *op.Operation, caller types.Address, rcpt *Receipt) error {
	switch o.Kind {
	case op.KindMint:
		return tok.Mint(caller, o.To, o.Amount)
	case op.KindBurn:
		return tok.Burn(caller, o.From, o.Amount)
	case op.KindTransfer:
		return tok.Transfer(caller, o.To, o.Amount)
	case op.KindApprove:
		return tok.Approve(caller, o.Spender, o.Amount)
	case op.KindTransferFrom:
		return tok.TransferFrom(caller, o.From, o.To, o.Amount)
	case op.KindStake:
		idx, err := tok.Stake(caller, o.Amount)
		rcpt.Index = idx
		return err
	case op.KindWithdrawStake:
		remaining, err := tok.WithdrawStake(caller, o.Amount, o.Index)
		rcpt.Index = o.Index
		rcpt.Remaining = remaining
		return err
	default:
		return fmt.Errorf("%w: %q", op.ErrUnknownKind, o.Kind)
	}
}

func (p *Processor) observeSupply(tok *token.Token) {
	if p.metrics == nil {
		return
	}
	supply, err := tok.TotalSupply()
	if err != nil {
		return
	}
	locked, err := tok.TotalLocked()
	if err != nil {
		return
	}
	p.metrics.SetSupply(supply, locked)
}
