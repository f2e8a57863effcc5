// Package token is the caller-facing surface of the ledger and staking
// engine. Each mutating call runs as an all-or-nothing unit: on error its
// state writes are reverted and its events are dropped.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/internal/auth"
	"github.com/teut-network/teutledger/internal/event"
	"github.com/teut-network/teutledger/internal/ledger"
	"github.com/teut-network/teutledger/internal/staking"
	"github.com/teut-network/teutledger/internal/state"
	"github.com/teut-network/teutledger/pkg/types"
)

// ErrUnauthorized is returned when a caller may not mint or burn.
var ErrUnauthorized = errors.New("caller is not authorized")

// Token composes a Ledger and a staking Engine over one state overlay.
type Token struct {
	st      *state.State
	authz   auth.Authorizer
	sink    event.Sink
	pending *event.Log
	ledger  *ledger.Ledger
	staking *staking.Engine
}

// New creates a token facade. Events of successful calls are forwarded
// to sink; a nil sink discards them.
func New(st *state.State, sink event.Sink, authz auth.Authorizer, now func() time.Time) *Token {
	if sink == nil {
		sink = event.Discard
	}
	pending := event.NewLog()
	l := ledger.New(st, pending)
	return &Token{
		st:      st,
		authz:   authz,
		sink:    sink,
		pending: pending,
		ledger:  l,
		staking: staking.New(st, l, pending, now),
	}
}

// run executes fn atomically with respect to state and events.
func (t *Token) run(fn func() error) error {
	snap := t.st.Snapshot()
	mark := t.pending.Mark()
	if err := fn(); err != nil {
		t.st.RevertTo(snap)
		t.pending.Truncate(mark)
		return err
	}
	for _, ev := range t.pending.Events()[mark:] {
		t.sink.Emit(ev)
	}
	t.pending.Truncate(mark)
	return nil
}

func (t *Token) authorize(caller types.Address, action string) error {
	if t.authz == nil || !t.authz.IsAuthorized(caller) {
		return fmt.Errorf("%w: %s may not %s", ErrUnauthorized, caller, action)
	}
	return nil
}

// Mint creates amount tokens for to. Only authorized callers may mint.
func (t *Token) Mint(caller, to types.Address, amount *uint256.Int) error {
	if err := t.authorize(caller, "mint"); err != nil {
		return err
	}
	return t.run(func() error { return t.ledger.Mint(to, amount) })
}

// Burn destroys amount tokens held by from. Only authorized callers may
// burn.
func (t *Token) Burn(caller, from types.Address, amount *uint256.Int) error {
	if err := t.authorize(caller, "burn"); err != nil {
		return err
	}
	return t.run(func() error { return t.ledger.Burn(from, amount) })
}

// Transfer moves amount from caller to to.
func (t *Token) Transfer(caller, to types.Address, amount *uint256.Int) error {
	return t.run(func() error { return t.ledger.Transfer(caller, to, amount) })
}

// Approve lets spender move up to amount of caller's tokens.
func (t *Token) Approve(caller, spender types.Address, amount *uint256.Int) error {
	return t.run(func() error { return t.ledger.Approve(caller, spender, amount) })
}

// TransferFrom moves amount from owner to to using caller's allowance.
func (t *Token) TransferFrom(caller, owner, to types.Address, amount *uint256.Int) error {
	return t.run(func() error { return t.ledger.TransferFrom(caller, owner, to, amount) })
}

// Stake locks amount of caller's balance and returns the Staked index.
func (t *Token) Stake(caller types.Address, amount *uint256.Int) (uint64, error) {
	var idx uint64
	err := t.run(func() error {
		var err error
		idx, err = t.staking.Stake(caller, amount)
		return err
	})
	return idx, err
}

// WithdrawStake unlocks amount from caller's stake at index and returns
// the amount left in that stake.
func (t *Token) WithdrawStake(caller types.Address, amount *uint256.Int, index uint64) (*uint256.Int, error) {
	var remaining *uint256.Int
	err := t.run(func() error {
		var err error
		remaining, err = t.staking.WithdrawStake(caller, amount, index)
		return err
	})
	return remaining, err
}

// BalanceOf returns the spendable balance of addr.
func (t *Token) BalanceOf(addr types.Address) (*uint256.Int, error) {
	return t.ledger.BalanceOf(addr)
}

// LockedOf returns the staked balance of addr.
func (t *Token) LockedOf(addr types.Address) (*uint256.Int, error) {
	return t.ledger.LockedOf(addr)
}

// TotalSupply returns the number of tokens in existence.
func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.ledger.TotalSupply()
}

// TotalLocked returns the total staked amount.
func (t *Token) TotalLocked() (*uint256.Int, error) {
	return t.ledger.TotalLocked()
}

// Allowance returns the remaining allowance of spender over owner.
func (t *Token) Allowance(owner, spender types.Address) (*uint256.Int, error) {
	return t.ledger.Allowance(owner, spender)
}

// HasStake summarizes owner's stakes.
func (t *Token) HasStake(owner types.Address) (*staking.Summary, error) {
	return t.staking.HasStake(owner)
}

// Stakeholders lists every address that has ever staked.
func (t *Token) Stakeholders() ([]staking.Stakeholder, error) {
	return t.staking.Stakeholders()
}
