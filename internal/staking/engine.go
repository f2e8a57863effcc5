// Package staking locks ledger balance into per-holder stake collections.
//
// Every holder that has ever staked owns a position in a registry whose
// slot 0 is reserved, so the first stakeholder is at position 1. A
// holder's stakes are append-only: withdrawing a slot to zero overwrites
// it with the zero record and never shifts its siblings.
package staking

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/internal/event"
	"github.com/teut-network/teutledger/internal/ledger"
	"github.com/teut-network/teutledger/internal/state"
	"github.com/teut-network/teutledger/pkg/types"
)

// Engine implements stake and withdrawal on top of a Ledger.
type Engine struct {
	st     *state.State
	ledger *ledger.Ledger
	sink   event.Sink
	now    func() time.Time
}

// New creates a staking engine. A nil sink discards events and a nil now
// uses time.Now.
func New(st *state.State, l *ledger.Ledger, sink event.Sink, now func() time.Time) *Engine {
	if sink == nil {
		sink = event.Discard
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{st: st, ledger: l, sink: sink, now: now}
}

// Stake locks amount of caller's balance in a new stake and returns the
// caller's registry position, which is also the index reported in the
// Staked event.
func (e *Engine) Stake(caller types.Address, amount *uint256.Int) (uint64, error) {
	if amount.IsZero() {
		return 0, ErrZeroStake
	}
	if err := e.ledger.Lock(caller, amount); err != nil {
		return 0, err
	}

	pos, err := e.register(caller)
	if err != nil {
		return 0, err
	}
	n, err := e.st.GetUint64(countKey(pos))
	if err != nil {
		return 0, err
	}
	ts := uint64(e.now().Unix())
	rec := Stake{
		User:      caller,
		Amount:    amount.Clone(),
		Since:     ts,
		Claimable: new(uint256.Int),
	}
	if err := e.st.PutRLP(recordKey(pos, n), &rec); err != nil {
		return 0, err
	}
	e.st.SetUint64(countKey(pos), n+1)

	e.sink.Emit(event.Staked{
		User:      caller,
		Amount:    amount.Clone(),
		Index:     pos,
		Timestamp: ts,
	})
	return pos, nil
}

// WithdrawStake unlocks amount from the stake at index (0-based within
// caller's collection) and returns what is left in that stake.
func (e *Engine) WithdrawStake(caller types.Address, amount *uint256.Int, index uint64) (*uint256.Int, error) {
	pos, err := e.position(caller)
	if err != nil {
		return nil, err
	}
	if pos == 0 {
		return nil, fmt.Errorf("%w: %s has never staked", ErrStakeNotFound, caller)
	}
	n, err := e.st.GetUint64(countKey(pos))
	if err != nil {
		return nil, err
	}
	if index >= n {
		return nil, fmt.Errorf("%w: index %d, %s has %d stakes", ErrStakeNotFound, index, caller, n)
	}
	rec, err := e.record(pos, index)
	if err != nil {
		return nil, err
	}
	if rec.Amount.Lt(amount) {
		return nil, fmt.Errorf("%w: withdraw %s, staked %s", ErrInsufficientStake, amount, rec.Amount)
	}

	if err := e.ledger.Unlock(caller, amount); err != nil {
		return nil, err
	}
	remaining := new(uint256.Int).Sub(rec.Amount, amount)
	if remaining.IsZero() {
		rec = emptyStake()
	} else {
		rec.Amount = remaining
	}
	if err := e.st.PutRLP(recordKey(pos, index), &rec); err != nil {
		return nil, err
	}

	e.sink.Emit(event.StakeWithdrawn{
		User:      caller,
		Amount:    amount.Clone(),
		Index:     index,
		Remaining: remaining.Clone(),
	})
	return remaining, nil
}

// HasStake summarizes owner's stakes, including withdrawn slots. Owners
// that never staked get an empty summary.
func (e *Engine) HasStake(owner types.Address) (*Summary, error) {
	pos, err := e.position(owner)
	if err != nil {
		return nil, err
	}
	sum := &Summary{TotalAmount: new(uint256.Int), Stakes: []Stake{}}
	if pos == 0 {
		return sum, nil
	}
	n, err := e.st.GetUint64(countKey(pos))
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < n; i++ {
		rec, err := e.record(pos, i)
		if err != nil {
			return nil, err
		}
		sum.TotalAmount.Add(sum.TotalAmount, rec.Amount)
		sum.Stakes = append(sum.Stakes, rec)
	}
	return sum, nil
}

// Stakeholders lists the registry in position order.
func (e *Engine) Stakeholders() ([]Stakeholder, error) {
	size, err := e.st.GetUint64(registryLenKey)
	if err != nil {
		return nil, err
	}
	out := make([]Stakeholder, 0, size)
	for pos := uint64(1); pos <= size; pos++ {
		raw, err := e.st.Get(holderKey(pos))
		if err != nil {
			return nil, err
		}
		n, err := e.st.GetUint64(countKey(pos))
		if err != nil {
			return nil, err
		}
		out = append(out, Stakeholder{
			Position: pos,
			Address:  types.BytesToAddress(raw),
			Stakes:   n,
		})
	}
	return out, nil
}

func (e *Engine) position(addr types.Address) (uint64, error) {
	return e.st.GetUint64(positionKey(addr))
}

// register returns addr's registry position, assigning the next free one
// on first use.
func (e *Engine) register(addr types.Address) (uint64, error) {
	pos, err := e.position(addr)
	if err != nil || pos != 0 {
		return pos, err
	}
	size, err := e.st.GetUint64(registryLenKey)
	if err != nil {
		return 0, err
	}
	pos = size + 1
	e.st.SetUint64(registryLenKey, pos)
	e.st.SetUint64(positionKey(addr), pos)
	e.st.Put(holderKey(pos), addr.Bytes())
	return pos, nil
}

func (e *Engine) record(pos, i uint64) (Stake, error) {
	rec := emptyStake()
	ok, err := e.st.GetRLP(recordKey(pos, i), &rec)
	if err != nil {
		return Stake{}, err
	}
	if !ok {
		return emptyStake(), nil
	}
	if rec.Amount == nil {
		rec.Amount = new(uint256.Int)
	}
	if rec.Claimable == nil {
		rec.Claimable = new(uint256.Int)
	}
	return rec, nil
}
