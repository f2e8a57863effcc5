// Package ledger keeps balances, total supply and allowances.
//
// Every mutating call checks all of its preconditions before the first
// write, so a failing call leaves state untouched. Staking funds live in a
// separate locked column that counts toward supply but is not spendable.
package ledger

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/internal/event"
	"github.com/teut-network/teutledger/internal/state"
	"github.com/teut-network/teutledger/pkg/types"
)

// Ledger is a fungible-asset ledger over a state overlay.
type Ledger struct {
	st   *state.State
	sink event.Sink
}

// New creates a ledger. A nil sink discards events.
func New(st *state.State, sink event.Sink) *Ledger {
	if sink == nil {
		sink = event.Discard
	}
	return &Ledger{st: st, sink: sink}
}

// BalanceOf returns the spendable balance of addr.
func (l *Ledger) BalanceOf(addr types.Address) (*uint256.Int, error) {
	return l.st.GetAmount(balanceKey(addr))
}

// LockedOf returns the amount of addr locked by staking.
func (l *Ledger) LockedOf(addr types.Address) (*uint256.Int, error) {
	return l.st.GetAmount(lockedBalanceKey(addr))
}

// TotalSupply returns the number of tokens in existence.
func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return l.st.GetAmount(supplyKey)
}

// TotalLocked returns the sum of all locked balances.
func (l *Ledger) TotalLocked() (*uint256.Int, error) {
	return l.st.GetAmount(lockedKey)
}

// Allowance returns how much spender may still move out of owner.
func (l *Ledger) Allowance(owner, spender types.Address) (*uint256.Int, error) {
	return l.st.GetAmount(allowanceKey(owner, spender))
}

// Mint creates amount tokens and credits them to to.
func (l *Ledger) Mint(to types.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%w: mint to the zero address", ErrInvalidRecipient)
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}
	newSupply, overflow := new(uint256.Int).AddOverflow(supply, amount)
	if overflow {
		return fmt.Errorf("%w: %s + %s", ErrSupplyOverflow, supply, amount)
	}
	bal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}

	// bal <= supply, so this cannot overflow either.
	l.st.SetAmount(balanceKey(to), new(uint256.Int).Add(bal, amount))
	l.st.SetAmount(supplyKey, newSupply)
	l.sink.Emit(event.Transfer{From: types.ZeroAddress, To: to, Amount: amount.Clone()})
	return nil
}

// Burn destroys amount tokens held by from.
func (l *Ledger) Burn(from types.Address, amount *uint256.Int) error {
	if from.IsZero() {
		return fmt.Errorf("%w: burn from the zero address", ErrInvalidSender)
	}
	bal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return fmt.Errorf("%w: burn %s, balance %s", ErrInsufficientBalance, amount, bal)
	}
	supply, err := l.TotalSupply()
	if err != nil {
		return err
	}

	l.st.SetAmount(balanceKey(from), new(uint256.Int).Sub(bal, amount))
	l.st.SetAmount(supplyKey, new(uint256.Int).Sub(supply, amount))
	l.sink.Emit(event.Transfer{From: from, To: types.ZeroAddress, Amount: amount.Clone()})
	return nil
}

// Transfer moves amount from from to to. Sending to the zero address is
// permitted and keeps the tokens in supply.
func (l *Ledger) Transfer(from, to types.Address, amount *uint256.Int) error {
	bal, err := l.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return fmt.Errorf("%w: transfer %s, balance %s", ErrInsufficientBalance, amount, bal)
	}
	if err := l.move(from, to, bal, amount); err != nil {
		return err
	}
	l.sink.Emit(event.Transfer{From: from, To: to, Amount: amount.Clone()})
	return nil
}

// Approve sets the allowance of spender over owner's tokens to amount,
// replacing any previous value.
func (l *Ledger) Approve(owner, spender types.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return fmt.Errorf("%w: approve the zero address", ErrInvalidSpender)
	}
	l.st.SetAmount(allowanceKey(owner, spender), amount)
	l.sink.Emit(event.Approval{Owner: owner, Spender: spender, Amount: amount.Clone()})
	return nil
}

// TransferFrom moves amount from owner to to on behalf of spender and
// decrements the allowance accordingly.
func (l *Ledger) TransferFrom(spender, owner, to types.Address, amount *uint256.Int) error {
	allowed, err := l.Allowance(owner, spender)
	if err != nil {
		return err
	}
	if allowed.Lt(amount) {
		return fmt.Errorf("%w: spend %s, allowance %s", ErrInsufficientAllowance, amount, allowed)
	}
	bal, err := l.BalanceOf(owner)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return fmt.Errorf("%w: transfer %s, balance %s", ErrInsufficientBalance, amount, bal)
	}

	if err := l.move(owner, to, bal, amount); err != nil {
		return err
	}
	l.st.SetAmount(allowanceKey(owner, spender), new(uint256.Int).Sub(allowed, amount))
	l.sink.Emit(event.Transfer{From: owner, To: to, Amount: amount.Clone()})
	return nil
}

// Lock moves amount of addr's spendable balance into the locked column.
func (l *Ledger) Lock(addr types.Address, amount *uint256.Int) error {
	bal, err := l.BalanceOf(addr)
	if err != nil {
		return err
	}
	if bal.Lt(amount) {
		return fmt.Errorf("%w: lock %s, balance %s", ErrInsufficientBalance, amount, bal)
	}
	locked, err := l.LockedOf(addr)
	if err != nil {
		return err
	}
	total, err := l.TotalLocked()
	if err != nil {
		return err
	}

	l.st.SetAmount(balanceKey(addr), new(uint256.Int).Sub(bal, amount))
	l.st.SetAmount(lockedBalanceKey(addr), new(uint256.Int).Add(locked, amount))
	l.st.SetAmount(lockedKey, new(uint256.Int).Add(total, amount))
	return nil
}

// Unlock returns amount of addr's locked balance to the spendable column.
func (l *Ledger) Unlock(addr types.Address, amount *uint256.Int) error {
	locked, err := l.LockedOf(addr)
	if err != nil {
		return err
	}
	if locked.Lt(amount) {
		return fmt.Errorf("%w: unlock %s, locked %s", ErrInsufficientLocked, amount, locked)
	}
	bal, err := l.BalanceOf(addr)
	if err != nil {
		return err
	}
	total, err := l.TotalLocked()
	if err != nil {
		return err
	}

	l.st.SetAmount(lockedBalanceKey(addr), new(uint256.Int).Sub(locked, amount))
	l.st.SetAmount(balanceKey(addr), new(uint256.Int).Add(bal, amount))
	l.st.SetAmount(lockedKey, new(uint256.Int).Sub(total, amount))
	return nil
}

// move debits from (whose balance is fromBal) and credits to.
func (l *Ledger) move(from, to types.Address, fromBal, amount *uint256.Int) error {
	if from == to {
		return nil
	}
	toBal, err := l.BalanceOf(to)
	if err != nil {
		return err
	}
	l.st.SetAmount(balanceKey(from), new(uint256.Int).Sub(fromBal, amount))
	l.st.SetAmount(balanceKey(to), new(uint256.Int).Add(toBal, amount))
	return nil
}
