package token

import (
	"errors"
	"testing"
	"time"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/internal/auth"
	"github.com/teut-network/teutledger/internal/event"
	"github.com/teut-network/teutledger/internal/ledger"
	"github.com/teut-network/teutledger/internal/staking"
	"github.com/teut-network/teutledger/internal/state"
	"github.com/teut-network/teutledger/internal/storage"
	"github.com/teut-network/teutledger/pkg/types"
)

var (
	owner = types.Address{0x01}
	alice = types.Address{0x0a}
	bob   = types.Address{0x0b}
)

func amt(n uint64) *uint256.Int { return uint256.NewInt(n) }

func newTestToken(t *testing.T) (*Token, *state.State, *event.Log) {
	t.Helper()
	st := state.New(storage.NewMemory())
	log := event.NewLog()
	now := func() time.Time { return time.Unix(1700000000, 0) }
	tok := New(st, log, auth.NewOwner(owner), now)
	if err := tok.Mint(owner, owner, amt(5_000_000)); err != nil {
		t.Fatalf("genesis mint: %v", err)
	}
	log.Truncate(0)
	return tok, st, log
}

func TestToken_MintBurnAuthorization(t *testing.T) {
	tok, _, log := newTestToken(t)

	if err := tok.Mint(alice, alice, amt(1)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized Mint error = %v, want ErrUnauthorized", err)
	}
	if err := tok.Burn(alice, owner, amt(1)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unauthorized Burn error = %v, want ErrUnauthorized", err)
	}
	if log.Len() != 0 {
		t.Fatal("rejected calls emitted events")
	}

	if err := tok.Mint(owner, alice, amt(1000)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if err := tok.Burn(owner, alice, amt(400)); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	bal, _ := tok.BalanceOf(alice)
	if bal.Uint64() != 600 {
		t.Errorf("alice = %d, want 600", bal.Uint64())
	}
	supply, _ := tok.TotalSupply()
	if supply.Uint64() != 5_000_600 {
		t.Errorf("supply = %d, want 5000600", supply.Uint64())
	}
	if log.Len() != 2 {
		t.Errorf("events = %d, want 2", log.Len())
	}
}

func TestToken_NilAuthorizerRejects(t *testing.T) {
	st := state.New(storage.NewMemory())
	tok := New(st, nil, nil, nil)
	if err := tok.Mint(owner, owner, amt(1)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Mint error = %v, want ErrUnauthorized", err)
	}
}

func TestToken_CallerIdentity(t *testing.T) {
	tok, _, _ := newTestToken(t)

	if err := tok.Transfer(owner, alice, amt(100)); err != nil {
		t.Fatal(err)
	}
	if err := tok.Approve(alice, bob, amt(60)); err != nil {
		t.Fatal(err)
	}
	if err := tok.TransferFrom(bob, alice, bob, amt(60)); err != nil {
		t.Fatal(err)
	}
	// bob cannot spend alice's tokens without allowance
	if err := tok.TransferFrom(bob, alice, bob, amt(1)); !errors.Is(err, ledger.ErrInsufficientAllowance) {
		t.Fatalf("error = %v, want ErrInsufficientAllowance", err)
	}
	a, _ := tok.BalanceOf(alice)
	b, _ := tok.BalanceOf(bob)
	if a.Uint64() != 40 || b.Uint64() != 60 {
		t.Fatalf("alice=%d bob=%d, want 40/60", a.Uint64(), b.Uint64())
	}
}

func TestToken_FailedCallIsAtomic(t *testing.T) {
	tok, st, log := newTestToken(t)
	tok.Transfer(owner, alice, amt(100))
	before := st.Pending()
	events := log.Len()

	cases := []struct {
		name string
		call func() error
		want error
	}{
		{"transfer over balance", func() error { return tok.Transfer(alice, bob, amt(101)) }, ledger.ErrInsufficientBalance},
		{"approve zero spender", func() error { return tok.Approve(alice, types.ZeroAddress, amt(1)) }, ledger.ErrInvalidSpender},
		{"mint to zero", func() error { return tok.Mint(owner, types.ZeroAddress, amt(1)) }, ledger.ErrInvalidRecipient},
		{"stake over balance", func() error { _, err := tok.Stake(alice, amt(101)); return err }, ledger.ErrInsufficientBalance},
		{"stake zero", func() error { _, err := tok.Stake(alice, amt(0)); return err }, staking.ErrZeroStake},
		{"withdraw without stake", func() error { _, err := tok.WithdrawStake(alice, amt(1), 0); return err }, staking.ErrStakeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
			if st.Pending() != before {
				t.Fatalf("pending keys = %d, want %d", st.Pending(), before)
			}
			if log.Len() != events {
				t.Fatalf("events = %d, want %d", log.Len(), events)
			}
		})
	}
}

func TestToken_StakeFlow(t *testing.T) {
	tok, _, log := newTestToken(t)

	idx, err := tok.Stake(owner, amt(100))
	if err != nil {
		t.Fatal(err)
	}
	if idx != 1 {
		t.Fatalf("index = %d, want 1", idx)
	}
	rem, err := tok.WithdrawStake(owner, amt(30), 0)
	if err != nil {
		t.Fatal(err)
	}
	if rem.Uint64() != 70 {
		t.Fatalf("remaining = %d, want 70", rem.Uint64())
	}
	locked, _ := tok.LockedOf(owner)
	if locked.Uint64() != 70 {
		t.Fatalf("locked = %d, want 70", locked.Uint64())
	}
	total, _ := tok.TotalLocked()
	if total.Uint64() != 70 {
		t.Fatalf("total locked = %d, want 70", total.Uint64())
	}
	sum, _ := tok.HasStake(owner)
	if sum.TotalAmount.Uint64() != 70 {
		t.Fatalf("staked = %d, want 70", sum.TotalAmount.Uint64())
	}
	holders, _ := tok.Stakeholders()
	if len(holders) != 1 || holders[0].Address != owner {
		t.Fatalf("stakeholders = %+v", holders)
	}

	evs := log.Events()
	if len(evs) != 2 {
		t.Fatalf("events = %d, want 2", len(evs))
	}
	if _, ok := evs[0].(event.Staked); !ok {
		t.Errorf("event[0] = %T, want Staked", evs[0])
	}
	if _, ok := evs[1].(event.StakeWithdrawn); !ok {
		t.Errorf("event[1] = %T, want StakeWithdrawn", evs[1])
	}
}

func TestToken_Allowance(t *testing.T) {
	tok, _, _ := newTestToken(t)
	tok.Approve(owner, alice, amt(100))
	a, err := tok.Allowance(owner, alice)
	if err != nil {
		t.Fatal(err)
	}
	if a.Uint64() != 100 {
		t.Fatalf("allowance = %d, want 100", a.Uint64())
	}
}
