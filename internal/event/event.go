// Package event defines the events emitted by ledger and staking calls.
package event

import (
	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/pkg/types"
)

// Event is a notification emitted by a successful mutating call.
type Event interface {
	Name() string
}

// Transfer records a balance movement. Mints have a zero From, burns a
// zero To.
type Transfer struct {
	From   types.Address `json:"from"`
	To     types.Address `json:"to"`
	Amount *uint256.Int  `json:"amount"`
}

// Approval records an allowance overwrite.
type Approval struct {
	Owner   types.Address `json:"owner"`
	Spender types.Address `json:"spender"`
	Amount  *uint256.Int  `json:"amount"`
}

// Staked records a new stake. Index is the staker's position in the
// stakeholder registry.
type Staked struct {
	User      types.Address `json:"user"`
	Amount    *uint256.Int  `json:"amount"`
	Index     uint64        `json:"index"`
	Timestamp uint64        `json:"timestamp"`
}

// StakeWithdrawn records a (partial) stake withdrawal.
type StakeWithdrawn struct {
	User      types.Address `json:"user"`
	Amount    *uint256.Int  `json:"amount"`
	Index     uint64        `json:"index"`
	Remaining *uint256.Int  `json:"remaining"`
}

func (Transfer) Name() string       { return "Transfer" }
func (Approval) Name() string       { return "Approval" }
func (Staked) Name() string         { return "Staked" }
func (StakeWithdrawn) Name() string { return "StakeWithdrawn" }

// Sink collects emitted events.
type Sink interface {
	Emit(ev Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Event) {}
