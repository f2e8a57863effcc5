package staking

import (
	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/pkg/types"
)

// Stake is one locked amount in a holder's stake collection. A withdrawn
// slot is the zero record.
type Stake struct {
	User      types.Address `json:"user"`
	Amount    *uint256.Int  `json:"amount"`
	Since     uint64        `json:"since"`
	Claimable *uint256.Int  `json:"claimable"`
}

// IsEmpty reports whether the slot has been fully withdrawn.
func (s *Stake) IsEmpty() bool {
	return s.User.IsZero() && (s.Amount == nil || s.Amount.IsZero())
}

func emptyStake() Stake {
	return Stake{Amount: new(uint256.Int), Claimable: new(uint256.Int)}
}

// Summary is the read-only view returned by HasStake.
type Summary struct {
	TotalAmount *uint256.Int `json:"total_amount"`
	Stakes      []Stake      `json:"stakes"`
}

// Stakeholder is one registry entry.
type Stakeholder struct {
	Position uint64        `json:"position"`
	Address  types.Address `json:"address"`
	Stakes   uint64        `json:"stakes"`
}
