package staking

import "errors"

// Staking errors.
var (
	ErrZeroStake         = errors.New("cannot stake nothing")
	ErrInsufficientStake = errors.New("cannot withdraw more than staked")
	ErrStakeNotFound     = errors.New("stake not found")
)
