package ledger

import "errors"

// Ledger errors.
var (
	ErrInvalidRecipient      = errors.New("invalid recipient")
	ErrInvalidSender         = errors.New("invalid sender")
	ErrInvalidSpender        = errors.New("invalid spender")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientLocked    = errors.New("insufficient locked balance")
	ErrSupplyOverflow        = errors.New("total supply overflow")
)
