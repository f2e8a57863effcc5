package op

import (
	"errors"
	"fmt"

	"github.com/teut-network/teutledger/pkg/crypto"
)

// Validation errors.
var (
	ErrUnknownKind   = errors.New("unknown operation kind")
	ErrMissingAmount = errors.New("operation missing amount")
	ErrMissingPubKey = errors.New("operation missing public key")
	ErrMissingSig    = errors.New("operation missing signature")
	ErrInvalidSig    = errors.New("invalid signature")
)

// Validate checks operation structure and the signature. Address rules
// such as zero-address recipients are left to the ledger.
func (o *Operation) Validate() error {
	if !o.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, o.Kind)
	}
	if o.Amount == nil {
		return ErrMissingAmount
	}
	if len(o.PubKey) == 0 {
		return ErrMissingPubKey
	}
	if len(o.Signature) == 0 {
		return ErrMissingSig
	}
	return o.VerifySignature()
}

// VerifySignature checks the signature against PubKey.
func (o *Operation) VerifySignature() error {
	hash := o.Hash()
	if !crypto.VerifySignature(hash[:], o.Signature, o.PubKey) {
		return ErrInvalidSig
	}
	return nil
}
