// Package op defines the signed operation envelope that carries one
// inbound ledger call.
package op

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/pkg/crypto"
	"github.com/teut-network/teutledger/pkg/types"
)

// Kind names the ledger call an operation carries.
type Kind string

// Operation kinds.
const (
	KindMint          Kind = "mint"
	KindBurn          Kind = "burn"
	KindTransfer      Kind = "transfer"
	KindApprove       Kind = "approve"
	KindTransferFrom  Kind = "transfer_from"
	KindStake         Kind = "stake"
	KindWithdrawStake Kind = "withdraw_stake"
)

// Kinds lists every known kind.
var Kinds = []Kind{
	KindMint, KindBurn, KindTransfer, KindApprove,
	KindTransferFrom, KindStake, KindWithdrawStake,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Operation is one signed call. The caller is the address derived from
// PubKey. Chain is the genesis hash of the ledger the operation is meant
// for, so a signature is only valid on that ledger. Field use per kind:
//
//	mint            To, Amount
//	burn            From, Amount
//	transfer        To, Amount
//	approve         Spender, Amount
//	transfer_from   From (owner), To, Amount
//	stake           Amount
//	withdraw_stake  Amount, Index
type Operation struct {
	Chain     types.Hash    `json:"chain"`
	Kind      Kind          `json:"kind"`
	Nonce     uint64        `json:"nonce"`
	From      types.Address `json:"from"`
	To        types.Address `json:"to"`
	Spender   types.Address `json:"spender"`
	Amount    *uint256.Int  `json:"amount"`
	Index     uint64        `json:"index"`
	PubKey    []byte        `json:"pubkey"`
	Signature []byte        `json:"signature"`
}

// operationJSON is the JSON form with hex-encoded key material.
type operationJSON struct {
	Chain     types.Hash    `json:"chain"`
	Kind      Kind          `json:"kind"`
	Nonce     uint64        `json:"nonce"`
	From      types.Address `json:"from"`
	To        types.Address `json:"to"`
	Spender   types.Address `json:"spender"`
	Amount    *uint256.Int  `json:"amount"`
	Index     uint64        `json:"index"`
	PubKey    *string       `json:"pubkey"`
	Signature *string       `json:"signature"`
}

// MarshalJSON encodes the operation with hex-encoded pubkey and signature.
func (o Operation) MarshalJSON() ([]byte, error) {
	j := operationJSON{
		Chain:   o.Chain,
		Kind:    o.Kind,
		Nonce:   o.Nonce,
		From:    o.From,
		To:      o.To,
		Spender: o.Spender,
		Amount:  o.Amount,
		Index:   o.Index,
	}
	if o.PubKey != nil {
		p := hex.EncodeToString(o.PubKey)
		j.PubKey = &p
	}
	if o.Signature != nil {
		s := hex.EncodeToString(o.Signature)
		j.Signature = &s
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes an operation with hex-encoded pubkey and signature.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var j operationJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*o = Operation{
		Chain:   j.Chain,
		Kind:    j.Kind,
		Nonce:   j.Nonce,
		From:    j.From,
		To:      j.To,
		Spender: j.Spender,
		Amount:  j.Amount,
		Index:   j.Index,
	}
	if j.PubKey != nil {
		b, err := hex.DecodeString(*j.PubKey)
		if err != nil {
			return fmt.Errorf("pubkey: %w", err)
		}
		o.PubKey = b
	}
	if j.Signature != nil {
		b, err := hex.DecodeString(*j.Signature)
		if err != nil {
			return fmt.Errorf("signature: %w", err)
		}
		o.Signature = b
	}
	return nil
}

// SigningBytes returns the canonical byte representation used for signing.
// Format: chain(32) | kind_len(1) | kind | nonce(8 LE) | from(20) | to(20) |
// spender(20) | amount(32 BE) | index(8 LE) | pubkey_len(1) | pubkey
func (o *Operation) SigningBytes() []byte {
	buf := make([]byte, 0, types.HashSize+1+len(o.Kind)+8+3*types.AddressSize+32+8+1+len(o.PubKey))
	buf = append(buf, o.Chain[:]...)
	buf = append(buf, byte(len(o.Kind)))
	buf = append(buf, o.Kind...)
	buf = binary.LittleEndian.AppendUint64(buf, o.Nonce)
	buf = append(buf, o.From[:]...)
	buf = append(buf, o.To[:]...)
	buf = append(buf, o.Spender[:]...)
	var amount [32]byte
	if o.Amount != nil {
		amount = o.Amount.Bytes32()
	}
	buf = append(buf, amount[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, o.Index)
	buf = append(buf, byte(len(o.PubKey)))
	buf = append(buf, o.PubKey...)
	return buf
}

// hashTag separates operation hashes from every other BLAKE3 use.
const hashTag = "teut operation v2"

// Hash is the operation ID: tagged BLAKE3 of the signing bytes. The
// signature is not covered.
func (o *Operation) Hash() types.Hash {
	return crypto.TaggedHash(hashTag, o.SigningBytes())
}

// Sign sets PubKey from signer and signs the operation hash.
func (o *Operation) Sign(signer crypto.Signer) error {
	o.PubKey = signer.PublicKey()
	hash := o.Hash()
	sig, err := signer.Sign(hash[:])
	if err != nil {
		return fmt.Errorf("sign op: %w", err)
	}
	o.Signature = sig
	return nil
}

// Sender returns the address of the signing key.
func (o *Operation) Sender() types.Address {
	return crypto.AddressFromPubKey(o.PubKey)
}
