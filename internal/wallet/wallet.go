package wallet

import (
	"fmt"

	"github.com/teut-network/teutledger/pkg/crypto"
	"github.com/teut-network/teutledger/pkg/types"
)

// Wallet is an opened keystore entry able to sign.
type Wallet struct {
	name   string
	path   string
	master *HDKey
	file   *keystoreFile
}

// Name returns the wallet name.
func (w *Wallet) Name() string {
	return w.name
}

// Accounts returns the recorded accounts.
func (w *Wallet) Accounts() []Account {
	out := make([]Account, len(w.file.Accounts))
	copy(out, w.file.Accounts)
	return out
}

// Key returns the signing key of account index.
func (w *Wallet) Key(index uint32) (*crypto.PrivateKey, error) {
	k, err := w.master.DeriveAccount(index)
	if err != nil {
		return nil, err
	}
	return k.PrivateKey()
}

// Address returns the address of account index.
func (w *Wallet) Address(index uint32) (types.Address, error) {
	k, err := w.master.DeriveAccount(index)
	if err != nil {
		return types.Address{}, err
	}
	return k.Address(), nil
}

// NewAccount derives the next account, records it under label and saves
// the wallet file.
func (w *Wallet) NewAccount(label string) (*Account, error) {
	idx := w.file.NextIndex
	addr, err := w.Address(idx)
	if err != nil {
		return nil, err
	}
	if label == "" {
		label = fmt.Sprintf("account-%d", idx)
	}
	acct := Account{Index: idx, Name: label, Address: addr}
	w.file.Accounts = append(w.file.Accounts, acct)
	w.file.NextIndex++
	if err := writeKeystore(w.path, w.file); err != nil {
		w.file.Accounts = w.file.Accounts[:len(w.file.Accounts)-1]
		w.file.NextIndex--
		return nil, err
	}
	return &acct, nil
}
