package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/teut-network/teutledger/pkg/types"
)

const keystoreVersion = 1

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrBadWalletName  = errors.New("invalid wallet name")
)

// keystoreFile is the on-disk JSON format of one wallet.
type keystoreFile struct {
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	EncryptedSeed []byte    `json:"encrypted_seed"`
	Accounts      []Account `json:"accounts"`
	NextIndex     uint32    `json:"next_index"`
}

// Account is a derived key recorded in the wallet file.
type Account struct {
	Index   uint32        `json:"index"`
	Name    string        `json:"name"`
	Address types.Address `json:"address"`
}

// Keystore manages wallet files in one directory.
type Keystore struct {
	dir string
}

// NewKeystore opens dir, creating it if needed.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{dir: dir}, nil
}

func (ks *Keystore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrBadWalletName, name)
	}
	return filepath.Join(ks.dir, name+".wallet"), nil
}

// Create stores a new wallet holding seed encrypted under password and
// records account 0.
func (ks *Keystore) Create(name string, seed, password []byte, params EncryptionParams) (*Account, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	first, err := master.DeriveAccount(0)
	if err != nil {
		return nil, err
	}
	sealed, err := Encrypt(seed, password, params)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed: %w", err)
	}

	acct := Account{Index: 0, Name: "default", Address: first.Address()}
	kf := keystoreFile{
		Version:       keystoreVersion,
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: sealed,
		Accounts:      []Account{acct},
		NextIndex:     1,
	}
	if err := writeKeystore(path, &kf); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Open decrypts a wallet.
func (ks *Keystore) Open(name string, password []byte) (*Wallet, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	kf, err := readKeystore(path)
	if err != nil {
		return nil, err
	}
	seed, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("open wallet %q: %w", name, err)
	}
	defer wipe(seed)
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return &Wallet{name: name, path: path, master: master, file: kf}, nil
}

// Accounts lists the recorded accounts without decrypting the wallet.
func (ks *Keystore) Accounts(name string) ([]Account, error) {
	path, err := ks.path(name)
	if err != nil {
		return nil, err
	}
	kf, err := readKeystore(path)
	if err != nil {
		return nil, err
	}
	return kf.Accounts, nil
}

// List returns the names of all wallets.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if n, ok := strings.CutSuffix(e.Name(), ".wallet"); ok {
			names = append(names, n)
		}
	}
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return err
	}
	return nil
}

func writeKeystore(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func readKeystore(path string) (*keystoreFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, filepath.Base(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != keystoreVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return &kf, nil
}
