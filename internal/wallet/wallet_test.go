package wallet

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teut-network/teutledger/pkg/crypto"
)

// Cheap Argon2 parameters keep the tests fast.
var testParams = EncryptionParams{Memory: 1024, Iterations: 1, Parallelism: 1}

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}
	return seed
}

func TestGenerateMnemonic(t *testing.T) {
	m, err := GenerateMnemonic()
	if err != nil {
		t.Fatal(err)
	}
	if n := len(strings.Fields(m)); n != 24 {
		t.Fatalf("words = %d, want 24", n)
	}
	if !ValidateMnemonic(m) {
		t.Fatal("generated mnemonic is invalid")
	}
}

func TestSeedFromMnemonic_KnownVector(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := hex.DecodeString("c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04")
	if !bytes.Equal(seed, want) {
		t.Fatalf("seed = %x, want %x", seed, want)
	}
}

func TestSeedFromMnemonic_Normalizes(t *testing.T) {
	a, err := SeedFromMnemonic(testMnemonic, "")
	if err != nil {
		t.Fatal(err)
	}
	b, err := SeedFromMnemonic("  "+strings.ToUpper(testMnemonic)+"\n", "")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("normalized mnemonic produced a different seed")
	}
}

func TestSeedFromMnemonic_Invalid(t *testing.T) {
	for _, m := range []string{"", "abandon abandon", strings.Replace(testMnemonic, "about", "abandon", 1)} {
		if _, err := SeedFromMnemonic(m, ""); !errors.Is(err, ErrInvalidMnemonic) {
			t.Errorf("SeedFromMnemonic(%q) error = %v, want ErrInvalidMnemonic", m, err)
		}
	}
}

func TestHDKey_DeriveAccount(t *testing.T) {
	master, err := NewMasterKey(testSeed(t))
	if err != nil {
		t.Fatal(err)
	}
	k0, err := master.DeriveAccount(0)
	if err != nil {
		t.Fatal(err)
	}
	k0again, _ := master.DeriveAccount(0)
	k1, _ := master.DeriveAccount(1)

	if k0.Address() != k0again.Address() {
		t.Error("derivation is not deterministic")
	}
	if k0.Address() == k1.Address() {
		t.Error("accounts 0 and 1 share an address")
	}

	priv, err := k0.PrivateKey()
	if err != nil {
		t.Fatal(err)
	}
	if priv.Address() != k0.Address() {
		t.Error("private key address differs from HD key address")
	}
	if !bytes.Equal(priv.PublicKey(), k0.PublicKey()) {
		t.Error("public keys differ")
	}

	hash := crypto.Hash([]byte("op"))
	sig, err := priv.Sign(hash[:])
	if err != nil {
		t.Fatal(err)
	}
	if !crypto.VerifySignature(hash[:], sig, k0.PublicKey()) {
		t.Error("signature does not verify")
	}

	if _, err := k0.Neuter().PrivateKey(); err == nil {
		t.Error("neutered key produced a private key")
	}
}

func TestNewMasterKey_BadSeed(t *testing.T) {
	if _, err := NewMasterKey(make([]byte, 32)); err == nil {
		t.Fatal("expected error for 32-byte seed")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	data := []byte("seed material")
	sealed, err := Encrypt(data, []byte("pw"), testParams)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decrypt(sealed, []byte("pw"))
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("Decrypt = %q, want %q", got, data)
	}

	if _, err := Decrypt(sealed, []byte("wrong")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong password error = %v, want ErrWrongPassword", err)
	}
	sealed[len(sealed)-1] ^= 1
	if _, err := Decrypt(sealed, []byte("pw")); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("tampered error = %v, want ErrWrongPassword", err)
	}
	if _, err := Decrypt(sealed[:10], []byte("pw")); !errors.Is(err, ErrSealedTooShort) {
		t.Errorf("short error = %v, want ErrSealedTooShort", err)
	}

	again, _ := Encrypt(data, []byte("pw"), testParams)
	if bytes.Equal(again[:SaltSize], sealed[:SaltSize]) {
		t.Error("salt reused across encryptions")
	}
}

func TestKeystore_CreateOpen(t *testing.T) {
	dir := t.TempDir()
	ks, err := NewKeystore(dir)
	if err != nil {
		t.Fatal(err)
	}
	seed := testSeed(t)

	acct, err := ks.Create("main", seed, []byte("secret"), testParams)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acct.Index != 0 || acct.Address.IsZero() {
		t.Fatalf("first account = %+v", acct)
	}

	if _, err := ks.Create("main", seed, []byte("secret"), testParams); !errors.Is(err, ErrWalletExists) {
		t.Fatalf("duplicate Create error = %v, want ErrWalletExists", err)
	}

	w, err := ks.Open("main", []byte("secret"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	addr, _ := w.Address(0)
	if addr != acct.Address {
		t.Fatalf("opened address = %s, want %s", addr, acct.Address)
	}
	key, err := w.Key(0)
	if err != nil {
		t.Fatal(err)
	}
	if key.Address() != acct.Address {
		t.Fatal("key address mismatch")
	}

	if _, err := ks.Open("main", []byte("nope")); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("wrong password error = %v, want ErrWrongPassword", err)
	}
	if _, err := ks.Open("missing", []byte("secret")); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("missing wallet error = %v, want ErrWalletNotFound", err)
	}

	info, err := os.Stat(filepath.Join(dir, "main.wallet"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("wallet file mode = %o, want 600", perm)
	}
}

func TestKeystore_NewAccountPersists(t *testing.T) {
	ks, _ := NewKeystore(t.TempDir())
	ks.Create("main", testSeed(t), []byte("pw"), testParams)

	w, err := ks.Open("main", []byte("pw"))
	if err != nil {
		t.Fatal(err)
	}
	acct, err := w.NewAccount("")
	if err != nil {
		t.Fatal(err)
	}
	if acct.Index != 1 || acct.Name != "account-1" {
		t.Fatalf("new account = %+v", acct)
	}

	accts, err := ks.Accounts("main")
	if err != nil {
		t.Fatal(err)
	}
	if len(accts) != 2 || accts[1].Address != acct.Address {
		t.Fatalf("persisted accounts = %+v", accts)
	}
}

func TestKeystore_ListDelete(t *testing.T) {
	ks, _ := NewKeystore(t.TempDir())
	seed := testSeed(t)
	ks.Create("a", seed, []byte("pw"), testParams)
	ks.Create("b", seed, []byte("pw"), testParams)

	names, err := ks.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 {
		t.Fatalf("List = %v, want 2 wallets", names)
	}

	if err := ks.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if err := ks.Delete("a"); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("second Delete error = %v, want ErrWalletNotFound", err)
	}
	if _, err := ks.Create("../evil", seed, []byte("pw"), testParams); !errors.Is(err, ErrBadWalletName) {
		t.Fatalf("path traversal error = %v, want ErrBadWalletName", err)
	}
}
