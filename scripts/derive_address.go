// derive_address prints the public key and address of wallet accounts
// derived from a mnemonic file, for writing genesis owners and allocations.
// Usage: go run ./scripts <mnemonic-file> [count]
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/teut-network/teutledger/internal/wallet"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_address <mnemonic-file> [count]")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fail(err)
	}
	count := 1
	if len(os.Args) > 2 {
		count, err = strconv.Atoi(os.Args[2])
		if err != nil || count < 1 {
			fail(fmt.Errorf("invalid count %q", os.Args[2]))
		}
	}

	mnemonic := wallet.NormalizeMnemonic(string(data))
	if !wallet.ValidateMnemonic(mnemonic) {
		fail(wallet.ErrInvalidMnemonic)
	}
	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		fail(err)
	}
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		fail(err)
	}
	for i := 0; i < count; i++ {
		k, err := master.DeriveAccount(uint32(i))
		if err != nil {
			fail(err)
		}
		fmt.Printf("account=%d pubkey=%s address=%s\n", i, hex.EncodeToString(k.PublicKey()), k.Address())
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
