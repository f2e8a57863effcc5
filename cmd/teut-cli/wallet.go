package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/teut-network/teutledger/config"
	klog "github.com/teut-network/teutledger/internal/log"
	"github.com/teut-network/teutledger/internal/wallet"
)

func cmdWallet(cfg *config.Config, args []string) error {
	const walletUsage = "usage: teut-cli wallet <create|import|list|address|new-address> [flags]"
	if len(args) < 1 {
		return errors.New(walletUsage)
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}

	switch args[0] {
	case "create":
		return cmdWalletCreate(ks, args[1:])
	case "import":
		return cmdWalletImport(ks, args[1:])
	case "list":
		return cmdWalletList(ks)
	case "address":
		return cmdWalletAddress(ks, args[1:])
	case "new-address":
		return cmdWalletNewAddress(ks, args[1:])
	default:
		return fmt.Errorf("unknown wallet command: %s\n%s", args[0], walletUsage)
	}
}

func cmdWalletCreate(ks *wallet.Keystore, args []string) error {
	fs := flag.NewFlagSet("wallet create", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" {
		return fmt.Errorf("usage: teut-cli wallet create --name <name>")
	}

	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		return fmt.Errorf("generate mnemonic: %w", err)
	}

	fmt.Println("Mnemonic (write this down!):")
	fmt.Printf("  %s\n\n", mnemonic)

	return createWallet(ks, *name, mnemonic, "Wallet created")
}

func cmdWalletImport(ks *wallet.Keystore, args []string) error {
	fs := flag.NewFlagSet("wallet import", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	mnemonic := fs.String("mnemonic", "", "BIP-39 mnemonic (24 words)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *mnemonic == "" {
		return fmt.Errorf("usage: teut-cli wallet import --name <name> --mnemonic \"word1 word2 ...\"")
	}
	if !wallet.ValidateMnemonic(*mnemonic) {
		return wallet.ErrInvalidMnemonic
	}
	return createWallet(ks, *name, *mnemonic, "Wallet imported")
}

func createWallet(ks *wallet.Keystore, name, mnemonic, done string) error {
	password, err := readNewPassword()
	if err != nil {
		return err
	}

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return fmt.Errorf("derive seed: %w", err)
	}
	acct, err := ks.Create(name, seed, password, wallet.DefaultParams())
	for i := range seed {
		seed[i] = 0
	}
	if err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}

	klog.Wallet.Debug().
		Str("wallet", name).
		Str("address", acct.Address.String()).
		Msg(done)

	fmt.Printf("%s: %s\n", done, name)
	fmt.Printf("Address: %s\n", acct.Address)
	return nil
}

func cmdWalletList(ks *wallet.Keystore) error {
	names, err := ks.List()
	if err != nil {
		return fmt.Errorf("list wallets: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No wallets found.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func cmdWalletAddress(ks *wallet.Keystore, args []string) error {
	fs := flag.NewFlagSet("wallet address", flag.ContinueOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *walletName == "" {
		return fmt.Errorf("usage: teut-cli wallet address --wallet <name>")
	}

	accounts, err := ks.Accounts(*walletName)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No addresses found.")
		return nil
	}
	for _, acct := range accounts {
		fmt.Printf("  [%d] %s  %s\n", acct.Index, acct.Address, acct.Name)
	}
	return nil
}

func cmdWalletNewAddress(ks *wallet.Keystore, args []string) error {
	fs := flag.NewFlagSet("wallet new-address", flag.ContinueOnError)
	walletName := fs.String("wallet", "", "Wallet name")
	label := fs.String("label", "", "Account label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *walletName == "" {
		return fmt.Errorf("usage: teut-cli wallet new-address --wallet <name> [--label <label>]")
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	w, err := ks.Open(*walletName, password)
	if err != nil {
		return err
	}
	acct, err := w.NewAccount(*label)
	if err != nil {
		return fmt.Errorf("new account: %w", err)
	}
	fmt.Printf("  [%d] %s  %s\n", acct.Index, acct.Address, acct.Name)
	return nil
}

// openWallet prompts for the password and opens name.
func openWallet(ks *wallet.Keystore, name string) (*wallet.Wallet, error) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	w, err := ks.Open(name, password)
	if err != nil {
		klog.Wallet.Debug().Str("wallet", name).Err(err).Msg("Wallet open failed")
		return nil, err
	}
	klog.Wallet.Debug().Str("wallet", name).Msg("Wallet opened")
	return w, nil
}

// ── Password helpers ────────────────────────────────────────────────────

func readNewPassword() ([]byte, error) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return password, nil
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if !bytes.Equal(password, confirm) {
		return nil, fmt.Errorf("passwords do not match")
	}
	return password, nil
}

var stdinReader = bufio.NewReader(os.Stdin)

// readPassword reads a password from the terminal without echo. When stdin
// is not a terminal, one line is read from it instead.
func readPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := stdinReader.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, err
		}
		return bytes.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
