package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/config"
	klog "github.com/teut-network/teutledger/internal/log"
	"github.com/teut-network/teutledger/internal/node"
	"github.com/teut-network/teutledger/internal/wallet"
	"github.com/teut-network/teutledger/pkg/op"
	"github.com/teut-network/teutledger/pkg/types"
)

// opFlags are the flags shared by the signed operation commands.
type opFlags struct {
	wallet  string
	account uint
	to      string
	from    string
	spender string
	amount  string
	index   uint64
}

// kindFor maps a command name to its operation kind.
var kindFor = map[string]op.Kind{
	"mint":           op.KindMint,
	"burn":           op.KindBurn,
	"transfer":       op.KindTransfer,
	"approve":        op.KindApprove,
	"transfer-from":  op.KindTransferFrom,
	"stake":          op.KindStake,
	"withdraw-stake": op.KindWithdrawStake,
}

func parseOpFlags(cmd string, args []string) (*opFlags, error) {
	f := &opFlags{}
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.StringVar(&f.wallet, "wallet", "", "Wallet name")
	fs.UintVar(&f.account, "account", 0, "Wallet account index")
	fs.StringVar(&f.amount, "amount", "", "Amount in base units")

	switch cmd {
	case "mint", "transfer":
		fs.StringVar(&f.to, "to", "", "Recipient address")
	case "burn":
		fs.StringVar(&f.from, "from", "", "Address to burn from")
	case "approve":
		fs.StringVar(&f.spender, "spender", "", "Spender address")
	case "transfer-from":
		fs.StringVar(&f.from, "from", "", "Owner address")
		fs.StringVar(&f.to, "to", "", "Recipient address")
	case "withdraw-stake":
		fs.Uint64Var(&f.index, "index", 0, "Stake index (0-based)")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.wallet == "" || f.amount == "" {
		return nil, fmt.Errorf("usage: teut-cli %s --wallet <w> --amount <n> (see teut-cli help)", cmd)
	}
	return f, nil
}

// buildOp turns parsed flags into an unsigned operation.
func buildOp(kind op.Kind, f *opFlags) (*op.Operation, error) {
	amount, err := parseAmount(f.amount)
	if err != nil {
		return nil, err
	}
	o := &op.Operation{Kind: kind, Amount: amount, Index: f.index}

	parse := func(name, s string, dst *types.Address) error {
		if s == "" {
			return fmt.Errorf("--%s is required", name)
		}
		addr, err := types.ParseAddress(s)
		if err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
		*dst = addr
		return nil
	}

	switch kind {
	case op.KindMint, op.KindTransfer:
		err = parse("to", f.to, &o.To)
	case op.KindBurn:
		err = parse("from", f.from, &o.From)
	case op.KindApprove:
		err = parse("spender", f.spender, &o.Spender)
	case op.KindTransferFrom:
		if err = parse("from", f.from, &o.From); err == nil {
			err = parse("to", f.to, &o.To)
		}
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func cmdOperation(cfg *config.Config, cmd string, args []string) error {
	kind := kindFor[cmd]
	f, err := parseOpFlags(cmd, args)
	if err != nil {
		return err
	}
	o, err := buildOp(kind, f)
	if err != nil {
		return err
	}

	account, err := accountIndex(f.account)
	if err != nil {
		return err
	}

	ks, err := wallet.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return fmt.Errorf("open keystore: %w", err)
	}
	w, err := openWallet(ks, f.wallet)
	if err != nil {
		return err
	}
	key, err := w.Key(account)
	if err != nil {
		return fmt.Errorf("derive key: %w", err)
	}
	defer key.Zero()
	klog.Wallet.Debug().
		Uint32("account", account).
		Str("address", key.Address().String()).
		Msg("Key derived")

	return withNode(cfg, func(n *node.Node) error {
		meta, err := n.Metadata()
		if err != nil {
			return err
		}
		nonce, err := n.Nonce(key.Address())
		if err != nil {
			return err
		}
		o.Chain = meta.GenesisHash
		o.Nonce = nonce
		if err := o.Sign(key); err != nil {
			return fmt.Errorf("sign: %w", err)
		}
		klog.CLI.Debug().
			Str("kind", string(o.Kind)).
			Str("sender", key.Address().String()).
			Uint64("nonce", nonce).
			Msg("Submitting operation")

		rcpt, err := n.Apply(o)
		if err != nil {
			return err
		}
		return printJSON(rcpt)
	})
}

func cmdInit(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	owner := fs.String("owner", "", "Owner address")
	walletName := fs.String("wallet", "", "Take the owner address from this wallet")
	account := fs.Uint("account", 0, "Wallet account index")
	name := fs.String("name", "", "Token name")
	symbol := fs.String("symbol", "", "Token symbol")
	decimals := fs.Int("decimals", -1, "Token decimals")
	supply := fs.String("supply", "", "Initial supply in base units")
	alloc := fs.String("alloc", "", "Extra allocations: addr=amount,...")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := node.GenesisPath(cfg)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("genesis already exists at %s", path)
	}

	g := config.DefaultGenesis(cfg.Network)
	switch {
	case *owner != "":
		g.Owner = *owner
	case *walletName != "":
		index, err := accountIndex(*account)
		if err != nil {
			return err
		}
		ks, err := wallet.NewKeystore(cfg.KeystoreDir())
		if err != nil {
			return fmt.Errorf("open keystore: %w", err)
		}
		accounts, err := ks.Accounts(*walletName)
		if err != nil {
			return err
		}
		found := false
		for _, a := range accounts {
			if a.Index == index {
				g.Owner = a.Address.String()
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("wallet %s has no account %d", *walletName, *account)
		}
	default:
		return fmt.Errorf("usage: teut-cli init (--owner <addr> | --wallet <w>) [flags]")
	}
	if *name != "" {
		g.Name = *name
	}
	if *symbol != "" {
		g.Symbol = *symbol
	}
	if *decimals >= 0 {
		if *decimals > 255 {
			return fmt.Errorf("decimals must be at most 255")
		}
		g.Decimals = uint8(*decimals)
	}
	if *supply != "" {
		g.InitialSupply = *supply
	}
	if *alloc != "" {
		g.Alloc = make(map[string]string)
		for _, part := range strings.Split(*alloc, ",") {
			kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
			if len(kv) != 2 {
				return fmt.Errorf("invalid allocation %q (expected addr=amount)", part)
			}
			g.Alloc[kv[0]] = kv[1]
		}
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	if err := g.Save(path); err != nil {
		return err
	}
	cfg.Genesis = path

	return withNode(cfg, cmdInfo)
}

// accountIndex narrows an --account value to a derivation index.
func accountIndex(v uint) (uint32, error) {
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("--account %d out of range (max %d)", v, uint32(math.MaxUint32))
	}
	return uint32(v), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
