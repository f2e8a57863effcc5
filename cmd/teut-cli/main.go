// teut-cli is the operator tool for a Teut ledger: it manages wallets,
// queries balances and stakes, and applies signed operations.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/teut-network/teutledger/config"
	klog "github.com/teut-network/teutledger/internal/log"
	"github.com/teut-network/teutledger/internal/node"
)

const version = "0.1.0"

func main() {
	cfg, flags, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		usage()
		return
	}
	if err != nil {
		fatal("%v", err)
	}
	if flags.Version {
		fmt.Println("teut-cli version " + version)
		return
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("initializing logger: %v", err)
	}

	args := flags.Args
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if err := run(cfg, args[0], args[1:]); err != nil {
		klog.CLI.Debug().Str("command", args[0]).Err(err).Msg("Command failed")
		fatal("%v", err)
	}
}

func run(cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "init":
		return cmdInit(cfg, args)
	case "info":
		return withNode(cfg, cmdInfo)
	case "wallet":
		return cmdWallet(cfg, args)
	case "balance":
		return withNode(cfg, func(n *node.Node) error { return cmdBalance(n, args) })
	case "supply":
		return withNode(cfg, cmdSupply)
	case "allowance":
		return withNode(cfg, func(n *node.Node) error { return cmdAllowance(n, args) })
	case "stakes":
		return withNode(cfg, func(n *node.Node) error { return cmdStakes(n, args) })
	case "stakeholders":
		return withNode(cfg, cmdStakeholders)
	case "mint", "burn", "transfer", "approve", "transfer-from", "stake", "withdraw-stake":
		return cmdOperation(cfg, cmd, args)
	case "help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// withNode opens the ledger, runs fn and closes the ledger again.
func withNode(cfg *config.Config, fn func(n *node.Node) error) error {
	n, err := node.New(cfg)
	if err != nil {
		return err
	}
	runErr := fn(n)
	if err := n.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: teut-cli [global flags] <command> [flags]

Global flags:
  --datadir <path>      Data directory (default: ~/.teut)
  --network <net>       mainnet (default) or testnet
  --testnet             Shorthand for --network=testnet
  --config, -c <path>   Config file (default: <datadir>/teut.conf)
  --genesis <path>      Genesis file (default: <datadir>/<network>/genesis.json)
  --storage <backend>   badger (default) or memory
  --metrics-file <path> Write prometheus metrics here after each command
  --log-level <level>   debug, info, warn (default), error
  --log-file <path>     Also write JSON logs to this file
  --log-json            Log as JSON
  --version             Show version

Commands:
  init (--owner <addr> | --wallet <w> [--account <i>]) [--supply <n>]
       [--name <n>] [--symbol <S>] [--decimals <d>] [--alloc addr=amt,...]
                                  Write the genesis and create the ledger
  info                            Show token metadata and supply

  wallet create --name <n>        Create a new wallet
  wallet import --name <n> --mnemonic "..."
                                  Import wallet from mnemonic
  wallet list                     List wallets
  wallet address --wallet <w>     List wallet addresses
  wallet new-address --wallet <w> [--label <l>]
                                  Derive the next address

  balance <addr>                  Show liquid and staked balance
  supply                          Show total supply and total staked
  allowance <owner> <spender>     Show remaining allowance
  stakes <addr>                   Show stake collection of addr
  stakeholders                    List the stakeholder registry

Signed operations (all take --wallet <w> [--account <i>]):
  mint --to <addr> --amount <n>   Create tokens (owner only)
  burn --from <addr> --amount <n> Destroy tokens (owner only)
  transfer --to <addr> --amount <n>
  approve --spender <addr> --amount <n>
  transfer-from --from <addr> --to <addr> --amount <n>
  stake --amount <n>
  withdraw-stake --amount <n> --index <i>

Amounts are integers in base units.
`)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
