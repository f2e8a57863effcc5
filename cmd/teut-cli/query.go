package main

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/teut-network/teutledger/internal/node"
	"github.com/teut-network/teutledger/internal/staking"
	"github.com/teut-network/teutledger/pkg/types"
)

type infoResult struct {
	Name        string        `json:"name"`
	Symbol      string        `json:"symbol"`
	Decimals    uint8         `json:"decimals"`
	Owner       types.Address `json:"owner"`
	GenesisHash types.Hash    `json:"genesis_hash"`
	TotalSupply *uint256.Int  `json:"total_supply"`
	TotalStaked *uint256.Int  `json:"total_staked"`
}

func cmdInfo(n *node.Node) error {
	meta, err := n.Metadata()
	if err != nil {
		return err
	}
	view := n.View()
	supply, err := view.TotalSupply()
	if err != nil {
		return err
	}
	locked, err := view.TotalLocked()
	if err != nil {
		return err
	}
	return printJSON(infoResult{
		Name:        meta.Name,
		Symbol:      meta.Symbol,
		Decimals:    meta.Decimals,
		Owner:       meta.Owner,
		GenesisHash: meta.GenesisHash,
		TotalSupply: supply,
		TotalStaked: locked,
	})
}

type balanceResult struct {
	Address types.Address `json:"address"`
	Balance *uint256.Int  `json:"balance"`
	Staked  *uint256.Int  `json:"staked"`
}

func cmdBalance(n *node.Node, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: teut-cli balance <address>")
	}
	addr, err := types.ParseAddress(args[0])
	if err != nil {
		return err
	}
	view := n.View()
	bal, err := view.BalanceOf(addr)
	if err != nil {
		return err
	}
	locked, err := view.LockedOf(addr)
	if err != nil {
		return err
	}
	return printJSON(balanceResult{Address: addr, Balance: bal, Staked: locked})
}

func cmdSupply(n *node.Node) error {
	view := n.View()
	supply, err := view.TotalSupply()
	if err != nil {
		return err
	}
	locked, err := view.TotalLocked()
	if err != nil {
		return err
	}
	return printJSON(map[string]*uint256.Int{
		"total_supply": supply,
		"total_staked": locked,
	})
}

type allowanceResult struct {
	Owner     types.Address `json:"owner"`
	Spender   types.Address `json:"spender"`
	Allowance *uint256.Int  `json:"allowance"`
}

func cmdAllowance(n *node.Node, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: teut-cli allowance <owner> <spender>")
	}
	owner, err := types.ParseAddress(args[0])
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	spender, err := types.ParseAddress(args[1])
	if err != nil {
		return fmt.Errorf("spender: %w", err)
	}
	amt, err := n.View().Allowance(owner, spender)
	if err != nil {
		return err
	}
	return printJSON(allowanceResult{Owner: owner, Spender: spender, Allowance: amt})
}

func cmdStakes(n *node.Node, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: teut-cli stakes <address>")
	}
	addr, err := types.ParseAddress(args[0])
	if err != nil {
		return err
	}
	summary, err := n.View().HasStake(addr)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

func cmdStakeholders(n *node.Node) error {
	holders, err := n.View().Stakeholders()
	if err != nil {
		return err
	}
	if holders == nil {
		holders = []staking.Stakeholder{}
	}
	return printJSON(holders)
}
