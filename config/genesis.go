package config

import (
	"fmt"

	"vaultd/types"
)

// GenesisConfig 首次启动时注入的资金账户
type GenesisConfig struct {
	Accounts []GenesisAccount `yaml:"accounts"`
}

type GenesisAccount struct {
	Address  string `yaml:"address"`
	Lamports uint64 `yaml:"lamports"`
}

func (g GenesisConfig) Validate() error {
	seen := make(map[types.Pubkey]struct{}, len(g.Accounts))
	for i, acc := range g.Accounts {
		pk, err := types.ParsePubkey(acc.Address)
		if err != nil {
			return fmt.Errorf("genesis.accounts[%d]: %w", i, err)
		}
		if _, dup := seen[pk]; dup {
			return fmt.Errorf("genesis.accounts[%d]: duplicate address %s", i, acc.Address)
		}
		seen[pk] = struct{}{}
	}
	return nil
}
