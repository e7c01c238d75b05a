package db

import (
	"fmt"

	"vaultd/config"
	"vaultd/keys"
	"vaultd/types"
)

// ApplyGenesis 首次启动时写入创世账户；已写过则跳过，返回是否本次写入。
// 账户与完成标记在同一个会话里提交，不经过写队列。
func (manager *Manager) ApplyGenesis(g config.GenesisConfig) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}

	var total uint64
	addrs := make([]types.Pubkey, len(g.Accounts))
	for i, acc := range g.Accounts {
		pk, err := types.ParsePubkey(acc.Address)
		if err != nil {
			return false, err
		}
		if total+acc.Lamports < total {
			return false, fmt.Errorf("genesis supply overflows uint64")
		}
		total += acc.Lamports
		addrs[i] = pk
	}

	sess, err := manager.NewSession()
	if err != nil {
		return false, err
	}
	defer sess.Close()

	done, err := sess.Get(keys.KeyGenesisApplied())
	if err != nil {
		return false, err
	}
	if done != nil {
		manager.Logger.Debug("[db] genesis already applied")
		return false, nil
	}

	for i, acc := range g.Accounts {
		rec := types.Account{Owner: types.SystemProgramID, Lamports: acc.Lamports}
		if err := sess.Set(keys.KeyAccount(addrs[i].String()), rec.Encode()); err != nil {
			return false, fmt.Errorf("genesis account %s: %w", acc.Address, err)
		}
	}
	if err := sess.Set(keys.KeyGenesisApplied(), []byte("1")); err != nil {
		return false, err
	}
	if err := sess.Commit(); err != nil {
		return false, fmt.Errorf("commit genesis: %w", err)
	}
	manager.Logger.Info("[db] genesis applied: %d accounts, %d lamports", len(g.Accounts), total)
	return true, nil
}
