package vm

import (
	"fmt"

	"vaultd/pda"
	"vaultd/types"
)

// DepositTxHandler 任何签名者都可以往未锁定的金库存款
type DepositTxHandler struct {
	Deriver *pda.Deriver
}

func (h *DepositTxHandler) Kind() string {
	return KindDeposit
}

func (h *DepositTxHandler) DryRun(tx *Tx, sv StateView) ([]WriteOp, *Receipt, error) {
	if err := checkKind(tx, KindDeposit); err != nil {
		return fail(tx, err)
	}

	// 1. 读取金库并校验派生地址
	vs, err := loadVaultState(sv, tx.Vault)
	if err != nil {
		return fail(tx, err)
	}
	if _, err := verifyVaultAccounts(h.Deriver, sv, tx, vs); err != nil {
		return fail(tx, err)
	}

	// 2. 锁定检查
	if vs.Locked {
		return fail(tx, fmt.Errorf("%w: %s", ErrVaultLocked, tx.Vault))
	}

	// 3. 存款人余额检查
	caller, _, err := GetAccount(sv, tx.Signer)
	if err != nil {
		return fail(tx, err)
	}
	if caller.Lamports < tx.Amount {
		return fail(tx, fmt.Errorf("%w: depositor has %d, need %d", ErrInsufficientBalance, caller.Lamports, tx.Amount))
	}

	// 4. 通过通用转账把 lamports 移入 holding
	ws, err := Transfer(sv, tx.Signer, tx.Holding, tx.Amount)
	if err != nil {
		return fail(tx, err)
	}

	return ws, succeed(tx, ws, types.VaultEvent{
		Type:   types.EventDeposit,
		Vault:  tx.Vault,
		Actor:  tx.Signer,
		Amount: tx.Amount,
	}), nil
}

func (h *DepositTxHandler) Apply(tx *Tx) error {
	return ErrNotImplemented
}
