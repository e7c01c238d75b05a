package vm

import (
	"fmt"

	"vaultd/pda"
	"vaultd/types"
)

// WithdrawTxHandler 只有 authority 能从未锁定的金库取款，资金回到 authority
type WithdrawTxHandler struct {
	Deriver *pda.Deriver
}

func (h *WithdrawTxHandler) Kind() string {
	return KindWithdraw
}

func (h *WithdrawTxHandler) DryRun(tx *Tx, sv StateView) ([]WriteOp, *Receipt, error) {
	if err := checkKind(tx, KindWithdraw); err != nil {
		return fail(tx, err)
	}

	vs, err := loadVaultState(sv, tx.Vault)
	if err != nil {
		return fail(tx, err)
	}
	holding, err := verifyVaultAccounts(h.Deriver, sv, tx, vs)
	if err != nil {
		return fail(tx, err)
	}

	// 1. 授权
	if err := requireAuthority(tx, vs); err != nil {
		return fail(tx, err)
	}

	// 2. 锁定检查
	if vs.Locked {
		return fail(tx, fmt.Errorf("%w: %s", ErrVaultLocked, tx.Vault))
	}

	// 3. 金库余额检查
	if holding.Lamports < tx.Amount {
		return fail(tx, fmt.Errorf("%w: vault has %d, need %d", ErrInsufficientBalance, holding.Lamports, tx.Amount))
	}

	// 4. holding 归程序所有，直接改余额
	ws, err := DebitProgramAccount(sv, h.Deriver.ProgramID, tx.Holding, vs.Authority, tx.Amount)
	if err != nil {
		return fail(tx, err)
	}

	return ws, succeed(tx, ws, types.VaultEvent{
		Type:   types.EventWithdraw,
		Vault:  tx.Vault,
		Actor:  vs.Authority,
		Amount: tx.Amount,
	}), nil
}

func (h *WithdrawTxHandler) Apply(tx *Tx) error {
	return ErrNotImplemented
}
