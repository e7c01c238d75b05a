package vm

import (
	"fmt"

	"vaultd/pda"
	"vaultd/types"
)

// ToggleLockTxHandler authority 翻转锁定标志，无条件
type ToggleLockTxHandler struct {
	Deriver *pda.Deriver
}

func (h *ToggleLockTxHandler) Kind() string {
	return KindToggleLock
}

func (h *ToggleLockTxHandler) DryRun(tx *Tx, sv StateView) ([]WriteOp, *Receipt, error) {
	if err := checkKind(tx, KindToggleLock); err != nil {
		return fail(tx, err)
	}
	if tx.Amount != 0 {
		return fail(tx, fmt.Errorf("%w: toggle_lock carries no amount", ErrInvalidTx))
	}

	vs, err := loadVaultState(sv, tx.Vault)
	if err != nil {
		return fail(tx, err)
	}
	if _, err := verifyVaultAccounts(h.Deriver, sv, tx, vs); err != nil {
		return fail(tx, err)
	}
	if err := requireAuthority(tx, vs); err != nil {
		return fail(tx, err)
	}

	vs.Locked = !vs.Locked
	ws := []WriteOp{vaultStateWrite(tx.Vault, vs)}
	if err := sv.Stage(ws...); err != nil {
		return fail(tx, err)
	}

	return ws, succeed(tx, ws, types.VaultEvent{
		Type:   types.EventToggleLock,
		Vault:  tx.Vault,
		Actor:  vs.Authority,
		Locked: vs.Locked,
	}), nil
}

func (h *ToggleLockTxHandler) Apply(tx *Tx) error {
	return ErrNotImplemented
}
