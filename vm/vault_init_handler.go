package vm

import (
	"fmt"

	"vaultd/keys"
	"vaultd/pda"
	"vaultd/types"
)

// InitializeVaultTxHandler 为签名者创建金库：元数据（未锁定）+ 程序拥有的 holding 账户
type InitializeVaultTxHandler struct {
	Deriver *pda.Deriver
}

func (h *InitializeVaultTxHandler) Kind() string {
	return KindInitializeVault
}

func (h *InitializeVaultTxHandler) DryRun(tx *Tx, sv StateView) ([]WriteOp, *Receipt, error) {
	if err := checkKind(tx, KindInitializeVault); err != nil {
		return fail(tx, err)
	}
	if tx.Amount != 0 {
		return fail(tx, fmt.Errorf("%w: initialize carries no amount", ErrInvalidTx))
	}

	addrs, err := h.Deriver.Derive(tx.Signer)
	if err != nil {
		return fail(tx, err)
	}
	if addrs.State != tx.Vault || addrs.Holding != tx.Holding {
		return fail(tx, fmt.Errorf("%w: expected vault %s holding %s", ErrAddressMismatch, addrs.State, addrs.Holding))
	}

	if _, exists, err := sv.Get(keys.KeyVaultState(addrs.State.String())); err != nil {
		return fail(tx, err)
	} else if exists {
		return fail(tx, fmt.Errorf("%w: %s", ErrVaultExists, addrs.State))
	}
	if _, exists, err := GetAccount(sv, addrs.Holding); err != nil {
		return fail(tx, err)
	} else if exists {
		return fail(tx, fmt.Errorf("%w: holding %s already in use", ErrVaultExists, addrs.Holding))
	}

	vs := &VaultState{
		Authority:   tx.Signer,
		Locked:      false,
		StateBump:   addrs.StateBump,
		HoldingBump: addrs.HoldingBump,
	}
	ws := []WriteOp{
		vaultStateWrite(addrs.State, vs),
		accountWrite(addrs.Holding, types.Account{Owner: h.Deriver.ProgramID}),
	}
	if err := sv.Stage(ws...); err != nil {
		return fail(tx, err)
	}

	return ws, succeed(tx, ws, types.VaultEvent{
		Type:  types.EventVaultInitialized,
		Vault: addrs.State,
		Actor: tx.Signer,
	}), nil
}

func (h *InitializeVaultTxHandler) Apply(tx *Tx) error {
	return ErrNotImplemented
}
