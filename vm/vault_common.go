package vm

import (
	"fmt"

	"vaultd/pda"
	"vaultd/types"
)

func fail(tx *Tx, err error) ([]WriteOp, *Receipt, error) {
	return nil, failedReceipt(tx, err), err
}

func checkKind(tx *Tx, kind string) error {
	if tx == nil {
		return ErrNilTx
	}
	if tx.Kind != kind {
		return fmt.Errorf("%w: not a %s transaction", ErrInvalidTx, kind)
	}
	return nil
}

// verifyVaultAccounts 用金库里记录的 authority 和 bump 重新派生两个地址，
// 与调用方给出的 Vault / Holding 对比，然后确认 holding 归程序所有。
func verifyVaultAccounts(d *pda.Deriver, sv StateView, tx *Tx, vs *VaultState) (types.Account, error) {
	state, err := d.StateAddressWithBump(vs.Authority, vs.StateBump)
	if err != nil || state != tx.Vault {
		return types.Account{}, fmt.Errorf("%w: vault %s is not derived from authority %s", ErrAddressMismatch, tx.Vault, vs.Authority)
	}
	holding, err := d.HoldingAddressWithBump(vs.Authority, vs.HoldingBump)
	if err != nil || holding != tx.Holding {
		return types.Account{}, fmt.Errorf("%w: holding %s is not derived from authority %s", ErrAddressMismatch, tx.Holding, vs.Authority)
	}

	acc, ok, err := GetAccount(sv, tx.Holding)
	if err != nil {
		return types.Account{}, err
	}
	if !ok || acc.Owner != d.ProgramID {
		return types.Account{}, fmt.Errorf("%w: holding %s", ErrIllegalOwner, tx.Holding)
	}
	return acc, nil
}

// requireAuthority 特权操作开头统一的授权检查
func requireAuthority(tx *Tx, vs *VaultState) error {
	if tx.Signer != vs.Authority {
		return fmt.Errorf("%w: signer %s is not vault authority %s", ErrUnauthorized, tx.Signer, vs.Authority)
	}
	return nil
}

func succeed(tx *Tx, ws []WriteOp, evs ...types.VaultEvent) *Receipt {
	return &Receipt{
		TxID:       tx.ID(),
		Kind:       tx.Kind,
		Status:     StatusSucceed,
		WriteCount: len(ws),
		Events:     evs,
	}
}
