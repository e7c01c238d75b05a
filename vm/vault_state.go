package vm

import (
	"bytes"
	"fmt"

	"vaultd/keys"
	"vaultd/types"
	"vaultd/utils"
)

// VaultStateSize discriminator(8) + authority(32) + locked(1) + stateBump(1) + holdingBump(1)
const VaultStateSize = 8 + types.PubkeySize + 3

var vaultDiscriminator = utils.Sha256Hash([]byte("account:VaultState"))[:8]

// VaultState 金库元数据。余额不在这里，在 holding 账户上。
type VaultState struct {
	Authority   types.Pubkey `json:"authority"`
	Locked      bool         `json:"locked"`
	StateBump   uint8        `json:"state_bump"`
	HoldingBump uint8        `json:"holding_bump"`
}

func (v *VaultState) Encode() []byte {
	buf := make([]byte, 0, VaultStateSize)
	buf = append(buf, vaultDiscriminator...)
	buf = append(buf, v.Authority[:]...)
	locked := byte(0)
	if v.Locked {
		locked = 1
	}
	return append(buf, locked, v.StateBump, v.HoldingBump)
}

func DecodeVaultState(b []byte) (*VaultState, error) {
	if len(b) != VaultStateSize || !bytes.Equal(b[:8], vaultDiscriminator) {
		return nil, fmt.Errorf("malformed vault state (%d bytes)", len(b))
	}
	v := &VaultState{}
	copy(v.Authority[:], b[8:8+types.PubkeySize])
	off := 8 + types.PubkeySize
	switch b[off] {
	case 0:
	case 1:
		v.Locked = true
	default:
		return nil, fmt.Errorf("malformed vault state: locked=%d", b[off])
	}
	v.StateBump = b[off+1]
	v.HoldingBump = b[off+2]
	return v, nil
}

// loadVaultState 读取 addr 上的金库，不存在返回 ErrVaultNotFound
func loadVaultState(sv StateView, addr types.Pubkey) (*VaultState, error) {
	raw, ok, err := sv.Get(keys.KeyVaultState(addr.String()))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, addr)
	}
	return DecodeVaultState(raw)
}

func vaultStateWrite(addr types.Pubkey, v *VaultState) WriteOp {
	return WriteOp{Key: keys.KeyVaultState(addr.String()), Value: v.Encode(), Addr: addr, Category: "vault"}
}
