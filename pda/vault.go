package pda

import (
	"crypto/sha256"
	"errors"

	"vaultd/types"
)

const (
	DefaultStateSeed   = "vault"
	DefaultHoldingSeed = "holding"
)

var ErrSameSeeds = errors.New("state seed and holding seed must differ")

// Deriver 按固定的程序 ID 和两个命名空间种子派生某个 authority 的金库地址
type Deriver struct {
	ProgramID   types.Pubkey
	StateSeed   []byte
	HoldingSeed []byte
}

// VaultAddresses 一个 authority 对应的两份派生地址
type VaultAddresses struct {
	Authority   types.Pubkey `json:"authority"`
	State       types.Pubkey `json:"state"`
	StateBump   uint8        `json:"state_bump"`
	Holding     types.Pubkey `json:"holding"`
	HoldingBump uint8        `json:"holding_bump"`
}

func NewDeriver(programID types.Pubkey, stateSeed, holdingSeed string) (*Deriver, error) {
	if stateSeed == holdingSeed {
		return nil, ErrSameSeeds
	}
	if len(stateSeed) > MaxSeedLength || len(holdingSeed) > MaxSeedLength {
		return nil, ErrMaxSeedLengthExceeded
	}
	return &Deriver{
		ProgramID:   programID,
		StateSeed:   []byte(stateSeed),
		HoldingSeed: []byte(holdingSeed),
	}, nil
}

func (d *Deriver) StateAddress(authority types.Pubkey) (types.Pubkey, uint8, error) {
	return FindProgramAddress([][]byte{d.StateSeed, authority[:]}, d.ProgramID)
}

func (d *Deriver) HoldingAddress(authority types.Pubkey) (types.Pubkey, uint8, error) {
	return FindProgramAddress([][]byte{d.HoldingSeed, authority[:]}, d.ProgramID)
}

// StateAddressWithBump 已知 bump 时的单次派生，供执行时校验
func (d *Deriver) StateAddressWithBump(authority types.Pubkey, bump uint8) (types.Pubkey, error) {
	return CreateProgramAddress([][]byte{d.StateSeed, authority[:], {bump}}, d.ProgramID)
}

func (d *Deriver) HoldingAddressWithBump(authority types.Pubkey, bump uint8) (types.Pubkey, error) {
	return CreateProgramAddress([][]byte{d.HoldingSeed, authority[:], {bump}}, d.ProgramID)
}

// Derive 只依赖 authority，任何人都能重算
func (d *Deriver) Derive(authority types.Pubkey) (VaultAddresses, error) {
	state, sb, err := d.StateAddress(authority)
	if err != nil {
		return VaultAddresses{}, err
	}
	holding, hb, err := d.HoldingAddress(authority)
	if err != nil {
		return VaultAddresses{}, err
	}
	return VaultAddresses{
		Authority:   authority,
		State:       state,
		StateBump:   sb,
		Holding:     holding,
		HoldingBump: hb,
	}, nil
}

// DefaultProgramID 未配置时使用的金库程序 ID
var DefaultProgramID = types.Pubkey(sha256.Sum256([]byte("vaultd/vault-program")))
