// Package pda 派生地址：由 (种子, 程序 ID) 确定性地算出一个不在曲线上的地址，
// 没有私钥能为它签名，只有程序本身能通过执行逻辑改动它。
package pda

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"vaultd/types"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

var derivationTag = []byte("ProgramDerivedAddress")

var (
	ErrMaxSeedLengthExceeded = errors.New("seed too long")
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrOnCurve               = errors.New("derived address is on curve")
	ErrNoViableBump          = errors.New("unable to find a viable bump")
)

// CreateProgramAddress 单次派生，结果落在曲线上时返回 ErrOnCurve
func CreateProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, error) {
	if len(seeds) > MaxSeeds {
		return types.Pubkey{}, ErrTooManySeeds
	}
	msgs := make([][]byte, 0, len(seeds)+1)
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return types.Pubkey{}, fmt.Errorf("%w: %d bytes", ErrMaxSeedLengthExceeded, len(s))
		}
		msgs = append(msgs, s)
	}
	msgs = append(msgs, programID[:])

	h := chainhash.TaggedHash(derivationTag, msgs...)
	var addr types.Pubkey
	copy(addr[:], h[:])
	if addr.IsOnCurve() {
		return types.Pubkey{}, ErrOnCurve
	}
	return addr, nil
}

// FindProgramAddress 从 255 往下找第一个能派生出非曲线地址的 bump
func FindProgramAddress(seeds [][]byte, programID types.Pubkey) (types.Pubkey, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return types.Pubkey{}, 0, ErrTooManySeeds
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return types.Pubkey{}, 0, err
		}
	}
	return types.Pubkey{}, 0, ErrNoViableBump
}
