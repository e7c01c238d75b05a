package vm

import (
	"fmt"

	"vaultd/keys"
	"vaultd/types"
)

// GetAccount 读取账户；不存在时视为系统拥有的零余额账户
func GetAccount(sv StateView, addr types.Pubkey) (types.Account, bool, error) {
	raw, ok, err := sv.Get(keys.KeyAccount(addr.String()))
	if err != nil {
		return types.Account{}, false, err
	}
	if !ok {
		return types.Account{Owner: types.SystemProgramID}, false, nil
	}
	acc, err := types.DecodeAccount(raw)
	if err != nil {
		return types.Account{}, false, err
	}
	return acc, true, nil
}

func accountWrite(addr types.Pubkey, acc types.Account) WriteOp {
	return WriteOp{Key: keys.KeyAccount(addr.String()), Value: acc.Encode(), Addr: addr, Category: "account"}
}

// Transfer 通用转账：from 必须是系统拥有的签名账户。
// 写集会立即落进 sv，返回值供回执统计。
func Transfer(sv StateView, from, to types.Pubkey, amount uint64) ([]WriteOp, error) {
	src, _, err := GetAccount(sv, from)
	if err != nil {
		return nil, err
	}
	if src.Owner != types.SystemProgramID {
		return nil, fmt.Errorf("%w: transfer source %s owned by %s", ErrIllegalOwner, from, src.Owner)
	}
	return move(sv, from, src, to, amount)
}

// DebitProgramAccount 直接改程序拥有账户的余额，程序账户无法签名所以不能走 Transfer
func DebitProgramAccount(sv StateView, programID, from, to types.Pubkey, amount uint64) ([]WriteOp, error) {
	src, ok, err := GetAccount(sv, from)
	if err != nil {
		return nil, err
	}
	if !ok || src.Owner != programID {
		return nil, fmt.Errorf("%w: %s owned by %s, want %s", ErrIllegalOwner, from, src.Owner, programID)
	}
	return move(sv, from, src, to, amount)
}

func move(sv StateView, from types.Pubkey, src types.Account, to types.Pubkey, amount uint64) ([]WriteOp, error) {
	if src.Lamports < amount {
		return nil, fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientBalance, from, src.Lamports, amount)
	}
	if from == to {
		return nil, nil
	}
	dst, _, err := GetAccount(sv, to)
	if err != nil {
		return nil, err
	}

	newSrc, err := SafeSub(src.Lamports, amount)
	if err != nil {
		return nil, err
	}
	newDst, err := SafeAdd(dst.Lamports, amount)
	if err != nil {
		return nil, err
	}
	src.Lamports = newSrc
	dst.Lamports = newDst

	ws := []WriteOp{accountWrite(from, src), accountWrite(to, dst)}
	if err := sv.Stage(ws...); err != nil {
		return nil, err
	}
	return ws, nil
}
