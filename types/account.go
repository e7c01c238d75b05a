package types

import (
	"encoding/binary"
	"fmt"
)

// AccountSize owner(32) + lamports(8)
const AccountSize = PubkeySize + 8

// Account 账本中的一个余额账户。
// Owner 为 SystemProgramID 时由签名者通过通用转账支配；
// Owner 为某个程序 ID 时只有该程序能直接改它的余额。
type Account struct {
	Owner    Pubkey `json:"owner"`
	Lamports uint64 `json:"lamports"`
}

func (a Account) Encode() []byte {
	buf := make([]byte, AccountSize)
	copy(buf, a.Owner[:])
	binary.BigEndian.PutUint64(buf[PubkeySize:], a.Lamports)
	return buf
}

func DecodeAccount(b []byte) (Account, error) {
	if len(b) != AccountSize {
		return Account{}, fmt.Errorf("account: want %d bytes, got %d", AccountSize, len(b))
	}
	var a Account
	copy(a.Owner[:], b[:PubkeySize])
	a.Lamports = binary.BigEndian.Uint64(b[PubkeySize:])
	return a, nil
}
