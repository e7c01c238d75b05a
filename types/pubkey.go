package types

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// PubkeySize 地址 / 身份的字节长度（BIP-340 x-only 公钥）
const PubkeySize = 32

var ErrInvalidPubkey = errors.New("invalid pubkey")

// Pubkey 既是签名身份，也是账户地址。派生地址同样是 32 字节，但不在曲线上。
type Pubkey [PubkeySize]byte

// SystemProgramID 系统程序，普通签名账户的 owner
var SystemProgramID = Pubkey{}

func PubkeyFromBytes(b []byte) (Pubkey, error) {
	var pk Pubkey
	if len(b) != PubkeySize {
		return pk, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidPubkey, PubkeySize, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// ParsePubkey 解析 base58 文本
func ParsePubkey(s string) (Pubkey, error) {
	if s == "" {
		return Pubkey{}, fmt.Errorf("%w: empty", ErrInvalidPubkey)
	}
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return Pubkey{}, fmt.Errorf("%w: bad base58 %q", ErrInvalidPubkey, s)
	}
	return PubkeyFromBytes(raw)
}

func MustParsePubkey(s string) Pubkey {
	pk, err := ParsePubkey(s)
	if err != nil {
		panic(err)
	}
	return pk
}

func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

func (p Pubkey) Bytes() []byte {
	out := make([]byte, PubkeySize)
	copy(out, p[:])
	return out
}

func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// IsOnCurve 是否为合法的 secp256k1 x-only 公钥，即存在对应私钥
func (p Pubkey) IsOnCurve() bool {
	_, err := schnorr.ParsePubKey(p[:])
	return err == nil
}

func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pubkey) UnmarshalText(text []byte) error {
	pk, err := ParsePubkey(string(text))
	if err != nil {
		return err
	}
	*p = pk
	return nil
}
