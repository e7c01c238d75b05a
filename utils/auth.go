package utils

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"vaultd/types"
)

var ErrBadSignature = errors.New("signature verification failed")

// VerifySignature 校验 pub 对 digest 的 BIP-340 签名。
// 派生地址不在曲线上，ParsePubKey 必然失败，所以它们永远无法作为签名者。
func VerifySignature(pub types.Pubkey, digest, sig []byte) error {
	key, err := schnorr.ParsePubKey(pub[:])
	if err != nil {
		return ErrBadSignature
	}
	s, err := schnorr.ParseSignature(sig)
	if err != nil {
		return ErrBadSignature
	}
	if !s.Verify(digest, key) {
		return ErrBadSignature
	}
	return nil
}
