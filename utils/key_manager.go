package utils

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"vaultd/logs"
	"vaultd/types"
)

var ErrInvalidPrivateKey = errors.New("invalid private key")

// KeyManager 持有一把 secp256k1 私钥，对外暴露 x-only 公钥作为身份
type KeyManager struct {
	priv   *btcec.PrivateKey
	pubkey types.Pubkey
}

// NewKeyManager 随机生成
func NewKeyManager() (*KeyManager, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return newKeyManager(priv)
}

// KeyManagerFromHex 从 32 字节 hex 私钥恢复
func KeyManagerFromHex(privHex string) (*KeyManager, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidPrivateKey, len(raw))
	}
	priv, _ := btcec.PrivKeyFromBytes(raw)
	if priv.Key.IsZero() {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidPrivateKey)
	}
	return newKeyManager(priv)
}

func newKeyManager(priv *btcec.PrivateKey) (*KeyManager, error) {
	pk, err := types.PubkeyFromBytes(schnorr.SerializePubKey(priv.PubKey()))
	if err != nil {
		return nil, err
	}
	logs.Trace("[KeyManager] loaded key %s", pk)
	return &KeyManager{priv: priv, pubkey: pk}, nil
}

func (km *KeyManager) PublicKey() types.Pubkey {
	return km.pubkey
}

// PrivateKeyHex 导出私钥，只给 CLI 生成密钥文件用
func (km *KeyManager) PrivateKeyHex() string {
	return hex.EncodeToString(km.priv.Serialize())
}

// Sign 对 32 字节摘要做 BIP-340 签名，返回 64 字节
func (km *KeyManager) Sign(digest []byte) ([]byte, error) {
	sig, err := schnorr.Sign(km.priv, digest)
	if err != nil {
		return nil, err
	}
	return sig.Serialize(), nil
}
