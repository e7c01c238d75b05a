package vm

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"vaultd/types"
	"vaultd/utils"
)

// 交易种类
const (
	KindInitializeVault = "initialize_vault"
	KindDeposit         = "deposit"
	KindWithdraw        = "withdraw"
	KindToggleLock      = "toggle_lock"
)

const txDomain = "vaultd-tx-v1"

// Tx 一笔已签名的金库指令。
// Vault / Holding 是调用方给出的两个派生地址，执行时会重新派生并比对。
type Tx struct {
	Kind      string       `json:"kind"`
	Signer    types.Pubkey `json:"signer"`
	Vault     types.Pubkey `json:"vault"`
	Holding   types.Pubkey `json:"holding"`
	Amount    uint64       `json:"amount"`
	Nonce     uint64       `json:"nonce"`
	Signature []byte       `json:"signature"`
}

// SigningBytes 签名覆盖的规范字节
func (tx *Tx) SigningBytes() []byte {
	buf := make([]byte, 0, len(txDomain)+1+len(tx.Kind)+3*types.PubkeySize+16)
	buf = append(buf, txDomain...)
	buf = append(buf, byte(len(tx.Kind)))
	buf = append(buf, tx.Kind...)
	buf = append(buf, tx.Signer[:]...)
	buf = append(buf, tx.Vault[:]...)
	buf = append(buf, tx.Holding[:]...)
	buf = binary.BigEndian.AppendUint64(buf, tx.Amount)
	buf = binary.BigEndian.AppendUint64(buf, tx.Nonce)
	return buf
}

// Digest sha3-256(SigningBytes)
func (tx *Tx) Digest() []byte {
	return utils.Sha3Hash(tx.SigningBytes())
}

// ID 交易 ID，与签名无关，同一内容重复提交会被识别为重放
func (tx *Tx) ID() string {
	return hex.EncodeToString(tx.Digest())
}

// Sign 用 km 的私钥签名；km 的公钥必须等于 Signer
func (tx *Tx) Sign(km *utils.KeyManager) error {
	if km.PublicKey() != tx.Signer {
		return fmt.Errorf("%w: signer %s does not match key %s", ErrInvalidTx, tx.Signer, km.PublicKey())
	}
	sig, err := km.Sign(tx.Digest())
	if err != nil {
		return err
	}
	tx.Signature = sig
	return nil
}

// AccountKeys 这笔交易会读写的全部地址，执行前按它们加锁
func (tx *Tx) AccountKeys() []types.Pubkey {
	return []types.Pubkey{tx.Signer, tx.Vault, tx.Holding}
}

// VerifyTxSignature 默认的签名预言机
func VerifyTxSignature(tx *Tx) error {
	if err := utils.VerifySignature(tx.Signer, tx.Digest(), tx.Signature); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}
