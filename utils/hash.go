package utils

import (
	"crypto/sha256"

	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/sha3"
)

// StripeHash 非加密哈希，用于把账户映射到锁分片
func StripeHash(data []byte) uint32 {
	return murmur3.Sum32(data)
}

// MurmurHash 64 位 murmur3，小端输出
func MurmurHash(data []byte) []byte {
	sum64 := murmur3.Sum64(data)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(sum64 >> (8 * i))
	}
	return b
}

func Sha256Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// Sha3Hash 交易摘要
func Sha3Hash(data []byte) []byte {
	sum := sha3.Sum256(data)
	return sum[:]
}
