// keys/category.go
// Key 分类：可变状态 vs 不可变流水
package keys

import "strings"

// KeyCategory 定义 Key 的存储归属
type KeyCategory int

const (
	CategoryKV    KeyCategory = iota // 不可变流水/索引
	CategoryState                    // 可变状态
)

var statePrefixes = []string{
	"v1_account_", // 账户（owner、余额）
	"v1_vault_",   // 金库元数据（authority、locked）
}

// CategorizeKey 判断 key 属于可变状态还是流水
func CategorizeKey(key string) KeyCategory {
	for _, prefix := range statePrefixes {
		if strings.HasPrefix(key, prefix) {
			return CategoryState
		}
	}
	return CategoryKV
}

func IsStatefulKey(key string) bool {
	return CategorizeKey(key) == CategoryState
}

func IsFlowKey(key string) bool {
	return CategorizeKey(key) == CategoryKV
}

// ========== 按数据类型分组（用于 WriteOp.Category 和统计）==========

func IsAccountKey(key string) bool {
	return strings.HasPrefix(key, "v1_account_")
}

func IsVaultKey(key string) bool {
	return strings.HasPrefix(key, "v1_vault_")
}

func IsVMKey(key string) bool {
	return strings.HasPrefix(key, "v1_vm_") || strings.HasPrefix(key, "v1_slot_")
}

func IsEventKey(key string) bool {
	return strings.HasPrefix(key, "v1_event_")
}

// KindOf 给 key 打一个可读的分类标签
func KindOf(key string) string {
	switch {
	case IsAccountKey(key):
		return "account"
	case IsVaultKey(key):
		return "vault"
	case IsEventKey(key):
		return "event"
	case strings.HasPrefix(key, "v1_vm_receipt_"):
		return "receipt"
	case IsVMKey(key):
		return "vm"
	default:
		return "meta"
	}
}
