// interfaces/interfaces.go
package interfaces

// KV 有序扫描的一条结果
type KV struct {
	Key   string
	Value []byte
}

// DBManager 执行器依赖的存储能力
type DBManager interface {
	// Get 不存在时返回 (nil, nil)
	Get(key string) ([]byte, error)
	Scan(prefix string) (map[string][]byte, error)
	// ScanFrom 从 start（含）开始按字节序返回最多 limit 条 prefix 下的记录
	ScanFrom(prefix, start string, limit int) ([]KV, error)
	NewSession() (DBSession, error)
	// NextSlot 单调递增的提交序号，从 1 开始
	NextSlot() (uint64, error)
}

// DBSession 一次原子提交：Commit 之前的写入对外不可见，Close 未提交则全部丢弃
type DBSession interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Commit() error
	Close() error
}
