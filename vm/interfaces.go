package vm

// ========== 核心接口定义 ==========

// StateView 状态视图接口
type StateView interface {
	// 读某个 key；写入只进这个视图，不直接落到底层 DB
	Get(key string) ([]byte, bool, error)
	// 暂存账户 / 金库元数据的写入，其他 key 返回 ErrForeignWrite
	Stage(ws ...WriteOp) error
	// 快照点与回滚，失败的交易整体撤销
	Snapshot() int
	Revert(snap int) error
	// 导出写集，交给执行器一次性提交
	Diff() []WriteOp
}

// TxHandler 交易处理器接口
type TxHandler interface {
	// 处理哪种交易（"deposit" / "withdraw" ...）
	Kind() string
	// 在 StateView 上执行，返回写集与回执；出错时回执描述失败原因
	DryRun(tx *Tx, sv StateView) ([]WriteOp, *Receipt, error)
	// 可选兜底；统一走 Diff() 提交时返回 ErrNotImplemented
	Apply(tx *Tx) error
}

// 读穿函数：overlay 未命中时如何读持久状态
type ReadThroughFn func(key string) ([]byte, error)

// SignatureVerifier 签名 / 授权预言机
type SignatureVerifier func(tx *Tx) error
