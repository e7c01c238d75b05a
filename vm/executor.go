package vm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"vaultd/config"
	iface "vaultd/interfaces"
	"vaultd/keys"
	"vaultd/logs"
	"vaultd/pda"
	"vaultd/stats"
)

// eventNamespace 事件 ID = uuid.NewSHA1(eventNamespace, txID/index)，重放同一笔交易得到相同 ID
var eventNamespace = uuid.MustParse("6f1c3a52-8e1d-4c1b-9f0e-3d2b7a9c5e41")

// Executor 逐笔执行金库交易并原子提交
type Executor struct {
	DB      iface.DBManager
	Reg     *HandlerRegistry
	ReadFn  ReadThroughFn
	Verify  SignatureVerifier
	Deriver *pda.Deriver
	Locks   *AccountLocks
	Events  *EventBus
	Latency *stats.LatencyRecorder
	Logger  logs.Logger

	applied     *lru.Cache // txID -> status，已提交交易的快速判重
	lockTimeout time.Duration
	now         func() time.Time
}

// NewExecutor reg 为 nil 时注册默认的四种交易
func NewExecutor(db iface.DBManager, reg *HandlerRegistry, cfg *config.Config, logger logs.Logger) (*Executor, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logs.NewNopLogger()
	}
	deriver, err := cfg.Vault.Deriver()
	if err != nil {
		return nil, fmt.Errorf("vault config: %w", err)
	}
	if reg == nil {
		reg = NewHandlerRegistry()
		if err := RegisterDefaultHandlers(reg, deriver); err != nil {
			return nil, err
		}
	}
	applied, err := lru.New(cfg.Executor.AppliedTxCacheSize)
	if err != nil {
		return nil, err
	}

	x := &Executor{
		DB:          db,
		Reg:         reg,
		Verify:      VerifyTxSignature,
		Deriver:     deriver,
		Locks:       NewAccountLocks(cfg.Executor.LockStripes),
		Events:      NewEventBus(cfg.Executor.EventBufferSize, logger),
		Latency:     stats.NewLatencyRecorder(0),
		Logger:      logger,
		applied:     applied,
		lockTimeout: cfg.Executor.LockTimeout,
		now:         time.Now,
	}
	x.ReadFn = func(key string) ([]byte, error) {
		return db.Get(key)
	}
	return x, nil
}

// Close 停止事件分发
func (x *Executor) Close() {
	x.Events.Close()
}

// ExecuteTx 执行一笔交易。
// 签名错误、重放、未知种类在执行前拒绝，不留记录；
// 业务失败记为 FAILED 回执（无任何状态变化、无事件），同时返回错误；
// 成功时状态变化、回执、事件在同一个存储事务里提交，然后广播事件。
func (x *Executor) ExecuteTx(ctx context.Context, tx *Tx) (*Receipt, error) {
	start := x.now()
	if tx == nil {
		return nil, ErrNilTx
	}
	h, ok := x.Reg.Get(tx.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, tx.Kind)
	}
	if err := x.Verify(tx); err != nil {
		return nil, err
	}

	txID := tx.ID()
	if x.applied.Contains(txID) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, txID)
	}

	if x.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.lockTimeout)
		defer cancel()
	}
	release, err := x.Locks.Acquire(ctx, tx.AccountKeys())
	if err != nil {
		return nil, fmt.Errorf("acquire account locks: %w", err)
	}
	defer release()

	// 持锁后再查一次库，挡住并发提交的同一笔交易
	if x.isTxApplied(txID) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, txID)
	}

	sv := NewStateView(x.ReadFn)
	snap := sv.Snapshot()
	_, rc, execErr := h.DryRun(tx, sv)
	if execErr != nil {
		if err := sv.Revert(snap); err != nil {
			return nil, err
		}
		if rc == nil {
			rc = failedReceipt(tx, execErr)
		}
		rc.Status = StatusFailed
		rc.Code = ErrorCode(execErr)
		rc.Events = nil
		rc.WriteCount = 0
	}
	if rc == nil {
		return nil, fmt.Errorf("handler %s returned no receipt", tx.Kind)
	}
	rc.TxID = txID
	rc.Kind = tx.Kind
	rc.Timestamp = start.Unix()

	diff := sv.Diff()
	if err := checkWriteSet(diff, tx.AccountKeys()); err != nil {
		return nil, err
	}
	if err := x.commit(diff, rc); err != nil {
		return nil, err
	}
	x.applied.Add(txID, rc.Status)
	x.Latency.Record(tx.Kind, x.now().Sub(start))

	if execErr != nil {
		x.Logger.Verbose("[VM] tx %s (%s) failed at slot %d: %v", txID, tx.Kind, rc.Slot, execErr)
		return rc, execErr
	}
	x.Logger.Debug("[VM] tx %s (%s) committed at slot %d, %d writes", txID, tx.Kind, rc.Slot, rc.WriteCount)
	x.Events.Publish(rc.Events...)
	return rc, nil
}

// commit 分配 slot，补全事件，一个会话里写入写集 + 回执 + 事件
func (x *Executor) commit(diff []WriteOp, rc *Receipt) error {
	slot, err := x.DB.NextSlot()
	if err != nil {
		return fmt.Errorf("allocate slot: %w", err)
	}
	rc.Slot = slot
	for i := range rc.Events {
		ev := &rc.Events[i]
		ev.Slot = slot
		ev.Index = uint32(i)
		ev.TxID = rc.TxID
		ev.ID = uuid.NewSHA1(eventNamespace, []byte(rc.TxID+"/"+strconv.Itoa(i))).String()
	}

	sess, err := x.DB.NewSession()
	if err != nil {
		return fmt.Errorf("failed to open db session: %w", err)
	}
	defer sess.Close()

	for _, w := range diff {
		if err := sess.Set(w.Key, w.Value); err != nil {
			return fmt.Errorf("stage %s write %s: %w", w.Category, w.Key, err)
		}
	}

	records := map[string][]byte{
		keys.KeyVMAppliedTx(rc.TxID): []byte(rc.Status),
		keys.KeyVMReceipt(rc.TxID):   EncodeReceipt(rc),
		keys.KeyVMTxSlot(rc.TxID):    []byte(strconv.FormatUint(slot, 10)),
		keys.KeySlotTx(slot):         []byte(rc.TxID),
	}
	if rc.Error != "" {
		records[keys.KeyVMTxError(rc.TxID)] = []byte(rc.Error)
	}
	for i := range rc.Events {
		ev := &rc.Events[i]
		records[keys.KeyEvent(slot, ev.Index)] = EncodeEvent(ev)
	}
	for k, v := range records {
		if err := sess.Set(k, v); err != nil {
			return fmt.Errorf("stage record %s: %w", k, err)
		}
	}

	if err := sess.Commit(); err != nil {
		return fmt.Errorf("commit slot %d: %w", slot, err)
	}
	return nil
}

func (x *Executor) isTxApplied(txID string) bool {
	if txID == "" {
		return false
	}
	status, err := x.DB.Get(keys.KeyVMAppliedTx(txID))
	if err != nil || status == nil {
		return false
	}
	return true
}
