package db

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v2"

	"vaultd/config"
	"vaultd/interfaces"
	"vaultd/keys"
	"vaultd/logs"
)

var ErrClosed = errors.New("database is not initialized or closed")

// Manager 封装 BadgerDB 的管理器
type Manager struct {
	Db *badger.DB
	mu sync.RWMutex

	// 写队列：EnqueueSet / EnqueueDel 先攒着，ForceFlush 时一次性原子写入
	queueMu      sync.Mutex
	queue        []WriteTask
	maxBatchSize int

	seq    *badger.Sequence // slot 发号器
	Logger logs.Logger
	cfg    *config.Config
}

var _ interfaces.DBManager = (*Manager)(nil)

// NewManager 创建一个新的 DBManager 实例
func NewManager(path string, logger logs.Logger) (*Manager, error) {
	return NewManagerWithConfig(path, logger, nil)
}

// NewManagerWithConfig 创建 DBManager，可选注入整份 Config
func NewManagerWithConfig(path string, logger logs.Logger, cfg *config.Config) (*Manager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logs.NewNopLogger()
	}

	opts := badger.DefaultOptions(path).WithLogger(nil)
	if cfg.Database.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else {
		opts.ValueLogFileSize = cfg.Database.ValueLogFileSize
		// badger v2 不自动创建父目录
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	seq, err := db.GetSequence([]byte(keys.KeySlotSequence()), cfg.Database.SequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sequence: %w", err)
	}

	logger.Info("[db] opened badger path=%q inMemory=%v", path, cfg.Database.InMemory)
	return &Manager{
		Db:           db,
		seq:          seq,
		Logger:       logger,
		cfg:          cfg,
		maxBatchSize: 500,
	}, nil
}

func (manager *Manager) db() (*badger.DB, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	if manager.Db == nil {
		return nil, ErrClosed
	}
	return manager.Db, nil
}

// Get 读取 key，不存在返回 (nil, nil)
func (manager *Manager) Get(key string) ([]byte, error) {
	db, err := manager.db()
	if err != nil {
		return nil, err
	}

	var value []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// NextSlot 取下一个提交序号
func (manager *Manager) NextSlot() (uint64, error) {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	if manager.seq == nil {
		return 0, ErrClosed
	}
	n, err := manager.seq.Next()
	if err != nil {
		return 0, err
	}
	// badger 的 Sequence 从 0 开始
	return n + 1, nil
}

// Close 先刷写队列，再释放发号器并关库
func (manager *Manager) Close() {
	if err := manager.ForceFlush(); err != nil {
		manager.Logger.Error("[db.Close] force flush failed: %v", err)
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.seq != nil {
		_ = manager.seq.Release()
		manager.seq = nil
	}
	if manager.Db != nil {
		_ = manager.Db.Close()
		manager.Db = nil
	}
}
