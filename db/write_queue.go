package db

import (
	"github.com/dgraph-io/badger/v2"

	"vaultd/keys"
)

// WriteTask 写队列中的一条
type WriteTask struct {
	Key    []byte
	Value  []byte
	Delete bool
}

func (manager *Manager) EnqueueSet(key, value string) {
	manager.enqueue(WriteTask{Key: []byte(key), Value: []byte(value)})
}

func (manager *Manager) EnqueueDel(key string) {
	manager.enqueue(WriteTask{Key: []byte(key), Delete: true})
}

func (manager *Manager) enqueue(t WriteTask) {
	manager.queueMu.Lock()
	manager.queue = append(manager.queue, t)
	full := len(manager.queue) >= manager.maxBatchSize
	manager.queueMu.Unlock()

	if full {
		if err := manager.ForceFlush(); err != nil {
			manager.Logger.Error("[db] auto flush failed: %v", err)
		}
	}
}

// ForceFlush 把队列里的写入放进一个 badger 事务提交；失败时保留队列
func (manager *Manager) ForceFlush() error {
	manager.queueMu.Lock()
	defer manager.queueMu.Unlock()

	if len(manager.queue) == 0 {
		return nil
	}
	db, err := manager.db()
	if err != nil {
		return err
	}

	stateWrites := 0
	err = db.Update(func(txn *badger.Txn) error {
		for _, t := range manager.queue {
			if keys.IsStatefulKey(string(t.Key)) {
				stateWrites++
			}
			if t.Delete {
				if err := txn.Delete(t.Key); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(t.Key, t.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	manager.Logger.Debug("[db] flushed %d writes (%d state)", len(manager.queue), stateWrites)
	manager.queue = manager.queue[:0]
	return nil
}

// PendingWrites 队列中尚未落盘的条数
func (manager *Manager) PendingWrites() int {
	manager.queueMu.Lock()
	defer manager.queueMu.Unlock()
	return len(manager.queue)
}
