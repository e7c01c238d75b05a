package db

import (
	"github.com/dgraph-io/badger/v2"

	"vaultd/interfaces"
)

// Scan 返回 prefix 下所有键值对
func (manager *Manager) Scan(prefix string) (map[string][]byte, error) {
	db, err := manager.db()
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte)

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScanFrom 有序扫描；start 为空时从 prefix 开头，limit<=0 表示不限
func (manager *Manager) ScanFrom(prefix, start string, limit int) ([]interfaces.KV, error) {
	db, err := manager.db()
	if err != nil {
		return nil, err
	}
	if start == "" || start < prefix {
		start = prefix
	}

	var out []interfaces.KV
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek([]byte(start)); it.ValidForPrefix(p); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, interfaces.KV{Key: string(item.KeyCopy(nil)), Value: v})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
