package db

import (
	"errors"

	"github.com/dgraph-io/badger/v2"

	"vaultd/interfaces"
)

var ErrSessionDone = errors.New("session already committed or closed")

// dbSession 一个 badger 读写事务
type dbSession struct {
	manager *Manager
	txn     *badger.Txn
	done    bool
}

// NewSession 创建一个新的数据库会话
func (manager *Manager) NewSession() (interfaces.DBSession, error) {
	db, err := manager.db()
	if err != nil {
		return nil, err
	}
	return &dbSession{manager: manager, txn: db.NewTransaction(true)}, nil
}

func (s *dbSession) Get(key string) ([]byte, error) {
	if s.done {
		return nil, ErrSessionDone
	}
	item, err := s.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (s *dbSession) Set(key string, value []byte) error {
	if s.done {
		return ErrSessionDone
	}
	return s.txn.Set([]byte(key), value)
}

func (s *dbSession) Commit() error {
	if s.done {
		return ErrSessionDone
	}
	s.done = true
	return s.txn.Commit()
}

// Close 未提交的写入全部丢弃；重复调用无副作用
func (s *dbSession) Close() error {
	if !s.done {
		s.done = true
	}
	s.txn.Discard()
	return nil
}
