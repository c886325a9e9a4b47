// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/luckpay/common/db"
	"github.com/33cn/luckpay/types"
)

// StateDB state db for store mavl
//
// 执行期间所有写入先进入 txcache，Commit 后合入 cache，
// Rollback 整体丢弃，保证一次执行要么全部可见要么完全不可见。
// value 为 nil 的写入是删除标记，Get 命中删除标记返回 ErrNotFound，
// 不会穿透到后端数据库。
type StateDB struct {
	db      db.DB
	cache   map[string][]byte
	txcache map[string][]byte
	keys    []string
	intx    bool
}

// NewStateDB new state db
func NewStateDB(backend db.DB) *StateDB {
	return &StateDB{
		cache: make(map[string][]byte),
		db:    backend,
	}
}

// Begin 开启内存事务处理
func (s *StateDB) Begin() {
	s.intx = true
	s.keys = nil
	s.txcache = nil
}

// Rollback reset tx
func (s *StateDB) Rollback() {
	s.resetTx()
}

// Commit cache tx
func (s *StateDB) Commit() {
	for k, v := range s.txcache {
		s.cache[k] = v
	}
	s.resetTx()
}

func (s *StateDB) resetTx() {
	s.intx = false
	s.txcache = nil
	s.keys = nil
}

// Get get value from state db
func (s *StateDB) Get(key []byte) ([]byte, error) {
	skey := string(key)
	if s.intx && s.txcache != nil {
		if value, ok := s.txcache[skey]; ok {
			if value == nil {
				return nil, types.ErrNotFound
			}
			return value, nil
		}
	}
	if value, ok := s.cache[skey]; ok {
		if value == nil {
			return nil, types.ErrNotFound
		}
		return value, nil
	}
	value := s.db.Get(key)
	if value == nil {
		return nil, types.ErrNotFound
	}
	//get 的值可以写入cache，因为没有对系统的值做修改
	s.cache[skey] = value
	return value, nil
}

// Set set key value to state db
func (s *StateDB) Set(key []byte, value []byte) error {
	skey := string(key)
	if s.intx {
		if s.txcache == nil {
			s.txcache = make(map[string][]byte)
		}
		s.keys = append(s.keys, skey)
		s.txcache[skey] = value
	} else {
		s.cache[skey] = value
	}
	return nil
}

// GetSetKeys get state db set keys
func (s *StateDB) GetSetKeys() (keys []string) {
	return s.keys
}

// BatchGet batch get keys from state db
func (s *StateDB) BatchGet(keys [][]byte) (values [][]byte, err error) {
	for _, key := range keys {
		v, err := s.Get(key)
		if err != nil && err != types.ErrNotFound {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
