// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/luckpay/common/db"
	"github.com/33cn/luckpay/types"
)

// LocalDB local db for store key value in local
//
// 本地索引数据库只读视图，索引的写入统一走 ExecLocal 返回的 kv 集合，
// 由 Executor 在提交阶段批量落盘。
type LocalDB struct {
	db db.DB
}

// NewLocalDB new local db
func NewLocalDB(backend db.DB) db.KVDB {
	return &LocalDB{db: backend}
}

// Get get value from local db
func (l *LocalDB) Get(key []byte) ([]byte, error) {
	value := l.db.Get(key)
	if value == nil {
		return nil, types.ErrNotFound
	}
	return value, nil
}

// Set 索引不从这里写入
func (l *LocalDB) Set(key []byte, value []byte) error {
	return types.ErrActionNotSupport
}

// List 从数据库中查询数据列表
func (l *LocalDB) List(prefix, key []byte, count, direction int32) ([][]byte, error) {
	values := l.db.List(prefix, key, count, direction)
	if values == nil {
		return nil, types.ErrNotFound
	}
	return values, nil
}
