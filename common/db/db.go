// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"
)

// KV 状态数据库的最小接口
type KV interface {
	Get(key []byte) (value []byte, err error)
	Set(key []byte, value []byte) (err error)
}

// Lister 本地索引数据库的分页查询接口
type Lister interface {
	List(prefix, key []byte, count, direction int32) (values [][]byte, err error)
}

// KVDB kv db
type KVDB interface {
	KV
	Lister
}

// DB 后端存储接口
type DB interface {
	Get([]byte) []byte
	Set([]byte, []byte)
	SetSync([]byte, []byte)
	Delete([]byte)
	DeleteSync([]byte)
	Close()
	NewBatch(sync bool) Batch
	PrefixScan(prefix []byte) [][]byte
	List(prefix, key []byte, count, direction int32) (values [][]byte)
}

// Batch batch
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Write()
}

// const
const (
	ListDESC = int32(0)
	ListASC  = int32(1)

	GoLevelDBBackendStr = "goleveldb"
	MemDBBackendStr     = "memdb"
)

type dbCreator func(name string, dir string, cache int) (DB, error)

var backends = map[string]dbCreator{}

func registerDBCreator(backend string, creator dbCreator, force bool) {
	_, ok := backends[backend]
	if !force && ok {
		return
	}
	backends[backend] = creator
}

// NewDB new
func NewDB(name string, backend string, dir string, cache int) DB {
	dbCreator, ok := backends[backend]
	if !ok {
		fmt.Printf("Error initializing DB: %v\n", backend)
		panic("initializing DB error")
	}
	db, err := dbCreator(name, dir, cache)
	if err != nil {
		fmt.Printf("Error initializing DB: %v\n", err)
		panic("initializing DB error")
	}
	return db
}
