// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"sort"
	"strings"
	"sync"

	log "github.com/inconshreveable/log15"
)

var mlog = log.New("module", "db.memdb")

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoMemDB(name, dir, cache)
	}
	registerDBCreator(MemDBBackendStr, dbCreator, false)
}

// GoMemDB 内存数据库，测试和开发模式使用
type GoMemDB struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// NewGoMemDB new
func NewGoMemDB(name string, dir string, cache int) (*GoMemDB, error) {
	return &GoMemDB{
		db: make(map[string][]byte),
	}, nil
}

// Get get
func (db *GoMemDB) Get(key []byte) []byte {
	db.lock.RLock()
	defer db.lock.RUnlock()

	if entry, ok := db.db[string(key)]; ok {
		return cloneByte(entry)
	}
	return nil
}

// Set set
func (db *GoMemDB) Set(key []byte, value []byte) {
	db.lock.Lock()
	defer db.lock.Unlock()

	db.db[string(key)] = cloneByte(value)
}

// SetSync 内存数据库无需区分同步与异步操作
func (db *GoMemDB) SetSync(key []byte, value []byte) {
	db.Set(key, value)
}

// Delete delete
func (db *GoMemDB) Delete(key []byte) {
	db.lock.Lock()
	defer db.lock.Unlock()

	delete(db.db, string(key))
}

// DeleteSync delete
func (db *GoMemDB) DeleteSync(key []byte) {
	db.Delete(key)
}

// Close close
func (db *GoMemDB) Close() {
}

// PrefixScan 前缀扫描
func (db *GoMemDB) PrefixScan(prefix []byte) (values [][]byte) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	for _, k := range db.sortedKeys(prefix) {
		values = append(values, cloneByte(db.db[k]))
	}
	return values
}

// List 分页查询，key 为上一页最后一条记录的 key（不包含），为空则从头/尾开始
func (db *GoMemDB) List(prefix, key []byte, count, direction int32) (values [][]byte) {
	db.lock.RLock()
	defer db.lock.RUnlock()

	keys := db.sortedKeys(prefix)
	if direction == ListDESC {
		//反向遍历
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	start := 0
	if len(key) != 0 {
		start = len(keys)
		for i, k := range keys {
			if strings.Compare(k, string(key)) == 0 {
				start = i + 1
				break
			}
		}
	}
	for i := start; i < len(keys); i++ {
		values = append(values, cloneByte(db.db[keys[i]]))
		if count > 0 && int32(len(values)) >= count {
			break
		}
	}
	return values
}

func (db *GoMemDB) sortedKeys(prefix []byte) []string {
	var keys []string
	for k := range db.db {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

type kv struct{ k, v []byte }

type memBatch struct {
	db     *GoMemDB
	writes []kv
}

// NewBatch new
func (db *GoMemDB) NewBatch(sync bool) Batch {
	return &memBatch{db: db}
}

func (b *memBatch) Set(key, value []byte) {
	b.writes = append(b.writes, kv{cloneByte(key), cloneByte(value)})
}

func (b *memBatch) Delete(key []byte) {
	b.writes = append(b.writes, kv{cloneByte(key), nil})
}

func (b *memBatch) Write() {
	for _, kv := range b.writes {
		if kv.v == nil {
			b.db.Delete(kv.k)
		} else {
			b.db.Set(kv.k, kv.v)
		}
	}
}

func cloneByte(b []byte) []byte {
	if b == nil {
		return nil
	}
	value := make([]byte, len(b))
	copy(value, b)
	return value
}
