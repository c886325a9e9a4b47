// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"bytes"
	"path"

	log "github.com/inconshreveable/log15"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var llog = log.New("module", "db.goleveldb")

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoLevelDB(name, dir, cache)
	}
	registerDBCreator(GoLevelDBBackendStr, dbCreator, false)
}

// GoLevelDB db
type GoLevelDB struct {
	db *leveldb.DB
}

// NewGoLevelDB new
func NewGoLevelDB(name string, dir string, cache int) (*GoLevelDB, error) {
	dbPath := path.Join(dir, name+".db")
	if cache == 0 {
		cache = 64
	}
	handles := cache
	if handles < 16 {
		handles = 16
	}
	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(dbPath, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dbPath, nil)
	}
	if err != nil {
		return nil, err
	}
	return &GoLevelDB{db: db}, nil
}

// Get get
func (db *GoLevelDB) Get(key []byte) []byte {
	res, err := db.db.Get(key, nil)
	if err != nil {
		if err != errors.ErrNotFound {
			llog.Error("Get", "error", err)
		}
		return nil
	}
	return res
}

// Set set
func (db *GoLevelDB) Set(key []byte, value []byte) {
	err := db.db.Put(key, value, nil)
	if err != nil {
		llog.Error("Set", "error", err)
	}
}

// SetSync 同步落盘
func (db *GoLevelDB) SetSync(key []byte, value []byte) {
	err := db.db.Put(key, value, &opt.WriteOptions{Sync: true})
	if err != nil {
		llog.Error("SetSync", "error", err)
	}
}

// Delete delete
func (db *GoLevelDB) Delete(key []byte) {
	err := db.db.Delete(key, nil)
	if err != nil {
		llog.Error("Delete", "error", err)
	}
}

// DeleteSync delete
func (db *GoLevelDB) DeleteSync(key []byte) {
	err := db.db.Delete(key, &opt.WriteOptions{Sync: true})
	if err != nil {
		llog.Error("DeleteSync", "error", err)
	}
}

// Close close
func (db *GoLevelDB) Close() {
	db.db.Close()
}

// PrefixScan 前缀扫描
func (db *GoLevelDB) PrefixScan(prefix []byte) (values [][]byte) {
	iter := db.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()
	for iter.Next() {
		values = append(values, cloneByte(iter.Value()))
	}
	if iter.Error() != nil {
		llog.Error("PrefixScan", "error", iter.Error())
		return nil
	}
	return values
}

// List 分页查询，key 为上一页最后一条记录的 key（不包含），为空则从头/尾开始
func (db *GoLevelDB) List(prefix, key []byte, count, direction int32) (values [][]byte) {
	iter := db.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var ok bool
	if len(key) == 0 {
		if direction == ListASC {
			ok = iter.First()
		} else {
			ok = iter.Last()
		}
	} else {
		ok = iter.Seek(key)
		if direction == ListASC {
			//Seek 定位到 >= key 的第一条，翻页时 key 本身不包含
			if ok && bytes.Equal(iter.Key(), key) {
				ok = iter.Next()
			}
		} else {
			if !ok {
				ok = iter.Last()
			} else {
				ok = iter.Prev()
			}
		}
	}
	for ; ok; ok = db.step(iter, direction) {
		values = append(values, cloneByte(iter.Value()))
		if count > 0 && int32(len(values)) >= count {
			break
		}
	}
	if iter.Error() != nil {
		llog.Error("List", "error", iter.Error())
		return nil
	}
	return values
}

func (db *GoLevelDB) step(iter iterator.Iterator, direction int32) bool {
	if direction == ListASC {
		return iter.Next()
	}
	return iter.Prev()
}

type goLevelDBBatch struct {
	db    *GoLevelDB
	batch *leveldb.Batch
	wop   *opt.WriteOptions
}

// NewBatch new
func (db *GoLevelDB) NewBatch(sync bool) Batch {
	batch := new(leveldb.Batch)
	wop := &opt.WriteOptions{Sync: sync}
	return &goLevelDBBatch{db, batch, wop}
}

func (b *goLevelDBBatch) Set(key, value []byte) {
	b.batch.Put(key, value)
}

func (b *goLevelDBBatch) Delete(key []byte) {
	b.batch.Delete(key)
}

func (b *goLevelDBBatch) Write() {
	err := b.db.db.Write(b.batch, b.wop)
	if err != nil {
		llog.Error("Write", "error", err)
	}
}
