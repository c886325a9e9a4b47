// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor 单节点执行框架：把一笔交易当成一个原子提交单元执行。
// 执行成功时回执 kv 与本地索引 kv 一起落盘，执行失败时不留任何可见变更。
package executor

import (
	"sync"
	"time"

	"github.com/33cn/luckpay/common/db"
	"github.com/33cn/luckpay/types"
	log "github.com/inconshreveable/log15"
)

var elog = log.New("module", "executor")

var execHeightKey = []byte("mavl-exec-height")

// Driver 合约驱动接口
type Driver interface {
	GetDriverName() string
	SetEnv(height, blocktime int64)
	SetStateDB(db.KV)
	SetLocalDB(db.KVDB)
	Exec(tx *types.Transaction, index int) (*types.Receipt, error)
	ExecLocal(tx *types.Transaction, receipt *types.Receipt, index int) (*types.LocalDBSet, error)
	ExecDelLocal(tx *types.Transaction, receipt *types.Receipt, index int) (*types.LocalDBSet, error)
	Query(funcName string, params []byte) (interface{}, error)
}

// Executor 把交易串行执行在共享状态上。
// 同一个游戏上的并发提交在这里被序列化，先提交者生效，
// 后提交者在状态检查处失败且不产生任何变更。
type Executor struct {
	mu      sync.Mutex
	stateDB db.DB
	localDB db.DB
	driver  Driver
	height  int64
}

// New new executor
func New(stateDB, localDB db.DB, driver Driver) *Executor {
	e := &Executor{
		stateDB: stateDB,
		localDB: localDB,
		driver:  driver,
	}
	e.height = e.loadHeight()
	return e
}

func (e *Executor) loadHeight() int64 {
	value := e.stateDB.Get(execHeightKey)
	if value == nil {
		return 0
	}
	var height int64
	err := types.Decode(value, &height)
	if err != nil {
		panic(err) //数据错误了，已经被修改了
	}
	return height
}

// Execute 执行一笔交易：要么回执里的全部变更落盘，要么零变更
func (e *Executor) Execute(tx *types.Transaction) (*types.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.height++
	blocktime := time.Now().Unix()

	statedb := NewStateDB(e.stateDB)
	statedb.Begin()
	e.driver.SetEnv(e.height, blocktime)
	e.driver.SetStateDB(statedb)
	e.driver.SetLocalDB(NewLocalDB(e.localDB))

	receipt, err := e.driver.Exec(tx, 0)
	if err != nil {
		statedb.Rollback()
		e.height--
		return nil, err
	}
	statedb.Commit()

	batch := e.stateDB.NewBatch(true)
	for _, kv := range receipt.KV {
		if kv.Value == nil {
			batch.Delete(kv.Key)
		} else {
			batch.Set(kv.Key, kv.Value)
		}
	}
	batch.Set(execHeightKey, types.Encode(e.height))
	batch.Write()

	set, err := e.driver.ExecLocal(tx, receipt, 0)
	if err != nil {
		//状态已经提交，索引失败只记日志，业务数据以状态数据库为准
		elog.Error("Execute.ExecLocal", "height", e.height, "err", err)
		return receipt, nil
	}
	if set != nil && len(set.KV) > 0 {
		lbatch := e.localDB.NewBatch(true)
		for _, kv := range set.KV {
			if kv.Value == nil {
				lbatch.Delete(kv.Key)
			} else {
				lbatch.Set(kv.Key, kv.Value)
			}
		}
		lbatch.Write()
	}
	return receipt, nil
}

// Query 查询接口，和交易执行在同一把锁下，读到的是已提交状态
func (e *Executor) Query(funcName string, params []byte) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	statedb := NewStateDB(e.stateDB)
	e.driver.SetEnv(e.height, time.Now().Unix())
	e.driver.SetStateDB(statedb)
	e.driver.SetLocalDB(NewLocalDB(e.localDB))
	return e.driver.Query(funcName, params)
}

// Height 当前执行高度
func (e *Executor) Height() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.height
}
