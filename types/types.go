// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types 执行框架的公共类型：交易、回执、KV集合、账户
package types

import (
	"encoding/json"

	"github.com/33cn/luckpay/common"
)

// Coin 1e8 为一个币的最小精度单位
const (
	Coin            int64 = 1e8
	MaxCoin         int64 = 1e17
	MaxTxsPerBlock  int64 = 100000
	MaxTokenBalance int64 = 900 * 1e8 * Coin
)

// Receipt.Ty 执行结果
const (
	ExecErr  = int32(0)
	ExecPack = int32(1)
	ExecOk   = int32(2)
)

// 系统级 receipt log 类型，合约自定义类型从 LogReserved 开始
const (
	TyLogErr      = int64(1)
	TyLogFee      = int64(2)
	TyLogTransfer = int64(3)
	TyLogGenesis  = int64(4)
	TyLogDeposit  = int64(5)
	LogReserved   = int64(100)
)

// Transaction 一次外部提交的原子操作。签名校验由外部账本完成，
// Sender 是已通过校验的调用方地址
type Transaction struct {
	Execer  []byte `json:"execer"`
	Payload []byte `json:"payload"`
	Nonce   int64  `json:"nonce"`
	Sender  string `json:"sender"`
}

// From 调用方地址
func (tx *Transaction) From() string {
	return tx.Sender
}

// Hash 交易哈希
func (tx *Transaction) Hash() []byte {
	copytx := *tx
	data := Encode(&copytx)
	return common.Sha256(data)
}

// KeyValue kv结构，Value 为 nil 表示提交时删除该 key
type KeyValue struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}

// GetKey get
func (kv *KeyValue) GetKey() []byte {
	if kv != nil {
		return kv.Key
	}
	return nil
}

// ReceiptLog 合约执行日志
type ReceiptLog struct {
	Ty  int64  `json:"ty"`
	Log []byte `json:"log"`
}

// Receipt 一次执行的全部状态变更与日志，要么整体生效要么整体丢弃
type Receipt struct {
	Ty   int32         `json:"ty"`
	KV   []*KeyValue   `json:"kv"`
	Logs []*ReceiptLog `json:"logs"`
}

// LocalDBSet 本地索引数据库的变更集合
type LocalDBSet struct {
	KV []*KeyValue `json:"kv"`
}

// Account 账户
type Account struct {
	Balance int64  `json:"balance"`
	Addr    string `json:"addr"`
}

// GetBalance get
func (acc *Account) GetBalance() int64 {
	if acc != nil {
		return acc.Balance
	}
	return 0
}

// ReceiptAccountTransfer 转账前后的账户快照
type ReceiptAccountTransfer struct {
	Prev    *Account `json:"prev"`
	Current *Account `json:"current"`
}

// Encode 编码状态数据，编码失败说明数据结构已经损坏
func Encode(data interface{}) []byte {
	v, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return v
}

// Decode 解码
func Decode(data []byte, msg interface{}) error {
	return json.Unmarshal(data, msg)
}

// CheckAmount 金额合法性
func CheckAmount(amount int64) bool {
	if amount <= 0 || amount >= MaxCoin {
		return false
	}
	return true
}
