package executor

import (
	"fmt"

	"github.com/33cn/luckpay/account"
	dbm "github.com/33cn/luckpay/common/db"
	pt "github.com/33cn/luckpay/luckpay/types"
	"github.com/33cn/luckpay/types"
	log "github.com/inconshreveable/log15"
)

var glog = log.New("module", "execs.luckpay")

// LuckPay 执行器，实现 executor.Driver
type LuckPay struct {
	statedb   dbm.KV
	localdb   dbm.KVDB
	height    int64
	blocktime int64
	entropy   EntropySource
	authority string
}

// NewLuckPay new luckpay driver
// authority 为空时采用首个初始化调用者即权限方
func NewLuckPay(entropy EntropySource, authority string) *LuckPay {
	if entropy == nil {
		entropy = NewClockEntropy()
	}
	return &LuckPay{entropy: entropy, authority: authority}
}

// GetDriverName 驱动名
func (g *LuckPay) GetDriverName() string {
	return pt.LuckPayX
}

// SetEnv 设置执行环境
func (g *LuckPay) SetEnv(height, blocktime int64) {
	g.height = height
	g.blocktime = blocktime
}

// SetStateDB set statedb
func (g *LuckPay) SetStateDB(db dbm.KV) {
	g.statedb = db
}

// SetLocalDB set localdb
func (g *LuckPay) SetLocalDB(db dbm.KVDB) {
	g.localdb = db
}

// GetCoinsAccount 主币账户
func (g *LuckPay) GetCoinsAccount() *account.DB {
	return account.NewCoinsAccount().SetDB(g.statedb)
}

// Exec 执行一笔luckpay交易
func (g *LuckPay) Exec(tx *types.Transaction, index int) (*types.Receipt, error) {
	var action pt.LuckPayAction
	err := types.Decode(tx.Payload, &action)
	if err != nil {
		return nil, err
	}
	glog.Debug("exec LuckPay tx", "from", tx.From(), "ty", action.Ty)
	actiondb := NewAction(g, tx, index)
	switch action.Ty {
	case pt.LuckPayActionInitConfig:
		if action.GetInitConfig() != nil {
			return actiondb.ConfigInit(action.GetInitConfig())
		}
	case pt.LuckPayActionCreate:
		if action.GetCreate() != nil {
			return actiondb.GameCreate(action.GetCreate())
		}
	case pt.LuckPayActionRequestRandomness:
		if action.GetRequestRandomness() != nil {
			return actiondb.GameRequestRandomness(action.GetRequestRandomness())
		}
	case pt.LuckPayActionResolve:
		if action.GetResolve() != nil {
			return actiondb.GameResolve(action.GetResolve())
		}
	case pt.LuckPayActionClose:
		if action.GetClose() != nil {
			return actiondb.GameClose(action.GetClose())
		}
	}
	return nil, types.ErrActionNotSupport
}

// ExecLocal 维护本地状态、地址索引
func (g *LuckPay) ExecLocal(tx *types.Transaction, receipt *types.Receipt, index int) (*types.LocalDBSet, error) {
	var set types.LocalDBSet
	if receipt.Ty != types.ExecOk {
		return &set, nil
	}
	for i := 0; i < len(receipt.Logs); i++ {
		item := receipt.Logs[i]
		if isGameLog(item.Ty) {
			var gamelog pt.ReceiptLuckPayGame
			err := types.Decode(item.Log, &gamelog)
			if err != nil {
				panic(err) //数据错误了，已经被修改了
			}
			set.KV = append(set.KV, g.updateIndex(&gamelog)...)
		}
	}
	return &set, nil
}

// ExecDelLocal 回滚本地索引
func (g *LuckPay) ExecDelLocal(tx *types.Transaction, receipt *types.Receipt, index int) (*types.LocalDBSet, error) {
	var set types.LocalDBSet
	if receipt.Ty != types.ExecOk {
		return &set, nil
	}
	for i := 0; i < len(receipt.Logs); i++ {
		item := receipt.Logs[i]
		if isGameLog(item.Ty) {
			var gamelog pt.ReceiptLuckPayGame
			err := types.Decode(item.Log, &gamelog)
			if err != nil {
				panic(err) //数据错误了，已经被修改了
			}
			set.KV = append(set.KV, g.rollbackIndex(&gamelog)...)
		}
	}
	return &set, nil
}

func isGameLog(ty int64) bool {
	return ty == pt.TyLogLuckPayCreate || ty == pt.TyLogLuckPayRequest ||
		ty == pt.TyLogLuckPayResolve || ty == pt.TyLogLuckPayClose
}

// 状态变更时建立新状态的索引，同时删除旧状态的索引，以免形成脏数据。
// 关闭是终态且状态记录已删除，只清理旧索引，不再新建
func (g *LuckPay) updateIndex(log *pt.ReceiptLuckPayGame) (kvs []*types.KeyValue) {
	if log.Status != pt.StatusClosed {
		kvs = append(kvs, addGameStatusIndex(log.Status, log.Player, log.Index))
		kvs = append(kvs, addGameAddrIndex(log.Status, log.Player, log.Player, log.Index))
	}
	if log.PrevStatus > 0 {
		kvs = append(kvs, delGameStatusIndex(log.PrevStatus, log.PrevIndex))
		kvs = append(kvs, delGameAddrIndex(log.PrevStatus, log.Player, log.PrevIndex))
	}
	return kvs
}

// 回滚索引：删除本次Action产生的索引，恢复旧状态的索引
func (g *LuckPay) rollbackIndex(log *pt.ReceiptLuckPayGame) (kvs []*types.KeyValue) {
	if log.Status != pt.StatusClosed {
		kvs = append(kvs, delGameStatusIndex(log.Status, log.Index))
		kvs = append(kvs, delGameAddrIndex(log.Status, log.Player, log.Index))
	}
	if log.PrevStatus > 0 {
		kvs = append(kvs, addGameStatusIndex(log.PrevStatus, log.Player, log.PrevIndex))
		kvs = append(kvs, addGameAddrIndex(log.PrevStatus, log.Player, log.Player, log.PrevIndex))
	}
	return kvs
}

func calcGameStatusIndexKey(status int32, index int64) []byte {
	key := fmt.Sprintf("luckpay-status:%d:%018d", status, index)
	return []byte(key)
}

func calcGameStatusIndexPrefix(status int32) []byte {
	key := fmt.Sprintf("luckpay-status:%d:", status)
	return []byte(key)
}

func calcGameAddrIndexKey(status int32, addr string, index int64) []byte {
	key := fmt.Sprintf("luckpay-addr:%d:%s:%018d", status, addr, index)
	return []byte(key)
}

func calcGameAddrIndexPrefix(status int32, addr string) []byte {
	key := fmt.Sprintf("luckpay-addr:%d:%s:", status, addr)
	return []byte(key)
}

func addGameStatusIndex(status int32, player string, index int64) *types.KeyValue {
	record := &pt.GameRecord{
		Player: player,
		Index:  index,
	}
	return &types.KeyValue{
		Key:   calcGameStatusIndexKey(status, index),
		Value: types.Encode(record),
	}
}

func addGameAddrIndex(status int32, player, addr string, index int64) *types.KeyValue {
	record := &pt.GameRecord{
		Player: player,
		Index:  index,
	}
	return &types.KeyValue{
		Key:   calcGameAddrIndexKey(status, addr, index),
		Value: types.Encode(record),
	}
}

func delGameStatusIndex(status int32, index int64) *types.KeyValue {
	//value置nil,提交时，会自动执行删除操作
	return &types.KeyValue{
		Key:   calcGameStatusIndexKey(status, index),
		Value: nil,
	}
}

func delGameAddrIndex(status int32, addr string, index int64) *types.KeyValue {
	return &types.KeyValue{
		Key:   calcGameAddrIndexKey(status, addr, index),
		Value: nil,
	}
}
