package types

import (
	"math/rand"
	"time"

	"github.com/33cn/luckpay/types"
	log "github.com/inconshreveable/log15"
)

var tlog = log.New("module", LuckPayX)

// CreateRawInitConfigTx 构造初始化配置交易
func CreateRawInitConfigTx(from string, parm *LuckPayInitConfig) (*types.Transaction, error) {
	if parm == nil {
		tlog.Error("CreateRawInitConfigTx", "parm", parm)
		return nil, types.ErrInvalidParam
	}
	action := &LuckPayAction{
		Ty:         LuckPayActionInitConfig,
		InitConfig: parm,
	}
	return newTx(from, action), nil
}

// CreateRawCreateGameTx 构造创建游戏交易
func CreateRawCreateGameTx(from string, parm *LuckPayCreate) (*types.Transaction, error) {
	if parm == nil {
		tlog.Error("CreateRawCreateGameTx", "parm", parm)
		return nil, types.ErrInvalidParam
	}
	action := &LuckPayAction{
		Ty:     LuckPayActionCreate,
		Create: parm,
	}
	return newTx(from, action), nil
}

// CreateRawRequestRandomnessTx 构造请求随机数交易
func CreateRawRequestRandomnessTx(from string) (*types.Transaction, error) {
	action := &LuckPayAction{
		Ty:                LuckPayActionRequestRandomness,
		RequestRandomness: &LuckPayRequestRandomness{},
	}
	return newTx(from, action), nil
}

// CreateRawResolveGameTx 构造开奖交易
func CreateRawResolveGameTx(from string, parm *LuckPayResolve) (*types.Transaction, error) {
	if parm == nil || parm.Player == "" {
		tlog.Error("CreateRawResolveGameTx", "parm", parm)
		return nil, types.ErrInvalidParam
	}
	action := &LuckPayAction{
		Ty:      LuckPayActionResolve,
		Resolve: parm,
	}
	return newTx(from, action), nil
}

// CreateRawCloseGameTx 构造关闭游戏交易
func CreateRawCloseGameTx(from string) (*types.Transaction, error) {
	action := &LuckPayAction{
		Ty:    LuckPayActionClose,
		Close: &LuckPayClose{},
	}
	return newTx(from, action), nil
}

func newTx(from string, action *LuckPayAction) *types.Transaction {
	return &types.Transaction{
		Execer:  ExecerLuckPay,
		Payload: types.Encode(action),
		Nonce:   rand.New(rand.NewSource(time.Now().UnixNano())).Int63(),
		Sender:  from,
	}
}
