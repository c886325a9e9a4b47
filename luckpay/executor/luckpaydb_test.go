package executor

import (
	"testing"

	"github.com/33cn/luckpay/account"
	"github.com/33cn/luckpay/common/address"
	dbm "github.com/33cn/luckpay/common/db"
	frame "github.com/33cn/luckpay/executor"
	pt "github.com/33cn/luckpay/luckpay/types"
	"github.com/33cn/luckpay/types"
	"github.com/stretchr/testify/require"
)

var (
	addrPlayer = address.PubKeyToAddress([]byte("luckpay-test-player")).String()
	addrRecv   = address.PubKeyToAddress([]byte("luckpay-test-recipient")).String()
	addrOther  = address.PubKeyToAddress([]byte("luckpay-test-other")).String()
)

// 固定熵源，让胜负在测试里可控
type fixedEntropy struct {
	value byte
}

func (f *fixedEntropy) Snapshot(height, blocktime int64) uint64 {
	return uint64(height)
}

func (f *fixedEntropy) Sample(snapshot uint64, height, blocktime, stake int64) byte {
	return f.value
}

type testEnv struct {
	exec     *frame.Executor
	entropy  *fixedEntropy
	treasury string
}

func newTestEnv(t *testing.T, authority string, treasuryFund int64) *testEnv {
	stateDB := dbm.NewDB("state", dbm.MemDBBackendStr, "", 16)
	localDB := dbm.NewDB("local", dbm.MemDBBackendStr, "", 16)
	entropy := &fixedEntropy{}
	driver := NewLuckPay(entropy, authority)

	acc := account.NewCoinsAccount()
	treasury := address.ExecAddress(pt.LuckPayX)
	fund := func(addr string, amount int64) {
		stateDB.Set(acc.AccountKey(addr),
			types.Encode(&types.Account{Balance: amount, Addr: addr}))
	}
	fund(addrPlayer, 1000*types.Coin)
	fund(addrOther, 1000*types.Coin)
	if treasuryFund > 0 {
		fund(treasury, treasuryFund)
	}
	return &testEnv{
		exec:     frame.New(stateDB, localDB, driver),
		entropy:  entropy,
		treasury: treasury,
	}
}

func (e *testEnv) balance(t *testing.T, addr string) int64 {
	reply, err := e.exec.Query(FuncNameQueryBalance,
		types.Encode(&pt.QueryLuckPayBalance{Addr: addr}))
	require.NoError(t, err)
	return reply.(*types.Account).GetBalance()
}

func (e *testEnv) game(t *testing.T, player string) *pt.LuckPayGame {
	reply, err := e.exec.Query(FuncNameQueryGameByPlayer,
		types.Encode(&pt.QueryLuckPayGame{Player: player}))
	require.NoError(t, err)
	return reply.(*pt.ReplyLuckPayGame).Game
}

func (e *testEnv) config(t *testing.T) *pt.LuckPayConfig {
	reply, err := e.exec.Query(FuncNameQueryConfig, types.Encode(&struct{}{}))
	require.NoError(t, err)
	return reply.(*pt.LuckPayConfig)
}

func (e *testEnv) initConfig(t *testing.T, from string, maxBet int64) {
	tx, err := pt.CreateRawInitConfigTx(from, &pt.LuckPayInitConfig{MaxBetAmount: maxBet})
	require.NoError(t, err)
	_, err = e.exec.Execute(tx)
	require.NoError(t, err)
}

func (e *testEnv) create(from string, stake int64, risk uint32) error {
	tx, _ := pt.CreateRawCreateGameTx(from, &pt.LuckPayCreate{
		StakeAmount: stake,
		Recipient:   addrRecv,
		Choice:      pt.CoinSideHeads,
		RiskParam:   risk,
	})
	_, err := e.exec.Execute(tx)
	return err
}

func (e *testEnv) request(from string) error {
	tx, _ := pt.CreateRawRequestRandomnessTx(from)
	_, err := e.exec.Execute(tx)
	return err
}

func (e *testEnv) resolve(from, player string) (*types.Receipt, error) {
	tx, _ := pt.CreateRawResolveGameTx(from, &pt.LuckPayResolve{Player: player})
	return e.exec.Execute(tx)
}

func (e *testEnv) close(from string) error {
	tx, _ := pt.CreateRawCloseGameTx(from)
	_, err := e.exec.Execute(tx)
	return err
}

func TestGameLifecycleWin(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)

	stake := 100 * types.Coin
	require.NoError(t, env.create(addrPlayer, stake, 80))
	require.Equal(t, 800*types.Coin, env.balance(t, addrPlayer))
	require.Equal(t, 10200*types.Coin, env.balance(t, env.treasury))
	require.Equal(t, pt.StatusCreated, env.game(t, addrPlayer).Status)

	require.NoError(t, env.request(addrPlayer))
	game := env.game(t, addrPlayer)
	require.Equal(t, pt.StatusRandomnessRequested, game.Status)
	require.NotNil(t, game.EntropySnapshot)

	//风险80阈值151，强制随机字节10必赢
	env.entropy.value = 10
	receipt, err := env.resolve(addrOther, addrPlayer)
	require.NoError(t, err)
	require.Equal(t, int32(types.ExecOk), receipt.Ty)

	game = env.game(t, addrPlayer)
	require.Equal(t, pt.StatusResolved, game.Status)
	require.NotNil(t, game.Result)
	require.True(t, game.Result.PlayerWon)
	require.Equal(t, uint8(10), game.Result.RandomValue)
	require.Equal(t, pt.CoinSideHeads, game.Result.CoinFace)

	//赢局：玩家拿回2×押金，收款人拿1×押金，国库净出1×押金
	require.Equal(t, 1000*types.Coin, env.balance(t, addrPlayer))
	require.Equal(t, 100*types.Coin, env.balance(t, addrRecv))
	require.Equal(t, 9900*types.Coin, env.balance(t, env.treasury))

	cfg := env.config(t)
	require.Equal(t, uint64(1), cfg.TotalGames)
	require.Equal(t, uint64(stake), cfg.TotalVolume)
}

func TestGameLifecycleLose(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)

	stake := 100 * types.Coin
	require.NoError(t, env.create(addrPlayer, stake, 60))
	require.NoError(t, env.request(addrPlayer))

	//风险60阈值121，强制随机字节201必输
	env.entropy.value = 201
	receipt, err := env.resolve(addrOther, addrPlayer)
	require.NoError(t, err)

	var feeLogs int
	for _, l := range receipt.Logs {
		if l.Ty == pt.TyLogLuckPayFeeAccrual {
			var fee pt.ReceiptLuckPayFee
			require.NoError(t, types.Decode(l.Log, &fee))
			require.Equal(t, addrPlayer, fee.Player)
			require.Equal(t, stake, fee.Amount)
			feeLogs++
		}
	}
	require.Equal(t, 1, feeLogs)

	game := env.game(t, addrPlayer)
	require.False(t, game.Result.PlayerWon)
	require.Equal(t, pt.CoinSideTails, game.Result.CoinFace)

	//输局：收款人仍拿1×押金，国库净收1×押金作协议费
	require.Equal(t, 800*types.Coin, env.balance(t, addrPlayer))
	require.Equal(t, 100*types.Coin, env.balance(t, addrRecv))
	require.Equal(t, 10100*types.Coin, env.balance(t, env.treasury))
}

func TestInitConfig(t *testing.T) {
	env := newTestEnv(t, "", 0)
	//未初始化前不能创建游戏
	require.Equal(t, pt.ErrConfigNotFound, env.create(addrPlayer, types.Coin, 50))

	env.initConfig(t, addrOther, 200*types.Coin)
	cfg := env.config(t)
	require.Equal(t, addrOther, cfg.Authority)
	require.Equal(t, pt.HouseEdgeBP, cfg.HouseEdgeBP)
	require.Equal(t, 200*types.Coin, cfg.MaxBetAmount)

	//重复初始化
	tx, _ := pt.CreateRawInitConfigTx(addrOther, &pt.LuckPayInitConfig{MaxBetAmount: types.Coin})
	_, err := env.exec.Execute(tx)
	require.Equal(t, pt.ErrConfigExists, err)
}

func TestInitConfigAuthority(t *testing.T) {
	env := newTestEnv(t, addrOther, 0)
	tx, _ := pt.CreateRawInitConfigTx(addrPlayer, &pt.LuckPayInitConfig{MaxBetAmount: types.Coin})
	_, err := env.exec.Execute(tx)
	require.Equal(t, pt.ErrInitConfigAddr, err)
	env.initConfig(t, addrOther, types.Coin)
}

func TestCreateValidation(t *testing.T) {
	env := newTestEnv(t, "", 0)
	env.initConfig(t, addrOther, 200*types.Coin)

	require.Equal(t, pt.ErrInvalidBetAmount, env.create(addrPlayer, 0, 50))
	require.Equal(t, pt.ErrInvalidBetAmount, env.create(addrPlayer, -types.Coin, 50))
	require.Equal(t, pt.ErrBetTooHigh, env.create(addrPlayer, 200*types.Coin+1, 50))

	//非法收款地址
	tx, _ := pt.CreateRawCreateGameTx(addrPlayer, &pt.LuckPayCreate{
		StakeAmount: types.Coin,
		Recipient:   "not-an-address",
		Choice:      pt.CoinSideHeads,
	})
	_, err := env.exec.Execute(tx)
	require.Equal(t, types.ErrInvalidParam, err)

	//非法硬币面
	tx, _ = pt.CreateRawCreateGameTx(addrPlayer, &pt.LuckPayCreate{
		StakeAmount: types.Coin,
		Recipient:   addrRecv,
		Choice:      2,
	})
	_, err = env.exec.Execute(tx)
	require.Equal(t, types.ErrInvalidParam, err)

	//上限押注本身合法
	require.NoError(t, env.create(addrPlayer, 200*types.Coin, 50))
	//一个玩家同时只能有一局
	require.Equal(t, pt.ErrGameExists, env.create(addrPlayer, types.Coin, 50))

	//余额不足
	require.Error(t, env.create(addrOther, 200*types.Coin, 50))
}

func TestStateMachineOrder(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)
	require.NoError(t, env.create(addrPlayer, 100*types.Coin, 80))

	//Created状态下不能开奖也不能关闭
	_, err := env.resolve(addrOther, addrPlayer)
	require.Equal(t, pt.ErrInvalidGameState, err)
	require.Equal(t, pt.ErrInvalidGameState, env.close(addrPlayer))

	//非玩家请求随机数找不到游戏
	require.Equal(t, pt.ErrGameNotFound, env.request(addrOther))

	require.NoError(t, env.request(addrPlayer))
	//重复请求
	require.Equal(t, pt.ErrInvalidGameState, env.request(addrPlayer))

	env.entropy.value = 10
	_, err = env.resolve(addrOther, addrPlayer)
	require.NoError(t, err)
	//重复开奖
	_, err = env.resolve(addrOther, addrPlayer)
	require.Equal(t, pt.ErrInvalidGameState, err)

	require.NoError(t, env.close(addrPlayer))
	//关闭后游戏记录已删除
	_, err = env.exec.Query(FuncNameQueryGameByPlayer,
		types.Encode(&pt.QueryLuckPayGame{Player: addrPlayer}))
	require.Equal(t, pt.ErrGameNotFound, err)
	//重复关闭
	require.Equal(t, pt.ErrGameNotFound, env.close(addrPlayer))

	//关闭后可以再开新局
	require.NoError(t, env.create(addrPlayer, 50*types.Coin, 50))
}

func TestResolveInsufficientTreasury(t *testing.T) {
	//国库不预注资，只有本局锁定的2×押金
	env := newTestEnv(t, "", 0)
	env.initConfig(t, addrOther, 200*types.Coin)
	require.NoError(t, env.create(addrPlayer, 100*types.Coin, 80))
	require.NoError(t, env.request(addrPlayer))

	//赢局需要赔付3×押金，国库只有2×押金
	env.entropy.value = 10
	_, err := env.resolve(addrOther, addrPlayer)
	require.Equal(t, pt.ErrInsufficientEscrowBalance, err)

	//校验失败不发生任何转账，游戏停在当前状态可以重试
	require.Equal(t, pt.StatusRandomnessRequested, env.game(t, addrPlayer).Status)
	require.Equal(t, 800*types.Coin, env.balance(t, addrPlayer))
	require.Equal(t, int64(0), env.balance(t, addrRecv))
	require.Equal(t, 200*types.Coin, env.balance(t, env.treasury))

	//输局赔付1×押金，国库足够
	env.entropy.value = 201
	_, err = env.resolve(addrOther, addrPlayer)
	require.NoError(t, err)
	require.Equal(t, 100*types.Coin, env.balance(t, addrRecv))
	require.Equal(t, 100*types.Coin, env.balance(t, env.treasury))
}

func TestStatsAccumulate(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)

	stakes := []int64{30 * types.Coin, 70 * types.Coin}
	env.entropy.value = 201
	for _, stake := range stakes {
		require.NoError(t, env.create(addrPlayer, stake, 50))
		require.NoError(t, env.request(addrPlayer))
		_, err := env.resolve(addrOther, addrPlayer)
		require.NoError(t, err)
		require.NoError(t, env.close(addrPlayer))
	}
	cfg := env.config(t)
	require.Equal(t, uint64(2), cfg.TotalGames)
	require.Equal(t, uint64(100*types.Coin), cfg.TotalVolume)
}

func TestQueryGameList(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)
	require.NoError(t, env.create(addrPlayer, 10*types.Coin, 50))
	require.NoError(t, env.create(addrOther, 20*types.Coin, 50))

	reply, err := env.exec.Query(FuncNameQueryGameListByStatus,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{Status: pt.StatusCreated}))
	require.NoError(t, err)
	games := reply.(*pt.ReplyLuckPayList).Games
	require.Len(t, games, 2)

	//按地址过滤
	reply, err = env.exec.Query(FuncNameQueryGameListByStatusAndAddr,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{
			Status:  pt.StatusCreated,
			Address: addrPlayer,
		}))
	require.NoError(t, err)
	games = reply.(*pt.ReplyLuckPayList).Games
	require.Len(t, games, 1)
	require.Equal(t, addrPlayer, games[0].Player)

	//状态迁移后旧状态索引被清理
	require.NoError(t, env.request(addrPlayer))
	reply, err = env.exec.Query(FuncNameQueryGameListByStatus,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{Status: pt.StatusCreated}))
	require.NoError(t, err)
	require.Len(t, reply.(*pt.ReplyLuckPayList).Games, 1)

	reply, err = env.exec.Query(FuncNameQueryGameListByStatus,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{Status: pt.StatusRandomnessRequested}))
	require.NoError(t, err)
	games = reply.(*pt.ReplyLuckPayList).Games
	require.Len(t, games, 1)
	require.Equal(t, addrPlayer, games[0].Player)
}

func TestEntropySnapshotSetOnce(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)
	require.NoError(t, env.create(addrPlayer, 100*types.Coin, 50))
	require.NoError(t, env.request(addrPlayer))

	snap := env.game(t, addrPlayer).EntropySnapshot
	require.NotNil(t, snap)

	//重复请求被状态机拒绝，快照保持不变
	require.Equal(t, pt.ErrInvalidGameState, env.request(addrPlayer))
	require.Equal(t, *snap, *env.game(t, addrPlayer).EntropySnapshot)
}

func TestCreateRecipientTreasury(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)

	//国库地址本身是合法地址，但作为收款人会让赔付变成自转账
	tx, _ := pt.CreateRawCreateGameTx(addrPlayer, &pt.LuckPayCreate{
		StakeAmount: 100 * types.Coin,
		Recipient:   env.treasury,
		Choice:      pt.CoinSideHeads,
		RiskParam:   50,
	})
	_, err := env.exec.Execute(tx)
	require.Equal(t, types.ErrSendSameToRecv, err)

	//拒绝发生在锁定资金之前，没有游戏被创建
	require.Equal(t, 1000*types.Coin, env.balance(t, addrPlayer))
	require.Equal(t, 10000*types.Coin, env.balance(t, env.treasury))
	_, err = env.exec.Query(FuncNameQueryGameByPlayer,
		types.Encode(&pt.QueryLuckPayGame{Player: addrPlayer}))
	require.Equal(t, pt.ErrGameNotFound, err)

	//收款人是玩家自己仍然允许，能走完整个生命周期
	tx, _ = pt.CreateRawCreateGameTx(addrPlayer, &pt.LuckPayCreate{
		StakeAmount: 100 * types.Coin,
		Recipient:   addrPlayer,
		Choice:      pt.CoinSideHeads,
		RiskParam:   80,
	})
	_, err = env.exec.Execute(tx)
	require.NoError(t, err)
	require.NoError(t, env.request(addrPlayer))
	env.entropy.value = 10
	_, err = env.resolve(addrOther, addrPlayer)
	require.NoError(t, err)
	//赢局：1×押金退给收款人（玩家）+ 2×押金赢金
	require.Equal(t, 1100*types.Coin, env.balance(t, addrPlayer))
}

func TestCloseReclaimsIndex(t *testing.T) {
	env := newTestEnv(t, "", 10000*types.Coin)
	env.initConfig(t, addrOther, 200*types.Coin)
	require.NoError(t, env.create(addrPlayer, 100*types.Coin, 50))
	require.NoError(t, env.request(addrPlayer))
	env.entropy.value = 201
	_, err := env.resolve(addrOther, addrPlayer)
	require.NoError(t, err)
	require.NoError(t, env.close(addrPlayer))

	//关闭回收游戏记录的同时回收索引，不留无法解析的死索引
	_, err = env.exec.Query(FuncNameQueryGameListByStatus,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{Status: pt.StatusClosed}))
	require.Equal(t, types.ErrNotFound, err)
	_, err = env.exec.Query(FuncNameQueryGameListByStatus,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{Status: pt.StatusResolved}))
	require.Equal(t, types.ErrNotFound, err)
	_, err = env.exec.Query(FuncNameQueryGameListByStatusAndAddr,
		types.Encode(&pt.QueryLuckPayListByStatusAndAddr{
			Status:  pt.StatusClosed,
			Address: addrPlayer,
		}))
	require.Equal(t, types.ErrNotFound, err)
}

func TestExecDelLocalRestoresIndex(t *testing.T) {
	stateDB := dbm.NewDB("state", dbm.MemDBBackendStr, "", 16)
	localDB := dbm.NewDB("local", dbm.MemDBBackendStr, "", 16)
	driver := NewLuckPay(&fixedEntropy{}, "")

	acc := account.NewCoinsAccount()
	stateDB.Set(acc.AccountKey(addrPlayer),
		types.Encode(&types.Account{Balance: 1000 * types.Coin, Addr: addrPlayer}))

	applyLocal := func(set *types.LocalDBSet) {
		for _, kv := range set.KV {
			if kv.Value == nil {
				localDB.Delete(kv.Key)
			} else {
				localDB.Set(kv.Key, kv.Value)
			}
		}
	}
	execute := func(height int64, tx *types.Transaction) *types.Receipt {
		statedb := frame.NewStateDB(stateDB)
		statedb.Begin()
		driver.SetEnv(height, 1600000000+height)
		driver.SetStateDB(statedb)
		driver.SetLocalDB(frame.NewLocalDB(localDB))
		receipt, err := driver.Exec(tx, 0)
		require.NoError(t, err)
		statedb.Commit()
		batch := stateDB.NewBatch(true)
		for _, kv := range receipt.KV {
			if kv.Value == nil {
				batch.Delete(kv.Key)
			} else {
				batch.Set(kv.Key, kv.Value)
			}
		}
		batch.Write()
		return receipt
	}

	txInit, _ := pt.CreateRawInitConfigTx(addrOther,
		&pt.LuckPayInitConfig{MaxBetAmount: 200 * types.Coin})
	execute(1, txInit)

	txCreate, _ := pt.CreateRawCreateGameTx(addrPlayer, &pt.LuckPayCreate{
		StakeAmount: 100 * types.Coin,
		Recipient:   addrRecv,
		Choice:      pt.CoinSideHeads,
		RiskParam:   50,
	})
	receiptCreate := execute(2, txCreate)
	set, err := driver.ExecLocal(txCreate, receiptCreate, 0)
	require.NoError(t, err)
	applyLocal(set)

	txReq, _ := pt.CreateRawRequestRandomnessTx(addrPlayer)
	receiptReq := execute(3, txReq)
	set, err = driver.ExecLocal(txReq, receiptReq, 0)
	require.NoError(t, err)
	applyLocal(set)

	require.Len(t, localDB.List(calcGameStatusIndexPrefix(pt.StatusCreated), nil, 0, dbm.ListASC), 0)
	require.Len(t, localDB.List(calcGameStatusIndexPrefix(pt.StatusRandomnessRequested), nil, 0, dbm.ListASC), 1)

	//回滚请求随机数这笔交易的本地索引，恢复创建状态的索引
	delset, err := driver.ExecDelLocal(txReq, receiptReq, 0)
	require.NoError(t, err)
	applyLocal(delset)

	require.Len(t, localDB.List(calcGameStatusIndexPrefix(pt.StatusRandomnessRequested), nil, 0, dbm.ListASC), 0)
	require.Len(t, localDB.List(calcGameStatusIndexPrefix(pt.StatusCreated), nil, 0, dbm.ListASC), 1)
	require.Len(t, localDB.List(calcGameAddrIndexPrefix(pt.StatusCreated, addrPlayer), nil, 0, dbm.ListASC), 1)
}
