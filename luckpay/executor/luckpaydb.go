package executor

import (
	"fmt"

	"github.com/33cn/luckpay/account"
	"github.com/33cn/luckpay/common/address"
	dbm "github.com/33cn/luckpay/common/db"
	pt "github.com/33cn/luckpay/luckpay/types"
	"github.com/33cn/luckpay/types"
)

// Action 一笔交易的执行上下文
type Action struct {
	coinsAccount *account.DB
	db           dbm.KV
	txhash       []byte
	fromaddr     string
	blocktime    int64
	height       int64
	execaddr     string
	index        int
	entropy      EntropySource
	authority    string
}

// NewAction new action
func NewAction(l *LuckPay, tx *types.Transaction, index int) *Action {
	return &Action{
		coinsAccount: l.GetCoinsAccount(),
		db:           l.statedb,
		txhash:       tx.Hash(),
		fromaddr:     tx.From(),
		blocktime:    l.blocktime,
		height:       l.height,
		execaddr:     address.ExecAddress(pt.LuckPayX),
		index:        index,
		entropy:      l.entropy,
		authority:    l.authority,
	}
}

// GetIndex 同一区块内交易的全局有序索引
func (action *Action) GetIndex() int64 {
	return action.height*types.MaxTxsPerBlock + int64(action.index)
}

// GameKey 游戏状态key，按玩家地址索引，一个玩家同时最多一局
func GameKey(player string) (key []byte) {
	key = append(key, []byte("mavl-luckpay-game-")...)
	key = append(key, []byte(player)...)
	return key
}

// ConfigKey 协议配置单例key
func ConfigKey() (key []byte) {
	return []byte("mavl-luckpay-config")
}

// ConfigInit 初始化协议配置，只允许执行一次。
// 配置了 authority 时只有该地址可调用；否则首个调用者成为权限方
func (action *Action) ConfigInit(init *pt.LuckPayInitConfig) (*types.Receipt, error) {
	if action.authority != "" && action.fromaddr != action.authority {
		glog.Error("ConfigInit", "addr", action.fromaddr, "err", pt.ErrInitConfigAddr)
		return nil, pt.ErrInitConfigAddr
	}
	_, err := readConfig(action.db)
	if err == nil {
		glog.Error("ConfigInit", "addr", action.fromaddr, "err", pt.ErrConfigExists)
		return nil, pt.ErrConfigExists
	}
	if err != types.ErrNotFound {
		return nil, err
	}
	if !types.CheckAmount(init.MaxBetAmount) {
		glog.Error("ConfigInit", "maxBetAmount", init.MaxBetAmount, "err", types.ErrAmount)
		return nil, types.ErrAmount
	}
	config := &pt.LuckPayConfig{
		Authority:    action.fromaddr,
		HouseEdgeBP:  pt.HouseEdgeBP,
		MaxBetAmount: init.MaxBetAmount,
	}
	var logs []*types.ReceiptLog
	var kv []*types.KeyValue
	receiptLog := &types.ReceiptLog{
		Ty: pt.TyLogLuckPayInitConfig,
		Log: types.Encode(&pt.ReceiptLuckPayConfig{
			Authority:    config.Authority,
			MaxBetAmount: config.MaxBetAmount,
		}),
	}
	logs = append(logs, receiptLog)
	kv = append(kv, saveConfig(action.db, config))
	return &types.Receipt{Ty: types.ExecOk, KV: kv, Logs: logs}, nil
}

// GameCreate 创建游戏：锁定 2×押金到国库账户。
// 押金一份作为玩家本金，一份作为协议垫付的对手盘
func (action *Action) GameCreate(create *pt.LuckPayCreate) (*types.Receipt, error) {
	config, err := readConfig(action.db)
	if err != nil {
		if err == types.ErrNotFound {
			return nil, pt.ErrConfigNotFound
		}
		return nil, err
	}
	if create.StakeAmount <= 0 || !types.CheckAmount(create.StakeAmount) {
		glog.Error("GameCreate", "addr", action.fromaddr, "stake", create.StakeAmount,
			"err", pt.ErrInvalidBetAmount)
		return nil, pt.ErrInvalidBetAmount
	}
	if create.StakeAmount > config.MaxBetAmount {
		glog.Error("GameCreate", "addr", action.fromaddr, "stake", create.StakeAmount,
			"max", config.MaxBetAmount, "err", pt.ErrBetTooHigh)
		return nil, pt.ErrBetTooHigh
	}
	if err := address.CheckAddress(create.Recipient); err != nil {
		glog.Error("GameCreate", "recipient", create.Recipient, "err", err)
		return nil, types.ErrInvalidParam
	}
	//收款人不能是国库自身，否则开奖赔付成为自转账，游戏永远无法完成
	if create.Recipient == action.execaddr {
		glog.Error("GameCreate", "recipient", create.Recipient, "err", types.ErrSendSameToRecv)
		return nil, types.ErrSendSameToRecv
	}
	if create.Choice != pt.CoinSideHeads && create.Choice != pt.CoinSideTails {
		glog.Error("GameCreate", "choice", create.Choice, "err", types.ErrInvalidParam)
		return nil, types.ErrInvalidParam
	}
	_, err = readGame(action.db, action.fromaddr)
	if err == nil {
		glog.Error("GameCreate", "addr", action.fromaddr, "err", pt.ErrGameExists)
		return nil, pt.ErrGameExists
	}
	if err != types.ErrNotFound {
		return nil, err
	}
	escrow := 2 * create.StakeAmount
	if err := action.coinsAccount.CheckTransfer(action.fromaddr, action.execaddr, escrow); err != nil {
		glog.Error("GameCreate.CheckTransfer", "addr", action.fromaddr,
			"amount", escrow, "err", err)
		return nil, err
	}
	receipt, err := action.coinsAccount.Transfer(action.fromaddr, action.execaddr, escrow)
	if err != nil {
		glog.Error("GameCreate.Transfer", "addr", action.fromaddr,
			"amount", escrow, "err", err)
		return nil, err
	}
	game := &pt.LuckPayGame{
		Player:      action.fromaddr,
		Recipient:   create.Recipient,
		StakeAmount: create.StakeAmount,
		Choice:      create.Choice,
		RiskParam:   create.RiskParam,
		Status:      pt.StatusCreated,
		CreatedAt:   action.blocktime,
		Index:       action.GetIndex(),
	}
	logs := receipt.Logs
	kv := receipt.KV
	logs = append(logs, action.GetReceiptLog(game, 0, 0))
	kv = append(kv, saveGame(action.db, game))
	return &types.Receipt{Ty: types.ExecOk, KV: kv, Logs: logs}, nil
}

// GameRequestRandomness 请求随机数，捕获熵快照。
// 游戏按调用者地址查找，非玩家本人天然找不到记录
func (action *Action) GameRequestRandomness(req *pt.LuckPayRequestRandomness) (*types.Receipt, error) {
	game, err := readGame(action.db, action.fromaddr)
	if err != nil {
		if err == types.ErrNotFound {
			glog.Error("GameRequestRandomness", "addr", action.fromaddr, "err", pt.ErrGameNotFound)
			return nil, pt.ErrGameNotFound
		}
		return nil, err
	}
	if game.Status != pt.StatusCreated {
		glog.Error("GameRequestRandomness", "addr", action.fromaddr,
			"status", game.Status, "err", pt.ErrInvalidGameState)
		return nil, pt.ErrInvalidGameState
	}
	snapshot := action.entropy.Snapshot(action.height, action.blocktime)
	prevStatus := game.Status
	prevIndex := game.Index
	game.EntropySnapshot = &snapshot
	game.Status = pt.StatusRandomnessRequested
	game.PrevIndex = prevIndex
	game.Index = action.GetIndex()
	var logs []*types.ReceiptLog
	var kv []*types.KeyValue
	logs = append(logs, action.GetReceiptLog(game, prevStatus, prevIndex))
	kv = append(kv, saveGame(action.db, game))
	return &types.Receipt{Ty: types.ExecOk, KV: kv, Logs: logs}, nil
}

// GameResolve 开奖并赔付。任何人都可以替玩家开奖。
// 收款人固定拿回一份押金；玩家赢时再从国库拿 2×押金，
// 输时国库留存的那份押金计提为协议费
func (action *Action) GameResolve(resolve *pt.LuckPayResolve) (*types.Receipt, error) {
	config, err := readConfig(action.db)
	if err != nil {
		if err == types.ErrNotFound {
			return nil, pt.ErrConfigNotFound
		}
		return nil, err
	}
	game, err := readGame(action.db, resolve.Player)
	if err != nil {
		if err == types.ErrNotFound {
			glog.Error("GameResolve", "player", resolve.Player, "err", pt.ErrGameNotFound)
			return nil, pt.ErrGameNotFound
		}
		return nil, err
	}
	if game.Status != pt.StatusRandomnessRequested {
		glog.Error("GameResolve", "player", resolve.Player,
			"status", game.Status, "err", pt.ErrInvalidGameState)
		return nil, pt.ErrInvalidGameState
	}
	if game.EntropySnapshot == nil {
		glog.Error("GameResolve", "player", resolve.Player, "err", pt.ErrRandomnessNotReady)
		return nil, pt.ErrRandomnessNotReady
	}
	randomValue := action.entropy.Sample(*game.EntropySnapshot,
		action.height, action.blocktime, game.StakeAmount)
	threshold := winThreshold(game.RiskParam, config.HouseEdgeBP)
	playerWon := randomValue < threshold
	coinFace := pt.CoinSideHeads
	if randomValue%2 == 1 {
		coinFace = pt.CoinSideTails
	}
	//赔付前整体校验国库余额，校验失败不做任何转账，游戏停在当前状态
	payout := game.StakeAmount
	if playerWon {
		payout += 2 * game.StakeAmount
	}
	treasury := action.coinsAccount.LoadAccount(action.execaddr)
	if treasury.Balance < payout {
		glog.Error("GameResolve", "player", resolve.Player, "payout", payout,
			"treasury", treasury.Balance, "err", pt.ErrInsufficientEscrowBalance)
		return nil, pt.ErrInsufficientEscrowBalance
	}
	var logs []*types.ReceiptLog
	var kv []*types.KeyValue
	//收款人固定拿回一份押金
	receipt, err := action.coinsAccount.Transfer(action.execaddr, game.Recipient, game.StakeAmount)
	if err != nil {
		glog.Error("GameResolve.Transfer", "recipient", game.Recipient,
			"amount", game.StakeAmount, "err", err)
		return nil, err
	}
	logs = append(logs, receipt.Logs...)
	kv = append(kv, receipt.KV...)
	if playerWon {
		winReceipt, err := action.coinsAccount.Transfer(action.execaddr, game.Player, 2*game.StakeAmount)
		if err != nil {
			//回滚已执行的收款人转账，保持账户不被破坏
			action.coinsAccount.Transfer(game.Recipient, action.execaddr, game.StakeAmount)
			glog.Error("GameResolve.Transfer", "player", game.Player,
				"amount", 2*game.StakeAmount, "err", err)
			return nil, err
		}
		logs = append(logs, winReceipt.Logs...)
		kv = append(kv, winReceipt.KV...)
	} else {
		//输局：国库留存的一份押金是协议费，不发生转账，显式记账
		feeLog := &types.ReceiptLog{
			Ty: pt.TyLogLuckPayFeeAccrual,
			Log: types.Encode(&pt.ReceiptLuckPayFee{
				Player: game.Player,
				Amount: game.StakeAmount,
			}),
		}
		logs = append(logs, feeLog)
	}
	prevStatus := game.Status
	prevIndex := game.Index
	game.Result = &pt.GameResult{
		CoinFace:    coinFace,
		PlayerWon:   playerWon,
		RandomValue: randomValue,
	}
	game.Status = pt.StatusResolved
	game.PrevIndex = prevIndex
	game.Index = action.GetIndex()
	config.TotalGames = checkedAdd(config.TotalGames, 1)
	config.TotalVolume = checkedAdd(config.TotalVolume, uint64(game.StakeAmount))
	logs = append(logs, action.GetReceiptLog(game, prevStatus, prevIndex))
	kv = append(kv, saveGame(action.db, game))
	kv = append(kv, saveConfig(action.db, config))
	return &types.Receipt{Ty: types.ExecOk, KV: kv, Logs: logs}, nil
}

// GameClose 关闭已开奖的游戏，删除游戏记录。
// 再次关闭时记录已不存在，返回 ErrGameNotFound
func (action *Action) GameClose(close *pt.LuckPayClose) (*types.Receipt, error) {
	game, err := readGame(action.db, action.fromaddr)
	if err != nil {
		if err == types.ErrNotFound {
			glog.Error("GameClose", "addr", action.fromaddr, "err", pt.ErrGameNotFound)
			return nil, pt.ErrGameNotFound
		}
		return nil, err
	}
	if game.Status != pt.StatusResolved {
		glog.Error("GameClose", "addr", action.fromaddr,
			"status", game.Status, "err", pt.ErrInvalidGameState)
		return nil, pt.ErrInvalidGameState
	}
	prevStatus := game.Status
	prevIndex := game.Index
	game.Status = pt.StatusClosed
	game.PrevIndex = prevIndex
	game.Index = action.GetIndex()
	var logs []*types.ReceiptLog
	var kv []*types.KeyValue
	logs = append(logs, action.GetReceiptLog(game, prevStatus, prevIndex))
	//value置nil删除游戏记录，回收存储
	kv = append(kv, &types.KeyValue{Key: GameKey(game.Player), Value: nil})
	if err := action.db.Set(GameKey(game.Player), nil); err != nil {
		return nil, err
	}
	return &types.Receipt{Ty: types.ExecOk, KV: kv, Logs: logs}, nil
}

// GetReceiptLog 生成游戏状态变更日志
func (action *Action) GetReceiptLog(game *pt.LuckPayGame, prevStatus int32, prevIndex int64) *types.ReceiptLog {
	log := &types.ReceiptLog{}
	r := &pt.ReceiptLuckPayGame{
		Player:     game.Player,
		Addr:       action.fromaddr,
		Status:     game.Status,
		PrevStatus: prevStatus,
		Index:      game.Index,
		PrevIndex:  prevIndex,
	}
	switch game.Status {
	case pt.StatusCreated:
		log.Ty = pt.TyLogLuckPayCreate
	case pt.StatusRandomnessRequested:
		log.Ty = pt.TyLogLuckPayRequest
	case pt.StatusResolved:
		log.Ty = pt.TyLogLuckPayResolve
	case pt.StatusClosed:
		log.Ty = pt.TyLogLuckPayClose
	}
	log.Log = types.Encode(r)
	return log
}

// 累计统计溢出属于致命的状态损坏，不允许静默回绕
func checkedAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		panic(fmt.Sprintf("luckpay stats counter overflow: %d + %d", a, b))
	}
	return sum
}

func readGame(db dbm.KV, player string) (*pt.LuckPayGame, error) {
	data, err := db.Get(GameKey(player))
	if err != nil {
		return nil, err
	}
	var game pt.LuckPayGame
	err = types.Decode(data, &game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func readConfig(db dbm.KV) (*pt.LuckPayConfig, error) {
	data, err := db.Get(ConfigKey())
	if err != nil {
		return nil, err
	}
	var config pt.LuckPayConfig
	err = types.Decode(data, &config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

func saveGame(db dbm.KV, game *pt.LuckPayGame) *types.KeyValue {
	set := &types.KeyValue{Key: GameKey(game.Player), Value: types.Encode(game)}
	db.Set(set.Key, set.Value)
	return set
}

func saveConfig(db dbm.KV, config *pt.LuckPayConfig) *types.KeyValue {
	set := &types.KeyValue{Key: ConfigKey(), Value: types.Encode(config)}
	db.Set(set.Key, set.Value)
	return set
}
