package executor

import (
	"github.com/33cn/luckpay/common/address"
	pt "github.com/33cn/luckpay/luckpay/types"
	"github.com/33cn/luckpay/types"
)

// Query 查询接口
func (g *LuckPay) Query(funcName string, params []byte) (interface{}, error) {
	switch funcName {
	case FuncNameQueryGameByPlayer:
		var in pt.QueryLuckPayGame
		if err := types.Decode(params, &in); err != nil {
			return nil, err
		}
		return g.queryGameByPlayer(&in)
	case FuncNameQueryGameListByStatus, FuncNameQueryGameListByStatusAndAddr:
		var in pt.QueryLuckPayListByStatusAndAddr
		if err := types.Decode(params, &in); err != nil {
			return nil, err
		}
		return g.queryGameList(&in)
	case FuncNameQueryConfig:
		return readConfig(g.statedb)
	case FuncNameQueryBalance:
		var in pt.QueryLuckPayBalance
		if err := types.Decode(params, &in); err != nil {
			return nil, err
		}
		return g.GetCoinsAccount().LoadAccount(in.Addr), nil
	case FuncNameQueryTreasury:
		return g.GetCoinsAccount().LoadAccount(address.ExecAddress(pt.LuckPayX)), nil
	}
	return nil, types.ErrActionNotSupport
}

func (g *LuckPay) queryGameByPlayer(in *pt.QueryLuckPayGame) (*pt.ReplyLuckPayGame, error) {
	game, err := readGame(g.statedb, in.Player)
	if err != nil {
		if err == types.ErrNotFound {
			return nil, pt.ErrGameNotFound
		}
		return nil, err
	}
	return &pt.ReplyLuckPayGame{Game: game}, nil
}

// 按状态（可选叠加地址）分页列出游戏。
// Index 为上一页最后一条的索引，0表示从头开始
func (g *LuckPay) queryGameList(in *pt.QueryLuckPayListByStatusAndAddr) (*pt.ReplyLuckPayList, error) {
	direction := in.Direction
	count := in.Count
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		count = MaxCount
	}
	var prefix, key []byte
	if in.Address != "" {
		prefix = calcGameAddrIndexPrefix(in.Status, in.Address)
		if in.Index > 0 {
			key = calcGameAddrIndexKey(in.Status, in.Address, in.Index)
		}
	} else {
		prefix = calcGameStatusIndexPrefix(in.Status)
		if in.Index > 0 {
			key = calcGameStatusIndexKey(in.Status, in.Index)
		}
	}
	values, err := g.localdb.List(prefix, key, count, direction)
	if err != nil {
		return nil, err
	}
	var records []*pt.GameRecord
	for _, value := range values {
		var record pt.GameRecord
		if err := types.Decode(value, &record); err != nil {
			continue
		}
		records = append(records, &record)
	}
	return &pt.ReplyLuckPayList{Games: g.getGameList(records)}, nil
}

// 批量读游戏，索引落后于状态时跳过读不到的记录
func (g *LuckPay) getGameList(records []*pt.GameRecord) []*pt.LuckPayGame {
	var games []*pt.LuckPayGame
	for _, record := range records {
		game, err := readGame(g.statedb, record.GetPlayer())
		if err != nil {
			glog.Warn("getGameList", "player", record.GetPlayer(), "err", err)
			continue
		}
		games = append(games, game)
	}
	return games
}
