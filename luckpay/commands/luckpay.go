// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands luckpay 命令行
package commands

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/33cn/luckpay/account"
	dbm "github.com/33cn/luckpay/common/db"
	"github.com/33cn/luckpay/executor"
	lpexec "github.com/33cn/luckpay/luckpay/executor"
	pt "github.com/33cn/luckpay/luckpay/types"
	"github.com/33cn/luckpay/types"
	"github.com/spf13/cobra"
)

// Cmd luckpay 主命令
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luckpay",
		Short: "Two party escrow coinflip wager protocol",
	}
	cmd.AddCommand(
		initConfigCmd(),
		createGameCmd(),
		requestRandomnessCmd(),
		resolveGameCmd(),
		closeGameCmd(),
		showGameCmd(),
		listGameCmd(),
		statsCmd(),
		balanceCmd(),
		fundCmd(),
	)
	return cmd
}

type node struct {
	cfg     *types.Config
	stateDB dbm.DB
	localDB dbm.DB
	exec    *executor.Executor
}

func openNode(cmd *cobra.Command) *node {
	conf, _ := cmd.Flags().GetString("conf")
	var cfg *types.Config
	if _, err := os.Stat(conf); err == nil {
		cfg = types.InitCfg(conf)
	} else {
		cfg = types.DefaultCfg()
	}
	stateDB := dbm.NewDB("state", cfg.Store.Driver,
		filepath.Join(cfg.Store.DbPath, "state"), int(cfg.Store.DbCache))
	localDB := dbm.NewDB("local", cfg.Store.Driver,
		filepath.Join(cfg.Store.DbPath, "local"), int(cfg.Store.DbCache))
	driver := lpexec.NewLuckPay(nil, cfg.Protocol.Authority)
	return &node{
		cfg:     cfg,
		stateDB: stateDB,
		localDB: localDB,
		exec:    executor.New(stateDB, localDB, driver),
	}
}

func (n *node) close() {
	n.stateDB.Close()
	n.localDB.Close()
}

func (n *node) execute(tx *types.Transaction, err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer n.close()
	receipt, err := n.exec.Execute(tx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printResult(receipt)
}

func (n *node) query(funcName string, params interface{}) {
	defer n.close()
	reply, err := n.exec.Query(funcName, types.Encode(params))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printResult(reply)
}

func printResult(result interface{}) {
	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// 金额输入以币为单位，保留4位小数精度
func toAmount(value float64) int64 {
	return int64(math.Trunc(value*1e4)) * (types.Coin / 1e4)
}

func initConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize protocol configuration",
		Run: func(cmd *cobra.Command, args []string) {
			from, _ := cmd.Flags().GetString("from")
			maxBet, _ := cmd.Flags().GetFloat64("max_bet")
			n := openNode(cmd)
			n.execute(pt.CreateRawInitConfigTx(from, &pt.LuckPayInitConfig{
				MaxBetAmount: toAmount(maxBet),
			}))
		},
	}
	cmd.Flags().StringP("from", "f", "", "authority address")
	cmd.MarkFlagRequired("from")
	cmd.Flags().Float64P("max_bet", "m", 0, "max bet amount")
	cmd.MarkFlagRequired("max_bet")
	return cmd
}

func createGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a game and lock double stake into the treasury",
		Run: func(cmd *cobra.Command, args []string) {
			from, _ := cmd.Flags().GetString("from")
			stake, _ := cmd.Flags().GetFloat64("stake")
			recipient, _ := cmd.Flags().GetString("recipient")
			choice, _ := cmd.Flags().GetInt32("choice")
			risk, _ := cmd.Flags().GetUint32("risk")
			n := openNode(cmd)
			n.execute(pt.CreateRawCreateGameTx(from, &pt.LuckPayCreate{
				StakeAmount: toAmount(stake),
				Recipient:   recipient,
				Choice:      choice,
				RiskParam:   risk,
			}))
		},
	}
	cmd.Flags().StringP("from", "f", "", "player address")
	cmd.MarkFlagRequired("from")
	cmd.Flags().Float64P("stake", "s", 0, "stake amount")
	cmd.MarkFlagRequired("stake")
	cmd.Flags().StringP("recipient", "r", "", "payout recipient address")
	cmd.MarkFlagRequired("recipient")
	cmd.Flags().Int32P("choice", "c", 0, "coin side, 0:heads 1:tails")
	cmd.Flags().Uint32P("risk", "k", 50, "risk parameter 0-100")
	return cmd
}

func requestRandomnessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request randomness for the caller's open game",
		Run: func(cmd *cobra.Command, args []string) {
			from, _ := cmd.Flags().GetString("from")
			n := openNode(cmd)
			n.execute(pt.CreateRawRequestRandomnessTx(from))
		},
	}
	cmd.Flags().StringP("from", "f", "", "player address")
	cmd.MarkFlagRequired("from")
	return cmd
}

func resolveGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a game and pay out from the treasury",
		Run: func(cmd *cobra.Command, args []string) {
			from, _ := cmd.Flags().GetString("from")
			player, _ := cmd.Flags().GetString("player")
			n := openNode(cmd)
			n.execute(pt.CreateRawResolveGameTx(from, &pt.LuckPayResolve{
				Player: player,
			}))
		},
	}
	cmd.Flags().StringP("from", "f", "", "caller address")
	cmd.MarkFlagRequired("from")
	cmd.Flags().StringP("player", "p", "", "player whose game to resolve")
	cmd.MarkFlagRequired("player")
	return cmd
}

func closeGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a resolved game and reclaim its record",
		Run: func(cmd *cobra.Command, args []string) {
			from, _ := cmd.Flags().GetString("from")
			n := openNode(cmd)
			n.execute(pt.CreateRawCloseGameTx(from))
		},
	}
	cmd.Flags().StringP("from", "f", "", "player address")
	cmd.MarkFlagRequired("from")
	return cmd
}

func showGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a player's game",
		Run: func(cmd *cobra.Command, args []string) {
			player, _ := cmd.Flags().GetString("player")
			n := openNode(cmd)
			n.query(lpexec.FuncNameQueryGameByPlayer, &pt.QueryLuckPayGame{Player: player})
		},
	}
	cmd.Flags().StringP("player", "p", "", "player address")
	cmd.MarkFlagRequired("player")
	return cmd
}

func listGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games by status, optionally filtered by address",
		Run: func(cmd *cobra.Command, args []string) {
			status, _ := cmd.Flags().GetInt32("status")
			addr, _ := cmd.Flags().GetString("addr")
			index, _ := cmd.Flags().GetInt64("index")
			count, _ := cmd.Flags().GetInt32("count")
			direction, _ := cmd.Flags().GetInt32("direction")
			n := openNode(cmd)
			n.query(lpexec.FuncNameQueryGameListByStatusAndAddr,
				&pt.QueryLuckPayListByStatusAndAddr{
					Status:    status,
					Address:   addr,
					Index:     index,
					Count:     count,
					Direction: direction,
				})
		},
	}
	cmd.Flags().Int32P("status", "s", 1, "1:created 2:requested 3:resolved")
	cmd.Flags().StringP("addr", "a", "", "filter by address")
	cmd.Flags().Int64P("index", "i", 0, "last index of previous page")
	cmd.Flags().Int32P("count", "c", 0, "page size")
	cmd.Flags().Int32P("direction", "d", 0, "0:descending 1:ascending")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show protocol configuration and aggregate stats",
		Run: func(cmd *cobra.Command, args []string) {
			n := openNode(cmd)
			n.query(lpexec.FuncNameQueryConfig, &struct{}{})
		},
	}
}

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show an account balance, or the treasury balance by default",
		Run: func(cmd *cobra.Command, args []string) {
			addr, _ := cmd.Flags().GetString("addr")
			n := openNode(cmd)
			if addr == "" {
				n.query(lpexec.FuncNameQueryTreasury, &struct{}{})
				return
			}
			n.query(lpexec.FuncNameQueryBalance, &pt.QueryLuckPayBalance{Addr: addr})
		},
	}
	cmd.Flags().StringP("addr", "a", "", "account address")
	return cmd
}

// 开发模式注资命令，直接在状态库里生成创世余额
func fundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Fund an address in dev mode",
		Run: func(cmd *cobra.Command, args []string) {
			addr, _ := cmd.Flags().GetString("addr")
			amount, _ := cmd.Flags().GetFloat64("amount")
			n := openNode(cmd)
			defer n.close()
			statedb := executor.NewStateDB(n.stateDB)
			acc := account.NewCoinsAccount().SetDB(statedb)
			receipt, err := acc.GenesisInit(addr, toAmount(amount))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			batch := n.stateDB.NewBatch(true)
			for _, kv := range receipt.KV {
				batch.Set(kv.Key, kv.Value)
			}
			batch.Write()
			printResult(receipt)
		},
	}
	cmd.Flags().StringP("addr", "a", "", "address to fund")
	cmd.MarkFlagRequired("addr")
	cmd.Flags().Float64P("amount", "m", 0, "amount in coins")
	cmd.MarkFlagRequired("amount")
	return cmd
}
