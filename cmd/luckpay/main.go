// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	clog "github.com/33cn/luckpay/common/log"
	"github.com/33cn/luckpay/luckpay/commands"
	"github.com/33cn/luckpay/types"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := commands.Cmd()
	rootCmd.PersistentFlags().String("conf", "luckpay.toml", "configuration file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		conf, _ := cmd.Flags().GetString("conf")
		if _, err := os.Stat(conf); err == nil {
			cfg := types.InitCfg(conf)
			clog.SetFileLog(cfg.Log)
		} else {
			clog.SetLogLevel("error")
		}
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
