// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	tml "github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config 节点配置
type Config struct {
	Title    string    `toml:"title"`
	Log      *Log      `toml:"log"`
	Store    *Store    `toml:"store"`
	Protocol *Protocol `toml:"protocol"`
}

// Log 日志配置
type Log struct {
	Loglevel        string `toml:"loglevel"`
	LogConsoleLevel string `toml:"logConsoleLevel"`
	LogFile         string `toml:"logFile"`
	MaxFileSize     uint32 `toml:"maxFileSize"`
	MaxBackups      uint32 `toml:"maxBackups"`
	MaxAge          uint32 `toml:"maxAge"`
	LocalTime       bool   `toml:"localTime"`
	Compress        bool   `toml:"compress"`
	CallerFile      bool   `toml:"callerFile"`
	CallerFunction  bool   `toml:"callerFunction"`
}

// Store 存储配置
type Store struct {
	Driver  string `toml:"driver"`
	DbPath  string `toml:"dbPath"`
	DbCache int32  `toml:"dbCache"`
}

// Protocol luckpay 协议配置。Authority 配置后，只有该地址可以初始化协议配置；
// 为空时采用首个调用者即权限方的行为
type Protocol struct {
	Authority string `toml:"authority"`
}

// InitCfg 读取 toml 配置文件，配置错误直接 panic
func InitCfg(path string) *Config {
	var cfg Config
	if _, err := tml.DecodeFile(path, &cfg); err != nil {
		panic(errors.Wrapf(err, "decode config file %s", path))
	}
	fillDefaults(&cfg)
	return &cfg
}

// DefaultCfg 默认配置，测试和开发模式使用
func DefaultCfg() *Config {
	cfg := &Config{}
	fillDefaults(cfg)
	return cfg
}

func fillDefaults(cfg *Config) {
	if cfg.Title == "" {
		cfg.Title = "luckpay"
	}
	if cfg.Store == nil {
		cfg.Store = &Store{Driver: "memdb"}
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "goleveldb"
	}
	if cfg.Store.DbPath == "" {
		cfg.Store.DbPath = "datadir"
	}
	if cfg.Store.DbCache == 0 {
		cfg.Store.DbCache = 64
	}
	if cfg.Protocol == nil {
		cfg.Protocol = &Protocol{}
	}
}
