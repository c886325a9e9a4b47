package types

// LuckPayConfig 协议配置单例，一个部署只有一份。
// TotalGames/TotalVolume 只在开奖时累加
type LuckPayConfig struct {
	Authority    string `json:"authority"`
	HouseEdgeBP  uint32 `json:"houseEdgeBP"`
	MaxBetAmount int64  `json:"maxBetAmount"`
	TotalGames   uint64 `json:"totalGames"`
	TotalVolume  uint64 `json:"totalVolume"`
}

// LuckPayGame 一局游戏，按玩家地址索引，一个玩家同时只有一局
type LuckPayGame struct {
	Player      string `json:"player"`
	Recipient   string `json:"recipient"`
	StakeAmount int64  `json:"stakeAmount"`
	Choice      int32  `json:"choice"`
	RiskParam   uint32 `json:"riskParam"`
	Status      int32  `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
	//EntropySnapshot 请求随机数时捕获的熵快照，只设置一次，之后不再覆盖
	EntropySnapshot *uint64     `json:"entropySnapshot,omitempty"`
	Result          *GameResult `json:"result,omitempty"`
	Index           int64       `json:"index"`
	PrevIndex       int64       `json:"prevIndex"`
}

// GetStatus get
func (g *LuckPayGame) GetStatus() int32 {
	if g != nil {
		return g.Status
	}
	return 0
}

// GetStakeAmount get
func (g *LuckPayGame) GetStakeAmount() int64 {
	if g != nil {
		return g.StakeAmount
	}
	return 0
}

// GetPlayer get
func (g *LuckPayGame) GetPlayer() string {
	if g != nil {
		return g.Player
	}
	return ""
}

// GetRecipient get
func (g *LuckPayGame) GetRecipient() string {
	if g != nil {
		return g.Recipient
	}
	return ""
}

// GetIndex get
func (g *LuckPayGame) GetIndex() int64 {
	if g != nil {
		return g.Index
	}
	return 0
}

// GetPrevIndex get
func (g *LuckPayGame) GetPrevIndex() int64 {
	if g != nil {
		return g.PrevIndex
	}
	return 0
}

// GameResult 开奖结果，只在 Resolved 状态下存在，只设置一次。
// CoinFace 由随机字节的奇偶决定，只用于展示；胜负由 PlayerWon 决定
type GameResult struct {
	CoinFace    int32 `json:"coinFace"`
	PlayerWon   bool  `json:"playerWon"`
	RandomValue uint8 `json:"randomValue"`
}

// LuckPayInitConfig 初始化协议配置
type LuckPayInitConfig struct {
	MaxBetAmount int64 `json:"maxBetAmount"`
}

// LuckPayCreate 创建游戏：从调用者锁定 2×StakeAmount 到国库
type LuckPayCreate struct {
	StakeAmount int64  `json:"stakeAmount"`
	Recipient   string `json:"recipient"`
	Choice      int32  `json:"choice"`
	RiskParam   uint32 `json:"riskParam"`
}

// LuckPayRequestRandomness 请求随机数，游戏用调用者地址索引
type LuckPayRequestRandomness struct {
}

// LuckPayResolve 开奖，任何人都可以调用
type LuckPayResolve struct {
	Player string `json:"player"`
}

// LuckPayClose 关闭已开奖的游戏，回收游戏记录
type LuckPayClose struct {
}

// LuckPayAction action
type LuckPayAction struct {
	Ty                int32                     `json:"ty"`
	InitConfig        *LuckPayInitConfig        `json:"initConfig,omitempty"`
	Create            *LuckPayCreate            `json:"create,omitempty"`
	RequestRandomness *LuckPayRequestRandomness `json:"requestRandomness,omitempty"`
	Resolve           *LuckPayResolve           `json:"resolve,omitempty"`
	Close             *LuckPayClose             `json:"close,omitempty"`
}

// GetInitConfig get
func (a *LuckPayAction) GetInitConfig() *LuckPayInitConfig {
	if a != nil {
		return a.InitConfig
	}
	return nil
}

// GetCreate get
func (a *LuckPayAction) GetCreate() *LuckPayCreate {
	if a != nil {
		return a.Create
	}
	return nil
}

// GetRequestRandomness get
func (a *LuckPayAction) GetRequestRandomness() *LuckPayRequestRandomness {
	if a != nil {
		return a.RequestRandomness
	}
	return nil
}

// GetResolve get
func (a *LuckPayAction) GetResolve() *LuckPayResolve {
	if a != nil {
		return a.Resolve
	}
	return nil
}

// GetClose get
func (a *LuckPayAction) GetClose() *LuckPayClose {
	if a != nil {
		return a.Close
	}
	return nil
}

// ReceiptLuckPayGame 游戏状态变更日志
type ReceiptLuckPayGame struct {
	Player     string `json:"player"`
	Addr       string `json:"addr"`
	Status     int32  `json:"status"`
	PrevStatus int32  `json:"prevStatus"`
	Index      int64  `json:"index"`
	PrevIndex  int64  `json:"prevIndex"`
}

// ReceiptLuckPayFee 协议费计提日志。输的情况下国库留存的那份押金
// 不发生转账，这里显式记账，方便对账和测试
type ReceiptLuckPayFee struct {
	Player string `json:"player"`
	Amount int64  `json:"amount"`
}

// ReceiptLuckPayConfig 配置初始化日志
type ReceiptLuckPayConfig struct {
	Authority    string `json:"authority"`
	MaxBetAmount int64  `json:"maxBetAmount"`
}

// GameRecord 本地索引里保存的游戏记录
type GameRecord struct {
	Player string `json:"player"`
	Index  int64  `json:"index"`
}

// GetPlayer get
func (r *GameRecord) GetPlayer() string {
	if r != nil {
		return r.Player
	}
	return ""
}

// QueryLuckPayGame 按玩家地址查询
type QueryLuckPayGame struct {
	Player string `json:"player"`
}

// QueryLuckPayListByStatusAndAddr 分页查询参数
type QueryLuckPayListByStatusAndAddr struct {
	Status    int32  `json:"status"`
	Address   string `json:"address"`
	Index     int64  `json:"index"`
	Count     int32  `json:"count"`
	Direction int32  `json:"direction"`
}

// QueryLuckPayBalance 账户余额查询
type QueryLuckPayBalance struct {
	Addr string `json:"addr"`
}

// ReplyLuckPayGame reply
type ReplyLuckPayGame struct {
	Game *LuckPayGame `json:"game"`
}

// ReplyLuckPayList reply
type ReplyLuckPayList struct {
	Games []*LuckPayGame `json:"games"`
}
