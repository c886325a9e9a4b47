package types

// luckpay action ty
const (
	LuckPayActionInitConfig = iota + 1
	LuckPayActionCreate
	LuckPayActionRequestRandomness
	LuckPayActionResolve
	LuckPayActionClose
)

// game 的状态变化：
// status == 1 (创建，托管资金已锁定)
// status == 2 (已请求随机数，等待开奖)
// status == 3 (已开奖，赔付完成)
// status == 4 (已关闭，游戏记录回收)
const (
	StatusCreated = int32(iota + 1)
	StatusRandomnessRequested
	StatusResolved
	StatusClosed
)

// CoinSide 硬币面，只影响展示，不影响胜负
const (
	CoinSideHeads = int32(0)
	CoinSideTails = int32(1)
)

// receipt log ty
const (
	TyLogLuckPayInitConfig = int64(711)
	TyLogLuckPayCreate     = int64(712)
	TyLogLuckPayRequest    = int64(713)
	TyLogLuckPayResolve    = int64(714)
	TyLogLuckPayClose      = int64(715)
	TyLogLuckPayFeeAccrual = int64(716)
)

const (
	//PackageName package
	PackageName = "luckpay"
	//LuckPayX 执行器名
	LuckPayX = "luckpay"
)

// HouseEdgeBP 固定抽水，单位基点，初始化后不可修改
const HouseEdgeBP = uint32(500)

// ExecerLuckPay execer
var ExecerLuckPay = []byte(LuckPayX)
