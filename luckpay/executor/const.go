package executor

// 查询接口名
const (
	FuncNameQueryGameByPlayer            = "QueryGameByPlayer"
	FuncNameQueryGameListByStatus        = "QueryGameListByStatus"
	FuncNameQueryGameListByStatusAndAddr = "QueryGameListByStatusAndAddr"
	FuncNameQueryConfig                  = "QueryConfig"
	FuncNameQueryBalance                 = "QueryBalance"
	FuncNameQueryTreasury                = "QueryTreasury"
)

// 分页
const (
	ListDESC     = int32(0)
	ListASC      = int32(1)
	DefaultCount = int32(20)
	MaxCount     = int32(100)
)
