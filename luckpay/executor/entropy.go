package executor

// EntropySource 伪随机熵源。
//
// 当前实现用执行高度和区块时间做熵混合，只是可验证随机源（VRF）接入前的
// 占位实现：给定相同输入输出确定，熵混合用 uint64 环绕算术，不是密码学
// 安全的随机数。替换实现时不需要改动状态机，注入新的 EntropySource 即可。
type EntropySource interface {
	// Snapshot 请求随机数时捕获的熵快照，开奖方在这之后无法影响该值
	Snapshot(height, blocktime int64) uint64
	// Sample 结合快照与开奖时刻的上下文，得到最终随机字节
	Sample(snapshot uint64, height, blocktime, stake int64) byte
}

type clockEntropy struct{}

// NewClockEntropy 默认熵源
func NewClockEntropy() EntropySource {
	return &clockEntropy{}
}

func (c *clockEntropy) Snapshot(height, blocktime int64) uint64 {
	return uint64(height)
}

func (c *clockEntropy) Sample(snapshot uint64, height, blocktime, stake int64) byte {
	//环绕乘加混合多个熵输入，溢出在这里是特性不是错误
	entropy := snapshot
	entropy = entropy * uint64(height)
	entropy = entropy + uint64(blocktime)
	entropy = entropy + uint64(stake)
	return byte(entropy % 256)
}
