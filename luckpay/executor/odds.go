package executor

// 赔率策略：风险参数（0-100）选择赢率档位，抽水固定写进基础阈值。
// 随机字节严格小于阈值则玩家赢。风险参数只改变赢率，不改变赔付金额。

// baseWinThreshold 基础赢率阈值 = 256*(10000-houseEdgeBP)/2/10000
// 500bp 抽水时为 121，约 47.5%
func baseWinThreshold(houseEdgeBP uint32) uint32 {
	return 256 * (10000 - houseEdgeBP) / 2 / 10000
}

// winThreshold 按风险参数档位缩放基础阈值，返回 [0,256) 上的胜负阈值
func winThreshold(riskParam uint32, houseEdgeBP uint32) uint8 {
	base := baseWinThreshold(houseEdgeBP)
	var threshold uint32
	switch {
	case riskParam <= 25:
		//保守档 约23.75%
		threshold = base / 2
	case riskParam <= 50:
		//稳健档 约35.6%
		threshold = base * 3 / 4
	case riskParam <= 75:
		//标准档 约47.5%
		threshold = base
	case riskParam <= 100:
		//激进档 约59.4%，饱和到255防止溢出
		threshold = base * 5 / 4
		if threshold > 255 {
			threshold = 255
		}
	default:
		//非法值回落到标准档
		threshold = base
	}
	return uint8(threshold)
}
