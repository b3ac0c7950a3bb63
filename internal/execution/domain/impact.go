package domain

import "math"

// MarketImpactCalculator 平方根市场冲击模型。
// 冲击拆分为半点差成本与临时冲击两部分，属可替换的近似模型，并非精确分解。
type MarketImpactCalculator struct{}

// EstimateImpactBps 估算执行冲击（基点）：
// 半点差 + 波动率 × √参与率 × 10000
func (MarketImpactCalculator) EstimateImpactBps(quantity, avgDailyVolume int64, volatility, spreadBps float64) float64 {
	if quantity <= 0 || avgDailyVolume <= 0 {
		return 0
	}
	participation := float64(quantity) / float64(avgDailyVolume)
	return spreadBps/2 + volatility*math.Sqrt(participation)*10000
}

// OptimalSliceSize 以 7.5% 的每分钟参与率为目标，
// 按 390 分钟交易日折算出单个切片的建议数量
func (MarketImpactCalculator) OptimalSliceSize(avgDailyVolume int64) int64 {
	if avgDailyVolume <= 0 {
		return 0
	}
	perMinuteVolume := float64(avgDailyVolume) / tradingDayMinutes
	size := int64(math.Round(perMinuteVolume * 0.075))
	if size < 1 {
		size = 1
	}
	return size
}
