package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint 行情时间序列中的一个点
type PricePoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
	Volume    int64
}

// BenchmarkCalculator 从行情序列计算执行基准，无状态
type BenchmarkCalculator struct{}

// VWAP 成交量加权平均价：Σ(price×volume) / Σvolume，无有效量时返回 nil
func (BenchmarkCalculator) VWAP(points []PricePoint) *decimal.Decimal {
	var notional decimal.Decimal
	var volume int64
	for _, p := range points {
		if p.Volume <= 0 {
			continue
		}
		notional = notional.Add(p.Price.Mul(decimal.NewFromInt(p.Volume)))
		volume += p.Volume
	}
	if volume == 0 {
		return nil
	}
	vwap := notional.Div(decimal.NewFromInt(volume))
	return &vwap
}

// TWAP 时间加权平均价：价格的简单平均，空序列返回 nil
func (BenchmarkCalculator) TWAP(points []PricePoint) *decimal.Decimal {
	if len(points) == 0 {
		return nil
	}
	var sum decimal.Decimal
	for _, p := range points {
		sum = sum.Add(p.Price)
	}
	twap := sum.Div(decimal.NewFromInt(int64(len(points))))
	return &twap
}

// ArrivalPrice 到达价：时间戳离到达时刻最近的点的价格，空序列返回 nil
func (BenchmarkCalculator) ArrivalPrice(points []PricePoint, arrival time.Time) *decimal.Decimal {
	if len(points) == 0 {
		return nil
	}
	best := points[0]
	bestDiff := absDuration(points[0].Timestamp.Sub(arrival))
	for _, p := range points[1:] {
		if d := absDuration(p.Timestamp.Sub(arrival)); d < bestDiff {
			best = p
			bestDiff = d
		}
	}
	price := best.Price
	return &price
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
