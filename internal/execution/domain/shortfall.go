package domain

import (
	"math"
	"time"
)

// ImplementationShortfall 执行偏差策略：
// 紧迫度越高切片越多、越前置（指数衰减权重），以压低相对到达价的机会成本
type ImplementationShortfall struct {
	p Params
}

// NewImplementationShortfall 创建 IS 算法，Urgency 取值 [0,1]
func NewImplementationShortfall(p Params) *ImplementationShortfall {
	if p.Urgency < 0 {
		p.Urgency = 0
	}
	if p.Urgency > 1 {
		p.Urgency = 1
	}
	return &ImplementationShortfall{p: p}
}

// GenerateSlices 按前置的指数衰减权重分配数量
func (a *ImplementationShortfall) GenerateSlices(snapshot *MarketSnapshot) (*Plan, error) {
	p := a.p
	if p.TotalQuantity <= 0 || p.DurationMinutes <= 0 {
		return nil, ErrInvalidOrderParams
	}

	n := int(10*p.Urgency + 5)
	if n < 3 {
		n = 3
	}
	if int64(n) > p.TotalQuantity {
		n = int(p.TotalQuantity)
	}
	if n < 1 {
		n = 1
	}

	// decay 越小权重衰减越快，高紧迫度对应更前置的分布
	decay := 2 + 3*p.Urgency

	weights := make([]float64, n)
	var weightSum float64
	for i := 0; i < n; i++ {
		weights[i] = math.Exp(-float64(i) / decay)
		weightSum += weights[i]
	}

	interval := time.Duration(p.DurationMinutes) * time.Minute / time.Duration(n)
	slices := make([]*OrderSlice, 0, n)
	for i := 0; i < n; i++ {
		slices = append(slices, &OrderSlice{
			Quantity:    int64(math.Round(float64(p.TotalQuantity) * weights[i] / weightSum)),
			ScheduledAt: p.StartTime.Add(time.Duration(i) * interval),
		})
	}
	slices = reconcileLast(slices, p.TotalQuantity)

	rng := p.rng()
	if p.RandomizeSize {
		slices = randomizeInterior(slices, p.TotalQuantity, vwapSizeJitterPct, rng)
	}
	if p.RandomizeTiming {
		jitterTiming(slices, p.StartTime, defaultMaxTimingJitter, rng)
	}
	slices = dropEmptySlices(slices)

	return &Plan{
		Algorithm:     "is",
		Symbol:        p.Symbol,
		Side:          p.Side,
		TotalQuantity: p.TotalQuantity,
		Slices:        slices,
		GeneratedAt:   time.Now(),
	}, nil
}
