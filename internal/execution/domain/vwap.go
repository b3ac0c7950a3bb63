package domain

import (
	"math"
	"time"
)

// vwap 切片数量扰动幅度
const vwapSizeJitterPct = 0.10

// DefaultVolumeProfile 默认的 13 段日内成交量分布（U 型：开盘收盘高、午间低）
// 各段占比之和恒为 1.0
func DefaultVolumeProfile() []float64 {
	return []float64{
		0.12, 0.09, 0.07, 0.06, 0.05, 0.05, 0.04,
		0.05, 0.05, 0.07, 0.09, 0.11, 0.15,
	}
}

// VWAP 成交量加权平均价格策略：
// 按日内成交量分布比例分配每段数量，末段吸收取整误差
type VWAP struct {
	p Params
}

// NewVWAP 创建 VWAP 算法
func NewVWAP(p Params) *VWAP {
	return &VWAP{p: p}
}

// GenerateSlices 按成交量分布生成切片
func (a *VWAP) GenerateSlices(snapshot *MarketSnapshot) (*Plan, error) {
	p := a.p
	if p.TotalQuantity <= 0 || p.DurationMinutes <= 0 {
		return nil, ErrInvalidOrderParams
	}

	profile := p.VolumeProfile
	if len(profile) == 0 {
		profile = DefaultVolumeProfile()
	}
	profile = normalizeProfile(profile)

	n := len(profile)
	interval := time.Duration(p.DurationMinutes) * time.Minute / time.Duration(n)

	slices := make([]*OrderSlice, 0, n)
	for i := 0; i < n; i++ {
		slices = append(slices, &OrderSlice{
			Quantity:    int64(math.Round(float64(p.TotalQuantity) * profile[i])),
			ScheduledAt: p.StartTime.Add(time.Duration(i) * interval),
		})
	}
	// 末段吸收取整误差，保证总量精确
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
		Algorithm:     "vwap",
		Symbol:        p.Symbol,
		Side:          p.Side,
		TotalQuantity: p.TotalQuantity,
		Slices:        slices,
		GeneratedAt:   time.Now(),
	}, nil
}

// normalizeProfile 归一化占比，防止自定义分布之和偏离 1
func normalizeProfile(profile []float64) []float64 {
	var sum float64
	for _, f := range profile {
		sum += f
	}
	if sum <= 0 {
		return DefaultVolumeProfile()
	}
	out := make([]float64, len(profile))
	for i, f := range profile {
		out[i] = f / sum
	}
	return out
}

// dropEmptySlices 去掉取整后为 0 的切片，计划内不允许 0 数量
func dropEmptySlices(slices []*OrderSlice) []*OrderSlice {
	out := slices[:0]
	for _, s := range slices {
		if s.Quantity > 0 {
			out = append(out, s)
		}
	}
	return out
}
