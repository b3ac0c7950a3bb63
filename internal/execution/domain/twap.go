package domain

import (
	"errors"
	"time"
)

// twap 切片数量扰动幅度
const twapSizeJitterPct = 0.15

// ErrInvalidOrderParams 母单参数非法
var ErrInvalidOrderParams = errors.New("invalid order parameters")

// TWAP 时间加权平均价格策略：
// 在执行窗口内等间隔等量拆分，可选随机扰动以隐藏踪迹
type TWAP struct {
	p Params
}

// NewTWAP 创建 TWAP 算法
func NewTWAP(p Params) *TWAP {
	return &TWAP{p: p}
}

// GenerateSlices 生成等间隔切片序列
func (a *TWAP) GenerateSlices(snapshot *MarketSnapshot) (*Plan, error) {
	p := a.p
	if p.TotalQuantity <= 0 || p.DurationMinutes <= 0 {
		return nil, ErrInvalidOrderParams
	}

	n := p.NumSlices
	if n <= 0 {
		interval := p.SliceIntervalMinutes
		if interval <= 0 {
			interval = 5
		}
		n = p.DurationMinutes / interval
		if n < 2 {
			n = 2
		}
	}
	if int64(n) > p.TotalQuantity {
		n = int(p.TotalQuantity)
	}
	if n < 1 {
		n = 1
	}

	interval := time.Duration(p.DurationMinutes) * time.Minute / time.Duration(n)
	slices := evenSlices(p.TotalQuantity, n, p.StartTime, interval)

	rng := p.rng()
	if p.RandomizeSize {
		slices = randomizeInterior(slices, p.TotalQuantity, twapSizeJitterPct, rng)
	}
	if p.RandomizeTiming {
		jitterTiming(slices, p.StartTime, defaultMaxTimingJitter, rng)
	}

	return &Plan{
		Algorithm:     "twap",
		Symbol:        p.Symbol,
		Side:          p.Side,
		TotalQuantity: p.TotalQuantity,
		Slices:        slices,
		GeneratedAt:   time.Now(),
	}, nil
}
