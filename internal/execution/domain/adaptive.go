package domain

import (
	"math"
	"math/rand"
	"time"
)

// AdaptiveSlicer 按市场状态（参与率、波动率、点差）调节拆分粒度的拆单器
type AdaptiveSlicer struct {
	base *OrderSlicer
	rng  *rand.Rand
}

// NewAdaptiveSlicer 创建自适应拆单器
func NewAdaptiveSlicer(base *OrderSlicer, rng *rand.Rand) *AdaptiveSlicer {
	return &AdaptiveSlicer{base: base, rng: rng}
}

// SliceWithMarketImpact 按参与率档位选择切片数量：
// 参与率越高拆得越细；高波动（>3%）与宽点差（>20bps）进一步加密
func (a *AdaptiveSlicer) SliceWithMarketImpact(total, avgDailyVolume int64, volatility, spreadBps float64) (*SliceResult, error) {
	if total <= 0 {
		return nil, ErrInvalidOrderParams
	}

	var n int
	if avgDailyVolume > 0 {
		participation := float64(total) / float64(avgDailyVolume)
		switch {
		case participation < 0.01:
			n = maxInt(2, int(participation*200))
		case participation < 0.05:
			n = maxInt(5, int(participation*300))
		default:
			n = maxInt(10, int(participation*400))
		}
	} else {
		n = 5
	}

	if volatility > 0.03 {
		n = int(float64(n) * 1.3)
	}
	if spreadBps > 20 {
		n = int(float64(n) * 1.2)
	}

	return a.base.SliceOrder(total, n, 0)
}

// CreateStealthSlices 隐身拆分：
// 单个切片不超过每分钟成交量的 5%，切片时间在各自区间内随机化，
// 大切片（>1000 股）有 30% 概率转为冰山，显示 30%-50%
func (a *AdaptiveSlicer) CreateStealthSlices(total int64, durationMinutes int, avgDailyVolume int64, start time.Time) ([]*OrderSlice, []string, error) {
	if total <= 0 || durationMinutes <= 0 {
		return nil, nil, ErrInvalidOrderParams
	}

	var warnings []string
	var targetSize int64
	if avgDailyVolume > 0 {
		perMinuteVolume := float64(avgDailyVolume) / tradingDayMinutes
		targetSize = int64(perMinuteVolume * 0.05)
		if capQty := targetSize * int64(durationMinutes); capQty < total {
			warnings = append(warnings,
				"order too large to stay under 5% per-minute participation within the window")
		}
	}
	if targetSize < 1 {
		targetSize = 0 // 无量可依时交给基础拆单器的默认目标
	}

	result, err := a.base.SliceOrder(total, 0, targetSize)
	if err != nil {
		return nil, nil, err
	}
	warnings = append(warnings, result.Warnings...)

	n := len(result.Quantities)
	interval := time.Duration(durationMinutes) * time.Minute / time.Duration(n)

	slices := make([]*OrderSlice, 0, n)
	for i, qty := range result.Quantities {
		// 切片在自己的时间区间内随机落点
		offset := time.Duration(a.rand().Float64() * float64(interval))
		slice := &OrderSlice{
			Quantity:    qty,
			ScheduledAt: start.Add(time.Duration(i) * interval).Add(offset),
		}
		if qty > 1000 && a.rand().Float64() < 0.30 {
			slice.IsIceberg = true
			displayPct := 0.30 + a.rand().Float64()*0.20
			slice.DisplayQuantity = int64(math.Round(float64(qty) * displayPct))
		}
		slices = append(slices, slice)
	}

	return slices, warnings, nil
}

func (a *AdaptiveSlicer) rand() *rand.Rand {
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a.rng
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
