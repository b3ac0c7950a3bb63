package domain

import (
	"math"
	"time"
)

// POV 策略的目标量刷新间隔（分钟）
const povRefreshMinutes = 3

// POV 成交量百分比策略：
// 按预估市场成交量的固定参与比例分段下单，每 3 分钟刷新一次目标量
type POV struct {
	p Params
}

// NewPOV 创建 POV 算法，TargetPOV 为目标参与率（百分比）
func NewPOV(p Params) *POV {
	return &POV{p: p}
}

// GenerateSlices 按窗口内预估成交量与目标参与率生成切片；
// 缺少成交量预估时退化为等量拆分并附带告警
func (a *POV) GenerateSlices(snapshot *MarketSnapshot) (*Plan, error) {
	p := a.p
	if p.TotalQuantity <= 0 || p.DurationMinutes <= 0 {
		return nil, ErrInvalidOrderParams
	}

	plan := &Plan{
		Algorithm:     "pov",
		Symbol:        p.Symbol,
		Side:          p.Side,
		TotalQuantity: p.TotalQuantity,
		GeneratedAt:   time.Now(),
	}

	dailyVolume := p.EstimatedDailyVolume
	if dailyVolume <= 0 && snapshot != nil {
		dailyVolume = snapshot.Volume
	}

	if dailyVolume <= 0 {
		// 无量可依，退化为 TWAP 式等量拆分
		n := p.DurationMinutes / povRefreshMinutes
		if n < 2 {
			n = 2
		}
		if int64(n) > p.TotalQuantity {
			n = int(p.TotalQuantity)
		}
		if n < 1 {
			n = 1
		}
		interval := time.Duration(p.DurationMinutes) * time.Minute / time.Duration(n)
		plan.Slices = evenSlices(p.TotalQuantity, n, p.StartTime, interval)
		plan.Warnings = append(plan.Warnings,
			"no daily volume estimate available, falling back to time-based equal slicing")
		return plan, nil
	}

	targetPOV := p.TargetPOV
	if targetPOV <= 0 {
		targetPOV = 10
	}

	// 假设 390 分钟交易日内成交均匀，按刷新间隔折算区间成交量
	perMinuteVolume := float64(dailyVolume) / tradingDayMinutes

	remaining := p.TotalQuantity
	var slices []*OrderSlice
	for minute := 0; minute < p.DurationMinutes && remaining > 0; minute += povRefreshMinutes {
		intervalMinutes := povRefreshMinutes
		if p.DurationMinutes-minute < intervalMinutes {
			intervalMinutes = p.DurationMinutes - minute
		}
		intervalVolume := perMinuteVolume * float64(intervalMinutes)
		qty := int64(math.Round(intervalVolume * targetPOV / 100))
		if qty < 1 {
			qty = 1
		}
		if qty > remaining {
			qty = remaining
		}
		slices = append(slices, &OrderSlice{
			Quantity:    qty,
			ScheduledAt: p.StartTime.Add(time.Duration(minute) * time.Minute),
		})
		remaining -= qty
	}

	if remaining > 0 {
		// 目标参与率吃不完母单，余量并入末切片并告警
		slices[len(slices)-1].Quantity += remaining
		plan.Warnings = append(plan.Warnings,
			"target participation rate cannot complete the order within the window, remainder added to final slice")
	}

	// 切片数量即参与率目标，RandomizeSize 对 POV 不生效，仅扰动时间
	if p.RandomizeTiming {
		jitterTiming(slices, p.StartTime, defaultMaxTimingJitter, p.rng())
	}

	plan.Slices = slices
	return plan, nil
}
