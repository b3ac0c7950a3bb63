package domain

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// ErrUnknownAlgorithm 未知的算法标签
var ErrUnknownAlgorithm = errors.New("unknown execution algorithm")

// 默认的时间扰动上限
const defaultMaxTimingJitter = 30 * time.Second

// 一个交易日的分钟数（09:30 - 16:00）
const tradingDayMinutes = 390

// Algorithm 执行算法统一契约：
// 生成覆盖整个执行窗口的切片序列，数量之和严格等于母单总量
type Algorithm interface {
	GenerateSlices(snapshot *MarketSnapshot) (*Plan, error)
}

// Params 创建算法的参数集合
// NumSlices / VolumeProfile / Urgency / TargetPOV / EstimatedDailyVolume
// 只对各自的算法生效，其余算法忽略
type Params struct {
	Symbol          string
	Side            TradeSide
	TotalQuantity   int64
	DurationMinutes int
	StartTime       time.Time

	NumSlices            int
	SliceIntervalMinutes int
	VolumeProfile        []float64
	Urgency              float64
	TargetPOV            float64
	EstimatedDailyVolume int64

	RandomizeSize   bool
	RandomizeTiming bool

	// Rand 为空时回退到时间种子，测试注入固定种子即可复现扰动路径
	Rand *rand.Rand
}

func (p Params) rng() *rand.Rand {
	if p.Rand != nil {
		return p.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// NewAlgorithm 按标签创建执行算法，标签大小写不敏感
// 未知标签返回 ErrUnknownAlgorithm，不做静默回退
func NewAlgorithm(tag string, p Params) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "twap":
		return NewTWAP(p), nil
	case "vwap":
		return NewVWAP(p), nil
	case "is":
		return NewImplementationShortfall(p), nil
	case "pov":
		return NewPOV(p), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, tag)
	}
}

// randomizeInterior 对内部切片（首尾除外）做有界百分比扰动，
// 末切片吸收差额以保持总量不变
func randomizeInterior(slices []*OrderSlice, total int64, pct float64, rng *rand.Rand) []*OrderSlice {
	if len(slices) < 3 {
		return slices
	}
	for i := 1; i < len(slices)-1; i++ {
		factor := 1 + (rng.Float64()*2-1)*pct
		q := int64(math.Round(float64(slices[i].Quantity) * factor))
		if q < 1 {
			q = 1
		}
		slices[i].Quantity = q
	}
	return reconcileLast(slices, total)
}

// reconcileLast 强制末切片使总量严格相等；
// 末切片被挤压到 0 或负数时逐个回收尾部切片，直到差额为正
func reconcileLast(slices []*OrderSlice, total int64) []*OrderSlice {
	for len(slices) > 0 {
		var sum int64
		for _, s := range slices[:len(slices)-1] {
			sum += s.Quantity
		}
		last := total - sum
		if last > 0 {
			slices[len(slices)-1].Quantity = last
			return slices
		}
		slices = slices[:len(slices)-1]
	}
	return slices
}

// jitterTiming 对每个切片时间加入有界随机偏移，不会早于窗口起点
func jitterTiming(slices []*OrderSlice, start time.Time, maxJitter time.Duration, rng *rand.Rand) {
	for _, s := range slices {
		offset := time.Duration((rng.Float64()*2 - 1) * float64(maxJitter))
		t := s.ScheduledAt.Add(offset)
		if t.Before(start) {
			t = start
		}
		s.ScheduledAt = t
	}
}

// evenSlices 等量拆分：余数逐一分配给前 remainder 个切片
func evenSlices(total int64, n int, start time.Time, interval time.Duration) []*OrderSlice {
	base := total / int64(n)
	remainder := total % int64(n)

	slices := make([]*OrderSlice, 0, n)
	for i := 0; i < n; i++ {
		qty := base
		if int64(i) < remainder {
			qty++
		}
		slices = append(slices, &OrderSlice{
			Quantity:    qty,
			ScheduledAt: start.Add(time.Duration(i) * interval),
		})
	}
	return slices
}
