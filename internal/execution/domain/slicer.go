package domain

import (
	"errors"
	"math"
	"math/rand"
)

var (
	// ErrInvalidDisplayQuantity 冰山订单显示数量非法
	ErrInvalidDisplayQuantity = errors.New("iceberg display quantity must be positive")
	// ErrDisplayExceedsTotal 冰山订单显示数量超过总量，拒绝而非截断
	ErrDisplayExceedsTotal = errors.New("iceberg display quantity exceeds total quantity")
)

// SlicerConfig 拆单参数
type SlicerConfig struct {
	MinSliceSize int64
	MaxSliceSize int64
}

// DefaultSlicerConfig 默认拆单边界
func DefaultSlicerConfig() SlicerConfig {
	return SlicerConfig{MinSliceSize: 100, MaxSliceSize: 10000}
}

// SliceResult 拆单结果，Quantities 之和严格等于请求总量
type SliceResult struct {
	Quantities []int64
	Warnings   []string
}

// Sum 返回拆分数量之和
func (r *SliceResult) Sum() int64 {
	var sum int64
	for _, q := range r.Quantities {
		sum += q
	}
	return sum
}

// IcebergClip 冰山订单的一个 clip：显示一部分，其余隐藏
type IcebergClip struct {
	Sequence        int
	Quantity        int64
	DisplayQuantity int64
	HiddenQuantity  int64
}

// OrderSlicer 通用拆单器
type OrderSlicer struct {
	cfg SlicerConfig
	rng *rand.Rand
}

// NewOrderSlicer 创建拆单器，rng 为空时使用时间种子
func NewOrderSlicer(cfg SlicerConfig, rng *rand.Rand) *OrderSlicer {
	if cfg.MinSliceSize < 1 {
		cfg.MinSliceSize = 1
	}
	return &OrderSlicer{cfg: cfg, rng: rng}
}

// SliceOrder 将总量拆分成若干子单数量。
// numSlices > 0 时按指定份数拆分；否则按 targetSliceSize（缺省 min(500, total/2)）推算份数。
// 低于最小拆分数量时返回单一子单并附带告警。
func (s *OrderSlicer) SliceOrder(total int64, numSlices int, targetSliceSize int64) (*SliceResult, error) {
	if total <= 0 {
		return nil, ErrInvalidOrderParams
	}

	if total < s.cfg.MinSliceSize {
		return &SliceResult{
			Quantities: []int64{total},
			Warnings:   []string{"order below minimum slice size, returning single slice"},
		}, nil
	}

	n := numSlices
	if n <= 0 {
		target := targetSliceSize
		if target <= 0 {
			target = total / 2
			if target > 500 {
				target = 500
			}
		}
		if target < 1 {
			target = 1
		}
		n = int(math.Ceil(float64(total) / float64(target)))
	}
	if int64(n) > total {
		n = int(total)
	}
	if n < 1 {
		n = 1
	}

	// 余数逐一分配给前面的切片
	base := total / int64(n)
	remainder := total % int64(n)
	quantities := make([]int64, n)
	for i := range quantities {
		quantities[i] = base
		if int64(i) < remainder {
			quantities[i]++
		}
	}

	if s.rng != nil && n > 2 {
		s.randomizeInterior(quantities, total)
	}

	return &SliceResult{Quantities: quantities}, nil
}

// randomizeInterior 内部切片 ±15% 扰动，受最大切片约束，末切片强制对账
func (s *OrderSlicer) randomizeInterior(quantities []int64, total int64) {
	for i := 1; i < len(quantities)-1; i++ {
		factor := 1 + (s.rng.Float64()*2-1)*0.15
		q := int64(math.Round(float64(quantities[i]) * factor))
		if q < 1 {
			q = 1
		}
		if s.cfg.MaxSliceSize > 0 && q > s.cfg.MaxSliceSize {
			q = s.cfg.MaxSliceSize
		}
		quantities[i] = q
	}

	var sum int64
	for _, q := range quantities[:len(quantities)-1] {
		sum += q
	}
	last := total - sum
	// 末位被挤压时从前面的切片逐一找补，每片至少保留 1
	for i := len(quantities) - 2; i > 0 && last < 1; i-- {
		take := quantities[i] - 1
		if take > 1-last {
			take = 1 - last
		}
		if take > 0 {
			quantities[i] -= take
			last += take
		}
	}
	quantities[len(quantities)-1] = last
}

// CreateIcebergOrder 生成冰山订单 clip 序列。
// 首个 clip 全显示、零隐藏；后续 clip 显示 min(remaining, display)，其余隐藏。
// displayQuantity 超过总量时拒绝。
func (s *OrderSlicer) CreateIcebergOrder(total, displayQuantity, clipSize int64) ([]*IcebergClip, error) {
	if total <= 0 {
		return nil, ErrInvalidOrderParams
	}
	if displayQuantity <= 0 {
		return nil, ErrInvalidDisplayQuantity
	}
	if displayQuantity > total {
		return nil, ErrDisplayExceedsTotal
	}
	if clipSize <= 0 {
		clipSize = displayQuantity
	}

	var clips []*IcebergClip
	remaining := total
	for seq := 0; remaining > 0; seq++ {
		var qty int64
		if seq == 0 {
			// 首 clip 只挂显示量，无隐藏部分
			qty = displayQuantity
		} else {
			qty = clipSize
		}
		if qty > remaining {
			qty = remaining
		}
		display := displayQuantity
		if display > qty {
			display = qty
		}
		clips = append(clips, &IcebergClip{
			Sequence:        seq,
			Quantity:        qty,
			DisplayQuantity: display,
			HiddenQuantity:  qty - display,
		})
		remaining -= qty
	}

	return clips, nil
}
