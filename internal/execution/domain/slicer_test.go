package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlicer(seed int64) *OrderSlicer {
	return NewOrderSlicer(DefaultSlicerConfig(), rand.New(rand.NewSource(seed)))
}

func TestOrderSlicer_SliceOrder(t *testing.T) {
	t.Run("explicit slice count", func(t *testing.T) {
		s := NewOrderSlicer(DefaultSlicerConfig(), nil)
		result, err := s.SliceOrder(10000, 10, 0)
		require.NoError(t, err)
		require.Len(t, result.Quantities, 10)
		assert.Equal(t, int64(10000), result.Sum())
		for _, q := range result.Quantities {
			assert.Equal(t, int64(1000), q)
		}
	})

	t.Run("remainder goes to leading slices", func(t *testing.T) {
		s := NewOrderSlicer(DefaultSlicerConfig(), nil)
		result, err := s.SliceOrder(1007, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{202, 202, 201, 201, 201}, result.Quantities)
	})

	t.Run("target slice size drives count", func(t *testing.T) {
		s := NewOrderSlicer(DefaultSlicerConfig(), nil)
		result, err := s.SliceOrder(10000, 0, 2500)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 4)
		assert.Equal(t, int64(10000), result.Sum())
	})

	t.Run("default target capped at 500", func(t *testing.T) {
		s := NewOrderSlicer(DefaultSlicerConfig(), nil)
		result, err := s.SliceOrder(5000, 0, 0)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 10)
	})

	t.Run("below minimum returns single slice with warning", func(t *testing.T) {
		s := NewOrderSlicer(DefaultSlicerConfig(), nil)
		result, err := s.SliceOrder(50, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, []int64{50}, result.Quantities)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "below minimum")
	})

	t.Run("invalid total", func(t *testing.T) {
		s := NewOrderSlicer(DefaultSlicerConfig(), nil)
		_, err := s.SliceOrder(0, 5, 0)
		assert.ErrorIs(t, err, ErrInvalidOrderParams)
	})

	t.Run("randomized slices conserve total", func(t *testing.T) {
		s := newTestSlicer(99)
		for _, total := range []int64{1000, 12345, 100000} {
			result, err := s.SliceOrder(total, 20, 0)
			require.NoError(t, err)
			assert.Equal(t, total, result.Sum(), "total=%d", total)
			for _, q := range result.Quantities {
				assert.Positive(t, q)
			}
		}
	})

	t.Run("slice count never exceeds total", func(t *testing.T) {
		s := NewOrderSlicer(SlicerConfig{MinSliceSize: 1}, nil)
		result, err := s.SliceOrder(3, 10, 0)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 3)
		assert.Equal(t, int64(3), result.Sum())
	})
}

func TestOrderSlicer_CreateIcebergOrder(t *testing.T) {
	s := NewOrderSlicer(DefaultSlicerConfig(), nil)

	t.Run("display repeats until exhausted", func(t *testing.T) {
		clips, err := s.CreateIcebergOrder(5000, 500, 0)
		require.NoError(t, err)
		require.Len(t, clips, 10)

		var sum int64
		for i, c := range clips {
			assert.Equal(t, i, c.Sequence)
			assert.Equal(t, int64(500), c.Quantity)
			assert.Equal(t, int64(500), c.DisplayQuantity)
			assert.Equal(t, int64(0), c.HiddenQuantity)
			sum += c.Quantity
		}
		assert.Equal(t, int64(5000), sum)
	})

	t.Run("clip size larger than display hides the rest", func(t *testing.T) {
		clips, err := s.CreateIcebergOrder(5000, 500, 2000)
		require.NoError(t, err)
		// 首 clip 500 全显示，其后 2000/2000/500
		require.Len(t, clips, 4)
		assert.Equal(t, int64(500), clips[0].Quantity)
		assert.Equal(t, int64(0), clips[0].HiddenQuantity)
		assert.Equal(t, int64(2000), clips[1].Quantity)
		assert.Equal(t, int64(500), clips[1].DisplayQuantity)
		assert.Equal(t, int64(1500), clips[1].HiddenQuantity)

		var sum int64
		for _, c := range clips {
			sum += c.Quantity
			assert.Equal(t, c.Quantity, c.DisplayQuantity+c.HiddenQuantity)
		}
		assert.Equal(t, int64(5000), sum)
	})

	t.Run("final clip absorbs remainder", func(t *testing.T) {
		clips, err := s.CreateIcebergOrder(1200, 500, 0)
		require.NoError(t, err)
		require.Len(t, clips, 3)
		assert.Equal(t, int64(200), clips[2].Quantity)
		assert.Equal(t, int64(200), clips[2].DisplayQuantity)
	})

	t.Run("display equal to total is a single clip", func(t *testing.T) {
		clips, err := s.CreateIcebergOrder(500, 500, 0)
		require.NoError(t, err)
		require.Len(t, clips, 1)
		assert.Equal(t, int64(500), clips[0].Quantity)
		assert.Equal(t, int64(0), clips[0].HiddenQuantity)
	})

	t.Run("display exceeding total rejected", func(t *testing.T) {
		_, err := s.CreateIcebergOrder(400, 500, 0)
		assert.ErrorIs(t, err, ErrDisplayExceedsTotal)
	})

	t.Run("non-positive display rejected", func(t *testing.T) {
		_, err := s.CreateIcebergOrder(400, 0, 0)
		assert.ErrorIs(t, err, ErrInvalidDisplayQuantity)
	})
}

func TestAdaptiveSlicer_SliceWithMarketImpact(t *testing.T) {
	base := NewOrderSlicer(SlicerConfig{MinSliceSize: 1, MaxSliceSize: 100000}, nil)
	a := NewAdaptiveSlicer(base, rand.New(rand.NewSource(1)))

	t.Run("low participation", func(t *testing.T) {
		// 5000 / 1000000 = 0.5% 参与率
		result, err := a.SliceWithMarketImpact(5000, 1000000, 0.01, 5)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 2)
		assert.Equal(t, int64(5000), result.Sum())
	})

	t.Run("medium participation", func(t *testing.T) {
		// 30000 / 1000000 = 3% → max(5, 9) = 9
		result, err := a.SliceWithMarketImpact(30000, 1000000, 0.01, 5)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 9)
		assert.Equal(t, int64(30000), result.Sum())
	})

	t.Run("high participation", func(t *testing.T) {
		// 100000 / 1000000 = 10% → max(10, 40) = 40
		result, err := a.SliceWithMarketImpact(100000, 1000000, 0.01, 5)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 40)
		assert.Equal(t, int64(100000), result.Sum())
	})

	t.Run("volatility and spread boost slice count", func(t *testing.T) {
		// 基准 9 片；高波动 ×1.3 → 11；宽点差再 ×1.2 → 13
		result, err := a.SliceWithMarketImpact(30000, 1000000, 0.05, 25)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 13)
		assert.Equal(t, int64(30000), result.Sum())
	})

	t.Run("no volume estimate defaults to five", func(t *testing.T) {
		result, err := a.SliceWithMarketImpact(5000, 0, 0.01, 5)
		require.NoError(t, err)
		assert.Len(t, result.Quantities, 5)
	})

	t.Run("invalid total", func(t *testing.T) {
		_, err := a.SliceWithMarketImpact(0, 1000000, 0.01, 5)
		assert.ErrorIs(t, err, ErrInvalidOrderParams)
	})
}

func TestAdaptiveSlicer_CreateStealthSlices(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("stays under participation cap", func(t *testing.T) {
		base := NewOrderSlicer(SlicerConfig{MinSliceSize: 1, MaxSliceSize: 100000}, nil)
		a := NewAdaptiveSlicer(base, rand.New(rand.NewSource(3)))

		// 每分钟成交量 10000，5% = 500 股目标切片
		slices, warnings, err := a.CreateStealthSlices(5000, 30, 3900000, start)
		require.NoError(t, err)
		assert.Empty(t, warnings)

		var sum int64
		end := start.Add(30 * time.Minute)
		for _, s := range slices {
			sum += s.Quantity
			assert.False(t, s.ScheduledAt.Before(start))
			assert.True(t, s.ScheduledAt.Before(end))
		}
		assert.Equal(t, int64(5000), sum)
	})

	t.Run("warns when window cannot absorb the order", func(t *testing.T) {
		base := NewOrderSlicer(SlicerConfig{MinSliceSize: 1, MaxSliceSize: 1000000}, nil)
		a := NewAdaptiveSlicer(base, rand.New(rand.NewSource(3)))

		_, warnings, err := a.CreateStealthSlices(1000000, 10, 3900000, start)
		require.NoError(t, err)
		require.NotEmpty(t, warnings)
		assert.Contains(t, warnings[0], "5% per-minute participation")
	})

	t.Run("iceberg display between 30 and 50 percent", func(t *testing.T) {
		base := NewOrderSlicer(SlicerConfig{MinSliceSize: 1, MaxSliceSize: 1000000}, nil)
		a := NewAdaptiveSlicer(base, rand.New(rand.NewSource(5)))

		slices, _, err := a.CreateStealthSlices(100000, 30, 39000000, start)
		require.NoError(t, err)

		for _, s := range slices {
			if !s.IsIceberg {
				continue
			}
			assert.Greater(t, s.Quantity, int64(1000))
			lo := float64(s.Quantity) * 0.29
			hi := float64(s.Quantity) * 0.51
			assert.GreaterOrEqual(t, float64(s.DisplayQuantity), lo)
			assert.LessOrEqual(t, float64(s.DisplayQuantity), hi)
		}
	})

	t.Run("invalid params", func(t *testing.T) {
		base := NewOrderSlicer(DefaultSlicerConfig(), nil)
		a := NewAdaptiveSlicer(base, nil)
		_, _, err := a.CreateStealthSlices(0, 30, 1000, start)
		assert.ErrorIs(t, err, ErrInvalidOrderParams)
		_, _, err = a.CreateStealthSlices(1000, 0, 1000, start)
		assert.ErrorIs(t, err, ErrInvalidOrderParams)
	})
}

func TestMarketImpactCalculator(t *testing.T) {
	var calc MarketImpactCalculator

	t.Run("impact grows with participation", func(t *testing.T) {
		small := calc.EstimateImpactBps(1000, 1000000, 0.02, 4)
		large := calc.EstimateImpactBps(100000, 1000000, 0.02, 4)
		assert.Greater(t, large, small)
	})

	t.Run("exact formula", func(t *testing.T) {
		// 半点差 2 + 0.02 × √0.01 × 10000 = 2 + 20 = 22
		impact := calc.EstimateImpactBps(10000, 1000000, 0.02, 4)
		assert.InDelta(t, 22.0, impact, 1e-9)
	})

	t.Run("zero inputs", func(t *testing.T) {
		assert.Zero(t, calc.EstimateImpactBps(0, 1000000, 0.02, 4))
		assert.Zero(t, calc.EstimateImpactBps(1000, 0, 0.02, 4))
	})

	t.Run("optimal slice size", func(t *testing.T) {
		// 3900000 / 390 = 10000 股/分钟，7.5% = 750
		assert.Equal(t, int64(750), calc.OptimalSliceSize(3900000))
		assert.Equal(t, int64(1), calc.OptimalSliceSize(100))
		assert.Zero(t, calc.OptimalSliceSize(0))
	})
}
