package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *SmartRouter {
	return NewSmartRouter(NewVenueSelector(DefaultSelectorWeights()), DefaultRouterConfig())
}

func TestSmartRouter_RouteOrder(t *testing.T) {
	r := newTestRouter()
	price := decimal.NewFromInt(100)

	t.Run("small order routed to single venue", func(t *testing.T) {
		allocations := r.RouteOrder(testVenues(), 500, price)
		require.Len(t, allocations, 1)
		assert.Equal(t, int64(500), allocations[0].Quantity)
		assert.InDelta(t, 1.0, allocations[0].Weight, 1e-9)
	})

	t.Run("large order split across top venues", func(t *testing.T) {
		allocations := r.RouteOrder(testVenues(), 50000, price)
		require.Len(t, allocations, 3)

		var sum int64
		var weights float64
		for _, a := range allocations {
			assert.Positive(t, a.Quantity)
			sum += a.Quantity
			weights += a.Weight
		}
		assert.Equal(t, int64(50000), sum)
		assert.InDelta(t, 1.0, weights, 1e-9)
	})

	t.Run("venue count capped", func(t *testing.T) {
		venues := testVenues()
		venues = append(venues,
			&VenueInfo{VenueID: "BATS", LiquidityScore: 75, AvgFillQuality: 80, IsActive: true},
			&VenueInfo{VenueID: "IEX", LiquidityScore: 70, AvgFillQuality: 88, IsActive: true},
		)
		allocations := r.RouteOrder(venues, 50000, price)
		assert.Len(t, allocations, 3)
	})

	t.Run("multi venue disabled", func(t *testing.T) {
		cfg := DefaultRouterConfig()
		cfg.MultiVenueEnabled = false
		single := NewSmartRouter(NewVenueSelector(DefaultSelectorWeights()), cfg)

		allocations := single.RouteOrder(testVenues(), 50000, price)
		require.Len(t, allocations, 1)
		assert.Equal(t, int64(50000), allocations[0].Quantity)
	})

	t.Run("better venues get larger share", func(t *testing.T) {
		allocations := r.RouteOrder(testVenues(), 50000, price)
		require.Len(t, allocations, 3)
		assert.GreaterOrEqual(t, allocations[0].Weight, allocations[1].Weight)
		assert.GreaterOrEqual(t, allocations[1].Weight, allocations[2].Weight)
	})

	t.Run("no active venues", func(t *testing.T) {
		venues := testVenues()
		for _, v := range venues {
			v.IsActive = false
		}
		allocations := r.RouteOrder(venues, 50000, price)
		assert.NotNil(t, allocations)
		assert.Empty(t, allocations)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		assert.Nil(t, r.RouteOrder(testVenues(), 0, price))
		assert.Nil(t, r.RouteOrder(testVenues(), -5, price))
	})

	t.Run("all-zero scores fall back to equal split", func(t *testing.T) {
		// 纯成本权重 + 佣金 ≥ 50bps：每个场所 costScore 为 0，总分为 0
		expensive := CommissionModel{Type: CommissionPercentage, Rate: decimal.NewFromFloat(0.01)}
		venues := []*VenueInfo{
			{VenueID: "A", LiquidityScore: 80, AvgFillQuality: 90, IsActive: true, Commission: expensive},
			{VenueID: "B", LiquidityScore: 60, AvgFillQuality: 70, IsActive: true, Commission: expensive},
		}
		costOnly := NewSmartRouter(NewVenueSelector(SelectorWeights{Cost: 1}), DefaultRouterConfig())

		allocations := costOnly.RouteOrder(venues, 5000, price)
		require.Len(t, allocations, 2)

		var sum int64
		for _, a := range allocations {
			assert.Positive(t, a.Quantity)
			assert.False(t, math.IsNaN(a.Weight))
			assert.InDelta(t, 0.5, a.Weight, 1e-9)
			sum += a.Quantity
		}
		assert.Equal(t, int64(5000), sum)
	})

	t.Run("conservation across quantities", func(t *testing.T) {
		for _, qty := range []int64{1000, 1001, 9999, 77777} {
			allocations := r.RouteOrder(testVenues(), qty, price)
			var sum int64
			for _, a := range allocations {
				sum += a.Quantity
			}
			assert.Equal(t, qty, sum, "qty=%d", qty)
		}
	})
}

func TestSmartRouter_RankDarkEligible(t *testing.T) {
	r := newTestRouter()

	t.Run("only active dark pools", func(t *testing.T) {
		venues := testVenues()
		scores := r.RankDarkEligible(venues)
		require.Len(t, scores, 1)
		assert.Equal(t, "SIGMA", scores[0].Venue.VenueID)
	})

	t.Run("quality weighted over liquidity", func(t *testing.T) {
		venues := []*VenueInfo{
			{VenueID: "D1", Type: VenueTypeDarkPool, LiquidityScore: 90, AvgFillQuality: 50, IsActive: true},
			{VenueID: "D2", Type: VenueTypeDarkPool, LiquidityScore: 50, AvgFillQuality: 90, IsActive: true},
		}
		scores := r.RankDarkEligible(venues)
		require.Len(t, scores, 2)
		// 0.6 权重压在质量上：D2 = 0.9×0.6+0.5×0.4 = 0.74 > D1 = 0.66
		assert.Equal(t, "D2", scores[0].Venue.VenueID)
		assert.InDelta(t, 0.74, scores[0].TotalScore, 1e-9)
	})

	t.Run("unknown quality defaults to midpoint", func(t *testing.T) {
		venues := []*VenueInfo{
			{VenueID: "D1", Type: VenueTypeDarkPool, LiquidityScore: 80, IsActive: true},
		}
		scores := r.RankDarkEligible(venues)
		require.Len(t, scores, 1)
		assert.InDelta(t, 0.5*0.6+0.8*0.4, scores[0].TotalScore, 1e-9)
	})
}

func TestVenuePerformanceTracker(t *testing.T) {
	t.Run("averages over recorded fills", func(t *testing.T) {
		tr := NewVenuePerformanceTracker()
		tr.RecordFill("NYSE", 100, 2, 0.5, 900, 1000)
		tr.RecordFill("NYSE", 200, 4, 1.5, 1000, 1000)

		avgTime, ok := tr.AvgFillTime("NYSE")
		require.True(t, ok)
		assert.InDelta(t, 150, avgTime, 1e-9)

		avgSlip, ok := tr.AvgSlippage("NYSE")
		require.True(t, ok)
		assert.InDelta(t, 3, avgSlip, 1e-9)

		avgImp, ok := tr.AvgImprovement("NYSE")
		require.True(t, ok)
		assert.InDelta(t, 1, avgImp, 1e-9)

		fillRate, ok := tr.FillRate("NYSE")
		require.True(t, ok)
		assert.InDelta(t, 95, fillRate, 1e-9)
	})

	t.Run("unknown venue", func(t *testing.T) {
		tr := NewVenuePerformanceTracker()
		_, ok := tr.AvgFillTime("NOPE")
		assert.False(t, ok)
		_, ok = tr.FillRate("NOPE")
		assert.False(t, ok)
	})

	t.Run("snapshot", func(t *testing.T) {
		tr := NewVenuePerformanceTracker()
		tr.RecordFill("NYSE", 100, 2, 0, 1000, 1000)
		tr.RecordFill("ARCA", 50, 1, 0, 400, 800)

		snap := tr.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, int64(1), snap["NYSE"].Fills)
		assert.InDelta(t, 100, snap["NYSE"].AvgFillTimeMs, 1e-9)
		assert.InDelta(t, 50, snap["ARCA"].FillRate, 1e-9)
	})
}
