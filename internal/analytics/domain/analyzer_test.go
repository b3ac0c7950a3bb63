package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestSlippageBps(t *testing.T) {
	t.Run("buy above benchmark is positive", func(t *testing.T) {
		bps := SlippageBps(dec("101"), dec("100"), TradeSideBuy)
		assert.InDelta(t, 100, bps, 1e-9)
	})

	t.Run("buy below benchmark is negative", func(t *testing.T) {
		bps := SlippageBps(dec("99"), dec("100"), TradeSideBuy)
		assert.InDelta(t, -100, bps, 1e-9)
	})

	t.Run("sell below benchmark is positive", func(t *testing.T) {
		bps := SlippageBps(dec("99"), dec("100"), TradeSideSell)
		assert.InDelta(t, 100, bps, 1e-9)
	})

	t.Run("sell above benchmark is negative", func(t *testing.T) {
		bps := SlippageBps(dec("101"), dec("100"), TradeSideSell)
		assert.InDelta(t, -100, bps, 1e-9)
	})

	t.Run("zero benchmark", func(t *testing.T) {
		assert.Zero(t, SlippageBps(dec("101"), decimal.Zero, TradeSideBuy))
	})
}

// 完整的买单场景：1000 股，三笔成交，到达价 150.00
func TestAnalyzeExecution_BuyOrder(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-1", Symbol: "AAPL", Side: TradeSideBuy, TotalQuantity: 1000}
	fills := []*Fill{
		{FillID: "f1", Quantity: 300, Price: dec("150.10"), VenueID: "NYSE", Commission: dec("1.5")},
		{FillID: "f2", Quantity: 400, Price: dec("150.15"), VenueID: "ARCA", Commission: dec("2")},
		{FillID: "f3", Quantity: 300, Price: dec("150.12"), VenueID: "NYSE", Commission: dec("1.5")},
	}
	benchmarks := &Benchmarks{Arrival: decPtr("150.00")}

	report := a.AnalyzeExecution(order, fills, benchmarks, 0, nil, nil)

	assert.Equal(t, int64(1000), report.FilledQuantity)
	assert.InDelta(t, 100, report.FillRate, 1e-9)
	// (300×150.10 + 400×150.15 + 300×150.12) / 1000 = 150.126
	assert.True(t, report.AvgFillPrice.Equal(dec("150.126")), "avg=%s", report.AvgFillPrice)

	require.NotNil(t, report.SlippageVsArrivalBps)
	// 0.126 / 150 × 10000 = 8.4 bps
	assert.InDelta(t, 8.4, *report.SlippageVsArrivalBps, 1e-9)

	assert.True(t, report.TotalCommission.Equal(dec("5")))
	assert.True(t, report.SlippageCost.Equal(dec("126")), "slippage cost=%s", report.SlippageCost)
	assert.True(t, report.TotalCost.Equal(dec("131")))

	assert.Equal(t, map[string]int64{"NYSE": 600, "ARCA": 400}, report.VenueFills)
	assert.Zero(t, report.DarkPoolRate)

	// 滑点 75 / 成交率 100 / 暗池 40，权重 0.4/0.3/0.15 归一化
	assert.InDelta(t, 66.0/0.85, report.QualityScore, 1e-9)
	assert.Equal(t, "B", report.Grade)
}

func TestAnalyzeExecution_SellSide(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-2", Symbol: "AAPL", Side: TradeSideSell, TotalQuantity: 500}
	fills := []*Fill{
		{FillID: "f1", Quantity: 500, Price: dec("149.50"), VenueID: "NYSE"},
	}
	benchmarks := &Benchmarks{Arrival: decPtr("150.00")}

	report := a.AnalyzeExecution(order, fills, benchmarks, 0, nil, nil)

	require.NotNil(t, report.SlippageVsArrivalBps)
	// 卖单低于到达价：正滑点
	assert.Greater(t, *report.SlippageVsArrivalBps, 0.0)
	// 成本用绝对价差
	assert.True(t, report.SlippageCost.Equal(dec("250")))
}

func TestAnalyzeExecution_PartialFill(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-3", Symbol: "MSFT", Side: TradeSideBuy, TotalQuantity: 1000}
	fills := []*Fill{
		{FillID: "f1", Quantity: 600, Price: dec("400"), VenueID: "NASDAQ"},
	}

	report := a.AnalyzeExecution(order, fills, nil, 0, nil, nil)

	assert.InDelta(t, 60, report.FillRate, 1e-9)
	assert.Nil(t, report.SlippageVsArrivalBps)
	assert.Contains(t, report.Suggestions, "Low fill rate; consider more aggressive limit prices or additional venues")
}

func TestAnalyzeExecution_NoFills(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-4", Symbol: "MSFT", Side: TradeSideBuy, TotalQuantity: 1000}

	report := a.AnalyzeExecution(order, nil, &Benchmarks{Arrival: decPtr("400")}, 0, nil, nil)

	assert.Zero(t, report.FilledQuantity)
	assert.Zero(t, report.FillRate)
	assert.Nil(t, report.SlippageVsArrivalBps)
	assert.True(t, report.AvgFillPrice.IsZero())
	// 只剩成交率分量：0 分
	assert.Zero(t, report.QualityScore)
	assert.Equal(t, "F", report.Grade)
}

func TestAnalyzeExecution_DarkPoolAndParticipation(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-5", Symbol: "AAPL", Side: TradeSideBuy, TotalQuantity: 1000}
	fills := []*Fill{
		{FillID: "f1", Quantity: 600, Price: dec("150"), VenueID: "SIGMA_X", IsDarkPool: true},
		{FillID: "f2", Quantity: 400, Price: dec("150"), VenueID: "NYSE"},
	}
	benchmarks := &Benchmarks{Arrival: decPtr("150.00")}

	report := a.AnalyzeExecution(order, fills, benchmarks, 50000, nil, nil)

	assert.Equal(t, int64(600), report.DarkPoolQuantity)
	assert.InDelta(t, 60, report.DarkPoolRate, 1e-9)

	require.NotNil(t, report.ParticipationRate)
	assert.InDelta(t, 2, *report.ParticipationRate, 1e-9)

	// 滑点 0 → 100 分；全分量满分 100，除暗池 100 与参与率 100
	assert.InDelta(t, 100, report.QualityScore, 1e-9)
	assert.Equal(t, "A+", report.Grade)
	assert.Contains(t, report.Suggestions, "Heavy dark pool usage; verify lit-market price discovery is not being missed")
}

func TestAnalyzeExecution_MarketImpactCapped(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-6", Symbol: "AAPL", Side: TradeSideBuy, TotalQuantity: 1000}
	fills := []*Fill{
		{FillID: "f1", Quantity: 1000, Price: dec("151.50"), VenueID: "NYSE"},
	}
	benchmarks := &Benchmarks{Arrival: decPtr("150.00")}

	// 参与率 50%：0.5×|滑点|×5 会超过 |滑点|，应被截断
	report := a.AnalyzeExecution(order, fills, benchmarks, 2000, nil, nil)

	require.NotNil(t, report.MarketImpactBps)
	require.NotNil(t, report.SlippageVsArrivalBps)
	assert.InDelta(t, *report.SlippageVsArrivalBps, *report.MarketImpactBps, 1e-9)
}

func TestAnalyzeExecution_Duration(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-7", Symbol: "AAPL", Side: TradeSideBuy, TotalQuantity: 100}
	fills := []*Fill{{FillID: "f1", Quantity: 100, Price: dec("150"), VenueID: "NYSE"}}

	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	report := a.AnalyzeExecution(order, fills, nil, 0, &start, &end)

	require.NotNil(t, report.DurationSeconds)
	assert.InDelta(t, 2700, *report.DurationSeconds, 1e-9)

	// 顺序颠倒时不产生时长
	report = a.AnalyzeExecution(order, fills, nil, 0, &end, &start)
	assert.Nil(t, report.DurationSeconds)
}

func TestAnalyzeExecution_BeatVWAPSuggestion(t *testing.T) {
	a := NewExecutionAnalyzer()
	order := ParentOrder{OrderID: "ord-8", Symbol: "AAPL", Side: TradeSideBuy, TotalQuantity: 100}
	fills := []*Fill{{FillID: "f1", Quantity: 100, Price: dec("149.90"), VenueID: "SIGMA_X", IsDarkPool: true}}
	benchmarks := &Benchmarks{Arrival: decPtr("149.80"), VWAP: decPtr("150.00")}

	report := a.AnalyzeExecution(order, fills, benchmarks, 0, nil, nil)

	require.NotNil(t, report.SlippageVsVWAPBps)
	assert.Less(t, *report.SlippageVsVWAPBps, 0.0)
	assert.Contains(t, report.Suggestions, "Execution beat VWAP, current scheduling is working well")
}

func TestGradeFromScore(t *testing.T) {
	cases := []struct {
		score float64
		grade string
	}{
		{100, "A+"}, {95, "A+"}, {94.9, "A"}, {90, "A"}, {87, "A-"},
		{82, "B+"}, {77, "B"}, {72, "B-"}, {67, "C+"}, {62, "C"},
		{55, "D"}, {49.9, "F"}, {30, "F"}, {0, "F"},
	}
	for _, c := range cases {
		assert.Equal(t, c.grade, GradeFromScore(c.score), "score=%v", c.score)
	}
}

func TestIsDarkVenueName(t *testing.T) {
	assert.True(t, IsDarkVenueName("Sigma Dark Pool"))
	assert.True(t, IsDarkVenueName("DARK-X"))
	assert.False(t, IsDarkVenueName("NYSE"))
	assert.False(t, IsDarkVenueName(""))
}

func TestBenchmarkCalculator(t *testing.T) {
	var calc BenchmarkCalculator
	base := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	points := []PricePoint{
		{Timestamp: base, Price: dec("100"), Volume: 1000},
		{Timestamp: base.Add(time.Minute), Price: dec("102"), Volume: 3000},
		{Timestamp: base.Add(2 * time.Minute), Price: dec("101"), Volume: 0},
	}

	t.Run("vwap ignores zero volume", func(t *testing.T) {
		vwap := calc.VWAP(points)
		require.NotNil(t, vwap)
		// (100×1000 + 102×3000) / 4000 = 101.5
		assert.True(t, vwap.Equal(dec("101.5")), "vwap=%s", vwap)
	})

	t.Run("vwap nil without volume", func(t *testing.T) {
		assert.Nil(t, calc.VWAP([]PricePoint{{Price: dec("100")}}))
		assert.Nil(t, calc.VWAP(nil))
	})

	t.Run("twap simple mean", func(t *testing.T) {
		twap := calc.TWAP(points)
		require.NotNil(t, twap)
		assert.True(t, twap.Equal(dec("101")))
	})

	t.Run("twap nil when empty", func(t *testing.T) {
		assert.Nil(t, calc.TWAP(nil))
	})

	t.Run("arrival picks nearest point", func(t *testing.T) {
		price := calc.ArrivalPrice(points, base.Add(50*time.Second))
		require.NotNil(t, price)
		assert.True(t, price.Equal(dec("102")))
	})

	t.Run("arrival nil when empty", func(t *testing.T) {
		assert.Nil(t, calc.ArrivalPrice(nil, base))
	})
}

func TestPerformanceTracker(t *testing.T) {
	slip := 8.4
	mk := func(id string, score, fillRate float64, qty int64, slippage *float64) *ExecutionReport {
		return &ExecutionReport{
			OrderID:              id,
			QualityScore:         score,
			FillRate:             fillRate,
			FilledQuantity:       qty,
			TotalCommission:      dec("2"),
			SlippageVsArrivalBps: slippage,
		}
	}

	t.Run("statistics over reports", func(t *testing.T) {
		tr := NewPerformanceTracker()
		tr.Add(mk("a", 90, 100, 1000, &slip))
		tr.Add(mk("b", 70, 80, 500, nil))

		assert.Equal(t, 2, tr.Count())

		stats := tr.GetStatistics()
		assert.Equal(t, 2, stats.Orders)
		assert.InDelta(t, 80, stats.AvgQualityScore, 1e-9)
		assert.InDelta(t, 90, stats.AvgFillRate, 1e-9)
		// 只有一份报告有到达价滑点
		assert.InDelta(t, 8.4, stats.AvgSlippageBps, 1e-9)
		assert.Equal(t, int64(1500), stats.TotalVolume)
		assert.True(t, stats.TotalCommission.Equal(dec("4")))
		assert.Equal(t, "a", stats.BestOrderID)
		assert.Equal(t, "b", stats.WorstOrderID)
	})

	t.Run("empty tracker", func(t *testing.T) {
		tr := NewPerformanceTracker()
		stats := tr.GetStatistics()
		assert.Zero(t, stats.Orders)
		assert.True(t, stats.TotalCommission.IsZero())
	})

	t.Run("clear", func(t *testing.T) {
		tr := NewPerformanceTracker()
		tr.Add(mk("a", 90, 100, 1000, nil))
		tr.Clear()
		assert.Zero(t, tr.Count())
	})
}
