package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var bpsFactor = decimal.NewFromInt(10000)

// 质量评分各分量的权重，缺失的分量按剩余权重归一化
const (
	slippageWeight      = 0.40
	fillRateWeight      = 0.30
	participationWeight = 0.15
	darkPoolWeight      = 0.15
)

// ExecutionAnalyzer 事后执行质量分析器，无状态
type ExecutionAnalyzer struct{}

// NewExecutionAnalyzer 创建分析器
func NewExecutionAnalyzer() *ExecutionAnalyzer {
	return &ExecutionAnalyzer{}
}

// SlippageBps 计算相对基准价的滑点（基点）。
// 符号约定：正值恒表示劣于基准（买高卖低）。
func SlippageBps(fillPrice, benchmark decimal.Decimal, side TradeSide) float64 {
	if benchmark.IsZero() {
		return 0
	}
	var diff decimal.Decimal
	if side == TradeSideSell {
		diff = benchmark.Sub(fillPrice)
	} else {
		diff = fillPrice.Sub(benchmark)
	}
	return diff.Div(benchmark).Mul(bpsFactor).InexactFloat64()
}

// AnalyzeExecution 根据成交与基准生成执行质量报告。
// benchmarks / marketVolume / start / end 均可缺省，对应的派生指标置空。
func (a *ExecutionAnalyzer) AnalyzeExecution(order ParentOrder, fills []*Fill, benchmarks *Benchmarks, marketVolume int64, start, end *time.Time) *ExecutionReport {
	report := &ExecutionReport{
		OrderID:         order.OrderID,
		Symbol:          order.Symbol,
		Side:            order.Side,
		TotalQuantity:   order.TotalQuantity,
		VenueFills:      make(map[string]int64),
		TotalCommission: decimal.Zero,
		SlippageCost:    decimal.Zero,
		TotalCost:       decimal.Zero,
		GeneratedAt:     time.Now(),
	}

	// 1. 成交聚合
	var notional decimal.Decimal
	for _, f := range fills {
		report.FilledQuantity += f.Quantity
		notional = notional.Add(f.Price.Mul(decimal.NewFromInt(f.Quantity)))
		report.TotalCommission = report.TotalCommission.Add(f.Commission)
		report.VenueFills[f.VenueID] += f.Quantity
		if f.IsDarkPool {
			report.DarkPoolQuantity += f.Quantity
		}
	}
	if order.TotalQuantity > 0 {
		report.FillRate = float64(report.FilledQuantity) / float64(order.TotalQuantity) * 100
	}
	if report.FilledQuantity > 0 {
		report.AvgFillPrice = notional.Div(decimal.NewFromInt(report.FilledQuantity))
		report.DarkPoolRate = float64(report.DarkPoolQuantity) / float64(report.FilledQuantity) * 100
	}

	// 2. 相对各基准的滑点，缺失的基准对应指标置空
	if benchmarks != nil && report.FilledQuantity > 0 {
		report.SlippageVsArrivalBps = slippageAgainst(report.AvgFillPrice, benchmarks.Arrival, order.Side)
		report.SlippageVsVWAPBps = slippageAgainst(report.AvgFillPrice, benchmarks.VWAP, order.Side)
		report.SlippageVsTWAPBps = slippageAgainst(report.AvgFillPrice, benchmarks.TWAP, order.Side)
		report.SlippageVsCloseBps = slippageAgainst(report.AvgFillPrice, benchmarks.Close, order.Side)
	}

	// 3. 成本分解：佣金 + 相对到达价的滑点成本
	if benchmarks != nil && benchmarks.Arrival != nil && report.FilledQuantity > 0 {
		report.SlippageCost = report.AvgFillPrice.Sub(*benchmarks.Arrival).Abs().
			Mul(decimal.NewFromInt(report.FilledQuantity))
	}
	report.TotalCost = report.TotalCommission.Add(report.SlippageCost)

	// 4. 参与率与启发式市场冲击
	if marketVolume > 0 {
		rate := float64(report.FilledQuantity) / float64(marketVolume) * 100
		report.ParticipationRate = &rate

		if report.SlippageVsArrivalBps != nil {
			// 启发式分摊：冲击 ≈ 0.5×|滑点|×(参与率分数×10)，上限为 |滑点|
			absSlippage := math.Abs(*report.SlippageVsArrivalBps)
			impact := 0.5 * absSlippage * (rate / 100 * 10)
			if impact > absSlippage {
				impact = absSlippage
			}
			report.MarketImpactBps = &impact
		}
	}

	// 5. 执行时长
	if start != nil && end != nil && end.After(*start) {
		seconds := end.Sub(*start).Seconds()
		report.DurationSeconds = &seconds
	}

	// 6. 质量评分、评级与建议
	report.QualityScore = a.qualityScore(report, len(fills) > 0)
	report.Grade = GradeFromScore(report.QualityScore)
	report.Suggestions = a.suggestions(report)

	return report
}

func slippageAgainst(avgFill decimal.Decimal, benchmark *decimal.Decimal, side TradeSide) *float64 {
	if benchmark == nil || benchmark.IsZero() {
		return nil
	}
	bps := SlippageBps(avgFill, *benchmark, side)
	return &bps
}

// qualityScore 0-100 加权评分，缺失分量的权重在剩余分量上归一化
func (a *ExecutionAnalyzer) qualityScore(r *ExecutionReport, hasFills bool) float64 {
	var weighted, totalWeight float64

	if r.SlippageVsArrivalBps != nil {
		weighted += slippageWeight * slippageComponent(*r.SlippageVsArrivalBps)
		totalWeight += slippageWeight
	}

	weighted += fillRateWeight * r.FillRate
	totalWeight += fillRateWeight

	if r.ParticipationRate != nil {
		weighted += participationWeight * participationComponent(*r.ParticipationRate)
		totalWeight += participationWeight
	}

	if hasFills {
		weighted += darkPoolWeight * darkPoolComponent(r.DarkPoolRate)
		totalWeight += darkPoolWeight
	}

	if totalWeight == 0 {
		return 0
	}
	score := weighted / totalWeight
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func slippageComponent(slippageBps float64) float64 {
	switch {
	case slippageBps <= 0:
		return 100
	case slippageBps < 5:
		return 90
	case slippageBps < 10:
		return 75
	case slippageBps < 20:
		return 60
	case slippageBps < 30:
		return 40
	default:
		return 20
	}
}

func participationComponent(rate float64) float64 {
	switch {
	case rate < 5:
		return 100
	case rate < 10:
		return 80
	case rate < 20:
		return 60
	default:
		return 40
	}
}

func darkPoolComponent(rate float64) float64 {
	switch {
	case rate > 30:
		return 100
	case rate > 15:
		return 80
	case rate > 5:
		return 60
	default:
		return 40
	}
}

// GradeFromScore 分数到字母评级的固定映射
func GradeFromScore(score float64) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 85:
		return "A-"
	case score >= 80:
		return "B+"
	case score >= 75:
		return "B"
	case score >= 70:
		return "B-"
	case score >= 65:
		return "C+"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// suggestions 确定性的规则建议列表
func (a *ExecutionAnalyzer) suggestions(r *ExecutionReport) []string {
	var out []string

	if r.SlippageVsArrivalBps != nil {
		switch s := *r.SlippageVsArrivalBps; {
		case s > 20:
			out = append(out, "High slippage versus arrival price; consider a longer execution window or more passive placement")
		case s > 10:
			out = append(out, "Moderate slippage versus arrival price; review algorithm aggressiveness")
		}
	}
	if r.SlippageVsVWAPBps != nil && *r.SlippageVsVWAPBps < 0 {
		out = append(out, "Execution beat VWAP, current scheduling is working well")
	}
	if r.FillRate < 90 {
		out = append(out, "Low fill rate; consider more aggressive limit prices or additional venues")
	}
	if r.ParticipationRate != nil {
		switch p := *r.ParticipationRate; {
		case p > 25:
			out = append(out, "High participation rate; spread the order over a longer window to reduce impact")
		case p < 1:
			out = append(out, "Very low participation rate; the order could be executed faster without moving the market")
		}
	}
	if r.FilledQuantity > 0 {
		if r.DarkPoolRate < 10 {
			out = append(out, "Low dark pool usage; routing more size to dark venues may reduce information leakage")
		} else if r.DarkPoolRate > 50 {
			out = append(out, "Heavy dark pool usage; verify lit-market price discovery is not being missed")
		}
	}
	if r.DurationSeconds != nil && *r.DurationSeconds > 4*3600 {
		out = append(out, "Long execution duration; consider splitting across sessions or raising urgency")
	}

	if len(out) == 0 {
		out = append(out, "Execution quality within expected parameters")
	}
	return out
}
