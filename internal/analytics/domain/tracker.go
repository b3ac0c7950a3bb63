package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Statistics 跨订单的执行质量聚合
type Statistics struct {
	Orders          int
	AvgQualityScore float64
	AvgSlippageBps  float64 // 仅统计有到达价滑点的报告
	AvgFillRate     float64
	TotalVolume     int64
	TotalCommission decimal.Decimal
	BestOrderID     string
	BestScore       float64
	WorstOrderID    string
	WorstScore      float64
}

// PerformanceTracker 执行报告累积器，append-only，互斥锁保护
type PerformanceTracker struct {
	mu      sync.Mutex
	reports []*ExecutionReport
}

// NewPerformanceTracker 创建累积器
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{}
}

// Add 记录一份执行报告
func (t *PerformanceTracker) Add(report *ExecutionReport) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reports = append(t.reports, report)
}

// Count 已累积的报告数量
func (t *PerformanceTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reports)
}

// GetStatistics 返回聚合统计，无报告时返回零值
func (t *PerformanceTracker) GetStatistics() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Statistics{TotalCommission: decimal.Zero}
	if len(t.reports) == 0 {
		return stats
	}

	var qualitySum, fillRateSum, slippageSum float64
	var slippageCount int
	for i, r := range t.reports {
		qualitySum += r.QualityScore
		fillRateSum += r.FillRate
		if r.SlippageVsArrivalBps != nil {
			slippageSum += *r.SlippageVsArrivalBps
			slippageCount++
		}
		stats.TotalVolume += r.FilledQuantity
		stats.TotalCommission = stats.TotalCommission.Add(r.TotalCommission)

		if i == 0 || r.QualityScore > stats.BestScore {
			stats.BestScore = r.QualityScore
			stats.BestOrderID = r.OrderID
		}
		if i == 0 || r.QualityScore < stats.WorstScore {
			stats.WorstScore = r.QualityScore
			stats.WorstOrderID = r.OrderID
		}
	}

	stats.Orders = len(t.reports)
	stats.AvgQualityScore = qualitySum / float64(len(t.reports))
	stats.AvgFillRate = fillRateSum / float64(len(t.reports))
	if slippageCount > 0 {
		stats.AvgSlippageBps = slippageSum / float64(slippageCount)
	}

	return stats
}

// Clear 清空累积的报告
func (t *PerformanceTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reports = nil
}
