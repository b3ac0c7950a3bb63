package domain

import "sync"

// VenuePerformance 单一场所的表现汇总
type VenuePerformance struct {
	VenueID           string
	Fills             int64
	AvgFillTimeMs     float64
	AvgSlippageBps    float64
	AvgImprovementBps float64
	FillRate          float64 // 成交数量 / 请求数量 × 100
}

type venueStats struct {
	fills               int64
	totalFillTimeMs     float64
	totalSlippageBps    float64
	totalImprovementBps float64
	filledQuantity      int64
	requestedQuantity   int64
}

// VenuePerformanceTracker 场所表现跟踪器。
// 增量更新运行和，每笔成交 O(1)；被并发订单共享，内部用互斥锁保护。
type VenuePerformanceTracker struct {
	mu    sync.Mutex
	stats map[string]*venueStats
}

// NewVenuePerformanceTracker 创建跟踪器
func NewVenuePerformanceTracker() *VenuePerformanceTracker {
	return &VenuePerformanceTracker{stats: make(map[string]*venueStats)}
}

// RecordFill 记录单笔成交的表现数据
func (t *VenuePerformanceTracker) RecordFill(venueID string, fillTimeMs, slippageBps, improvementBps float64, filled, requested int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.stats[venueID]
	if !ok {
		st = &venueStats{}
		t.stats[venueID] = st
	}
	st.fills++
	st.totalFillTimeMs += fillTimeMs
	st.totalSlippageBps += slippageBps
	st.totalImprovementBps += improvementBps
	st.filledQuantity += filled
	st.requestedQuantity += requested
}

// AvgFillTime 平均成交耗时（毫秒）
func (t *VenuePerformanceTracker) AvgFillTime(venueID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stats[venueID]
	if !ok || st.fills == 0 {
		return 0, false
	}
	return st.totalFillTimeMs / float64(st.fills), true
}

// AvgSlippage 平均滑点（基点）
func (t *VenuePerformanceTracker) AvgSlippage(venueID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stats[venueID]
	if !ok || st.fills == 0 {
		return 0, false
	}
	return st.totalSlippageBps / float64(st.fills), true
}

// AvgImprovement 平均价格改善（基点）
func (t *VenuePerformanceTracker) AvgImprovement(venueID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stats[venueID]
	if !ok || st.fills == 0 {
		return 0, false
	}
	return st.totalImprovementBps / float64(st.fills), true
}

// FillRate 成交率（百分比）
func (t *VenuePerformanceTracker) FillRate(venueID string) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.stats[venueID]
	if !ok || st.requestedQuantity == 0 {
		return 0, false
	}
	return float64(st.filledQuantity) / float64(st.requestedQuantity) * 100, true
}

// Snapshot 导出全部场所的表现汇总
func (t *VenuePerformanceTracker) Snapshot() map[string]VenuePerformance {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]VenuePerformance, len(t.stats))
	for id, st := range t.stats {
		perf := VenuePerformance{VenueID: id, Fills: st.fills}
		if st.fills > 0 {
			perf.AvgFillTimeMs = st.totalFillTimeMs / float64(st.fills)
			perf.AvgSlippageBps = st.totalSlippageBps / float64(st.fills)
			perf.AvgImprovementBps = st.totalImprovementBps / float64(st.fills)
		}
		if st.requestedQuantity > 0 {
			perf.FillRate = float64(st.filledQuantity) / float64(st.requestedQuantity) * 100
		}
		out[id] = perf
	}
	return out
}
