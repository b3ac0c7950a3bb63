package domain

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// ImprovementRecord 单笔成交相对 NBBO 中点的价格改善记录
// 符号约定：正值表示优于中点
type ImprovementRecord struct {
	FillID            string
	Symbol            string
	VenueID           string
	Side              OrderSide
	Quantity          int64
	Price             decimal.Decimal
	NBBOBid           decimal.Decimal
	NBBOAsk           decimal.Decimal
	Midpoint          decimal.Decimal
	ImprovementBps    float64
	DollarImprovement decimal.Decimal
	RecordedAt        time.Time
}

// ImprovementStats 价格改善聚合统计
type ImprovementStats struct {
	Fills                  int
	AvgImprovementBps      float64
	ImprovedPct            float64 // 改善为正的成交占比
	TotalDollarImprovement decimal.Decimal
	BestVenueID            string
}

// PriceImprovementTracker 价格改善跟踪器，append-only，互斥锁保护
type PriceImprovementTracker struct {
	mu      sync.Mutex
	records []*ImprovementRecord
}

// NewPriceImprovementTracker 创建跟踪器
func NewPriceImprovementTracker() *PriceImprovementTracker {
	return &PriceImprovementTracker{}
}

// RecordFill 计算并记录一笔暗池成交的价格改善。
// 买单改善 = 中点 − 成交价；卖单改善 = 成交价 − 中点。
func (t *PriceImprovementTracker) RecordFill(fill *DarkPoolFill, nbboBid, nbboAsk decimal.Decimal) *ImprovementRecord {
	mid := nbboBid.Add(nbboAsk).Div(two)

	var improvement decimal.Decimal
	if fill.Side == SideBuy {
		improvement = mid.Sub(fill.Price)
	} else {
		improvement = fill.Price.Sub(mid)
	}

	var bps float64
	if !mid.IsZero() {
		bps = improvement.Div(mid).Mul(decimal.NewFromInt(10000)).InexactFloat64()
	}

	rec := &ImprovementRecord{
		FillID:            fill.FillID,
		Symbol:            fill.Symbol,
		VenueID:           fill.VenueID,
		Side:              fill.Side,
		Quantity:          fill.Quantity,
		Price:             fill.Price,
		NBBOBid:           nbboBid,
		NBBOAsk:           nbboAsk,
		Midpoint:          mid,
		ImprovementBps:    bps,
		DollarImprovement: improvement.Mul(decimal.NewFromInt(fill.Quantity)),
		RecordedAt:        time.Now(),
	}

	t.mu.Lock()
	t.records = append(t.records, rec)
	t.mu.Unlock()

	return rec
}

// Stats 聚合统计，symbol / venueID 为空表示不过滤
func (t *PriceImprovementTracker) Stats(symbol, venueID string) ImprovementStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := ImprovementStats{TotalDollarImprovement: decimal.Zero}

	var totalBps float64
	var improved int
	venueBps := make(map[string]float64)
	venueFills := make(map[string]int)

	for _, rec := range t.records {
		if symbol != "" && rec.Symbol != symbol {
			continue
		}
		if venueID != "" && rec.VenueID != venueID {
			continue
		}
		stats.Fills++
		totalBps += rec.ImprovementBps
		if rec.ImprovementBps > 0 {
			improved++
		}
		stats.TotalDollarImprovement = stats.TotalDollarImprovement.Add(rec.DollarImprovement)
		venueBps[rec.VenueID] += rec.ImprovementBps
		venueFills[rec.VenueID]++
	}

	if stats.Fills == 0 {
		return stats
	}

	stats.AvgImprovementBps = totalBps / float64(stats.Fills)
	stats.ImprovedPct = float64(improved) / float64(stats.Fills) * 100

	best := ""
	bestAvg := 0.0
	for id, sum := range venueBps {
		avg := sum / float64(venueFills[id])
		if best == "" || avg > bestAvg {
			best = id
			bestAvg = avg
		}
	}
	stats.BestVenueID = best

	return stats
}
