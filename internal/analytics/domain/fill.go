// Package domain 提供事后执行质量分析：滑点、成本、质量评分与改进建议。
// 报告一经生成不再变更；PerformanceTracker 是本包唯一的可变状态。
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide 交易方向
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Fill 券商回报的成交记录，只读
type Fill struct {
	FillID     string
	Timestamp  time.Time
	Quantity   int64
	Price      decimal.Decimal
	VenueID    string
	VenueName  string
	Commission decimal.Decimal
	IsDarkPool bool
}

// Benchmarks 外部行情方提供的基准价格，缺失项为 nil
type Benchmarks struct {
	Arrival *decimal.Decimal
	VWAP    *decimal.Decimal
	TWAP    *decimal.Decimal
	Close   *decimal.Decimal
}

// ParentOrder 被分析的母单描述
type ParentOrder struct {
	OrderID       string
	Symbol        string
	Side          TradeSide
	TotalQuantity int64
}

// ExecutionReport 执行质量报告，每个完成的母单生成一次，终态不可变
type ExecutionReport struct {
	OrderID       string
	Symbol        string
	Side          TradeSide
	TotalQuantity int64

	FilledQuantity int64
	FillRate       float64 // 百分比
	AvgFillPrice   decimal.Decimal

	SlippageVsArrivalBps *float64
	SlippageVsVWAPBps    *float64
	SlippageVsTWAPBps    *float64
	SlippageVsCloseBps   *float64

	TotalCommission decimal.Decimal
	SlippageCost    decimal.Decimal
	TotalCost       decimal.Decimal

	ParticipationRate *float64 // 百分比
	MarketImpactBps   *float64

	VenueFills       map[string]int64
	DarkPoolQuantity int64
	DarkPoolRate     float64 // 百分比

	DurationSeconds *float64

	QualityScore float64 // 0-100
	Grade        string
	Suggestions  []string

	GeneratedAt time.Time
}

// IsDarkVenueName 按场所名称猜测是否为暗池。
// 仅作为 Fill.IsDarkPool 缺失时的兜底，名称不可靠，新接入方应显式打标
func IsDarkVenueName(name string) bool {
	return strings.Contains(strings.ToLower(name), "dark")
}
