package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FillReport 单笔暗池成交的合规报告，含成交时刻的 NBBO 上下文
type FillReport struct {
	ReportID       string
	FillID         string
	OrderID        string
	VenueID        string
	Symbol         string
	Side           OrderSide
	Quantity       int64
	Price          decimal.Decimal
	NBBOBid        decimal.Decimal
	NBBOAsk        decimal.Decimal
	NBBOMidpoint   decimal.Decimal
	ImprovementBps float64
	FilledAt       time.Time
	GeneratedAt    time.Time
}

// Reporting 暗池合规报告生成器
type Reporting struct{}

// GenerateFillReport 基于成交与成交时刻的 NBBO 生成合规记录
func (Reporting) GenerateFillReport(fill *DarkPoolFill, nbboBid, nbboAsk decimal.Decimal) *FillReport {
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

	return &FillReport{
		ReportID:       uuid.New().String(),
		FillID:         fill.FillID,
		OrderID:        fill.OrderID,
		VenueID:        fill.VenueID,
		Symbol:         fill.Symbol,
		Side:           fill.Side,
		Quantity:       fill.Quantity,
		Price:          fill.Price,
		NBBOBid:        nbboBid,
		NBBOAsk:        nbboAsk,
		NBBOMidpoint:   mid,
		ImprovementBps: bps,
		FilledAt:       fill.FilledAt,
		GeneratedAt:    time.Now(),
	}
}
