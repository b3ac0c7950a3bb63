// Package domain 提供暗池路由、隐藏流动性探测、价格改善跟踪与合规成交报告。
// 路由只产出订单列表，IOC 到期时间是随单数据，由外部调度器负责执行。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide 交易方向
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// TimeInForce 订单有效期类型
type TimeInForce string

const (
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceDay TimeInForce = "DAY"
)

// DarkPoolVenue 暗池场所静态信息
type DarkPoolVenue struct {
	VenueID               string
	Name                  string
	MinSize               int64
	MaxSize               int64 // 0 表示无上限
	SpreadImprovementBps  float64
	FillRate              float64 // 0-100
	AvgFillTimeMs         float64
	SupportsMidpoint      bool
	SupportsSizeDiscovery bool
	IsActive              bool
}

// Eligible 判断订单数量是否落在场所可接受区间
func (v *DarkPoolVenue) Eligible(quantity int64) bool {
	if !v.IsActive {
		return false
	}
	if quantity < v.MinSize {
		return false
	}
	if v.MaxSize > 0 && quantity > v.MaxSize {
		return false
	}
	return true
}

// DarkPoolOrder 发往暗池的订单。IOC 订单的到期时间 = 提交时间 + 扫单超时
type DarkPoolOrder struct {
	OrderID        string
	Venue          *DarkPoolVenue
	Symbol         string
	Side           OrderSide
	Quantity       int64
	LimitPrice     *decimal.Decimal
	TimeInForce    TimeInForce
	MidpointPegged bool
	PostedAt       time.Time
	ExpiresAt      time.Time
}

// DarkPoolFill 暗池回报的成交记录
type DarkPoolFill struct {
	FillID   string
	OrderID  string
	VenueID  string
	Symbol   string
	Side     OrderSide
	Quantity int64
	Price    decimal.Decimal
	FilledAt time.Time
}
