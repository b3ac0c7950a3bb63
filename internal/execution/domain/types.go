// Package domain 实现母单拆分的执行算法：TWAP、VWAP、Implementation Shortfall、POV，
// 以及通用拆单器、自适应拆单器和市场冲击模型。
// 所有计划生成函数都是输入的纯函数，不做任何 I/O，也不持有订单簿。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide 交易方向
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// OrderSlice 子单切片，母单拆分后的最小执行单元
// 计划生成后不再变更，实际下发由外部调度器负责
type OrderSlice struct {
	Quantity        int64
	ScheduledAt     time.Time
	LimitPrice      *decimal.Decimal
	IsIceberg       bool
	DisplayQuantity int64
}

// Plan 执行计划，切片数量之和恒等于母单总量
type Plan struct {
	Algorithm     string
	Symbol        string
	Side          TradeSide
	TotalQuantity int64
	Slices        []*OrderSlice
	Warnings      []string
	GeneratedAt   time.Time
}

// SliceSum 返回计划内切片数量之和
func (p *Plan) SliceSum() int64 {
	var sum int64
	for _, s := range p.Slices {
		sum += s.Quantity
	}
	return sum
}

// MarketSnapshot 行情快照，由外部行情采集方提供，只读
type MarketSnapshot struct {
	Price  decimal.Decimal
	Volume int64
	VWAP   *decimal.Decimal
	Bid    *decimal.Decimal
	Ask    *decimal.Decimal
	Spread *decimal.Decimal
}
