// Package domain 提供交易场所评分、智能路由与场所执行表现跟踪。
// 评分与分配是输入的纯函数；唯一的可变状态是 VenuePerformanceTracker。
package domain

import (
	"github.com/shopspring/decimal"
)

// VenueType 场所类型
type VenueType string

const (
	VenueTypeExchange VenueType = "EXCHANGE"
	VenueTypeECN      VenueType = "ECN"
	VenueTypeATS      VenueType = "ATS"
	VenueTypeDarkPool VenueType = "DARK_POOL"
)

// CommissionType 佣金计费模型
type CommissionType string

const (
	CommissionPerShare   CommissionType = "PER_SHARE"
	CommissionPercentage CommissionType = "PERCENTAGE"
	CommissionFlat       CommissionType = "FLAT"
)

// CommissionModel 佣金模型：按股、按成交金额比例或固定费用，均有最低收费
type CommissionModel struct {
	Type    CommissionType
	Rate    decimal.Decimal
	Minimum decimal.Decimal
}

// Cost 计算给定数量与价格下的佣金
func (m CommissionModel) Cost(quantity int64, price decimal.Decimal) decimal.Decimal {
	var cost decimal.Decimal
	switch m.Type {
	case CommissionPerShare:
		cost = m.Rate.Mul(decimal.NewFromInt(quantity))
	case CommissionPercentage:
		cost = m.Rate.Mul(price).Mul(decimal.NewFromInt(quantity))
	case CommissionFlat:
		cost = m.Rate
	}
	if cost.LessThan(m.Minimum) {
		cost = m.Minimum
	}
	return cost
}

// CostBps 佣金折算为成交金额的基点数
func (m CommissionModel) CostBps(quantity int64, price decimal.Decimal) float64 {
	value := price.Mul(decimal.NewFromInt(quantity))
	if value.IsZero() {
		return 0
	}
	bps := m.Cost(quantity, price).Div(value).Mul(decimal.NewFromInt(10000))
	return bps.InexactFloat64()
}

// VenueInfo 交易场所静态信息，评分过程不会修改该记录
type VenueInfo struct {
	VenueID         string
	Name            string
	Type            VenueType
	Commission      CommissionModel
	LiquidityScore  float64 // 0-100
	AvgFillQuality  float64 // 0-100，0 表示未知
	SupportsIceberg bool
	SupportsHidden  bool
	IsActive        bool
}

// VenueScore 对单一场所的三维评分结果
type VenueScore struct {
	Venue          *VenueInfo
	TotalScore     float64
	CostScore      float64
	LiquidityScore float64
	QualityScore   float64
	Reasoning      string
}

// Allocation 路由分配：场所 + 分得数量
type Allocation struct {
	Venue    *VenueInfo
	Quantity int64
	Weight   float64
}
