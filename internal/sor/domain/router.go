package domain

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// RouterConfig 智能路由参数
type RouterConfig struct {
	// 多场所拆分时的最大场所数
	MaxVenues int
	// 是否允许多场所路由
	MultiVenueEnabled bool
	// 低于该数量的订单直接路由到单一最优场所
	SingleVenueThreshold int64
}

// DefaultRouterConfig 默认路由参数
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		MaxVenues:            3,
		MultiVenueEnabled:    true,
		SingleVenueThreshold: 1000,
	}
}

// SmartRouter 智能订单路由：小单走单一最优场所，大单按评分比例拆分
type SmartRouter struct {
	selector *VenueSelector
	cfg      RouterConfig
}

// NewSmartRouter 创建智能路由器
func NewSmartRouter(selector *VenueSelector, cfg RouterConfig) *SmartRouter {
	if cfg.MaxVenues < 1 {
		cfg.MaxVenues = 1
	}
	return &SmartRouter{selector: selector, cfg: cfg}
}

// RouteOrder 生成场所分配方案。
// 无可用场所返回空列表；分配数量之和严格等于请求总量，末场所吸收取整余量。
func (r *SmartRouter) RouteOrder(venues []*VenueInfo, quantity int64, price decimal.Decimal) []*Allocation {
	if quantity <= 0 {
		return nil
	}

	scores := r.selector.ScoreVenues(venues, quantity, price)
	if len(scores) == 0 {
		return []*Allocation{}
	}

	if quantity < r.cfg.SingleVenueThreshold || !r.cfg.MultiVenueEnabled || len(scores) == 1 {
		return []*Allocation{{Venue: scores[0].Venue, Quantity: quantity, Weight: 1}}
	}

	top := scores
	if len(top) > r.cfg.MaxVenues {
		top = top[:r.cfg.MaxVenues]
	}

	var totalScore float64
	for _, sc := range top {
		totalScore += sc.TotalScore
	}

	allocations := make([]*Allocation, 0, len(top))
	var allocated int64
	for i, sc := range top {
		var weight float64
		if totalScore > 0 {
			weight = sc.TotalScore / totalScore
		} else {
			// 所有场所得分为 0 时退化为均分
			weight = 1 / float64(len(top))
		}
		var qty int64
		if i == len(top)-1 {
			// 末场所吸收取整余量
			qty = quantity - allocated
		} else {
			qty = int64(math.Floor(float64(quantity) * weight))
		}
		allocated += qty
		allocations = append(allocations, &Allocation{
			Venue:    sc.Venue,
			Quantity: qty,
			Weight:   weight,
		})
	}

	return allocations
}

// RankDarkEligible 对暗池类型场所按 质量×0.6 + 流动性×0.4 重新排序，忽略成本维度
func (r *SmartRouter) RankDarkEligible(venues []*VenueInfo) []*VenueScore {
	scores := make([]*VenueScore, 0, len(venues))
	for _, v := range venues {
		if !v.IsActive || v.Type != VenueTypeDarkPool {
			continue
		}
		quality := v.AvgFillQuality / 100
		if v.AvgFillQuality == 0 {
			quality = 0.5
		}
		liquidity := v.LiquidityScore / 100
		scores = append(scores, &VenueScore{
			Venue:          v,
			QualityScore:   quality,
			LiquidityScore: liquidity,
			TotalScore:     quality*0.6 + liquidity*0.4,
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	return scores
}
