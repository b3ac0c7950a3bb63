package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RouteStrategy 暗池路由策略
type RouteStrategy string

const (
	// StrategyAggressive IOC 扫单：小探测量同时打多个暗池
	StrategyAggressive RouteStrategy = "aggressive"
	// StrategyPassive 全量挂到单一最优暗池，日内有效
	StrategyPassive RouteStrategy = "passive"
	// StrategyHybrid 按 3:2:1 权重拆到前三个暗池
	StrategyHybrid RouteStrategy = "hybrid"
)

// ErrUnknownStrategy 未知的路由策略
var ErrUnknownStrategy = errors.New("unknown dark pool routing strategy")

// RouterConfig 暗池路由参数
type RouterConfig struct {
	// IOC 扫单超时，写入订单到期时间，由外部调度器执行
	SweepTimeout time.Duration
	// 激进策略最多扫多少个暗池
	MaxSweepVenues int
}

// DefaultRouterConfig 默认暗池路由参数
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		SweepTimeout:   500 * time.Millisecond,
		MaxSweepVenues: 5,
	}
}

// Router 暗池路由器
type Router struct {
	cfg RouterConfig
	now func() time.Time
}

// NewRouter 创建暗池路由器
func NewRouter(cfg RouterConfig) *Router {
	if cfg.SweepTimeout <= 0 {
		cfg.SweepTimeout = 500 * time.Millisecond
	}
	if cfg.MaxSweepVenues < 1 {
		cfg.MaxSweepVenues = 5
	}
	return &Router{cfg: cfg, now: time.Now}
}

// RouteOrder 生成暗池订单列表，无合格场所时返回空列表
func (r *Router) RouteOrder(symbol string, side OrderSide, quantity int64, venues []*DarkPoolVenue, strategy RouteStrategy) ([]*DarkPoolOrder, error) {
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	eligible := make([]*DarkPoolVenue, 0, len(venues))
	for _, v := range venues {
		if v.Eligible(quantity) {
			eligible = append(eligible, v)
		}
	}
	if len(eligible) == 0 {
		return []*DarkPoolOrder{}, nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return venueScore(eligible[i], strategy) > venueScore(eligible[j], strategy)
	})

	switch strategy {
	case StrategyAggressive:
		return r.routeAggressive(symbol, side, quantity, eligible), nil
	case StrategyPassive:
		return r.routePassive(symbol, side, quantity, eligible[0]), nil
	case StrategyHybrid:
		return r.routeHybrid(symbol, side, quantity, eligible), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// venueScore 暗池排序评分：
// 点差改善×10 + 成交率×0.5 + 速度加成 + 能力加成 + 策略加成
func venueScore(v *DarkPoolVenue, strategy RouteStrategy) float64 {
	score := v.SpreadImprovementBps*10 + v.FillRate*0.5 + speedBonus(v.AvgFillTimeMs)
	if v.SupportsMidpoint {
		score += 15
	}
	if v.SupportsSizeDiscovery {
		score += 10
	}
	switch strategy {
	case StrategyAggressive:
		// 激进策略加倍奖励速度
		score += speedBonus(v.AvgFillTimeMs)
	case StrategyPassive:
		// 被动策略额外奖励点差改善
		score += v.SpreadImprovementBps * 5
	}
	return score
}

func speedBonus(avgFillTimeMs float64) float64 {
	switch {
	case avgFillTimeMs > 0 && avgFillTimeMs < 100:
		return 20
	case avgFillTimeMs > 0 && avgFillTimeMs < 250:
		return 10
	default:
		return 0
	}
}

// routeAggressive IOC 扫单：每个暗池一笔小探测单，到期时间 = 提交 + 扫单超时
func (r *Router) routeAggressive(symbol string, side OrderSide, quantity int64, venues []*DarkPoolVenue) []*DarkPoolOrder {
	n := len(venues)
	if n > r.cfg.MaxSweepVenues {
		n = r.cfg.MaxSweepVenues
	}

	probeQty := quantity / int64(n*2)
	if probeQty < 100 {
		probeQty = 100
	}

	now := r.now()
	orders := make([]*DarkPoolOrder, 0, n)
	for _, v := range venues[:n] {
		orders = append(orders, &DarkPoolOrder{
			OrderID:     newOrderID(),
			Venue:       v,
			Symbol:      symbol,
			Side:        side,
			Quantity:    probeQty,
			TimeInForce: TimeInForceIOC,
			PostedAt:    now,
			ExpiresAt:   now.Add(r.cfg.SweepTimeout),
		})
	}
	return orders
}

// routePassive 全量挂到最优暗池，支持中点锚定时启用
func (r *Router) routePassive(symbol string, side OrderSide, quantity int64, venue *DarkPoolVenue) []*DarkPoolOrder {
	now := r.now()
	return []*DarkPoolOrder{{
		OrderID:        newOrderID(),
		Venue:          venue,
		Symbol:         symbol,
		Side:           side,
		Quantity:       quantity,
		TimeInForce:    TimeInForceDay,
		MidpointPegged: venue.SupportsMidpoint,
		PostedAt:       now,
	}}
}

// routeHybrid 前三个暗池按 3:2:1 权重拆分，
// 分配量低于场所最小门槛的跳过，末个保留场所吸收余量
func (r *Router) routeHybrid(symbol string, side OrderSide, quantity int64, venues []*DarkPoolVenue) []*DarkPoolOrder {
	n := len(venues)
	if n > 3 {
		n = 3
	}
	weights := []int64{3, 2, 1}[:n]
	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}

	now := r.now()
	var orders []*DarkPoolOrder
	var allocated int64
	for i, v := range venues[:n] {
		qty := quantity * weights[i] / weightSum
		if qty < v.MinSize {
			continue
		}
		orders = append(orders, &DarkPoolOrder{
			OrderID:        newOrderID(),
			Venue:          v,
			Symbol:         symbol,
			Side:           side,
			Quantity:       qty,
			TimeInForce:    TimeInForceDay,
			MidpointPegged: v.SupportsMidpoint,
			PostedAt:       now,
		})
		allocated += qty
	}

	// 余量并入最后一笔，保持各单之和等于总量
	if len(orders) > 0 && allocated < quantity {
		orders[len(orders)-1].Quantity += quantity - allocated
	}
	return orders
}

func newOrderID() string {
	return fmt.Sprintf("dark_%s", uuid.New().String())
}
