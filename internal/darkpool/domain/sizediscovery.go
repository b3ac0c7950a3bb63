package domain

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// LiquidityEstimator 隐藏流动性估计端口。
// 默认实现基于历史成交率档位（见 infrastructure），可替换为真实探测实现。
type LiquidityEstimator interface {
	EstimateAvailable(ctx context.Context, symbol string, venue *DarkPoolVenue) (int64, error)
}

// SizeEstimate 一次探测的聚合结果
type SizeEstimate struct {
	Symbol         string
	TotalEstimated int64
	PerVenue       map[string]int64
	ProbedAt       time.Time
}

// SizeDiscovery 隐藏流动性探测器，缓存每个标的最近一次的聚合估计
type SizeDiscovery struct {
	estimator LiquidityEstimator

	mu    sync.Mutex
	cache map[string]*SizeEstimate
}

// NewSizeDiscovery 创建探测器
func NewSizeDiscovery(estimator LiquidityEstimator) *SizeDiscovery {
	return &SizeDiscovery{
		estimator: estimator,
		cache:     make(map[string]*SizeEstimate),
	}
}

// ProbeForSize 并发探测各暗池的可用流动性并聚合。
// 只探测活跃且支持 size discovery 的场所；结果写入按标的的缓存。
func (d *SizeDiscovery) ProbeForSize(ctx context.Context, symbol string, venues []*DarkPoolVenue) (*SizeEstimate, error) {
	targets := make([]*DarkPoolVenue, 0, len(venues))
	for _, v := range venues {
		if v.IsActive && v.SupportsSizeDiscovery {
			targets = append(targets, v)
		}
	}

	estimates := make([]int64, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range targets {
		i, v := i, v
		g.Go(func() error {
			est, err := d.estimator.EstimateAvailable(gctx, symbol, v)
			if err != nil {
				return err
			}
			estimates[i] = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &SizeEstimate{
		Symbol:   symbol,
		PerVenue: make(map[string]int64, len(targets)),
		ProbedAt: time.Now(),
	}
	for i, v := range targets {
		result.PerVenue[v.VenueID] = estimates[i]
		result.TotalEstimated += estimates[i]
	}

	d.mu.Lock()
	d.cache[symbol] = result
	d.mu.Unlock()

	return result, nil
}

// CachedEstimate 返回标的最近一次探测结果
func (d *SizeDiscovery) CachedEstimate(symbol string) (*SizeEstimate, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	est, ok := d.cache[symbol]
	return est, ok
}

// ClearCache 清空缓存
func (d *SizeDiscovery) ClearCache() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache = make(map[string]*SizeEstimate)
}
