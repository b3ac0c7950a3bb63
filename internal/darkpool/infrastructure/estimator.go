// Package infrastructure 提供暗池领域端口的默认实现
package infrastructure

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/wyfcoding/tradeexecution/internal/darkpool/domain"
	"github.com/wyfcoding/tradeexecution/pkg/utils"
)

// FillRateBandEstimator 基于历史成交率档位的流动性估计。
// 这是一个占位启发式而非真实订单簿探测，按档位随机给出估计值；
// 生产环境应替换为接入真实 size discovery 机制的实现。
type FillRateBandEstimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFillRateBandEstimator 创建估计器，rng 为空时使用时间种子
func NewFillRateBandEstimator(rng *rand.Rand) *FillRateBandEstimator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &FillRateBandEstimator{rng: rng}
}

// EstimateAvailable 按场所历史成交率所在档位随机估计可用数量
func (e *FillRateBandEstimator) EstimateAvailable(ctx context.Context, symbol string, venue *domain.DarkPoolVenue) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var lo, hi int64
	switch {
	case venue.FillRate > 80:
		lo, hi = 10000, 50000
	case venue.FillRate >= 50:
		lo, hi = 5000, 20000
	default:
		lo, hi = 1000, 5000
	}

	// rand.Rand 非并发安全，探测是并发发起的
	e.mu.Lock()
	defer e.mu.Unlock()
	return utils.RandInt64(e.rng, lo, hi), nil
}
