package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// 订单规模档位：大单提升流动性权重，小单降低
const (
	largeOrderThreshold = 10000
	smallOrderThreshold = 500
)

// SelectorWeights 场所评分权重，内部归一化到和为 1
type SelectorWeights struct {
	Cost      float64
	Liquidity float64
	Quality   float64
}

// DefaultSelectorWeights 默认权重：成本 0.4 / 流动性 0.3 / 质量 0.3
func DefaultSelectorWeights() SelectorWeights {
	return SelectorWeights{Cost: 0.4, Liquidity: 0.3, Quality: 0.3}
}

func (w SelectorWeights) normalized() SelectorWeights {
	sum := w.Cost + w.Liquidity + w.Quality
	if sum <= 0 {
		return DefaultSelectorWeights()
	}
	return SelectorWeights{
		Cost:      w.Cost / sum,
		Liquidity: w.Liquidity / sum,
		Quality:   w.Quality / sum,
	}
}

// VenueSelector 三维加权场所评分器
type VenueSelector struct {
	weights SelectorWeights
}

// NewVenueSelector 创建评分器
func NewVenueSelector(weights SelectorWeights) *VenueSelector {
	return &VenueSelector{weights: weights.normalized()}
}

// ScoreVenues 对全部活跃场所评分，按总分降序返回
func (s *VenueSelector) ScoreVenues(venues []*VenueInfo, quantity int64, price decimal.Decimal) []*VenueScore {
	scores := make([]*VenueScore, 0, len(venues))
	for _, v := range venues {
		if !v.IsActive {
			continue
		}
		scores = append(scores, s.scoreVenue(v, quantity, price))
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].TotalScore > scores[j].TotalScore
	})
	return scores
}

// SelectBestVenue 返回总分最高的场所，无活跃场所时返回 nil
func (s *VenueSelector) SelectBestVenue(venues []*VenueInfo, quantity int64, price decimal.Decimal) *VenueScore {
	scores := s.ScoreVenues(venues, quantity, price)
	if len(scores) == 0 {
		return nil
	}
	return scores[0]
}

func (s *VenueSelector) scoreVenue(v *VenueInfo, quantity int64, price decimal.Decimal) *VenueScore {
	// 成本维度：50bps 以上视为最差
	costBps := v.Commission.CostBps(quantity, price)
	costScore := 1 - minFloat(costBps/50, 1)

	// 流动性维度：大单更看重流动性，小单弱化
	liquidityScore := v.LiquidityScore / 100
	if quantity >= largeOrderThreshold {
		liquidityScore *= 1.2
	} else if quantity < smallOrderThreshold {
		liquidityScore *= 0.8
	}
	liquidityScore = clamp01(liquidityScore)

	// 质量维度：无历史数据取中位 0.5
	qualityScore := v.AvgFillQuality / 100
	if v.AvgFillQuality == 0 {
		qualityScore = 0.5
	}

	total := s.weights.Cost*costScore +
		s.weights.Liquidity*liquidityScore +
		s.weights.Quality*qualityScore

	return &VenueScore{
		Venue:          v,
		TotalScore:     total,
		CostScore:      costScore,
		LiquidityScore: liquidityScore,
		QualityScore:   qualityScore,
		Reasoning: fmt.Sprintf("cost=%.3f (%.1fbps) liquidity=%.3f quality=%.3f",
			costScore, costBps, liquidityScore, qualityScore),
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
