package application

import (
	sordomain "github.com/wyfcoding/tradeexecution/internal/sor/domain"
)

// CreateOrderRequest 创建执行计划请求 DTO
// StartTime 为 Unix 秒，0 表示立即；Randomize* 为空时取配置默认值
type CreateOrderRequest struct {
	OrderID         string `json:"order_id"`
	Symbol          string `json:"symbol"`
	Side            string `json:"side"`
	Algorithm       string `json:"algorithm"`
	TotalQuantity   int64  `json:"total_quantity"`
	DurationMinutes int    `json:"duration_minutes"`
	StartTime       int64  `json:"start_time"`

	NumSlices            int       `json:"num_slices,omitempty"`
	VolumeProfile        []float64 `json:"volume_profile,omitempty"`
	Urgency              float64   `json:"urgency,omitempty"`
	TargetPOV            float64   `json:"target_pov,omitempty"`
	EstimatedDailyVolume int64     `json:"estimated_daily_volume,omitempty"`

	RandomizeSize   *bool `json:"randomize_size,omitempty"`
	RandomizeTiming *bool `json:"randomize_timing,omitempty"`
}

// SliceDTO 计划内单个切片
type SliceDTO struct {
	Quantity        int64  `json:"quantity"`
	ScheduledAt     int64  `json:"scheduled_at"`
	LimitPrice      string `json:"limit_price,omitempty"`
	IsIceberg       bool   `json:"is_iceberg"`
	DisplayQuantity int64  `json:"display_quantity,omitempty"`
}

// ExecutionPlanDTO 执行计划 DTO，切片数量之和等于请求总量
type ExecutionPlanDTO struct {
	PlanID        string     `json:"plan_id"`
	OrderID       string     `json:"order_id"`
	Algorithm     string     `json:"algorithm"`
	Symbol        string     `json:"symbol"`
	Side          string     `json:"side"`
	TotalQuantity int64      `json:"total_quantity"`
	Slices        []SliceDTO `json:"slices"`
	Warnings      []string   `json:"warnings,omitempty"`
	GeneratedAt   int64      `json:"generated_at"`
}

// VenueDTO 明场所描述
type VenueDTO struct {
	VenueID           string  `json:"venue_id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	CommissionType    string  `json:"commission_type"`
	CommissionRate    string  `json:"commission_rate"`
	CommissionMinimum string  `json:"commission_minimum"`
	LiquidityScore    float64 `json:"liquidity_score"`
	AvgFillQuality    float64 `json:"avg_fill_quality"`
	SupportsIceberg   bool    `json:"supports_iceberg"`
	SupportsHidden    bool    `json:"supports_hidden"`
	IsActive          bool    `json:"is_active"`
}

// SelectVenuesRequest 场所选择请求 DTO
type SelectVenuesRequest struct {
	Symbol   string     `json:"symbol"`
	Quantity int64      `json:"quantity"`
	Price    string     `json:"price"`
	Venues   []VenueDTO `json:"venues"`
}

// AllocationDTO 单一场所的分配结果
type AllocationDTO struct {
	VenueID   string  `json:"venue_id"`
	VenueName string  `json:"venue_name"`
	Quantity  int64   `json:"quantity"`
	Weight    float64 `json:"weight"`
}

// VenueAllocationDTO 场所分配方案
type VenueAllocationDTO struct {
	Symbol      string          `json:"symbol"`
	Quantity    int64           `json:"quantity"`
	Allocations []AllocationDTO `json:"allocations"`
}

// IcebergRequest 冰山订单请求 DTO
type IcebergRequest struct {
	Symbol          string `json:"symbol"`
	TotalQuantity   int64  `json:"total_quantity"`
	DisplayQuantity int64  `json:"display_quantity"`
	ClipSize        int64  `json:"clip_size,omitempty"`
}

// IcebergClipDTO 单个冰山 clip
type IcebergClipDTO struct {
	Sequence        int   `json:"sequence"`
	Quantity        int64 `json:"quantity"`
	DisplayQuantity int64 `json:"display_quantity"`
	HiddenQuantity  int64 `json:"hidden_quantity"`
}

// IcebergOrderDTO 冰山订单 clip 序列
type IcebergOrderDTO struct {
	Symbol        string           `json:"symbol"`
	TotalQuantity int64            `json:"total_quantity"`
	Clips         []IcebergClipDTO `json:"clips"`
}

// DarkVenueDTO 暗池场所描述
type DarkVenueDTO struct {
	VenueID               string  `json:"venue_id"`
	Name                  string  `json:"name"`
	MinSize               int64   `json:"min_size"`
	MaxSize               int64   `json:"max_size,omitempty"`
	SpreadImprovementBps  float64 `json:"spread_improvement_bps"`
	FillRate              float64 `json:"fill_rate"`
	AvgFillTimeMs         float64 `json:"avg_fill_time_ms"`
	SupportsMidpoint      bool    `json:"supports_midpoint"`
	SupportsSizeDiscovery bool    `json:"supports_size_discovery"`
	IsActive              bool    `json:"is_active"`
}

// DarkRouteRequest 暗池路由请求 DTO
type DarkRouteRequest struct {
	Symbol     string         `json:"symbol"`
	Side       string         `json:"side"`
	Quantity   int64          `json:"quantity"`
	Strategy   string         `json:"strategy"`
	LimitPrice string         `json:"limit_price,omitempty"`
	ProbeSize  bool           `json:"probe_size"`
	Venues     []DarkVenueDTO `json:"venues"`
}

// DarkOrderDTO 发往暗池的订单
type DarkOrderDTO struct {
	OrderID        string `json:"order_id"`
	VenueID        string `json:"venue_id"`
	VenueName      string `json:"venue_name"`
	Quantity       int64  `json:"quantity"`
	LimitPrice     string `json:"limit_price,omitempty"`
	TimeInForce    string `json:"time_in_force"`
	MidpointPegged bool   `json:"midpoint_pegged"`
	PostedAt       int64  `json:"posted_at"`
	ExpiresAt      int64  `json:"expires_at,omitempty"`
}

// SizeEstimateDTO 隐藏流动性探测结果
type SizeEstimateDTO struct {
	Symbol         string           `json:"symbol"`
	TotalEstimated int64            `json:"total_estimated"`
	PerVenue       map[string]int64 `json:"per_venue"`
	ProbedAt       int64            `json:"probed_at"`
}

// DarkRouteResponse 暗池路由结果：订单列表加可用流动性估计
type DarkRouteResponse struct {
	Symbol       string           `json:"symbol"`
	Strategy     string           `json:"strategy"`
	Orders       []DarkOrderDTO   `json:"orders"`
	SizeEstimate *SizeEstimateDTO `json:"size_estimate,omitempty"`
}

// FillRecord 原始成交记录 DTO
// IsDarkPool 为空时按场所名称兜底判断
type FillRecord struct {
	FillID     string `json:"fill_id"`
	Timestamp  int64  `json:"timestamp"`
	Quantity   int64  `json:"quantity"`
	Price      string `json:"price"`
	VenueID    string `json:"venue_id"`
	VenueName  string `json:"venue_name"`
	Commission string `json:"commission,omitempty"`
	IsDarkPool *bool  `json:"is_dark_pool,omitempty"`
}

// BenchmarksDTO 基准价格，空字符串表示缺失
type BenchmarksDTO struct {
	Arrival string `json:"arrival,omitempty"`
	VWAP    string `json:"vwap,omitempty"`
	TWAP    string `json:"twap,omitempty"`
	Close   string `json:"close,omitempty"`
}

// AnalyzeRequest 执行质量分析请求 DTO
type AnalyzeRequest struct {
	OrderID       string         `json:"order_id"`
	Symbol        string         `json:"symbol"`
	Side          string         `json:"side"`
	TotalQuantity int64          `json:"total_quantity"`
	Fills         []FillRecord   `json:"fills"`
	Benchmarks    *BenchmarksDTO `json:"benchmarks,omitempty"`
	MarketVolume  int64          `json:"market_volume,omitempty"`
	StartTime     int64          `json:"start_time,omitempty"`
	EndTime       int64          `json:"end_time,omitempty"`
}

// ExecutionReportDTO 执行质量报告 DTO
type ExecutionReportDTO struct {
	OrderID       string `json:"order_id"`
	Symbol        string `json:"symbol"`
	Side          string `json:"side"`
	TotalQuantity int64  `json:"total_quantity"`

	FilledQuantity int64   `json:"filled_quantity"`
	FillRate       float64 `json:"fill_rate"`
	AvgFillPrice   string  `json:"avg_fill_price"`

	SlippageVsArrivalBps *float64 `json:"slippage_vs_arrival_bps,omitempty"`
	SlippageVsVWAPBps    *float64 `json:"slippage_vs_vwap_bps,omitempty"`
	SlippageVsTWAPBps    *float64 `json:"slippage_vs_twap_bps,omitempty"`
	SlippageVsCloseBps   *float64 `json:"slippage_vs_close_bps,omitempty"`

	TotalCommission string `json:"total_commission"`
	SlippageCost    string `json:"slippage_cost"`
	TotalCost       string `json:"total_cost"`

	ParticipationRate *float64 `json:"participation_rate,omitempty"`
	MarketImpactBps   *float64 `json:"market_impact_bps,omitempty"`
	DurationSeconds   *float64 `json:"duration_seconds,omitempty"`

	VenueFills       map[string]int64 `json:"venue_fills"`
	DarkPoolQuantity int64            `json:"dark_pool_quantity"`
	DarkPoolRate     float64          `json:"dark_pool_rate"`

	QualityScore float64  `json:"quality_score"`
	Grade        string   `json:"grade"`
	Suggestions  []string `json:"suggestions"`

	GeneratedAt int64 `json:"generated_at"`
}

// ExecutionSummaryDTO 服务能力描述，内容静态
type ExecutionSummaryDTO struct {
	Service             string   `json:"service"`
	Version             string   `json:"version"`
	SupportedAlgorithms []string `json:"supported_algorithms"`
	SupportedStrategies []string `json:"supported_strategies"`
	Features            []string `json:"features"`
}

func venueFromDTO(dto VenueDTO) (*sordomain.VenueInfo, error) {
	rate, err := parseDecimal(dto.CommissionRate)
	if err != nil {
		return nil, err
	}
	minimum, err := parseDecimal(dto.CommissionMinimum)
	if err != nil {
		return nil, err
	}
	return &sordomain.VenueInfo{
		VenueID: dto.VenueID,
		Name:    dto.Name,
		Type:    sordomain.VenueType(dto.Type),
		Commission: sordomain.CommissionModel{
			Type:    sordomain.CommissionType(dto.CommissionType),
			Rate:    rate,
			Minimum: minimum,
		},
		LiquidityScore:  dto.LiquidityScore,
		AvgFillQuality:  dto.AvgFillQuality,
		SupportsIceberg: dto.SupportsIceberg,
		SupportsHidden:  dto.SupportsHidden,
		IsActive:        dto.IsActive,
	}, nil
}
