package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	analyticsdomain "github.com/wyfcoding/tradeexecution/internal/analytics/domain"
	darkdomain "github.com/wyfcoding/tradeexecution/internal/darkpool/domain"
	execdomain "github.com/wyfcoding/tradeexecution/internal/execution/domain"
	sordomain "github.com/wyfcoding/tradeexecution/internal/sor/domain"
	"github.com/wyfcoding/tradeexecution/pkg/config"
	"github.com/wyfcoding/tradeexecution/pkg/logger"
	"github.com/wyfcoding/tradeexecution/pkg/metrics"
	"github.com/wyfcoding/tradeexecution/pkg/utils"
)

var (
	// ErrInvalidSide 交易方向不是 BUY / SELL
	ErrInvalidSide = errors.New("invalid trade side")
	// ErrInvalidQuantity 数量必须为正
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrNoVenues 请求未携带任何场所
	ErrNoVenues = errors.New("no venues provided")
)

// ExecutionService 执行域应用服务。
// 本身无持久状态，领域组件（评分器、路由器、分析器）在构造时装配完毕，
// 所有方法可并发调用
type ExecutionService struct {
	cfg     *config.Config
	metrics *metrics.Metrics

	slicer        *execdomain.OrderSlicer
	router        *sordomain.SmartRouter
	darkRouter    *darkdomain.Router
	sizeDiscovery *darkdomain.SizeDiscovery
	analyzer      *analyticsdomain.ExecutionAnalyzer
	perfTracker   *analyticsdomain.PerformanceTracker
	idGen         *utils.SnowflakeID
}

// NewExecutionService 装配执行服务。
// estimator 用于暗池隐藏流动性探测，由调用方注入具体实现
func NewExecutionService(cfg *config.Config, m *metrics.Metrics, estimator darkdomain.LiquidityEstimator) *ExecutionService {
	rng := utils.NewRand()
	selector := sordomain.NewVenueSelector(sordomain.SelectorWeights{
		Cost:      cfg.Selector.CostWeight,
		Liquidity: cfg.Selector.LiquidityWeight,
		Quality:   cfg.Selector.QualityWeight,
	})
	return &ExecutionService{
		cfg:     cfg,
		metrics: m,
		slicer: execdomain.NewOrderSlicer(execdomain.SlicerConfig{
			MinSliceSize: cfg.Slicer.MinSliceSize,
			MaxSliceSize: cfg.Slicer.MaxSliceSize,
		}, rng),
		router: sordomain.NewSmartRouter(selector, sordomain.RouterConfig{
			MaxVenues:            cfg.Selector.MaxVenues,
			MultiVenueEnabled:    cfg.Selector.MultiVenueEnabled,
			SingleVenueThreshold: cfg.Selector.SingleVenueThreshold,
		}),
		darkRouter: darkdomain.NewRouter(darkdomain.RouterConfig{
			SweepTimeout:   time.Duration(cfg.DarkPool.SweepTimeoutMs) * time.Millisecond,
			MaxSweepVenues: cfg.DarkPool.MaxSweepVenues,
		}),
		sizeDiscovery: darkdomain.NewSizeDiscovery(estimator),
		analyzer:      analyticsdomain.NewExecutionAnalyzer(),
		perfTracker:   analyticsdomain.NewPerformanceTracker(),
		idGen:         utils.NewSnowflakeID(1),
	}
}

// PerformanceTracker 暴露历史报告聚合器，供上层查询统计
func (s *ExecutionService) PerformanceTracker() *analyticsdomain.PerformanceTracker {
	return s.perfTracker
}

// CreateExecutionOrder 按算法生成执行计划
func (s *ExecutionService) CreateExecutionOrder(ctx context.Context, req *CreateOrderRequest) (*ExecutionPlanDTO, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	if req.TotalQuantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, req.TotalQuantity)
	}

	start := time.Now()
	if req.StartTime > 0 {
		start = time.Unix(req.StartTime, 0)
	}
	randomizeSize := s.cfg.Algo.RandomizeSize
	if req.RandomizeSize != nil {
		randomizeSize = *req.RandomizeSize
	}
	randomizeTiming := s.cfg.Algo.RandomizeTiming
	if req.RandomizeTiming != nil {
		randomizeTiming = *req.RandomizeTiming
	}
	targetPOV := req.TargetPOV
	if targetPOV == 0 {
		targetPOV = s.cfg.Algo.DefaultTargetPOV
	}

	algo, err := execdomain.NewAlgorithm(req.Algorithm, execdomain.Params{
		Symbol:               req.Symbol,
		Side:                 execdomain.TradeSide(side),
		TotalQuantity:        req.TotalQuantity,
		DurationMinutes:      req.DurationMinutes,
		StartTime:            start,
		NumSlices:            req.NumSlices,
		SliceIntervalMinutes: s.cfg.Algo.DefaultSliceIntervalMinutes,
		VolumeProfile:        req.VolumeProfile,
		Urgency:              req.Urgency,
		TargetPOV:            targetPOV,
		EstimatedDailyVolume: req.EstimatedDailyVolume,
		RandomizeSize:        randomizeSize,
		RandomizeTiming:      randomizeTiming,
	})
	if err != nil {
		return nil, err
	}
	plan, err := algo.GenerateSlices(nil)
	if err != nil {
		return nil, fmt.Errorf("generate slices: %w", err)
	}

	planID := fmt.Sprintf("PLAN-%d", s.idGen.Generate())
	s.metrics.PlansTotal.Inc()
	s.metrics.SlicesPerPlan.Observe(float64(len(plan.Slices)))
	logger.Info(ctx, "execution plan generated",
		"plan_id", planID,
		"order_id", req.OrderID,
		"algorithm", plan.Algorithm,
		"symbol", plan.Symbol,
		"total_quantity", plan.TotalQuantity,
		"slices", len(plan.Slices),
	)

	dto := planToDTO(planID, req.OrderID, plan)
	logger.Debug(ctx, "plan detail", "plan", utils.ToJSON(dto))
	return dto, nil
}

// SelectVenues 对候选场所评分并给出数量分配方案
func (s *ExecutionService) SelectVenues(ctx context.Context, req *SelectVenuesRequest) (*VenueAllocationDTO, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, req.Quantity)
	}
	if len(req.Venues) == 0 {
		return nil, ErrNoVenues
	}
	price, err := parseDecimal(req.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}

	venues := make([]*sordomain.VenueInfo, 0, len(req.Venues))
	for _, v := range req.Venues {
		info, err := venueFromDTO(v)
		if err != nil {
			return nil, fmt.Errorf("venue %s: %w", v.VenueID, err)
		}
		venues = append(venues, info)
	}

	allocations := s.router.RouteOrder(venues, req.Quantity, price)
	s.metrics.VenueRoutesTotal.Inc()
	logger.Info(ctx, "venue allocation computed",
		"symbol", req.Symbol,
		"quantity", req.Quantity,
		"venues_considered", len(venues),
		"venues_allocated", len(allocations),
	)

	out := &VenueAllocationDTO{
		Symbol:      req.Symbol,
		Quantity:    req.Quantity,
		Allocations: make([]AllocationDTO, 0, len(allocations)),
	}
	for _, a := range allocations {
		out.Allocations = append(out.Allocations, AllocationDTO{
			VenueID:   a.Venue.VenueID,
			VenueName: a.Venue.Name,
			Quantity:  a.Quantity,
			Weight:    a.Weight,
		})
	}
	return out, nil
}

// CreateIcebergOrder 生成冰山订单的 clip 序列
func (s *ExecutionService) CreateIcebergOrder(ctx context.Context, req *IcebergRequest) (*IcebergOrderDTO, error) {
	if req.TotalQuantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, req.TotalQuantity)
	}
	clips, err := s.slicer.CreateIcebergOrder(req.TotalQuantity, req.DisplayQuantity, req.ClipSize)
	if err != nil {
		return nil, err
	}

	s.metrics.IcebergOrdersTotal.Inc()
	logger.Info(ctx, "iceberg order created",
		"symbol", req.Symbol,
		"total_quantity", req.TotalQuantity,
		"display_quantity", req.DisplayQuantity,
		"clips", len(clips),
	)

	out := &IcebergOrderDTO{
		Symbol:        req.Symbol,
		TotalQuantity: req.TotalQuantity,
		Clips:         make([]IcebergClipDTO, 0, len(clips)),
	}
	for _, c := range clips {
		out.Clips = append(out.Clips, IcebergClipDTO{
			Sequence:        c.Sequence,
			Quantity:        c.Quantity,
			DisplayQuantity: c.DisplayQuantity,
			HiddenQuantity:  c.HiddenQuantity,
		})
	}
	return out, nil
}

// RouteToDarkPools 按策略把订单拆到暗池场所。
// 路由与流动性探测并行执行，探测失败只降级为无估计，不影响路由结果
func (s *ExecutionService) RouteToDarkPools(ctx context.Context, req *DarkRouteRequest) (*DarkRouteResponse, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidQuantity, req.Quantity)
	}
	if len(req.Venues) == 0 {
		return nil, ErrNoVenues
	}
	strategy := darkdomain.RouteStrategy(strings.ToLower(req.Strategy))
	if req.Strategy == "" {
		strategy = darkdomain.StrategyHybrid
	}
	limitPrice, err := parseOptionalDecimal(req.LimitPrice)
	if err != nil {
		return nil, fmt.Errorf("parse limit price: %w", err)
	}

	venues := make([]*darkdomain.DarkPoolVenue, 0, len(req.Venues))
	for _, v := range req.Venues {
		venues = append(venues, &darkdomain.DarkPoolVenue{
			VenueID:               v.VenueID,
			Name:                  v.Name,
			MinSize:               v.MinSize,
			MaxSize:               v.MaxSize,
			SpreadImprovementBps:  v.SpreadImprovementBps,
			FillRate:              v.FillRate,
			AvgFillTimeMs:         v.AvgFillTimeMs,
			SupportsMidpoint:      v.SupportsMidpoint,
			SupportsSizeDiscovery: v.SupportsSizeDiscovery,
			IsActive:              v.IsActive,
		})
	}

	var (
		orders   []*darkdomain.DarkPoolOrder
		estimate *darkdomain.SizeEstimate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var routeErr error
		orders, routeErr = s.darkRouter.RouteOrder(req.Symbol, darkdomain.OrderSide(side), req.Quantity, venues, strategy)
		return routeErr
	})
	if req.ProbeSize {
		g.Go(func() error {
			est, probeErr := s.sizeDiscovery.ProbeForSize(gctx, req.Symbol, venues)
			if probeErr != nil {
				logger.Warn(gctx, "size discovery probe failed", "symbol", req.Symbol, "error", probeErr)
				return nil
			}
			estimate = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if limitPrice != nil {
		for _, o := range orders {
			o.LimitPrice = limitPrice
		}
	}

	s.metrics.DarkRoutesTotal.Inc()
	logger.Info(ctx, "dark pool routing completed",
		"symbol", req.Symbol,
		"strategy", string(strategy),
		"quantity", req.Quantity,
		"orders", len(orders),
	)

	out := &DarkRouteResponse{
		Symbol:   req.Symbol,
		Strategy: string(strategy),
		Orders:   make([]DarkOrderDTO, 0, len(orders)),
	}
	for _, o := range orders {
		dto := DarkOrderDTO{
			OrderID:        o.OrderID,
			VenueID:        o.Venue.VenueID,
			VenueName:      o.Venue.Name,
			Quantity:       o.Quantity,
			TimeInForce:    string(o.TimeInForce),
			MidpointPegged: o.MidpointPegged,
			PostedAt:       o.PostedAt.Unix(),
		}
		if o.LimitPrice != nil {
			dto.LimitPrice = o.LimitPrice.String()
		}
		if !o.ExpiresAt.IsZero() {
			dto.ExpiresAt = o.ExpiresAt.Unix()
		}
		out.Orders = append(out.Orders, dto)
	}
	if estimate != nil {
		out.SizeEstimate = &SizeEstimateDTO{
			Symbol:         estimate.Symbol,
			TotalEstimated: estimate.TotalEstimated,
			PerVenue:       estimate.PerVenue,
			ProbedAt:       estimate.ProbedAt.Unix(),
		}
	}
	return out, nil
}

// AnalyzeExecution 对已完成母单做执行质量归因，并记录到历史聚合器
func (s *ExecutionService) AnalyzeExecution(ctx context.Context, req *AnalyzeRequest) (*ExecutionReportDTO, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	fills := make([]*analyticsdomain.Fill, 0, len(req.Fills))
	for _, f := range req.Fills {
		price, err := parseDecimal(f.Price)
		if err != nil {
			return nil, fmt.Errorf("fill %s: parse price: %w", f.FillID, err)
		}
		commission, err := parseDecimal(f.Commission)
		if err != nil {
			return nil, fmt.Errorf("fill %s: parse commission: %w", f.FillID, err)
		}
		isDark := analyticsdomain.IsDarkVenueName(f.VenueName)
		if f.IsDarkPool != nil {
			isDark = *f.IsDarkPool
		}
		fills = append(fills, &analyticsdomain.Fill{
			FillID:     f.FillID,
			Timestamp:  time.Unix(f.Timestamp, 0),
			Quantity:   f.Quantity,
			Price:      price,
			VenueID:    f.VenueID,
			VenueName:  f.VenueName,
			Commission: commission,
			IsDarkPool: isDark,
		})
	}

	benchmarks, err := benchmarksFromDTO(req.Benchmarks)
	if err != nil {
		return nil, err
	}
	var start, end *time.Time
	if req.StartTime > 0 {
		t := time.Unix(req.StartTime, 0)
		start = &t
	}
	if req.EndTime > 0 {
		t := time.Unix(req.EndTime, 0)
		end = &t
	}

	report := s.analyzer.AnalyzeExecution(analyticsdomain.ParentOrder{
		OrderID:       req.OrderID,
		Symbol:        req.Symbol,
		Side:          analyticsdomain.TradeSide(side),
		TotalQuantity: req.TotalQuantity,
	}, fills, benchmarks, req.MarketVolume, start, end)

	s.perfTracker.Add(report)
	s.metrics.ReportsTotal.Inc()
	s.metrics.QualityScore.Observe(report.QualityScore)
	logger.Info(ctx, "execution analyzed",
		"order_id", report.OrderID,
		"symbol", report.Symbol,
		"fill_rate", report.FillRate,
		"quality_score", report.QualityScore,
		"grade", report.Grade,
	)

	return reportToDTO(report), nil
}

// GetExecutionSummary 返回服务能力描述
func (s *ExecutionService) GetExecutionSummary(ctx context.Context) *ExecutionSummaryDTO {
	return &ExecutionSummaryDTO{
		Service:     s.cfg.ServiceName,
		Version:     s.cfg.Version,
		SupportedAlgorithms: []string{
			"TWAP", "VWAP", "IS", "POV",
		},
		SupportedStrategies: []string{
			string(darkdomain.StrategyAggressive),
			string(darkdomain.StrategyPassive),
			string(darkdomain.StrategyHybrid),
		},
		Features: []string{
			"order_slicing",
			"iceberg_orders",
			"smart_venue_routing",
			"dark_pool_routing",
			"size_discovery",
			"execution_analytics",
		},
	}
}

func planToDTO(planID, orderID string, plan *execdomain.Plan) *ExecutionPlanDTO {
	dto := &ExecutionPlanDTO{
		PlanID:        planID,
		OrderID:       orderID,
		Algorithm:     plan.Algorithm,
		Symbol:        plan.Symbol,
		Side:          string(plan.Side),
		TotalQuantity: plan.TotalQuantity,
		Slices:        make([]SliceDTO, 0, len(plan.Slices)),
		Warnings:      plan.Warnings,
		GeneratedAt:   plan.GeneratedAt.Unix(),
	}
	for _, sl := range plan.Slices {
		sliceDTO := SliceDTO{
			Quantity:        sl.Quantity,
			ScheduledAt:     sl.ScheduledAt.Unix(),
			IsIceberg:       sl.IsIceberg,
			DisplayQuantity: sl.DisplayQuantity,
		}
		if sl.LimitPrice != nil {
			sliceDTO.LimitPrice = sl.LimitPrice.String()
		}
		dto.Slices = append(dto.Slices, sliceDTO)
	}
	return dto
}

func reportToDTO(r *analyticsdomain.ExecutionReport) *ExecutionReportDTO {
	return &ExecutionReportDTO{
		OrderID:              r.OrderID,
		Symbol:               r.Symbol,
		Side:                 string(r.Side),
		TotalQuantity:        r.TotalQuantity,
		FilledQuantity:       r.FilledQuantity,
		FillRate:             r.FillRate,
		AvgFillPrice:         r.AvgFillPrice.String(),
		SlippageVsArrivalBps: r.SlippageVsArrivalBps,
		SlippageVsVWAPBps:    r.SlippageVsVWAPBps,
		SlippageVsTWAPBps:    r.SlippageVsTWAPBps,
		SlippageVsCloseBps:   r.SlippageVsCloseBps,
		TotalCommission:      r.TotalCommission.String(),
		SlippageCost:         r.SlippageCost.String(),
		TotalCost:            r.TotalCost.String(),
		ParticipationRate:    r.ParticipationRate,
		MarketImpactBps:      r.MarketImpactBps,
		DurationSeconds:      r.DurationSeconds,
		VenueFills:           r.VenueFills,
		DarkPoolQuantity:     r.DarkPoolQuantity,
		DarkPoolRate:         r.DarkPoolRate,
		QualityScore:         r.QualityScore,
		Grade:                r.Grade,
		Suggestions:          r.Suggestions,
		GeneratedAt:          r.GeneratedAt.Unix(),
	}
}

func benchmarksFromDTO(dto *BenchmarksDTO) (*analyticsdomain.Benchmarks, error) {
	if dto == nil {
		return nil, nil
	}
	arrival, err := parseOptionalDecimal(dto.Arrival)
	if err != nil {
		return nil, fmt.Errorf("parse arrival benchmark: %w", err)
	}
	vwap, err := parseOptionalDecimal(dto.VWAP)
	if err != nil {
		return nil, fmt.Errorf("parse vwap benchmark: %w", err)
	}
	twap, err := parseOptionalDecimal(dto.TWAP)
	if err != nil {
		return nil, fmt.Errorf("parse twap benchmark: %w", err)
	}
	closePx, err := parseOptionalDecimal(dto.Close)
	if err != nil {
		return nil, fmt.Errorf("parse close benchmark: %w", err)
	}
	return &analyticsdomain.Benchmarks{
		Arrival: arrival,
		VWAP:    vwap,
		TWAP:    twap,
		Close:   closePx,
	}, nil
}

func parseSide(side string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(side))
	if s != string(execdomain.TradeSideBuy) && s != string(execdomain.TradeSideSell) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	return s, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
