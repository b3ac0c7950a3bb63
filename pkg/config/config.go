// Package config 提供 TOML 配置加载、环境变量覆盖与 schema 校验
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/wyfcoding/tradeexecution/pkg/logger"
)

// Config 执行核心配置结构
type Config struct {
	// 服务名称
	ServiceName string `mapstructure:"service_name"`
	// 服务版本
	Version string `mapstructure:"version"`
	// 环境：dev, staging, prod
	Environment string `mapstructure:"environment"`
	// 日志配置
	Logger logger.Config `mapstructure:"logger"`
	// 场所评分配置
	Selector SelectorConfig `mapstructure:"selector"`
	// 拆单配置
	Slicer SlicerConfig `mapstructure:"slicer"`
	// 暗池路由配置
	DarkPool DarkPoolConfig `mapstructure:"darkpool"`
	// 算法默认参数
	Algo AlgoConfig `mapstructure:"algo"`
}

// SelectorConfig 场所评分与智能路由配置
type SelectorConfig struct {
	// 成本权重
	CostWeight float64 `mapstructure:"cost_weight"`
	// 流动性权重
	LiquidityWeight float64 `mapstructure:"liquidity_weight"`
	// 成交质量权重
	QualityWeight float64 `mapstructure:"quality_weight"`
	// 多场所拆分时的最大场所数
	MaxVenues int `mapstructure:"max_venues"`
	// 是否允许多场所路由
	MultiVenueEnabled bool `mapstructure:"multi_venue_enabled"`
	// 低于该数量的订单只路由到单一场所
	SingleVenueThreshold int64 `mapstructure:"single_venue_threshold"`
}

// SlicerConfig 拆单参数
type SlicerConfig struct {
	// 最小子单数量，低于该值不再拆分
	MinSliceSize int64 `mapstructure:"min_slice_size"`
	// 单个子单数量上限
	MaxSliceSize int64 `mapstructure:"max_slice_size"`
}

// DarkPoolConfig 暗池路由参数
type DarkPoolConfig struct {
	// IOC 扫单超时（毫秒）
	SweepTimeoutMs int `mapstructure:"sweep_timeout_ms"`
	// 激进策略最多扫多少个暗池
	MaxSweepVenues int `mapstructure:"max_sweep_venues"`
}

// AlgoConfig 执行算法默认参数
type AlgoConfig struct {
	// TWAP 默认切片间隔（分钟）
	DefaultSliceIntervalMinutes int `mapstructure:"default_slice_interval_minutes"`
	// POV 默认目标参与率（百分比）
	DefaultTargetPOV float64 `mapstructure:"default_target_pov"`
	// 是否默认启用数量随机扰动
	RandomizeSize bool `mapstructure:"randomize_size"`
	// 是否默认启用时间随机扰动
	RandomizeTiming bool `mapstructure:"randomize_timing"`
}

// Load 从 TOML 文件加载配置，支持环境变量覆盖
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default 返回全默认值的配置，供无配置文件的嵌入式使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// 默认值集合总能反序列化成功
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.Selector.CostWeight < 0 || c.Selector.LiquidityWeight < 0 || c.Selector.QualityWeight < 0 {
		return fmt.Errorf("selector weights must be non-negative")
	}
	if c.Selector.CostWeight+c.Selector.LiquidityWeight+c.Selector.QualityWeight <= 0 {
		return fmt.Errorf("at least one selector weight must be positive")
	}
	if c.Selector.MaxVenues < 1 {
		return fmt.Errorf("selector max_venues must be >= 1")
	}
	if c.Slicer.MinSliceSize < 1 {
		return fmt.Errorf("slicer min_slice_size must be >= 1")
	}
	if c.Slicer.MaxSliceSize > 0 && c.Slicer.MaxSliceSize < c.Slicer.MinSliceSize {
		return fmt.Errorf("slicer max_slice_size must be >= min_slice_size")
	}
	if c.DarkPool.SweepTimeoutMs <= 0 {
		return fmt.Errorf("darkpool sweep_timeout_ms must be positive")
	}
	if c.Algo.DefaultTargetPOV <= 0 || c.Algo.DefaultTargetPOV > 100 {
		return fmt.Errorf("algo default_target_pov must be in (0, 100]")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "trade-execution")
	v.SetDefault("version", "0.1.0")
	v.SetDefault("environment", "dev")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/app.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", true)

	v.SetDefault("selector.cost_weight", 0.4)
	v.SetDefault("selector.liquidity_weight", 0.3)
	v.SetDefault("selector.quality_weight", 0.3)
	v.SetDefault("selector.max_venues", 3)
	v.SetDefault("selector.multi_venue_enabled", true)
	v.SetDefault("selector.single_venue_threshold", 1000)

	v.SetDefault("slicer.min_slice_size", 100)
	v.SetDefault("slicer.max_slice_size", 10000)

	v.SetDefault("darkpool.sweep_timeout_ms", 500)
	v.SetDefault("darkpool.max_sweep_venues", 5)

	v.SetDefault("algo.default_slice_interval_minutes", 5)
	v.SetDefault("algo.default_target_pov", 10.0)
	v.SetDefault("algo.randomize_size", true)
	v.SetDefault("algo.randomize_timing", true)
}
