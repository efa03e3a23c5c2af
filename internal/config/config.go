package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/livp123/logship/internal/utils/logger"
	liberrors "github.com/livp123/logship/pkg/errors"
)

// DefaultConfigPath is the default configuration file location.
// DefaultConfigPath 是默认配置文件位置。
const DefaultConfigPath = "/etc/logship/config.yaml"

// ConfigMu protects concurrent access to the configuration file.
// ConfigMu 保护对配置文件的并发访问。
var ConfigMu sync.RWMutex

// configPath stores the path provided via CLI flags, if any.
// configPath 存储通过 CLI 标志提供的路径（如果有）。
var configPath string

// GlobalConfig is the root configuration structure.
// GlobalConfig 是根配置结构。
type GlobalConfig struct {
	AWS     AWSConfig            `yaml:"aws"`
	Shipper ShipperConfig        `yaml:"shipper"`
	Metrics MetricsConfig        `yaml:"metrics"`
	Logging logger.LoggingConfig `yaml:"logging"`
}

// AWSConfig holds the remote store connection settings. All values are
// passed through to the CloudWatch Logs client unchanged.
// AWSConfig 保存远程存储连接设置。所有值原样传递给 CloudWatch Logs 客户端。
type AWSConfig struct {
	Region string `yaml:"region"`
	// Region: AWS 区域
	AccessKeyID string `yaml:"access_key_id"`
	// AccessKeyID: AWS 访问密钥 ID（为空时使用默认凭证链）
	SecretAccessKey string `yaml:"secret_access_key"`
	// SecretAccessKey: AWS 秘密访问密钥
	Endpoint string `yaml:"endpoint"`
	// Endpoint: 自定义端点（用于测试，例如 localstack）
}

// ShipperConfig holds the pipeline tunables.
// ShipperConfig 保存管道调优参数。
type ShipperConfig struct {
	BatchSize int `yaml:"batch_size"`
	// BatchSize: 每批日志事件数
	RetryInterval string `yaml:"retry_interval"`
	// RetryInterval: 节流后的重试等待时间（例如 "2s"）
	MaxRetries int `yaml:"max_retries"`
	// MaxRetries: 节流重试上限（0 = 无限重试）
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	// BackoffMultiplier: 重试间隔倍增因子（1.0 = 固定间隔）
	StopTimeout string `yaml:"stop_timeout"`
	// StopTimeout: 停止容器前的宽限时间（例如 "10s"）
}

// MetricsConfig holds the Prometheus endpoint settings.
// MetricsConfig 保存 Prometheus 端点设置。
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// Enabled: 是否启用指标端点
	Listen string `yaml:"listen"`
	// Listen: 指标监听地址
}

// Default returns a GlobalConfig populated with defaults.
// Default 返回填充了默认值的 GlobalConfig。
func Default() *GlobalConfig {
	return &GlobalConfig{
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Shipper: ShipperConfig{
			BatchSize:         10,
			RetryInterval:     "2s",
			MaxRetries:        0,
			BackoffMultiplier: 1.0,
			StopTimeout:       "10s",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9355",
		},
		Logging: logger.LoggingConfig{
			Enabled:    false,
			Level:      "info",
			Path:       "/var/log/logship/logship.log",
			MaxSize:    10, // 10MB
			MaxBackups: 3,
			MaxAge:     30, // 30 days
			Compress:   true,
		},
	}
}

// Load reads the configuration from the given path, layered over defaults.
// Load 从给定路径读取配置，叠加在默认值之上。
func Load(path string) (*GlobalConfig, error) {
	ConfigMu.RLock()
	defer ConfigMu.RUnlock()

	safePath := filepath.Clean(path) // Sanitize path to prevent directory traversal
	data, err := os.ReadFile(safePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, liberrors.NewConfigError("yaml", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file
// does not exist. Any other error is still reported.
// LoadOrDefault 与 Load 相同，但文件不存在时回退到默认值。
func LoadOrDefault(path string) (*GlobalConfig, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the tunable values for consistency.
// Validate 检查调优值的一致性。
func (c *GlobalConfig) Validate() error {
	if c.Shipper.BatchSize <= 0 {
		return liberrors.NewBatchSizeError(c.Shipper.BatchSize)
	}
	if _, err := time.ParseDuration(c.Shipper.RetryInterval); err != nil {
		return liberrors.NewIntervalError("shipper.retry_interval", c.Shipper.RetryInterval)
	}
	if _, err := time.ParseDuration(c.Shipper.StopTimeout); err != nil {
		return liberrors.NewIntervalError("shipper.stop_timeout", c.Shipper.StopTimeout)
	}
	if c.Shipper.MaxRetries < 0 {
		return liberrors.NewConfigError("shipper.max_retries", c.Shipper.MaxRetries)
	}
	if c.Shipper.BackoffMultiplier < 1.0 {
		return liberrors.NewConfigError("shipper.backoff_multiplier", c.Shipper.BackoffMultiplier)
	}
	return nil
}

// RetryIntervalDuration returns the parsed retry interval.
// Validate must have accepted the config first.
func (c *ShipperConfig) RetryIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.RetryInterval)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// StopTimeoutDuration returns the parsed container stop timeout.
func (c *ShipperConfig) StopTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.StopTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SetConfigPath records the path provided via CLI flags.
// SetConfigPath 记录通过 CLI 标志提供的路径。
func SetConfigPath(path string) {
	configPath = path
}

// GetConfigPath resolves the configuration file path.
// It prioritizes the CLI flag over the default.
// GetConfigPath 解析配置文件路径，优先使用 CLI 标志，其次是默认值。
func GetConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return DefaultConfigPath
}
