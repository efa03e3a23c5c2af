package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigTemplate defines the default configuration file structure with
// bilingual comments. It is used by `logship init` to seed new config files.
// DefaultConfigTemplate 定义带双语注释的默认配置文件结构。
const DefaultConfigTemplate = `# Logship Configuration File / Logship 配置文件
#

# AWS Configuration / AWS 配置
aws:
  # AWS region for CloudWatch Logs.
  # CloudWatch Logs 的 AWS 区域。
  region: "us-east-1"

  # Static credentials. Leave empty to use the default credential chain
  # (environment, shared config, instance role).
  # 静态凭证。留空则使用默认凭证链（环境变量、共享配置、实例角色）。
  access_key_id: ""
  secret_access_key: ""

  # Custom endpoint for testing (e.g. localstack). Leave empty for AWS.
  # 用于测试的自定义端点（例如 localstack）。正式环境留空。
  endpoint: ""

# Shipper Configuration / 传送器配置
shipper:
  # Batch Size: events per PutLogEvents call.
  # 批大小：每次 PutLogEvents 调用的事件数。
  batch_size: 10

  # Retry Interval: wait time after a throttling rejection.
  # 重试间隔：被节流拒绝后的等待时间。
  retry_interval: "2s"

  # Max Retries: cap on throttling retries (0 = retry forever).
  # 最大重试次数：节流重试上限（0 = 无限重试）。
  max_retries: 0

  # Backoff Multiplier: interval growth factor per retry (1.0 = fixed).
  # 退避倍增因子：每次重试的间隔增长因子（1.0 = 固定）。
  backoff_multiplier: 1.0

  # Stop Timeout: grace period before the container is killed on cleanup.
  # 停止超时：清理时杀死容器前的宽限时间。
  stop_timeout: "10s"

# Metrics Configuration / 指标配置
metrics:
  # Enable the Prometheus /metrics endpoint.
  # 启用 Prometheus /metrics 端点。
  enabled: false
  listen: ":9355"

# Logging Configuration / 日志配置
logging:
  # Write logship's own diagnostics to a rotating file instead of stdout.
  # 将 logship 自身的诊断日志写入轮转文件而不是 stdout。
  enabled: false
  level: "info"
  path: "/var/log/logship/logship.log"
  max_size: 10
  max_backups: 3
  max_age: 30
  compress: true
`

// WriteDefault writes the default template to path unless a file already
// exists there.
// WriteDefault 将默认模板写入 path，除非该文件已存在。
func WriteDefault(path string) error {
	ConfigMu.Lock()
	defer ConfigMu.Unlock()

	safePath := filepath.Clean(path)
	if _, err := os.Stat(safePath); err == nil {
		return os.ErrExist
	}

	if err := os.MkdirAll(filepath.Dir(safePath), 0755); err != nil {
		return err
	}
	return os.WriteFile(safePath, []byte(DefaultConfigTemplate), 0644)
}
