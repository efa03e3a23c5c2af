package commands

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/livp123/logship/internal/config"
	"github.com/livp123/logship/internal/sink"
)

// Shared flags for the shipping commands (run, tail)
// run 和 tail 命令共享的标志
var (
	flagGroup         string
	flagStream        string
	flagRegion        string
	flagAccessKey     string
	flagSecretKey     string
	flagBatchSize     int
	flagMetricsListen string
)

// registerShipFlags wires the destination and AWS flags onto a command.
// registerShipFlags 将目的地和 AWS 标志接到命令上。
func registerShipFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagGroup, "group", "", "CloudWatch Logs log group name")
	cmd.Flags().StringVar(&flagStream, "stream", "", "CloudWatch Logs log stream name")
	cmd.Flags().StringVar(&flagRegion, "aws-region", "", "AWS region (overrides config)")
	cmd.Flags().StringVar(&flagAccessKey, "aws-access-key-id", "", "AWS access key ID (overrides config)")
	cmd.Flags().StringVar(&flagSecretKey, "aws-secret-access-key", "", "AWS secret access key (overrides config)")
	cmd.Flags().IntVar(&flagBatchSize, "batch-size", 0, "Events per batch (overrides config)")
	cmd.Flags().StringVar(&flagMetricsListen, "metrics-listen", "", "Prometheus listen address (overrides config)")

	_ = cmd.MarkFlagRequired("group")
	_ = cmd.MarkFlagRequired("stream")
}

// loadShipConfig loads the config file and layers the CLI flags on top.
// loadShipConfig 加载配置文件并将 CLI 标志叠加在上面。
func loadShipConfig() (*config.GlobalConfig, error) {
	cfg, err := config.LoadOrDefault(config.GetConfigPath())
	if err != nil {
		return nil, err
	}

	if flagRegion != "" {
		cfg.AWS.Region = flagRegion
	}
	if flagAccessKey != "" {
		cfg.AWS.AccessKeyID = flagAccessKey
	}
	if flagSecretKey != "" {
		cfg.AWS.SecretAccessKey = flagSecretKey
	}
	if flagBatchSize > 0 {
		cfg.Shipper.BatchSize = flagBatchSize
	}
	if flagMetricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = flagMetricsListen
	}
	return cfg, cfg.Validate()
}

// newSink builds the CloudWatch sink from the merged configuration.
// newSink 根据合并后的配置构建 CloudWatch sink。
func newSink(ctx context.Context, cfg *config.GlobalConfig, log *zap.SugaredLogger) (*sink.CloudWatch, error) {
	return sink.NewCloudWatch(ctx, sink.AWSOptions{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.Endpoint,
	}, log)
}

// retryOptions maps the shipper config onto the retrier.
// retryOptions 将传送器配置映射到重试器。
func retryOptions(cfg *config.GlobalConfig) sink.RetryOptions {
	return sink.RetryOptions{
		Interval:    cfg.Shipper.RetryIntervalDuration(),
		MaxAttempts: cfg.Shipper.MaxRetries,
		Multiplier:  cfg.Shipper.BackoffMultiplier,
	}
}

// startMetrics starts the Prometheus endpoint when enabled.
// startMetrics 在启用时启动 Prometheus 端点。
func startMetrics(cfg *config.GlobalConfig, log *zap.SugaredLogger) {
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen == "" {
		return
	}

	// Start Prometheus metrics server / 启动 Prometheus 指标服务
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Infof("📊 Metrics server listening on %s", cfg.Metrics.Listen)
		if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
			log.Warnf("⚠️  Metrics server stopped: %v", err)
		}
	}()
}
