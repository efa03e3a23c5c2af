package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livp123/logship/internal/config"
	"github.com/livp123/logship/internal/utils/logger"
)

var configFlag string

var RootCmd = &cobra.Command{
	Use:   "logship",
	Short: "Ship container and file logs to AWS CloudWatch Logs",
	// Short: 将容器和文件日志传送到 AWS CloudWatch Logs
	Long: `logship runs a workload in a Docker container and ships every line of
its output to AWS CloudWatch Logs in ordered, sequence-token-threaded batches.
It can also tail an existing log file through the same pipeline.
logship 在 Docker 容器中运行工作负载，并将其输出的每一行以有序、
序列令牌串接的批次传送到 AWS CloudWatch Logs。
它也可以通过同一管道 tail 现有的日志文件。`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Load configuration to get logging settings
		// 加载配置以获取日志设置
		config.SetConfigPath(configFlag)

		cfg, err := config.LoadOrDefault(config.GetConfigPath())
		if err != nil {
			// If config fails to load, use default logging config (console only)
			// 如果加载配置失败，使用默认日志配置（仅控制台）
			logger.Init(logger.LoggingConfig{
				Enabled: false,
				Level:   "info",
			})
		} else {
			logger.Init(cfg.Logging)
		}

		// Inject logger into context
		// 将 Logger 注入 Context
		ctx := logger.WithContext(cmd.Context(), logger.Get(nil))
		cmd.SetContext(ctx)
	},
}

func init() {
	// Config file path
	// 配置文件路径
	RootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", fmt.Sprintf("Path to configuration file (default: %s)", config.DefaultConfigPath))
}

// Execute runs the root command tree.
// Execute 运行根命令树。
func Execute() error {
	return RootCmd.Execute()
}
