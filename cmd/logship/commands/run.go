package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/livp123/logship/internal/container"
	"github.com/livp123/logship/internal/pipeline"
	"github.com/livp123/logship/internal/utils/logger"
)

var (
	flagImage   string
	flagCommand string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a command in a container and ship its output to CloudWatch Logs",
	// Short: 在容器中运行命令并将其输出传送到 CloudWatch Logs
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get(cmd.Context())

		cfg, err := loadShipConfig()
		if err != nil {
			log.Errorf("❌ Invalid configuration: %v", err)
			return err
		}

		startMetrics(cfg, log)

		// Stop on SIGINT/SIGTERM; cleanup still runs to completion.
		// 收到 SIGINT/SIGTERM 时停止；清理仍会完整执行。
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		snk, err := newSink(ctx, cfg, log)
		if err != nil {
			log.Errorf("❌ Failed to build CloudWatch client: %v", err)
			return err
		}

		runtime, err := container.NewDockerRuntime(log)
		if err != nil {
			log.Errorf("❌ Failed to connect to Docker: %v", err)
			return err
		}

		shipper := pipeline.New(runtime, snk, retryOptions(cfg), pipeline.Options{
			Image:       flagImage,
			Command:     flagCommand,
			Group:       flagGroup,
			Stream:      flagStream,
			BatchSize:   cfg.Shipper.BatchSize,
			StopTimeout: cfg.Shipper.StopTimeoutDuration(),
		}, log)

		log.Infof("🚀 Shipping %q in image %s to %s/%s", flagCommand, flagImage, flagGroup, flagStream)
		if err := shipper.Run(ctx); err != nil {
			log.Errorf("❌ Shipping session failed: %v", err)
			return err
		}
		log.Info("✅ Shipping session complete")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&flagImage, "image", "", "Docker image to run the command in")
	runCmd.Flags().StringVar(&flagCommand, "command", "", "Shell command to run inside the container")
	_ = runCmd.MarkFlagRequired("image")
	_ = runCmd.MarkFlagRequired("command")

	registerShipFlags(runCmd)
	RootCmd.AddCommand(runCmd)
}
