package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/livp123/logship/internal/pipeline"
	"github.com/livp123/logship/internal/source"
	"github.com/livp123/logship/internal/utils/logger"
)

var flagFollow bool

var tailCmd = &cobra.Command{
	Use:   "tail <file>",
	Short: "Ship lines from a local log file to CloudWatch Logs",
	// Short: 将本地日志文件中的行传送到 CloudWatch Logs
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get(cmd.Context())

		cfg, err := loadShipConfig()
		if err != nil {
			log.Errorf("❌ Invalid configuration: %v", err)
			return err
		}

		startMetrics(cfg, log)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		snk, err := newSink(ctx, cfg, log)
		if err != nil {
			log.Errorf("❌ Failed to build CloudWatch client: %v", err)
			return err
		}

		src, err := source.NewFileSource(args[0], flagFollow)
		if err != nil {
			log.Errorf("❌ Failed to open %s: %v", args[0], err)
			return err
		}
		defer src.Close()

		shipper := pipeline.New(nil, snk, retryOptions(cfg), pipeline.Options{
			Group:     flagGroup,
			Stream:    flagStream,
			BatchSize: cfg.Shipper.BatchSize,
		}, log)

		log.Infof("🚀 Shipping %s to %s/%s", args[0], flagGroup, flagStream)
		if err := shipper.RunFrom(ctx, src); err != nil {
			log.Errorf("❌ Shipping session failed: %v", err)
			return err
		}
		log.Info("✅ Shipping session complete")
		return nil
	},
}

func init() {
	tailCmd.Flags().BoolVarP(&flagFollow, "follow", "f", false, "Keep the file open and ship new lines as they appear")

	registerShipFlags(tailCmd)
	RootCmd.AddCommand(tailCmd)
}
