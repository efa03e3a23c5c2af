package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/livp123/logship/internal/config"
	"github.com/livp123/logship/internal/utils/logger"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	// Short: 写入默认配置文件
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.Get(cmd.Context())

		path := config.GetConfigPath()
		if err := config.WriteDefault(path); err != nil {
			if errors.Is(err, os.ErrExist) {
				log.Infof("ℹ️  Configuration file already exists: %s", path)
				return nil
			}
			log.Errorf("❌ Failed to write configuration file: %v", err)
			return err
		}

		log.Infof("✅ Default configuration written to %s", path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
}
