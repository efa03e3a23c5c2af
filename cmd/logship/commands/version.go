package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/livp123/logship/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the logship version",
	// Short: 打印 logship 版本
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("logship %s\n", version.Version)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
