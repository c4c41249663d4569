package cmd

import (
	"Tunelist/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 Tunelist 服务器",
	Long:  `启动歌单管理的 HTTP 服务，提供 /lists 下的 API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
