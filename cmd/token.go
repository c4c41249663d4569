package cmd

import (
	"fmt"

	"Tunelist/core/auth"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "为本地调试签发 JWT",
	Long:  `使用 JWT_SECRET 签发一个 Bearer token，仅用于本地调试 /lists 接口。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := auth.GenerateToken([]byte(cfg.JWTSecret), args[0], cfg.JWTTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
