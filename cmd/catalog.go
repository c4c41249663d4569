package cmd

import (
	"fmt"
	"strings"

	"Tunelist/server"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "流派目录工具",
	Long:  `直接访问流派目录服务，用于排查凭据和网络问题。不受 CATALOG_VALIDATION 开关影响。`,
}

var catalogGenresCmd = &cobra.Command{
	Use:   "genres",
	Short: "列出目录中的全部流派",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CatalogClientID == "" {
			return fmt.Errorf("CATALOG_CLIENT_ID is not set")
		}
		v, closeFn, err := server.NewCatalogValidator(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		genres, err := v.Genres(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("共 %d 个流派:\n", len(genres))
		for i, g := range genres {
			fmt.Printf("%2d. %s\n", i+1, g)
		}
		return nil
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:     "check <genre>",
	Short:   "检查某个流派是否被接受",
	Args:    cobra.MinimumNArgs(1),
	Example: `  tunelist catalog check "hip hop"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CatalogClientID == "" {
			return fmt.Errorf("CATALOG_CLIENT_ID is not set")
		}
		v, closeFn, err := server.NewCatalogValidator(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		genre := strings.Join(args, " ")
		ok, err := v.IsValidGenre(cmd.Context(), genre)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("✅ %q 是有效流派\n", genre)
		} else {
			fmt.Printf("❌ %q 不在目录中\n", genre)
		}
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogGenresCmd, catalogCheckCmd)
	rootCmd.AddCommand(catalogCmd)
}
