package cmd

import (
	"context"
	"fmt"
	"time"

	"Tunelist/core/catalog"
	"Tunelist/core/library"
	"Tunelist/db"
	"Tunelist/repository"
	"Tunelist/storage"

	"github.com/spf13/cobra"
)

var backupList bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "备份全部歌单到 MinIO",
	Long:  `在同一事务中读取全部歌单及歌曲，以 JSON 快照上传到 MinIO 存储桶。`,
	Example: `  # 上传一份新的快照
  tunelist backup

  # 列出已有快照
  tunelist backup -l`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewBackupStore(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, store.Bucket())

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		if backupList {
			return listSnapshots(ctx, store)
		}

		gdb, err := db.Open(cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		// 备份只读，不需要流派校验
		svc := library.NewService(repository.NewGormPlaylistRepository(gdb), repository.NewGormTrackRepository(gdb), catalog.Disabled{})
		playlists, err := svc.Export(ctx)
		if err != nil {
			return fmt.Errorf("读取歌单失败: %w", err)
		}

		if err := store.EnsureBucket(ctx); err != nil {
			return err
		}
		key, err := store.PutSnapshot(ctx, playlists, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("✅ 已备份 %d 个歌单到 %s\n", len(playlists), key)
		return nil
	},
}

func listSnapshots(ctx context.Context, store *storage.BackupStore) error {
	objects, stats, err := store.ListSnapshots(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("快照数量: %d\n", stats.TotalObjects)
	fmt.Printf("总大小: %s\n", storage.FormatSize(stats.TotalSize))
	if stats.TotalObjects > 0 {
		fmt.Printf("最近一次: %s\n", stats.LastModified.Format(time.RFC3339))
	}
	for _, obj := range objects {
		fmt.Printf("  ├─ %s (%s)\n", obj.Key, storage.FormatSize(obj.Size))
	}
	return nil
}

func init() {
	backupCmd.Flags().BoolVarP(&backupList, "list", "l", false, "列出已有快照而不是创建新快照")
	rootCmd.AddCommand(backupCmd)
}
