package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"Tunelist/config"
	"Tunelist/logger"
	"Tunelist/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// SnapshotPrefix 备份对象的前缀
const SnapshotPrefix = "snapshots/"

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Snapshot is the document written for each backup.
type Snapshot struct {
	TakenAt   time.Time                   `json:"takenAt"`
	Playlists []*model.PlaylistWithTracks `json:"playlists"`
}

// BackupStore 封装了 MinIO 客户端，负责歌单快照的上传与列举
type BackupStore struct {
	client     *minio.Client
	bucketName string
	region     string
}

// NewBackupStore 根据配置创建 MinIO 客户端，不会发起网络请求
func NewBackupStore(cfg *config.Config) (*BackupStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}

	return &BackupStore{
		client:     client,
		bucketName: cfg.MinioBucket,
		region:     cfg.MinioRegion,
	}, nil
}

// Bucket 返回目标存储桶名称
func (s *BackupStore) Bucket() string {
	return s.bucketName
}

// EnsureBucket 检查存储桶是否存在，不存在则创建
func (s *BackupStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶失败: %w", err)
	}
	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("创建存储桶失败: %w", err)
	}
	logger.Info("[Backup] 成功创建存储桶", logger.String("bucket", s.bucketName))
	return nil
}

// PutSnapshot uploads the playlists as one JSON object and returns its key.
func (s *BackupStore) PutSnapshot(ctx context.Context, playlists []*model.PlaylistWithTracks, takenAt time.Time) (string, error) {
	body, err := EncodeSnapshot(playlists, takenAt)
	if err != nil {
		return "", err
	}

	key := SnapshotKey(takenAt)
	info, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("上传快照失败: %w", err)
	}

	logger.Info("[Backup] 快照已上传",
		logger.String("bucket", s.bucketName),
		logger.String("key", key),
		logger.String("size", formatSize(info.Size)),
		logger.Int("playlists", len(playlists)))
	return key, nil
}

// ListSnapshots 列出所有快照及统计信息
func (s *BackupStore) ListSnapshots(ctx context.Context) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    SnapshotPrefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("列出对象时出错: %w", object.Err)
		}

		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return objects, stats, nil
}

// SnapshotKey 生成快照对象键，按时间字典序排列
func SnapshotKey(takenAt time.Time) string {
	return SnapshotPrefix + takenAt.UTC().Format("20060102T150405Z") + ".json"
}

// EncodeSnapshot renders the backup document.
func EncodeSnapshot(playlists []*model.PlaylistWithTracks, takenAt time.Time) ([]byte, error) {
	if playlists == nil {
		playlists = []*model.PlaylistWithTracks{}
	}
	body, err := json.MarshalIndent(Snapshot{TakenAt: takenAt.UTC(), Playlists: playlists}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化快照失败: %w", err)
	}
	return body, nil
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	return formatSize(size)
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// IsSnapshotKey reports whether key was produced by SnapshotKey.
func IsSnapshotKey(key string) bool {
	return strings.HasPrefix(key, SnapshotPrefix) && strings.HasSuffix(key, ".json")
}
