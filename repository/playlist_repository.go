package repository

import (
	"context"
	"errors"

	"Tunelist/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaylistRepository 歌单数据访问接口
type PlaylistRepository interface {
	// Create 创建歌单，名称冲突时返回 ErrDuplicatePlaylist
	Create(ctx context.Context, playlist *model.Playlist) error

	// List 按 id 顺序返回所有歌单
	List(ctx context.Context) ([]*model.Playlist, error)

	// GetByName 根据名称获取歌单，不存在时返回 nil, nil
	GetByName(ctx context.Context, name string) (*model.Playlist, error)

	// DeleteByName 在同一事务中删除歌单及其所有歌曲
	DeleteByName(ctx context.Context, name string) error

	// ListWithTracks 在同一事务中读取全部歌单及歌曲
	ListWithTracks(ctx context.Context) ([]*model.PlaylistWithTracks, error)
}

// gormPlaylistRepository GORM 实现
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建 GORM 歌单仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// Create 创建歌单
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	err := r.db.WithContext(ctx).Create(playlist).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePlaylist
	}
	return err
}

// List 获取所有歌单
func (r *gormPlaylistRepository) List(ctx context.Context) ([]*model.Playlist, error) {
	playlists := make([]*model.Playlist, 0)
	err := r.db.WithContext(ctx).Order("id ASC").Find(&playlists).Error
	return playlists, err
}

// GetByName 根据名称获取歌单
func (r *gormPlaylistRepository) GetByName(ctx context.Context, name string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// DeleteByName 删除歌单，先删歌曲再删歌单
func (r *gormPlaylistRepository) DeleteByName(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var playlist model.Playlist
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", name).
			First(&playlist).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlaylistNotFound
			}
			return err
		}

		if err := tx.Where("playlist_id = ?", playlist.ID).Delete(&model.Track{}).Error; err != nil {
			return err
		}

		return tx.Delete(&playlist).Error
	})
}

// ListWithTracks 导出全部歌单及歌曲
func (r *gormPlaylistRepository) ListWithTracks(ctx context.Context) ([]*model.PlaylistWithTracks, error) {
	result := make([]*model.PlaylistWithTracks, 0)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var playlists []model.Playlist
		if err := tx.Order("id ASC").Find(&playlists).Error; err != nil {
			return err
		}

		var tracks []*model.Track
		if err := tx.Order("playlist_id ASC, id ASC").Find(&tracks).Error; err != nil {
			return err
		}

		byPlaylist := make(map[uint64][]*model.Track, len(playlists))
		for _, t := range tracks {
			byPlaylist[t.PlaylistID] = append(byPlaylist[t.PlaylistID], t)
		}

		for _, p := range playlists {
			owned := byPlaylist[p.ID]
			if owned == nil {
				owned = []*model.Track{}
			}
			result = append(result, &model.PlaylistWithTracks{Playlist: p, Tracks: owned})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
