package repository

import (
	"context"
	"errors"
	"fmt"

	"Tunelist/logger"
	"Tunelist/model"

	"gorm.io/gorm"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	// CreateTrack 插入歌曲，所属歌单已被删除时返回 ErrPlaylistNotFound
	CreateTrack(ctx context.Context, track *model.Track) error

	// ListByPlaylistName 在同一事务中读取歌单及其歌曲，歌单不存在时返回 ErrPlaylistNotFound
	ListByPlaylistName(ctx context.Context, name string) (*model.Playlist, []*model.Track, error)

	// DeleteFromPlaylist 仅删除属于该歌单的歌曲
	DeleteFromPlaylist(ctx context.Context, playlistID, trackID uint64) error
}

// gormTrackRepository implements TrackRepository with GORM.
type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a new instance of gormTrackRepository.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

// CreateTrack adds a new track to the database.
func (r *gormTrackRepository) CreateTrack(ctx context.Context, track *model.Track) error {
	if track.PlaylistID == 0 {
		return fmt.Errorf("track %q has no owning playlist", track.Title)
	}

	err := r.db.WithContext(ctx).Omit("Playlist").Create(track).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrPlaylistNotFound
		}
		return fmt.Errorf("failed to create track: %w", err)
	}

	logger.Debug("[TrackRepo] 歌曲已创建",
		logger.Uint64("trackId", track.ID),
		logger.Uint64("playlistId", track.PlaylistID),
		logger.String("title", track.Title))
	return nil
}

// ListByPlaylistName 获取歌单下所有歌曲
func (r *gormTrackRepository) ListByPlaylistName(ctx context.Context, name string) (*model.Playlist, []*model.Track, error) {
	var playlist model.Playlist
	tracks := make([]*model.Track, 0)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("name = ?", name).First(&playlist).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlaylistNotFound
			}
			return err
		}
		return tx.Where("playlist_id = ?", playlist.ID).Order("id ASC").Find(&tracks).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &playlist, tracks, nil
}

// DeleteFromPlaylist 删除歌单中的歌曲，归属关系与 id 在同一条语句中校验
func (r *gormTrackRepository) DeleteFromPlaylist(ctx context.Context, playlistID, trackID uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND playlist_id = ?", trackID, playlistID).
		Delete(&model.Track{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete track %d: %w", trackID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTrackNotFound
	}
	return nil
}
