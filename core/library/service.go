package library

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"Tunelist/logger"
	"Tunelist/model"
	"Tunelist/repository"
)

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 2000
)

// GenreValidator decides whether a track genre may be stored.
// *catalog.Validator and catalog.Disabled both satisfy it.
type GenreValidator interface {
	IsValidGenre(ctx context.Context, genre string) (bool, error)
}

// Service 歌单与歌曲的业务逻辑
type Service struct {
	playlists repository.PlaylistRepository
	tracks    repository.TrackRepository
	genres    GenreValidator
}

// NewService 创建歌单服务
func NewService(playlists repository.PlaylistRepository, tracks repository.TrackRepository, genres GenreValidator) *Service {
	return &Service{
		playlists: playlists,
		tracks:    tracks,
		genres:    genres,
	}
}

// CreatePlaylist stores a playlist under its trimmed name.
func (s *Service) CreatePlaylist(ctx context.Context, name, description string) (*model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: playlist name is required", ErrInvalidArgument)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: playlist name exceeds %d characters", ErrInvalidArgument, MaxNameLength)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidArgument, MaxDescriptionLength)
	}

	playlist := &model.Playlist{Name: name, Description: description}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		if errors.Is(err, repository.ErrDuplicatePlaylist) {
			return nil, fmt.Errorf("%w: playlist %q", ErrAlreadyExists, name)
		}
		return nil, err
	}

	logger.Info("[Library] 歌单已创建", logger.String("name", name), logger.Uint64("id", playlist.ID))
	return playlist, nil
}

// ListPlaylists 返回全部歌单
func (s *Service) ListPlaylists(ctx context.Context) ([]*model.Playlist, error) {
	return s.playlists.List(ctx)
}

// GetPlaylist 根据名称获取歌单
func (s *Service) GetPlaylist(ctx context.Context, name string) (*model.Playlist, error) {
	playlist, err := s.playlists.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("%w: playlist %q", ErrNotFound, name)
	}
	return playlist, nil
}

// DeletePlaylist removes the playlist and every track it owns.
func (s *Service) DeletePlaylist(ctx context.Context, name string) error {
	if err := s.playlists.DeleteByName(ctx, name); err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return fmt.Errorf("%w: playlist %q", ErrNotFound, name)
		}
		return err
	}

	logger.Info("[Library] 歌单已删除", logger.String("name", name))
	return nil
}

// AddTrack validates input and stores it under the named playlist.
//
// Checks run in order: playlist existence, required fields, then the genre
// validator. A validator failure is returned as is (it wraps
// catalog.ErrValidationUnavailable) and nothing is written.
func (s *Service) AddTrack(ctx context.Context, playlistName string, in model.TrackInput) (*model.Track, error) {
	playlist, err := s.GetPlaylist(ctx, playlistName)
	if err != nil {
		return nil, err
	}

	track := &model.Track{
		PlaylistID: playlist.ID,
		Title:      strings.TrimSpace(in.Title),
		Artist:     strings.TrimSpace(in.Artist),
		Album:      strings.TrimSpace(in.Album),
		Year:       strings.TrimSpace(in.Year),
		Genre:      strings.TrimSpace(in.Genre),
	}
	if err := validateTrack(track); err != nil {
		return nil, err
	}

	ok, err := s.genres.IsValidGenre(ctx, track.Genre)
	if err != nil {
		logger.Warn("[Library] 流派校验不可用，拒绝写入",
			logger.String("playlist", playlist.Name),
			logger.String("genre", track.Genre),
			logger.ErrorField(err))
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGenre, track.Genre)
	}

	if err := s.tracks.CreateTrack(ctx, track); err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return nil, fmt.Errorf("%w: playlist %q", ErrNotFound, playlistName)
		}
		return nil, err
	}
	return track, nil
}

func validateTrack(t *model.Track) error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", t.Title},
		{"artist", t.Artist},
		{"album", t.Album},
		{"year", t.Year},
		{"genre", t.Genre},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return nil
}

// ListTracks 返回歌单中的全部歌曲
func (s *Service) ListTracks(ctx context.Context, playlistName string) ([]*model.Track, error) {
	_, tracks, err := s.tracks.ListByPlaylistName(ctx, playlistName)
	if err != nil {
		if errors.Is(err, repository.ErrPlaylistNotFound) {
			return nil, fmt.Errorf("%w: playlist %q", ErrNotFound, playlistName)
		}
		return nil, err
	}
	return tracks, nil
}

// DeleteTrack removes a track only when it is owned by the named playlist.
func (s *Service) DeleteTrack(ctx context.Context, playlistName string, trackID uint64) error {
	playlist, err := s.GetPlaylist(ctx, playlistName)
	if err != nil {
		return err
	}

	if err := s.tracks.DeleteFromPlaylist(ctx, playlist.ID, trackID); err != nil {
		if errors.Is(err, repository.ErrTrackNotFound) {
			return fmt.Errorf("%w: track %d in playlist %q", ErrNotFound, trackID, playlistName)
		}
		return err
	}
	return nil
}

// Export 返回所有歌单及歌曲的一致快照，供备份使用
func (s *Service) Export(ctx context.Context) ([]*model.PlaylistWithTracks, error) {
	return s.playlists.ListWithTracks(ctx)
}
