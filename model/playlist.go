package model

import "time"

// Playlist 表示一个按名称唯一的歌单
type Playlist struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null;uniqueIndex:uq_playlists_name"`
	Description string    `json:"description" gorm:"size:2000"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistWithTracks 包含歌单信息和其包含的歌曲
type PlaylistWithTracks struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []*Track `json:"tracks"`
}
