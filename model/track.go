package model

import "time"

// Track 歌单中的一首歌曲，生命周期归属于所在歌单
type Track struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID uint64    `json:"playlistId" gorm:"not null;index"`
	Playlist   *Playlist `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Artist     string    `json:"artist" gorm:"size:255;not null"`
	Album      string    `json:"album" gorm:"size:255;not null"`
	Year       string    `json:"year" gorm:"size:32;not null"` // stored as text, never parsed
	Genre      string    `json:"genre" gorm:"size:100;not null"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName 指定表名
func (Track) TableName() string {
	return "tracks"
}

// TrackInput 创建歌曲时客户端提交的字段
type TrackInput struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Year   string `json:"year"`
	Genre  string `json:"genre"`
}
