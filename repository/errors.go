package repository

import "errors"

var (
	// ErrDuplicatePlaylist is returned when the unique name index rejects an insert.
	ErrDuplicatePlaylist = errors.New("playlist with that name already exists")

	// ErrPlaylistNotFound is returned when a playlist lookup or delete finds no row,
	// or when a track insert references a playlist that no longer exists.
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrTrackNotFound is returned when no track with the id is owned by the playlist.
	ErrTrackNotFound = errors.New("track not found")
)
