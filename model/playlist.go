package model

import "time"

// Playlist represents a user-owned playlist. Songs are associated through
// PlaylistSong rows, reviews through Review rows.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	OwnerID     int64     `json:"ownerid" gorm:"column:ownerid;not null;index"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistSong is a playlist membership row. The composite unique index is
// the store-level guarantee that a song appears at most once per playlist,
// closing the race between the pre-insert check and the insert.
type PlaylistSong struct {
	ID         int64 `json:"-" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64 `json:"playlistid" gorm:"column:playlistid;not null;uniqueIndex:uq_playlist_song"`
	SongID     int64 `json:"songid" gorm:"column:songid;not null;uniqueIndex:uq_playlist_song"`
}

// PlaylistDetails is a playlist plus its associated songs and reviews, as
// returned by the playlist detail endpoint.
type PlaylistDetails struct {
	Playlist
	Songs   []*Song   `json:"songs"`
	Reviews []*Review `json:"reviews"`
}
