package model

import "time"

// Review represents a user's review of a playlist. The composite unique
// index enforces at most one review per (user, playlist) pair at the store
// level; handlers additionally pre-check for a friendlier error message.
type Review struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"userid" gorm:"column:userid;not null;uniqueIndex:uq_user_playlist"`
	PlaylistID int64     `json:"playlistid" gorm:"column:playlistid;not null;uniqueIndex:uq_user_playlist"`
	Stars      int       `json:"stars" gorm:"not null"`
	Review     string    `json:"review" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
