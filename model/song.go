package model

import "time"

// Song represents an uploaded audio file. Path is an opaque filename under
// the configured media root; it is generated server-side and never exposed
// or accepted from clients. Length is the file size in bytes and drives
// range-request computation.
type Song struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Length    int64     `json:"length" gorm:"not null"`
	Path      string    `json:"-" gorm:"size:255;not null"`
	OwnerID   int64     `json:"ownerid" gorm:"column:ownerid;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
