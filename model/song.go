package model

import (
	"database/sql"
	"time"
)

// Song is a catalog song. The audio URL is required and never cleared once
// set. The thumbnail is optional and may be attached by a later operation.
// AlbumID is nullable: the schema sets it to NULL if the owning album row
// disappears, though album deletion normally removes the songs first.
type Song struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Thumbnail   sql.NullString `json:"thumbnail"`
	Audio       string         `json:"audio"`
	AlbumID     sql.NullInt64  `json:"albumId"`
	CreatedAt   time.Time      `json:"createdAt"`
}
