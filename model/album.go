package model

import "time"

// Album is a catalog album. The thumbnail URL is set at creation time from
// the object store and is never empty for a persisted row.
type Album struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
}
