package model

import "time"

// Audit actions recorded by the write pipeline.
const (
	AuditCreateAlbum      = "create_album"
	AuditCreateSong       = "create_song"
	AuditSetSongThumbnail = "set_song_thumbnail"
	AuditDeleteAlbum      = "delete_album"
	AuditDeleteSong       = "delete_song"
)

// AuditEntry records one successful mutating operation. Writes are
// best-effort: a failed audit insert is logged and never fails the operation.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ActorID    string    `gorm:"size:64;index" json:"actorId"`
	Action     string    `gorm:"size:32" json:"action"`
	Resource   string    `gorm:"size:32" json:"resource"`
	ResourceID int64     `json:"resourceId"`
	Detail     string    `gorm:"size:512" json:"detail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName overrides GORM's default pluralized table name.
func (AuditEntry) TableName() string {
	return "audit_log"
}
