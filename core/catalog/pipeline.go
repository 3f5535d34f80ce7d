package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"tunedeck/cache"
	"tunedeck/logger"
	"tunedeck/model"
	"tunedeck/storage"
)

// Object store folders per resource collection.
const (
	FolderAlbums     = "albums"
	FolderSongs      = "songs"
	FolderThumbnails = "thumbnails"
)

// phase names the steps of an operation. Every operation walks its phases in
// order exactly once; any phase can fail the operation, none is re-entered
// and nothing is retried.
type phase string

const (
	phaseAuthorize  phase = "authorize"
	phaseValidate   phase = "validate"
	phaseLookup     phase = "lookup"
	phaseUpload     phase = "upload"
	phasePersist    phase = "persist"
	phaseInvalidate phase = "invalidate"
)

// AlbumStore is the album slice of the catalog store.
type AlbumStore interface {
	CreateAlbum(ctx context.Context, album *model.Album) (*model.Album, error)
	GetAlbumByID(ctx context.Context, id int64) (*model.Album, error)
	DeleteAlbum(ctx context.Context, id int64) error
}

// SongStore is the song slice of the catalog store.
type SongStore interface {
	CreateSong(ctx context.Context, song *model.Song) (*model.Song, error)
	GetSongByID(ctx context.Context, id int64) (*model.Song, error)
	UpdateSongThumbnail(ctx context.Context, id int64, thumbnail string) (*model.Song, error)
	DeleteSong(ctx context.Context, id int64) error
	DeleteSongsByAlbumID(ctx context.Context, albumID int64) error
}

// Uploader writes a binary asset to the object store and returns its durable URL.
type Uploader interface {
	Upload(ctx context.Context, content []byte, contentType, folder string, kind storage.ResourceKind) (string, error)
}

// Invalidator evicts catalog cache keys. Invalidate never reports failure;
// Ready is an advisory liveness probe.
type Invalidator interface {
	Ready(ctx context.Context) bool
	Invalidate(ctx context.Context, key string)
}

// Auditor records successful mutations. Recording is best-effort.
type Auditor interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
}

// Attachment is the single optional binary payload of a request.
type Attachment struct {
	Content  []byte
	MimeType string
}

func (a *Attachment) empty() bool {
	return a == nil || len(a.Content) == 0
}

// CreateAlbumInput carries the fields of a create-album request.
type CreateAlbumInput struct {
	Title       string
	Description string
	File        *Attachment
}

// CreateSongInput carries the fields of a create-song request. AlbumID is the
// raw form field; the pipeline owns its numeric validation.
type CreateSongInput struct {
	Title       string
	Description string
	AlbumID     string
	File        *Attachment
}

// SetSongThumbnailInput carries the fields of a set-thumbnail request.
type SetSongThumbnailInput struct {
	SongID int64
	File   *Attachment
}

// Pipeline sequences every mutating catalog operation over the object store,
// the catalog store and the cache invalidation layer. It holds no state of
// its own: each call is an independent walk through the operation's phases,
// and the multi-step sequences are deliberately not wrapped in a cross-call
// transaction. A crash between steps can leave a documented inconsistency
// window (an uploaded object without a row, or an emptied album that was
// never deleted); the pipeline reports such failures instead of compensating.
type Pipeline struct {
	albums  AlbumStore
	songs   SongStore
	uploads Uploader
	cache   Invalidator
	audit   Auditor
}

// NewPipeline wires the pipeline's collaborators. audit may be nil.
func NewPipeline(albums AlbumStore, songs SongStore, uploads Uploader, cacheLayer Invalidator, audit Auditor) *Pipeline {
	return &Pipeline{
		albums:  albums,
		songs:   songs,
		uploads: uploads,
		cache:   cacheLayer,
		audit:   audit,
	}
}

// CreateAlbum uploads the thumbnail, inserts the album row and evicts the
// albums listing. The row is only ever written after the thumbnail upload
// succeeded, so no album references a missing asset. An upload failure here
// propagates on the error channel; unlike the song operations there is no
// contained UploadFailed outcome for album creation.
func (p *Pipeline) CreateAlbum(ctx context.Context, actor *model.Actor, in CreateAlbumInput) (*Outcome, error) {
	if !actor.IsAdmin() {
		return p.fail("CreateAlbum", phaseAuthorize, StatusUnauthorized, "You are not admin"), nil
	}

	if in.Title == "" || in.Description == "" {
		return p.fail("CreateAlbum", phaseValidate, StatusBadRequest, "Title and description are required"), nil
	}
	if in.File.empty() {
		return p.fail("CreateAlbum", phaseValidate, StatusBadRequest, "No file to upload"), nil
	}

	url, err := p.uploads.Upload(ctx, in.File.Content, in.File.MimeType, FolderAlbums, storage.ResourceImage)
	if err != nil {
		return nil, fmt.Errorf("album thumbnail upload failed: %w", err)
	}

	created, err := p.albums.CreateAlbum(ctx, &model.Album{
		Title:       in.Title,
		Description: in.Description,
		Thumbnail:   url,
	})
	if err != nil {
		return p.storeFail("CreateAlbum", phasePersist, err), nil
	}

	p.evict(ctx, cache.AlbumsKey)
	p.recordAudit(ctx, actor, model.AuditCreateAlbum, "album", created.ID, created.Title)

	logger.Info("album created",
		logger.Int64("albumId", created.ID),
		logger.String("actor", actor.ID))

	return &Outcome{Status: StatusSuccess, Message: "Album Created", Album: created}, nil
}

// CreateSong validates the album reference, uploads the audio and inserts the
// song row. An upload failure is contained and reported as a structured
// UploadFailed outcome rather than propagating.
func (p *Pipeline) CreateSong(ctx context.Context, actor *model.Actor, in CreateSongInput) (*Outcome, error) {
	if !actor.IsAdmin() {
		return p.fail("CreateSong", phaseAuthorize, StatusUnauthorized, "You are not admin"), nil
	}

	albumID, err := strconv.ParseInt(in.AlbumID, 10, 64)
	if err != nil {
		return p.fail("CreateSong", phaseValidate, StatusBadRequest, "Invalid album ID"), nil
	}
	if in.Title == "" || in.Description == "" {
		return p.fail("CreateSong", phaseValidate, StatusBadRequest, "Title and description are required"), nil
	}

	album, err := p.albums.GetAlbumByID(ctx, albumID)
	if err != nil {
		return p.storeFail("CreateSong", phaseLookup, err), nil
	}
	if album == nil {
		return p.fail("CreateSong", phaseLookup, StatusNotFound, "No album found with this ID"), nil
	}

	if in.File.empty() {
		return p.fail("CreateSong", phaseValidate, StatusBadRequest, "No file to upload"), nil
	}
	if !strings.HasPrefix(in.File.MimeType, "audio/") {
		return p.fail("CreateSong", phaseValidate, StatusBadRequest, "Invalid file type. Only audio files are allowed."), nil
	}

	url, err := p.uploads.Upload(ctx, in.File.Content, in.File.MimeType, FolderSongs, storage.ResourceAudio)
	if err != nil {
		logger.Error("song audio upload failed",
			logger.Int64("albumId", albumID),
			logger.ErrorField(err))
		return p.fail("CreateSong", phaseUpload, StatusUploadFailed, "Failed to upload audio file"), nil
	}

	created, err := p.songs.CreateSong(ctx, &model.Song{
		Title:       in.Title,
		Description: in.Description,
		Audio:       url,
		AlbumID:     sql.NullInt64{Int64: albumID, Valid: true},
	})
	if err != nil {
		return p.storeFail("CreateSong", phasePersist, err), nil
	}

	p.evict(ctx, cache.SongsKey)
	p.recordAudit(ctx, actor, model.AuditCreateSong, "song", created.ID, created.Title)

	logger.Info("song created",
		logger.Int64("songId", created.ID),
		logger.Int64("albumId", albumID),
		logger.String("actor", actor.ID))

	return &Outcome{Status: StatusSuccess, Message: "Song added successfully", Song: created}, nil
}

// SetSongThumbnail uploads artwork and sets the song's thumbnail column,
// leaving every other column untouched. Upload failures are contained like
// in CreateSong.
func (p *Pipeline) SetSongThumbnail(ctx context.Context, actor *model.Actor, in SetSongThumbnailInput) (*Outcome, error) {
	if !actor.IsAdmin() {
		return p.fail("SetSongThumbnail", phaseAuthorize, StatusUnauthorized, "You are not admin"), nil
	}

	song, err := p.songs.GetSongByID(ctx, in.SongID)
	if err != nil {
		return p.storeFail("SetSongThumbnail", phaseLookup, err), nil
	}
	if song == nil {
		return p.fail("SetSongThumbnail", phaseLookup, StatusNotFound, "No song found with this ID"), nil
	}

	if in.File.empty() {
		return p.fail("SetSongThumbnail", phaseValidate, StatusBadRequest, "No file to upload"), nil
	}
	if !strings.HasPrefix(in.File.MimeType, "image/") {
		return p.fail("SetSongThumbnail", phaseValidate, StatusBadRequest, "Invalid file type. Only image files are allowed."), nil
	}

	url, err := p.uploads.Upload(ctx, in.File.Content, in.File.MimeType, FolderThumbnails, storage.ResourceImage)
	if err != nil {
		logger.Error("thumbnail upload failed",
			logger.Int64("songId", in.SongID),
			logger.ErrorField(err))
		return p.fail("SetSongThumbnail", phaseUpload, StatusUploadFailed, "Failed to upload thumbnail"), nil
	}

	updated, err := p.songs.UpdateSongThumbnail(ctx, in.SongID, url)
	if err != nil {
		return p.storeFail("SetSongThumbnail", phasePersist, err), nil
	}

	p.evict(ctx, cache.SongsKey)
	p.recordAudit(ctx, actor, model.AuditSetSongThumbnail, "song", updated.ID, url)

	return &Outcome{Status: StatusSuccess, Message: "Song thumbnail added successfully", Song: updated}, nil
}

// DeleteAlbum removes the album's songs and then the album itself, in that
// order, so no song ever references a deleted album through this path. There
// is no compensation if the process dies between the two deletes; the
// leftover is an empty album, not a dangling reference.
func (p *Pipeline) DeleteAlbum(ctx context.Context, actor *model.Actor, id int64) (*Outcome, error) {
	if !actor.IsAdmin() {
		return p.fail("DeleteAlbum", phaseAuthorize, StatusUnauthorized, "You are not admin"), nil
	}

	album, err := p.albums.GetAlbumByID(ctx, id)
	if err != nil {
		return p.storeFail("DeleteAlbum", phaseLookup, err), nil
	}
	if album == nil {
		return p.fail("DeleteAlbum", phaseLookup, StatusNotFound, "No album found with this ID"), nil
	}

	if err := p.songs.DeleteSongsByAlbumID(ctx, id); err != nil {
		return p.storeFail("DeleteAlbum", phasePersist, err), nil
	}
	if err := p.albums.DeleteAlbum(ctx, id); err != nil {
		return p.storeFail("DeleteAlbum", phasePersist, err), nil
	}

	p.evict(ctx, cache.SongsKey)
	p.evict(ctx, cache.AlbumsKey)
	p.recordAudit(ctx, actor, model.AuditDeleteAlbum, "album", id, album.Title)

	logger.Info("album deleted",
		logger.Int64("albumId", id),
		logger.String("actor", actor.ID))

	return &Outcome{Status: StatusSuccess, Message: "Album Deleted Successfully"}, nil
}

// DeleteSong removes one song row.
func (p *Pipeline) DeleteSong(ctx context.Context, actor *model.Actor, id int64) (*Outcome, error) {
	if !actor.IsAdmin() {
		return p.fail("DeleteSong", phaseAuthorize, StatusUnauthorized, "You are not admin"), nil
	}

	song, err := p.songs.GetSongByID(ctx, id)
	if err != nil {
		return p.storeFail("DeleteSong", phaseLookup, err), nil
	}
	if song == nil {
		return p.fail("DeleteSong", phaseLookup, StatusNotFound, "No Song found with this ID"), nil
	}

	// TODO: eviction happens before the delete, so a concurrent reader can
	// repopulate the listing with the row we are about to remove. Needs
	// product review before reordering; the row itself is gone either way.
	p.evict(ctx, cache.SongsKey)

	if err := p.songs.DeleteSong(ctx, id); err != nil {
		return p.storeFail("DeleteSong", phasePersist, err), nil
	}

	p.recordAudit(ctx, actor, model.AuditDeleteSong, "song", id, song.Title)

	logger.Info("song deleted",
		logger.Int64("songId", id),
		logger.String("actor", actor.ID))

	return &Outcome{Status: StatusSuccess, Message: "Song Deleted Successfully"}, nil
}

// evict drops a cache key through the invalidation layer. The liveness probe
// is advisory; a dead cache only costs a log line, never the operation.
func (p *Pipeline) evict(ctx context.Context, key string) {
	if p.cache == nil {
		return
	}
	if !p.cache.Ready(ctx) {
		logger.Warn("cache not ready, skipping invalidation",
			logger.String("phase", string(phaseInvalidate)),
			logger.String("key", key))
		return
	}
	p.cache.Invalidate(ctx, key)
}

// recordAudit appends an audit entry for a completed mutation. Best-effort:
// failures are logged and never affect the outcome.
func (p *Pipeline) recordAudit(ctx context.Context, actor *model.Actor, action, resource string, resourceID int64, detail string) {
	if p.audit == nil {
		return
	}
	entry := &model.AuditEntry{
		ActorID:    actor.ID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
	}
	if err := p.audit.Record(ctx, entry); err != nil {
		logger.Warn("audit record failed",
			logger.String("action", action),
			logger.Int64("resourceId", resourceID),
			logger.ErrorField(err))
	}
}

func (p *Pipeline) fail(op string, ph phase, status Status, message string) *Outcome {
	logger.Debug("operation rejected",
		logger.String("op", op),
		logger.String("phase", string(ph)),
		logger.String("status", status.String()),
		logger.String("message", message))
	return failure(status, message)
}

func (p *Pipeline) storeFail(op string, ph phase, err error) *Outcome {
	logger.Error("catalog store failure",
		logger.String("op", op),
		logger.String("phase", string(ph)),
		logger.ErrorField(err))
	return failure(StatusStoreError, "Catalog store unavailable")
}
