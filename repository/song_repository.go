package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tunedeck/model"
)

// SongRepository defines song persistence operations.
type SongRepository interface {
	// CreateSong inserts a new song and returns the created row.
	CreateSong(ctx context.Context, song *model.Song) (*model.Song, error)

	// GetSongByID returns the song, or (nil, nil) if no row matches.
	GetSongByID(ctx context.Context, id int64) (*model.Song, error)

	// UpdateSongThumbnail sets only the thumbnail column and returns the
	// updated row.
	UpdateSongThumbnail(ctx context.Context, id int64, thumbnail string) (*model.Song, error)

	// DeleteSong removes the song row.
	DeleteSong(ctx context.Context, id int64) error

	// DeleteSongsByAlbumID removes every song referencing the album.
	DeleteSongsByAlbumID(ctx context.Context, albumID int64) error
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong inserts a new song and reads the stored row back.
func (r *mysqlSongRepository) CreateSong(ctx context.Context, song *model.Song) (*model.Song, error) {
	query := `INSERT INTO songs (title, description, audio, album_id) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, song.Title, song.Description, song.Audio, song.AlbumID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for song: %w", err)
	}

	created, err := r.GetSongByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("song %d vanished after insert", id)
	}
	return created, nil
}

// GetSongByID returns the song, or (nil, nil) if no row matches.
func (r *mysqlSongRepository) GetSongByID(ctx context.Context, id int64) (*model.Song, error) {
	query := `SELECT id, title, description, thumbnail, audio, album_id, created_at FROM songs WHERE id = ?`

	song := &model.Song{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&song.ID,
		&song.Title,
		&song.Description,
		&song.Thumbnail,
		&song.Audio,
		&song.AlbumID,
		&song.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan song row for ID %d: %w", id, err)
	}

	return song, nil
}

// UpdateSongThumbnail sets only the thumbnail column and returns the updated row.
func (r *mysqlSongRepository) UpdateSongThumbnail(ctx context.Context, id int64, thumbnail string) (*model.Song, error) {
	query := `UPDATE songs SET thumbnail = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, thumbnail, id); err != nil {
		return nil, fmt.Errorf("failed to update thumbnail for song %d: %w", id, err)
	}

	updated, err := r.GetSongByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("song %d vanished after update", id)
	}
	return updated, nil
}

// DeleteSong removes the song row.
func (r *mysqlSongRepository) DeleteSong(ctx context.Context, id int64) error {
	query := `DELETE FROM songs WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}
	return nil
}

// DeleteSongsByAlbumID removes every song referencing the album.
func (r *mysqlSongRepository) DeleteSongsByAlbumID(ctx context.Context, albumID int64) error {
	query := `DELETE FROM songs WHERE album_id = ?`
	if _, err := r.db.ExecContext(ctx, query, albumID); err != nil {
		return fmt.Errorf("failed to delete songs for album %d: %w", albumID, err)
	}
	return nil
}
