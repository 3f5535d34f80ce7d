package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tunedeck/model"
)

// AlbumRepository defines album persistence operations.
type AlbumRepository interface {
	// CreateAlbum inserts a new album and returns the created row.
	CreateAlbum(ctx context.Context, album *model.Album) (*model.Album, error)

	// GetAlbumByID returns the album, or (nil, nil) if no row matches.
	GetAlbumByID(ctx context.Context, id int64) (*model.Album, error)

	// DeleteAlbum removes the album row.
	DeleteAlbum(ctx context.Context, id int64) error
}

// mysqlAlbumRepository implements AlbumRepository for MySQL.
type mysqlAlbumRepository struct {
	db *sql.DB
}

// NewMySQLAlbumRepository creates a new mysqlAlbumRepository.
func NewMySQLAlbumRepository(db *sql.DB) AlbumRepository {
	return &mysqlAlbumRepository{db: db}
}

// CreateAlbum inserts a new album and reads the stored row back, so callers
// see the server-assigned id and timestamp.
func (r *mysqlAlbumRepository) CreateAlbum(ctx context.Context, album *model.Album) (*model.Album, error) {
	query := `INSERT INTO albums (title, description, thumbnail) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, album.Title, album.Description, album.Thumbnail)
	if err != nil {
		return nil, fmt.Errorf("failed to insert album: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for album: %w", err)
	}

	created, err := r.GetAlbumByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("album %d vanished after insert", id)
	}
	return created, nil
}

// GetAlbumByID returns the album, or (nil, nil) if no row matches.
func (r *mysqlAlbumRepository) GetAlbumByID(ctx context.Context, id int64) (*model.Album, error) {
	query := `SELECT id, title, description, thumbnail, created_at FROM albums WHERE id = ?`

	album := &model.Album{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&album.ID,
		&album.Title,
		&album.Description,
		&album.Thumbnail,
		&album.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan album row for ID %d: %w", id, err)
	}

	return album, nil
}

// DeleteAlbum removes the album row.
func (r *mysqlAlbumRepository) DeleteAlbum(ctx context.Context, id int64) error {
	query := `DELETE FROM albums WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete album %d: %w", id, err)
	}
	return nil
}
