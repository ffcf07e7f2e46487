package repository

import (
	"context"
	"database/sql"
	"fmt"

	"playshare/model"
)

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	CreateSong(ctx context.Context, s *model.Song) (int64, error)
	GetSongByID(ctx context.Context, id int64) (*model.Song, error)
	// ReplaceSongByID overwrites the song's client-editable fields. Length
	// and path are server-owned and preserved. Returns false when no song
	// with the given id exists.
	ReplaceSongByID(ctx context.Context, id int64, s *model.Song) (bool, error)
	// DeleteSongByID returns false when no song with the given id exists.
	DeleteSongByID(ctx context.Context, id int64) (bool, error)
	GetSongsByOwnerID(ctx context.Context, ownerID int64) ([]*model.Song, error)
	CountSongs(ctx context.Context) (int, error)
	GetSongsPage(ctx context.Context, offset, limit int) ([]*model.Song, error)
}

// mysqlSongRepository implements SongRepository for MySQL.
type mysqlSongRepository struct {
	db *sql.DB
}

// NewMySQLSongRepository creates a new mysqlSongRepository.
func NewMySQLSongRepository(db *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db}
}

// CreateSong inserts a new song record and returns its assigned ID.
func (r *mysqlSongRepository) CreateSong(ctx context.Context, s *model.Song) (int64, error) {
	query := "INSERT INTO songs (name, length, path, ownerid) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, query, s.Name, s.Length, s.Path, s.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for song: %w", err)
	}
	return id, nil
}

// GetSongByID retrieves a song by its ID.
func (r *mysqlSongRepository) GetSongByID(ctx context.Context, id int64) (*model.Song, error) {
	query := "SELECT id, name, length, path, ownerid, created_at, updated_at FROM songs WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)
	s := &model.Song{}
	err := row.Scan(&s.ID, &s.Name, &s.Length, &s.Path, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Song not found
		}
		return nil, fmt.Errorf("failed to scan song row for ID %d: %w", id, err)
	}
	return s, nil
}

// ReplaceSongByID overwrites a song's name and owner.
func (r *mysqlSongRepository) ReplaceSongByID(ctx context.Context, id int64, s *model.Song) (bool, error) {
	query := "UPDATE songs SET name = ?, ownerid = ?, updated_at = NOW() WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, s.Name, s.OwnerID, id)
	if err != nil {
		return false, fmt.Errorf("failed to update song %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for song %d: %w", id, err)
	}
	return affected > 0, nil
}

// DeleteSongByID deletes a song by its ID.
func (r *mysqlSongRepository) DeleteSongByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete song %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for song %d: %w", id, err)
	}
	return affected > 0, nil
}

// GetSongsByOwnerID returns all songs owned by a user. The result is empty
// when the user owns none; the owner id is not validated.
func (r *mysqlSongRepository) GetSongsByOwnerID(ctx context.Context, ownerID int64) ([]*model.Song, error) {
	query := "SELECT id, name, length, path, ownerid, created_at, updated_at FROM songs WHERE ownerid = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	songs := []*model.Song{}
	for rows.Next() {
		s := &model.Song{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Length, &s.Path, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// CountSongs returns the total number of songs.
func (r *mysqlSongRepository) CountSongs(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return count, nil
}

// GetSongsPage returns one page of songs ordered by id.
func (r *mysqlSongRepository) GetSongsPage(ctx context.Context, offset, limit int) ([]*model.Song, error) {
	query := "SELECT id, name, length, path, ownerid, created_at, updated_at FROM songs ORDER BY id LIMIT ?, ?"
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs page: %w", err)
	}
	defer rows.Close()

	songs := []*model.Song{}
	for rows.Next() {
		s := &model.Song{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Length, &s.Path, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan song row: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}
