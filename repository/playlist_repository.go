package repository

import (
	"context"
	"database/sql"
	"fmt"

	"playshare/apperr"
	"playshare/model"
)

// PlaylistRepository defines playlist CRUD plus playlist-song membership.
type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, p *model.Playlist) (int64, error)
	GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error)
	// ReplacePlaylistByID overwrites the playlist's fields. Returns false
	// when no playlist with the given id exists.
	ReplacePlaylistByID(ctx context.Context, id int64, p *model.Playlist) (bool, error)
	// DeletePlaylistByID returns false when no playlist with the given id exists.
	DeletePlaylistByID(ctx context.Context, id int64) (bool, error)
	GetPlaylistsByOwnerID(ctx context.Context, ownerID int64) ([]*model.Playlist, error)
	CountPlaylists(ctx context.Context) (int, error)
	GetPlaylistsPage(ctx context.Context, offset, limit int) ([]*model.Playlist, error)

	// Membership.
	SongInPlaylist(ctx context.Context, playlistID, songID int64) (bool, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error
	GetSongsByPlaylistID(ctx context.Context, playlistID int64) ([]*model.Song, error)
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	db *sql.DB
}

// NewMySQLPlaylistRepository creates a new mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(db *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{db: db}
}

// CreatePlaylist inserts a new playlist and returns its assigned ID.
func (r *mysqlPlaylistRepository) CreatePlaylist(ctx context.Context, p *model.Playlist) (int64, error) {
	query := "INSERT INTO playlists (name, description, ownerid) VALUES (?, ?, ?)"
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.OwnerID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for playlist: %w", err)
	}
	return id, nil
}

// GetPlaylistByID retrieves a playlist by its ID.
func (r *mysqlPlaylistRepository) GetPlaylistByID(ctx context.Context, id int64) (*model.Playlist, error) {
	query := "SELECT id, name, description, ownerid, created_at, updated_at FROM playlists WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)
	p := &model.Playlist{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Playlist not found
		}
		return nil, fmt.Errorf("failed to scan playlist row for ID %d: %w", id, err)
	}
	return p, nil
}

// ReplacePlaylistByID overwrites a playlist with new field values.
func (r *mysqlPlaylistRepository) ReplacePlaylistByID(ctx context.Context, id int64, p *model.Playlist) (bool, error) {
	query := "UPDATE playlists SET name = ?, description = ?, ownerid = ?, updated_at = NOW() WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.OwnerID, id)
	if err != nil {
		return false, fmt.Errorf("failed to update playlist %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for playlist %d: %w", id, err)
	}
	return affected > 0, nil
}

// DeletePlaylistByID deletes a playlist by its ID.
func (r *mysqlPlaylistRepository) DeletePlaylistByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for playlist %d: %w", id, err)
	}
	return affected > 0, nil
}

// GetPlaylistsByOwnerID returns all playlists owned by a user. The result
// is empty when the user owns none; the owner id is not validated.
func (r *mysqlPlaylistRepository) GetPlaylistsByOwnerID(ctx context.Context, ownerID int64) ([]*model.Playlist, error) {
	query := "SELECT id, name, description, ownerid, created_at, updated_at FROM playlists WHERE ownerid = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	playlists := []*model.Playlist{}
	for rows.Next() {
		p := &model.Playlist{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// CountPlaylists returns the total number of playlists.
func (r *mysqlPlaylistRepository) CountPlaylists(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlists").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count playlists: %w", err)
	}
	return count, nil
}

// GetPlaylistsPage returns one page of playlists ordered by id.
func (r *mysqlPlaylistRepository) GetPlaylistsPage(ctx context.Context, offset, limit int) ([]*model.Playlist, error) {
	query := "SELECT id, name, description, ownerid, created_at, updated_at FROM playlists ORDER BY id LIMIT ?, ?"
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists page: %w", err)
	}
	defer rows.Close()

	playlists := []*model.Playlist{}
	for rows.Next() {
		p := &model.Playlist{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// SongInPlaylist reports whether the song is already a member of the playlist.
func (r *mysqlPlaylistRepository) SongInPlaylist(ctx context.Context, playlistID, songID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM playlist_songs WHERE playlistid = ? AND songid = ?",
		playlistID, songID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check membership of song %d in playlist %d: %w", songID, playlistID, err)
	}
	return count > 0, nil
}

// AddSongToPlaylist inserts a membership row. A unique index on the pair
// backs the at-most-once invariant; a concurrent duplicate insert surfaces
// as apperr.ErrDuplicateSong here.
func (r *mysqlPlaylistRepository) AddSongToPlaylist(ctx context.Context, playlistID, songID int64) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO playlist_songs (playlistid, songid) VALUES (?, ?)",
		playlistID, songID)
	if err != nil {
		if isDuplicateEntry(err) {
			return apperr.ErrDuplicateSong
		}
		return fmt.Errorf("failed to add song %d to playlist %d: %w", songID, playlistID, err)
	}
	return nil
}

// GetSongsByPlaylistID returns the songs associated with a playlist. The
// result is empty when the playlist has no songs; the playlist id is not
// validated.
func (r *mysqlPlaylistRepository) GetSongsByPlaylistID(ctx context.Context, playlistID int64) ([]*model.Song, error) {
	query := `
		SELECT s.id, s.name, s.length, s.path, s.ownerid, s.created_at, s.updated_at
		FROM songs s
		INNER JOIN playlist_songs ps ON s.id = ps.songid
		WHERE ps.playlistid = ?
		ORDER BY s.id
	`
	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs for playlist %d: %w", playlistID, err)
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
