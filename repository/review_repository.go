package repository

import (
	"context"
	"database/sql"
	"fmt"

	"playshare/apperr"
	"playshare/model"
)

// ReviewRepository defines the interface for review data operations.
type ReviewRepository interface {
	CreateReview(ctx context.Context, rev *model.Review) (int64, error)
	GetReviewByID(ctx context.Context, id int64) (*model.Review, error)
	// ReplaceReviewByID overwrites the review's fields. Returns false when
	// no review with the given id exists.
	ReplaceReviewByID(ctx context.Context, id int64, rev *model.Review) (bool, error)
	// DeleteReviewByID returns false when no review with the given id exists.
	DeleteReviewByID(ctx context.Context, id int64) (bool, error)
	GetReviewsByPlaylistID(ctx context.Context, playlistID int64) ([]*model.Review, error)
	GetReviewsByUserID(ctx context.Context, userID int64) ([]*model.Review, error)
	UserReviewedPlaylist(ctx context.Context, userID, playlistID int64) (bool, error)
}

// mysqlReviewRepository implements ReviewRepository for MySQL.
type mysqlReviewRepository struct {
	db *sql.DB
}

// NewMySQLReviewRepository creates a new mysqlReviewRepository.
func NewMySQLReviewRepository(db *sql.DB) ReviewRepository {
	return &mysqlReviewRepository{db: db}
}

// CreateReview inserts a new review. A unique index on (userid, playlistid)
// backs the one-review-per-pair invariant; a concurrent duplicate insert
// surfaces as apperr.ErrDuplicateReview here.
func (r *mysqlReviewRepository) CreateReview(ctx context.Context, rev *model.Review) (int64, error) {
	query := "INSERT INTO reviews (userid, playlistid, stars, review) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, query, rev.UserID, rev.PlaylistID, rev.Stars, rev.Review)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, apperr.ErrDuplicateReview
		}
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for review: %w", err)
	}
	return id, nil
}

// GetReviewByID retrieves a review by its ID.
func (r *mysqlReviewRepository) GetReviewByID(ctx context.Context, id int64) (*model.Review, error) {
	query := "SELECT id, userid, playlistid, stars, review, created_at, updated_at FROM reviews WHERE id = ?"
	row := r.db.QueryRowContext(ctx, query, id)
	rev := &model.Review{}
	err := row.Scan(&rev.ID, &rev.UserID, &rev.PlaylistID, &rev.Stars, &rev.Review, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Review not found
		}
		return nil, fmt.Errorf("failed to scan review row for ID %d: %w", id, err)
	}
	return rev, nil
}

// ReplaceReviewByID overwrites a review's stars and text. The user and
// playlist references are immutable; handlers reject any attempt to change
// them before calling this.
func (r *mysqlReviewRepository) ReplaceReviewByID(ctx context.Context, id int64, rev *model.Review) (bool, error) {
	query := "UPDATE reviews SET stars = ?, review = ?, updated_at = NOW() WHERE id = ?"
	res, err := r.db.ExecContext(ctx, query, rev.Stars, rev.Review, id)
	if err != nil {
		return false, fmt.Errorf("failed to update review %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for review %d: %w", id, err)
	}
	return affected > 0, nil
}

// DeleteReviewByID deletes a review by its ID.
func (r *mysqlReviewRepository) DeleteReviewByID(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete review %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows for review %d: %w", id, err)
	}
	return affected > 0, nil
}

// GetReviewsByPlaylistID returns all reviews for a playlist. The result is
// empty when the playlist has none; the playlist id is not validated.
func (r *mysqlReviewRepository) GetReviewsByPlaylistID(ctx context.Context, playlistID int64) ([]*model.Review, error) {
	query := "SELECT id, userid, playlistid, stars, review, created_at, updated_at FROM reviews WHERE playlistid = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// GetReviewsByUserID returns all reviews written by a user. The result is
// empty when the user has none; the user id is not validated.
func (r *mysqlReviewRepository) GetReviewsByUserID(ctx context.Context, userID int64) ([]*model.Review, error) {
	query := "SELECT id, userid, playlistid, stars, review, created_at, updated_at FROM reviews WHERE userid = ? ORDER BY id"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for user %d: %w", userID, err)
	}
	defer rows.Close()

	return scanReviews(rows)
}

// UserReviewedPlaylist reports whether the user has already reviewed the playlist.
func (r *mysqlReviewRepository) UserReviewedPlaylist(ctx context.Context, userID, playlistID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE userid = ? AND playlistid = ?",
		userID, playlistID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check review existence for user %d playlist %d: %w", userID, playlistID, err)
	}
	return count > 0, nil
}

func scanReviews(rows *sql.Rows) ([]*model.Review, error) {
	reviews := []*model.Review{}
	for rows.Next() {
		rev := &model.Review{}
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.PlaylistID, &rev.Stars, &rev.Review, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
