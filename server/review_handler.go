package server

import (
	"fmt"
	"net/http"

	"playshare/apperr"
	"playshare/core/auth"
	"playshare/logger"
	"playshare/model"
)

// CreateReviewHandler adds a review to a playlist. Each user may review a
// playlist at most once.
func (h *APIHandler) CreateReviewHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	var req struct {
		UserID     int64  `json:"userid"`
		PlaylistID int64  `json:"playlistid"`
		Stars      int    `json:"stars"`
		Review     string `json:"review"`
	}
	if err := bindBody(r, model.ReviewSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, req.UserID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(r.Context(), req.PlaylistID)
	if err != nil {
		logger.Error("failed to fetch playlist for review", logger.Int64("playlistId", req.PlaylistID), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if playlist == nil {
		writeError(w, apperr.ErrValidation.WithMessage("Playlist does not exist."))
		return
	}

	reviewed, err := h.reviewRepo.UserReviewedPlaylist(r.Context(), req.UserID, req.PlaylistID)
	if err != nil {
		logger.Error("failed to check existing review", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if reviewed {
		writeError(w, apperr.ErrDuplicateReview)
		return
	}

	id, err := h.reviewRepo.CreateReview(r.Context(), &model.Review{
		UserID:     req.UserID,
		PlaylistID: req.PlaylistID,
		Stars:      req.Stars,
		Review:     req.Review,
	})
	if err != nil {
		if apperr.IsError(err, apperr.ErrDuplicateReview) {
			writeError(w, err)
			return
		}
		logger.Error("failed to create review", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id": id,
		"links": map[string]string{
			"review":   fmt.Sprintf("/reviews/%d", id),
			"playlist": fmt.Sprintf("/playlists/%d", req.PlaylistID),
		},
	})
}

// GetReviewHandler returns a single review.
func (h *APIHandler) GetReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	review, err := h.reviewRepo.GetReviewByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch review", logger.Int64("reviewId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if review == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, review)
}

// UpdateReviewHandler replaces the stars and text of an existing review.
// The review stays bound to its original user and playlist.
func (h *APIHandler) UpdateReviewHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		UserID     int64  `json:"userid"`
		PlaylistID int64  `json:"playlistid"`
		Stars      int    `json:"stars"`
		Review     string `json:"review"`
	}
	if err := bindBody(r, model.ReviewSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.reviewRepo.GetReviewByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch review for update", logger.Int64("reviewId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if existing == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, existing.UserID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	if req.UserID != existing.UserID || req.PlaylistID != existing.PlaylistID {
		writeError(w, apperr.ErrForbidden.WithMessage("Updated review must keep the same userid and playlistid."))
		return
	}

	updated, err := h.reviewRepo.ReplaceReviewByID(r.Context(), id, &model.Review{
		Stars:  req.Stars,
		Review: req.Review,
	})
	if err != nil {
		logger.Error("failed to update review", logger.Int64("reviewId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if !updated {
		writeError(w, apperr.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links": map[string]string{
			"review":   fmt.Sprintf("/reviews/%d", id),
			"playlist": fmt.Sprintf("/playlists/%d", existing.PlaylistID),
		},
	})
}

// DeleteReviewHandler deletes a review.
func (h *APIHandler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.reviewRepo.GetReviewByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch review for delete", logger.Int64("reviewId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if existing == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, existing.UserID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	deleted, err := h.reviewRepo.DeleteReviewByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to delete review", logger.Int64("reviewId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if !deleted {
		writeError(w, apperr.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
