package server

import (
	"fmt"
	"net/http"
	"strconv"

	"playshare/apperr"
	"playshare/core/auth"
	"playshare/logger"
	"playshare/model"
	"playshare/pagination"
)

// pageLinks builds the HATEOAS neighbor links for a paginated collection.
func pageLinks(basePath string, p pagination.Page) map[string]string {
	links := map[string]string{}
	if p.Page < p.TotalPages {
		links["nextPage"] = fmt.Sprintf("%s?page=%d", basePath, p.Page+1)
		links["lastPage"] = fmt.Sprintf("%s?page=%d", basePath, p.TotalPages)
	}
	if p.Page > 1 {
		links["prevPage"] = fmt.Sprintf("%s?page=%d", basePath, p.Page-1)
		links["firstPage"] = fmt.Sprintf("%s?page=1", basePath)
	}
	return links
}

// requestedPage parses the page query parameter, defaulting to 1.
func requestedPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// ListPlaylistsHandler returns a paginated list of playlists with neighbor
// page links.
func (h *APIHandler) ListPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.playlistRepo.CountPlaylists(ctx)
	if err != nil {
		logger.Error("failed to count playlists", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	page := pagination.Paginate(count, requestedPage(r), h.cfg.PageSize)

	playlists, err := h.playlistRepo.GetPlaylistsPage(ctx, page.Offset, page.PageSize)
	if err != nil {
		logger.Error("failed to fetch playlists page", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playlists":  playlists,
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"pageSize":   page.PageSize,
		"count":      count,
		"links":      pageLinks("/playlists", page),
	})
}

// CreatePlaylistHandler creates a playlist. The caller must be the declared
// owner or an admin.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		OwnerID     int64  `json:"ownerid"`
	}
	if err := bindBody(r, model.PlaylistSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, req.OwnerID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	id, err := h.playlistRepo.CreatePlaylist(r.Context(), &model.Playlist{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		logger.Error("failed to create playlist", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id": id,
		"links": map[string]string{
			"playlist": fmt.Sprintf("/playlists/%d", id),
		},
	})
}

// GetPlaylistHandler returns a playlist with its songs and reviews.
func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	playlist, err := h.playlistRepo.GetPlaylistByID(ctx, id)
	if err != nil {
		logger.Error("failed to fetch playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if playlist == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	songs, err := h.playlistRepo.GetSongsByPlaylistID(ctx, id)
	if err != nil {
		logger.Error("failed to fetch playlist songs", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	reviews, err := h.reviewRepo.GetReviewsByPlaylistID(ctx, id)
	if err != nil {
		logger.Error("failed to fetch playlist reviews", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, model.PlaylistDetails{
		Playlist: *playlist,
		Songs:    songs,
		Reviews:  reviews,
	})
}

// UpdatePlaylistHandler replaces a playlist. Authorization checks the
// owner currently recorded in the store, never the request body.
func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
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
		Name        string `json:"name"`
		Description string `json:"description"`
		OwnerID     int64  `json:"ownerid"`
	}
	if err := bindBody(r, model.PlaylistSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.playlistRepo.GetPlaylistByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch playlist for update", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if existing == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, existing.OwnerID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	updated, err := h.playlistRepo.ReplacePlaylistByID(r.Context(), id, &model.Playlist{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		logger.Error("failed to update playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if !updated {
		writeError(w, apperr.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links": map[string]string{
			"playlist": fmt.Sprintf("/playlists/%d", id),
		},
	})
}

// DeletePlaylistHandler deletes a playlist after checking the stored owner.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
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

	existing, err := h.playlistRepo.GetPlaylistByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch playlist for delete", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if existing == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, existing.OwnerID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	deleted, err := h.playlistRepo.DeletePlaylistByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to delete playlist", logger.Int64("playlistId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if !deleted {
		writeError(w, apperr.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSongToPlaylistHandler adds a song to a playlist. Checks run in order:
// playlist exists, song exists, pair not already present, caller owns the
// playlist (or is admin). The unique index on the pair backs the duplicate
// check against concurrent inserts.
func (h *APIHandler) AddSongToPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	playlistID, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		SongID int64 `json:"songid"`
	}
	if err := bindBody(r, model.Schema{"songid": true}, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	playlist, err := h.playlistRepo.GetPlaylistByID(ctx, playlistID)
	if err != nil {
		logger.Error("failed to fetch playlist", logger.Int64("playlistId", playlistID), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if playlist == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	song, err := h.songRepo.GetSongByID(ctx, req.SongID)
	if err != nil {
		logger.Error("failed to fetch song", logger.Int64("songId", req.SongID), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if song == nil {
		writeError(w, apperr.ErrValidation.WithMessage("Song does not exist."))
		return
	}

	present, err := h.playlistRepo.SongInPlaylist(ctx, playlistID, req.SongID)
	if err != nil {
		logger.Error("failed to check playlist membership",
			logger.Int64("playlistId", playlistID),
			logger.Int64("songId", req.SongID),
			logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if present {
		writeError(w, apperr.ErrDuplicateSong)
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, playlist.OwnerID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	if err := h.playlistRepo.AddSongToPlaylist(ctx, playlistID, req.SongID); err != nil {
		if apperr.IsError(err, apperr.ErrDuplicateSong) {
			writeError(w, err)
			return
		}
		logger.Error("failed to add song to playlist",
			logger.Int64("playlistId", playlistID),
			logger.Int64("songId", req.SongID),
			logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"links": map[string]string{
			"playlist": fmt.Sprintf("/playlists/%d", playlistID),
			"song":     fmt.Sprintf("/songs/%d", req.SongID),
		},
	})
}
