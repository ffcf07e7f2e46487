package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"playshare/apperr"
	"playshare/core/auth"
	"playshare/logger"
	"playshare/model"
	"playshare/pagination"

	"github.com/google/uuid"
)

// maxUploadSize caps multipart song uploads.
const maxUploadSize = 64 << 20 // 64 MiB

// acceptedAudioTypes maps accepted upload content types to file extensions.
var acceptedAudioTypes = map[string]string{
	"audio/mpeg": "mp3",
	"audio/wav":  "wav",
}

// UploadSongHandler creates a song from a multipart upload: an "audio" file
// plus "name" and "ownerid" form fields. The stored filename is generated
// server-side; the recorded length is the number of bytes written.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, apperr.ErrValidation.WithError(err))
		return
	}

	name := r.FormValue("name")
	ownerStr := r.FormValue("ownerid")
	if name == "" || ownerStr == "" {
		writeError(w, apperr.ErrValidation.WithMessage("Request must contain 'name' and 'ownerid'."))
		return
	}
	ownerID, err := strconv.ParseInt(ownerStr, 10, 64)
	if err != nil {
		writeError(w, apperr.ErrValidation.WithError(err))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, apperr.ErrValidation.WithMessage("Request must contain an 'audio' file."))
		return
	}
	defer file.Close()

	ext, ok := acceptedAudioTypes[header.Header.Get("Content-Type")]
	if !ok {
		writeError(w, apperr.ErrValidation.WithMessage("Unsupported audio type."))
		return
	}

	owner, err := h.userRepo.GetUserByID(r.Context(), ownerID)
	if err != nil {
		logger.Error("failed to look up song owner", logger.Int64("ownerId", ownerID), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if owner == nil {
		writeError(w, apperr.ErrForbidden.WithMessage("Owner does not exist."))
		return
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, ownerID) {
		writeError(w, apperr.ErrForbidden)
		return
	}

	filename := fmt.Sprintf("%s.%s", strings.ReplaceAll(uuid.New().String(), "-", ""), ext)
	dstPath := filepath.Join(h.cfg.MediaDir, filename)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		logger.Error("failed to create media file", logger.String("path", dstPath), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	written, err := io.Copy(dst, file)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dstPath)
		logger.Error("failed to store media file", logger.String("path", dstPath), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	id, err := h.songRepo.CreateSong(r.Context(), &model.Song{
		Name:    name,
		Length:  written,
		Path:    filename,
		OwnerID: ownerID,
	})
	if err != nil {
		os.Remove(dstPath)
		logger.Error("failed to create song record", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// ListSongsHandler returns a paginated list of songs with neighbor page links.
func (h *APIHandler) ListSongsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := h.songRepo.CountSongs(ctx)
	if err != nil {
		logger.Error("failed to count songs", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	page := pagination.Paginate(count, requestedPage(r), h.cfg.PageSize)

	songs, err := h.songRepo.GetSongsPage(ctx, page.Offset, page.PageSize)
	if err != nil {
		logger.Error("failed to fetch songs page", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"songs":      songs,
		"page":       page.Page,
		"totalPages": page.TotalPages,
		"pageSize":   page.PageSize,
		"count":      count,
		"links":      pageLinks("/songs", page),
	})
}

// GetSongHandler returns a single song record.
func (h *APIHandler) GetSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch song", logger.Int64("songId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if song == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, song)
}

// UpdateSongHandler replaces a song's editable fields. The stored owner is
// the authorization anchor and must not change in the payload.
func (h *APIHandler) UpdateSongHandler(w http.ResponseWriter, r *http.Request) {
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
		Name    string `json:"name"`
		OwnerID int64  `json:"ownerid"`
	}
	if err := bindBody(r, model.SongSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.songRepo.GetSongByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch song for update", logger.Int64("songId", id), logger.ErrorField(err))
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

	if req.OwnerID != existing.OwnerID {
		writeError(w, apperr.ErrForbidden.WithMessage("Updated song must keep the same ownerid."))
		return
	}

	updated, err := h.songRepo.ReplaceSongByID(r.Context(), id, &model.Song{
		Name:    req.Name,
		OwnerID: existing.OwnerID,
	})
	if err != nil {
		logger.Error("failed to update song", logger.Int64("songId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if !updated {
		writeError(w, apperr.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"links": map[string]string{
			"song": fmt.Sprintf("/songs/%d", id),
		},
	})
}

// DeleteSongHandler deletes a song record and best-effort removes its media
// file.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
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

	existing, err := h.songRepo.GetSongByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch song for delete", logger.Int64("songId", id), logger.ErrorField(err))
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

	deleted, err := h.songRepo.DeleteSongByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to delete song", logger.Int64("songId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if !deleted {
		writeError(w, apperr.ErrNotFound)
		return
	}

	if existing.Path != "" {
		mediaPath := filepath.Join(h.cfg.MediaDir, filepath.Base(existing.Path))
		if err := os.Remove(mediaPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove media file", logger.String("path", mediaPath), logger.ErrorField(err))
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
