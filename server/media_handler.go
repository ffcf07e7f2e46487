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
	"playshare/logger"
)

// byteRange is a resolved inclusive byte interval within a media file.
type byteRange struct {
	start int64
	end   int64
}

func (br byteRange) length() int64 {
	return br.end - br.start + 1
}

// parseRangeHeader resolves a Range header against a file of the given size.
// Only the "bytes" unit is understood, and only a single range is served;
// multipart range requests are rejected.
func parseRangeHeader(header string, size int64) (byteRange, error) {
	// No byte range is satisfiable against an empty file.
	if size <= 0 {
		return byteRange{}, apperr.ErrBadRange
	}

	unit, ranges, ok := strings.Cut(header, "=")
	if !ok || strings.TrimSpace(unit) != "bytes" {
		return byteRange{}, apperr.ErrBadRange.WithMessage("Only byte ranges are supported.")
	}

	if strings.Contains(ranges, ",") {
		return byteRange{}, apperr.ErrMultiRange
	}

	startStr, endStr, ok := strings.Cut(strings.TrimSpace(ranges), "-")
	if !ok {
		return byteRange{}, apperr.ErrBadRange
	}

	if startStr == "" {
		// Suffix form: last n bytes.
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return byteRange{}, apperr.ErrBadRange
		}
		if n > size {
			n = size
		}
		return byteRange{start: size - n, end: size - 1}, nil
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return byteRange{}, apperr.ErrBadRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return byteRange{}, apperr.ErrBadRange
		}
		if end > size-1 {
			end = size - 1
		}
	}

	if start >= size || start > end {
		return byteRange{}, apperr.ErrBadRange
	}
	return byteRange{start: start, end: end}, nil
}

// mediaContentType picks the response content type from the stored filename.
func mediaContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	default:
		return "audio/mpeg"
	}
}

// StreamSongHandler serves a song's media file, honoring single byte-range
// requests with 206 responses.
func (h *APIHandler) StreamSongHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	song, err := h.songRepo.GetSongByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch song for streaming", logger.Int64("songId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if song == nil || song.Path == "" {
		writeError(w, apperr.ErrNotFound)
		return
	}

	mediaPath := filepath.Join(h.cfg.MediaDir, filepath.Base(song.Path))
	f, err := os.Open(mediaPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, apperr.ErrNotFound)
			return
		}
		logger.Error("failed to open media file", logger.String("path", mediaPath), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	defer f.Close()

	// The recorded length is authoritative for range math; the upload
	// handler sets it to the exact byte count written.
	size := song.Length

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", mediaContentType(song.Path))

	rangeHeader := r.Header.Get("Range")
	if rangeHeader == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if _, err := io.CopyN(w, f, size); err != nil {
			logger.Warn("media stream interrupted", logger.Int64("songId", id), logger.ErrorField(err))
		}
		return
	}

	br, err := parseRangeHeader(rangeHeader, size)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := f.Seek(br.start, io.SeekStart); err != nil {
		logger.Error("failed to seek media file", logger.String("path", mediaPath), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.start, br.end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(br.length(), 10))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := io.CopyN(w, f, br.length()); err != nil {
		logger.Warn("media stream interrupted", logger.Int64("songId", id), logger.ErrorField(err))
	}
}
