package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"playshare/model"
)

// seedMedia writes a media file of n distinct bytes and a song record
// pointing at it, returning the song id and the payload.
func seedMedia(t *testing.T, env *testEnv, n int) (int64, []byte) {
	t.Helper()
	payload := make([]byte, n)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	if err := os.WriteFile(filepath.Join(env.mediaDir, "tune.mp3"), payload, 0644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	alice := env.addUser(t, "alice", false)
	id, err := env.store.CreateSong(context.Background(), &model.Song{
		Name: "tune", Length: int64(n), Path: "tune.mp3", OwnerID: alice,
	})
	if err != nil {
		t.Fatalf("seed song: %v", err)
	}
	return id, payload
}

func streamRequest(env *testEnv, songID int64, rangeHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/songs/media/%d", songID), nil)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestStreamSongFull(t *testing.T) {
	env := newTestEnv(t)
	id, payload := seedMedia(t, env, 1000)

	rec := streamRequest(env, id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q, want %q", got, "bytes")
	}
	if got := rec.Header().Get("Content-Length"); got != "1000" {
		t.Errorf("Content-Length = %q, want %q", got, "1000")
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want %q", got, "audio/mpeg")
	}
	if !bytes.Equal(rec.Body.Bytes(), payload) {
		t.Error("body differs from stored media")
	}
}

func TestStreamSongRanges(t *testing.T) {
	env := newTestEnv(t)
	id, payload := seedMedia(t, env, 1000)

	tests := []struct {
		name         string
		rangeHeader  string
		wantStart    int
		wantEnd      int
		wantRangeHdr string
	}{
		{"bounded", "bytes=0-99", 0, 99, "bytes 0-99/1000"},
		{"open ended", "bytes=900-", 900, 999, "bytes 900-999/1000"},
		{"suffix", "bytes=-100", 900, 999, "bytes 900-999/1000"},
		{"end clamped to size", "bytes=990-2000", 990, 999, "bytes 990-999/1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := streamRequest(env, id, tt.rangeHeader)
			if rec.Code != http.StatusPartialContent {
				t.Fatalf("status = %d, want 206", rec.Code)
			}
			if got := rec.Header().Get("Content-Range"); got != tt.wantRangeHdr {
				t.Errorf("Content-Range = %q, want %q", got, tt.wantRangeHdr)
			}
			want := payload[tt.wantStart : tt.wantEnd+1]
			if !bytes.Equal(rec.Body.Bytes(), want) {
				t.Errorf("body = %d bytes, want bytes %d-%d", rec.Body.Len(), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestStreamSongRangeErrors(t *testing.T) {
	env := newTestEnv(t)
	id, _ := seedMedia(t, env, 1000)

	tests := []struct {
		name        string
		rangeHeader string
		wantStatus  int
	}{
		{"multiple ranges", "bytes=0-99,200-299", http.StatusInternalServerError},
		{"non-byte unit", "items=0-5", http.StatusBadRequest},
		{"start past end of file", "bytes=1000-", http.StatusBadRequest},
		{"inverted", "bytes=50-10", http.StatusBadRequest},
		{"garbage", "bytes=abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := streamRequest(env, id, tt.rangeHeader)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestStreamSongMissing(t *testing.T) {
	env := newTestEnv(t)
	alice := env.addUser(t, "alice", false)

	if rec := streamRequest(env, 999, ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown song: status = %d, want 404", rec.Code)
	}

	// Record exists but the media file is gone.
	id, _ := env.store.CreateSong(context.Background(), &model.Song{
		Name: "tune", Path: "gone.mp3", OwnerID: alice,
	})
	if rec := streamRequest(env, id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing file: status = %d, want 404", rec.Code)
	}
}

func TestStreamSongZeroLength(t *testing.T) {
	env := newTestEnv(t)
	id, _ := seedMedia(t, env, 0)

	rec := streamRequest(env, id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("full request: status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "0" {
		t.Errorf("Content-Length = %q, want %q", got, "0")
	}

	// No range is satisfiable against an empty file, including the suffix
	// form whose clamped length would otherwise reach zero.
	for _, header := range []string{"bytes=-5", "bytes=0-", "bytes=0-0"} {
		if rec := streamRequest(env, id, header); rec.Code != http.StatusBadRequest {
			t.Errorf("range %q: status = %d, want 400", header, rec.Code)
		}
	}
}

func TestStreamSongStoredLengthGovernsRanges(t *testing.T) {
	env := newTestEnv(t)

	// The record claims fewer bytes than the file holds; the recorded
	// length drives all range math and response sizes.
	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i % 251)
	}
	if err := os.WriteFile(filepath.Join(env.mediaDir, "tune.mp3"), payload, 0644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	alice := env.addUser(t, "alice", false)
	id, err := env.store.CreateSong(context.Background(), &model.Song{
		Name: "tune", Length: 500, Path: "tune.mp3", OwnerID: alice,
	})
	if err != nil {
		t.Fatalf("seed song: %v", err)
	}

	rec := streamRequest(env, id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("full request: status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Length"); got != "500" {
		t.Errorf("Content-Length = %q, want %q", got, "500")
	}
	if rec.Body.Len() != 500 {
		t.Errorf("body = %d bytes, want 500", rec.Body.Len())
	}

	rec = streamRequest(env, id, "bytes=400-999")
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("range request: status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 400-499/500" {
		t.Errorf("Content-Range = %q, want %q", got, "bytes 400-499/500")
	}
	if !bytes.Equal(rec.Body.Bytes(), payload[400:500]) {
		t.Errorf("body = %d bytes, want bytes 400-499", rec.Body.Len())
	}

	if rec := streamRequest(env, id, "bytes=500-"); rec.Code != http.StatusBadRequest {
		t.Errorf("range past recorded length: status = %d, want 400", rec.Code)
	}
}

func TestParseRangeHeader(t *testing.T) {
	tests := []struct {
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantErr   bool
	}{
		{"bytes=0-99", 1000, 0, 99, false},
		{"bytes=500-", 1000, 500, 999, false},
		{"bytes=-1", 1000, 999, 999, false},
		{"bytes=-5000", 1000, 0, 999, false},
		{"bytes=0-0", 1, 0, 0, false},
		{"bytes=1-", 1, 0, 0, true},
		{"bytes=-0", 1000, 0, 0, true},
		{"bytes", 1000, 0, 0, true},
		{"bytes=-5", 0, 0, 0, true},
		{"bytes=0-", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			br, err := parseRangeHeader(tt.header, tt.size)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("err = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if br.start != tt.wantStart || br.end != tt.wantEnd {
				t.Errorf("range = %d-%d, want %d-%d", br.start, br.end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
