package server

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"

	"playshare/apperr"
	"playshare/config"
	"playshare/core/auth"
	"playshare/model"
	"playshare/repository"
)

// fakeStore is an in-memory implementation of the repository interfaces,
// shared across entity types so tests can wire cross-entity state (a song
// in a playlist, a review on a playlist) in one place.
type fakeStore struct {
	mu sync.Mutex

	users     map[int64]*model.User
	playlists map[int64]*model.Playlist
	songs     map[int64]*model.Song
	reviews   map[int64]*model.Review

	memberships map[[2]int64]bool // playlistID, songID

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[int64]*model.User{},
		playlists:   map[int64]*model.Playlist{},
		songs:       map[int64]*model.Song{},
		reviews:     map[int64]*model.Review{},
		memberships: map[[2]int64]bool{},
		nextID:      1,
	}
}

func (s *fakeStore) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// UserRepository

func (s *fakeStore) CreateUser(_ context.Context, user *model.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return 0, repository.ErrDuplicateUser
		}
	}
	cp := *user
	cp.ID = s.allocID()
	s.users[cp.ID] = &cp
	return cp.ID, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// PlaylistRepository

func (s *fakeStore) CreatePlaylist(_ context.Context, p *model.Playlist) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	cp.ID = s.allocID()
	s.playlists[cp.ID] = &cp
	return cp.ID, nil
}

func (s *fakeStore) GetPlaylistByID(_ context.Context, id int64) (*model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playlists[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) ReplacePlaylistByID(_ context.Context, id int64, p *model.Playlist) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return false, nil
	}
	cp := *p
	cp.ID = id
	s.playlists[id] = &cp
	return true, nil
}

func (s *fakeStore) DeletePlaylistByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playlists[id]; !ok {
		return false, nil
	}
	delete(s.playlists, id)
	return true, nil
}

func (s *fakeStore) GetPlaylistsByOwnerID(_ context.Context, ownerID int64) ([]*model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Playlist
	for _, p := range s.playlists {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortPlaylists(out)
	return out, nil
}

func (s *fakeStore) CountPlaylists(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.playlists), nil
}

func (s *fakeStore) GetPlaylistsPage(_ context.Context, offset, limit int) ([]*model.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*model.Playlist
	for _, p := range s.playlists {
		cp := *p
		all = append(all, &cp)
	}
	sortPlaylists(all)
	return slicePage(all, offset, limit), nil
}

func (s *fakeStore) SongInPlaylist(_ context.Context, playlistID, songID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberships[[2]int64{playlistID, songID}], nil
}

func (s *fakeStore) AddSongToPlaylist(_ context.Context, playlistID, songID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int64{playlistID, songID}
	if s.memberships[key] {
		return apperr.ErrDuplicateSong
	}
	s.memberships[key] = true
	return nil
}

func (s *fakeStore) GetSongsByPlaylistID(_ context.Context, playlistID int64) ([]*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Song
	for key := range s.memberships {
		if key[0] != playlistID {
			continue
		}
		if song, ok := s.songs[key[1]]; ok {
			cp := *song
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SongRepository

func (s *fakeStore) CreateSong(_ context.Context, song *model.Song) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *song
	cp.ID = s.allocID()
	s.songs[cp.ID] = &cp
	return cp.ID, nil
}

func (s *fakeStore) GetSongByID(_ context.Context, id int64) (*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[id]
	if !ok {
		return nil, nil
	}
	cp := *song
	return &cp, nil
}

func (s *fakeStore) ReplaceSongByID(_ context.Context, id int64, song *model.Song) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.songs[id]
	if !ok {
		return false, nil
	}
	existing.Name = song.Name
	existing.OwnerID = song.OwnerID
	return true, nil
}

func (s *fakeStore) DeleteSongByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.songs[id]; !ok {
		return false, nil
	}
	delete(s.songs, id)
	return true, nil
}

func (s *fakeStore) GetSongsByOwnerID(_ context.Context, ownerID int64) ([]*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Song
	for _, song := range s.songs {
		if song.OwnerID == ownerID {
			cp := *song
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) CountSongs(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.songs), nil
}

func (s *fakeStore) GetSongsPage(_ context.Context, offset, limit int) ([]*model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*model.Song
	for _, song := range s.songs {
		cp := *song
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return slicePage(all, offset, limit), nil
}

// ReviewRepository

func (s *fakeStore) CreateReview(_ context.Context, rev *model.Review) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.UserID == rev.UserID && r.PlaylistID == rev.PlaylistID {
			return 0, apperr.ErrDuplicateReview
		}
	}
	cp := *rev
	cp.ID = s.allocID()
	s.reviews[cp.ID] = &cp
	return cp.ID, nil
}

func (s *fakeStore) GetReviewByID(_ context.Context, id int64) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *fakeStore) ReplaceReviewByID(_ context.Context, id int64, rev *model.Review) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.reviews[id]
	if !ok {
		return false, nil
	}
	existing.Stars = rev.Stars
	existing.Review = rev.Review
	return true, nil
}

func (s *fakeStore) DeleteReviewByID(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return false, nil
	}
	delete(s.reviews, id)
	return true, nil
}

func (s *fakeStore) GetReviewsByPlaylistID(_ context.Context, playlistID int64) ([]*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Review
	for _, r := range s.reviews {
		if r.PlaylistID == playlistID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) GetReviewsByUserID(_ context.Context, userID int64) ([]*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeStore) UserReviewedPlaylist(_ context.Context, userID, playlistID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.UserID == userID && r.PlaylistID == playlistID {
			return true, nil
		}
	}
	return false, nil
}

func sortPlaylists(ps []*model.Playlist) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}

func slicePage[T any](all []*T, offset, limit int) []*T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// testEnv bundles a router wired against the fake store.
type testEnv struct {
	store    *fakeStore
	router   http.Handler
	tokens   *auth.TokenService
	mediaDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newFakeStore()
	tokens := auth.NewTokenService("test-secret")
	cfg := &config.Config{
		PageSize: 10,
		MediaDir: t.TempDir(),
	}
	h := NewAPIHandler(store, store, store, store, tokens, cfg)
	return &testEnv{
		store:    store,
		router:   NewRouter(h),
		tokens:   tokens,
		mediaDir: cfg.MediaDir,
	}
}

// addUser seeds a user and returns its id.
func (e *testEnv) addUser(t *testing.T, name string, admin bool) int64 {
	t.Helper()
	id, err := e.store.CreateUser(context.Background(), &model.User{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", name),
		Admin: admin,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}

// bearer returns an Authorization header value for the given user.
func (e *testEnv) bearer(t *testing.T, userID int64) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}
