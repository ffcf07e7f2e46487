package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"playshare/apperr"
	"playshare/core/auth"
	"playshare/logger"
	"playshare/model"
	"playshare/repository"

	"github.com/gorilla/mux"
)

// pathID parses the {id} path variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.ErrValidation.WithError(err)
	}
	return id, nil
}

// CreateUserHandler handles user signup. Only admins may create admin
// accounts; anyone authenticated may create a regular one.
func (h *APIHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, apperr.ErrAuthRequired)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Admin    bool   `json:"admin"`
	}
	if err := bindBody(r, model.UserSchema, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.Admin && !caller.Admin {
		writeError(w, apperr.ErrAdminRequired)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Admin:    req.Admin,
	}

	id, err := h.userRepo.CreateUser(r.Context(), user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			writeError(w, apperr.ErrDuplicateUser)
			return
		}
		logger.Error("failed to create user", logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": id})
}

// LoginHandler authenticates a user by id and password and returns a token.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int64  `json:"id"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.ErrValidation.WithError(err))
		return
	}
	if req.ID == 0 || req.Password == "" {
		writeError(w, apperr.ErrValidation.WithMessage("Request body needs 'id' and 'password'."))
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), req.ID)
	if err != nil {
		logger.Error("failed to look up user for login",
			logger.Int64("userId", req.ID),
			logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		writeError(w, apperr.ErrBadCredentials)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		logger.Error("failed to generate token",
			logger.Int64("userId", user.ID),
			logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"token": token})
}

// GetUserHandler returns a user's details. Restricted to the user
// themselves or an admin; the password hash is zeroed before the response.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	_, id, err := h.requireSelfOrAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch user", logger.Int64("userId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}
	if user == nil {
		writeError(w, apperr.ErrNotFound)
		return
	}

	user.Password = ""
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": user})
}

// GetUserPlaylistsHandler lists all playlists owned by a user.
func (h *APIHandler) GetUserPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	_, id, err := h.requireSelfOrAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playlists, err := h.playlistRepo.GetPlaylistsByOwnerID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch playlists for user", logger.Int64("userId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"playlists": playlists})
}

// GetUserReviewsHandler lists all reviews written by a user.
func (h *APIHandler) GetUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	_, id, err := h.requireSelfOrAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reviews, err := h.reviewRepo.GetReviewsByUserID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch reviews for user", logger.Int64("userId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// GetUserSongsHandler lists all songs owned by a user.
func (h *APIHandler) GetUserSongsHandler(w http.ResponseWriter, r *http.Request) {
	_, id, err := h.requireSelfOrAdmin(r)
	if err != nil {
		writeError(w, err)
		return
	}

	songs, err := h.songRepo.GetSongsByOwnerID(r.Context(), id)
	if err != nil {
		logger.Error("failed to fetch songs for user", logger.Int64("userId", id), logger.ErrorField(err))
		writeError(w, apperr.ErrInternal.WithError(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"songs": songs})
}

// requireSelfOrAdmin resolves the {id} path variable and checks the
// ownership policy against it.
func (h *APIHandler) requireSelfOrAdmin(r *http.Request) (Identity, int64, error) {
	caller, ok := IdentityFromContext(r.Context())
	if !ok {
		return Identity{}, 0, apperr.ErrAuthRequired
	}

	id, err := pathID(r)
	if err != nil {
		return Identity{}, 0, err
	}

	if !auth.CanAccess(caller.UserID, caller.Admin, id) {
		return Identity{}, 0, apperr.ErrForbidden
	}
	return caller, id, nil
}
