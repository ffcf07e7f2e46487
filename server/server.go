package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playshare/config"
	"playshare/core/auth"
	"playshare/db"
	"playshare/logger"
	"playshare/model"
	"playshare/repository"

	"github.com/gorilla/mux"
)

// requestTimeout bounds the handler chain for API requests. Media streaming
// routes are excluded, a large file may legitimately take longer.
const requestTimeout = 25 * time.Second

// APIHandler bundles the repositories and services the route handlers use.
type APIHandler struct {
	userRepo     repository.UserRepository
	playlistRepo repository.PlaylistRepository
	songRepo     repository.SongRepository
	reviewRepo   repository.ReviewRepository
	tokens       *auth.TokenService
	cfg          *config.Config
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	playlistRepo repository.PlaylistRepository,
	songRepo repository.SongRepository,
	reviewRepo repository.ReviewRepository,
	tokens *auth.TokenService,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		playlistRepo: playlistRepo,
		songRepo:     songRepo,
		reviewRepo:   reviewRepo,
		tokens:       tokens,
		cfg:          cfg,
	}
}

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.CloseDB()

	// Schema migration runs through GORM; runtime queries stay on the
	// plain connection.
	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	if err := db.AutoMigrateModels(
		&model.User{},
		&model.Playlist{},
		&model.Song{},
		&model.Review{},
		&model.PlaylistSong{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	db.CloseGormDB()

	ensureDirExists(cfg.MediaDir)

	userRepo := repository.NewMySQLUserRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	songRepo := repository.NewMySQLSongRepository(db.DB)
	reviewRepo := repository.NewMySQLReviewRepository(db.DB)
	tokens := auth.NewTokenService(cfg.JWTSecret)

	apiHandler := NewAPIHandler(userRepo, playlistRepo, songRepo, reviewRepo, tokens, cfg)

	server.Handler = NewRouter(apiHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

// NewRouter wires all API routes onto a gorilla/mux router.
func NewRouter(h *APIHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// Users.
	router.HandleFunc("/users", h.RequireAuth(withTimeout(h.CreateUserHandler))).Methods(http.MethodPost)
	router.HandleFunc("/users/login", withTimeout(h.LoginHandler)).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}", h.RequireAuth(withTimeout(h.GetUserHandler))).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/playlists", h.RequireAuth(withTimeout(h.GetUserPlaylistsHandler))).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/reviews", h.RequireAuth(withTimeout(h.GetUserReviewsHandler))).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/songs", h.RequireAuth(withTimeout(h.GetUserSongsHandler))).Methods(http.MethodGet)

	// Playlists.
	router.HandleFunc("/playlists", withTimeout(h.ListPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/playlists", h.RequireAuth(withTimeout(h.CreatePlaylistHandler))).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{id}", withTimeout(h.GetPlaylistHandler)).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{id}", h.RequireAuth(withTimeout(h.UpdatePlaylistHandler))).Methods(http.MethodPut)
	router.HandleFunc("/playlists/{id}", h.RequireAuth(withTimeout(h.DeletePlaylistHandler))).Methods(http.MethodDelete)
	router.HandleFunc("/playlists/{id}/add", h.RequireAuth(withTimeout(h.AddSongToPlaylistHandler))).Methods(http.MethodPost)

	// Songs. The media route streams file content and is not bounded by the
	// API request timeout; it honors client disconnect instead.
	router.HandleFunc("/songs", h.RequireAuth(h.UploadSongHandler)).Methods(http.MethodPost)
	router.HandleFunc("/songs", withTimeout(h.ListSongsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/songs/media/{id}", h.StreamSongHandler).Methods(http.MethodGet)
	router.HandleFunc("/songs/{id}", withTimeout(h.GetSongHandler)).Methods(http.MethodGet)
	router.HandleFunc("/songs/{id}", h.RequireAuth(withTimeout(h.UpdateSongHandler))).Methods(http.MethodPut)
	router.HandleFunc("/songs/{id}", h.RequireAuth(withTimeout(h.DeleteSongHandler))).Methods(http.MethodDelete)

	// Reviews.
	router.HandleFunc("/reviews", h.RequireAuth(withTimeout(h.CreateReviewHandler))).Methods(http.MethodPost)
	router.HandleFunc("/reviews/{id}", withTimeout(h.GetReviewHandler)).Methods(http.MethodGet)
	router.HandleFunc("/reviews/{id}", h.RequireAuth(withTimeout(h.UpdateReviewHandler))).Methods(http.MethodPut)
	router.HandleFunc("/reviews/{id}", h.RequireAuth(withTimeout(h.DeleteReviewHandler))).Methods(http.MethodDelete)

	return router
}

// corsMiddleware sets CORS headers and answers preflight requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withTimeout bounds a handler with the API request timeout. Cancellation
// propagates through the request context to store queries.
func withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", path, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to check directory %s: %v", path, err)
	}
}
