// Package server wires configuration, handlers, and middleware into
// the annotation service's HTTP API.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/VitalyVorobyev/imageannotation/internal/auth"
	"github.com/VitalyVorobyev/imageannotation/internal/bundle"
	"github.com/VitalyVorobyev/imageannotation/internal/config"
	"github.com/VitalyVorobyev/imageannotation/internal/detect"
	"github.com/VitalyVorobyev/imageannotation/internal/editor"
	"github.com/VitalyVorobyev/imageannotation/internal/imagestore"
	mw "github.com/VitalyVorobyev/imageannotation/internal/middleware"
	"github.com/VitalyVorobyev/imageannotation/internal/session"
)

type Server struct {
	router   *mux.Router
	sessions *session.Manager
}

func New(cfg *config.Config) (*Server, error) {
	authService, err := auth.NewService(cfg.EditorPassword, cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	authHandler := auth.NewHandler(authService)

	bundleStore, err := bundle.NewStore(cfg.BundleDir)
	if err != nil {
		return nil, fmt.Errorf("bundle store: %w", err)
	}
	bundleHandler := bundle.NewHandler(bundleStore)

	// Sessions upload through the external store when one is
	// configured, otherwise through the built-in one.
	maxUpload := int64(cfg.MaxUploadMB) << 20

	var storeHandler *imagestore.Handler
	var uploader session.Uploader
	if cfg.ImageStoreURL != "" {
		uploader = imagestore.NewClient(cfg.ImageStoreURL)
	} else {
		storeHandler, err = imagestore.NewHandler(cfg.ImageDir, maxUpload)
		if err != nil {
			return nil, fmt.Errorf("image store: %w", err)
		}
		uploader = &localUploader{store: storeHandler}
	}

	opts := editor.Options{
		HitTolerancePx:  cfg.HitTolerancePx,
		NudgeStepPx:     cfg.NudgeStepPx,
		NudgeFastFactor: cfg.NudgeFastFactor,
	}
	manager := session.NewManager(opts, detect.NewClient(cfg.DetectURL), uploader, cfg.SessionIdleTimeout)

	origins := splitList(cfg.AllowedOrigins)
	sessionHandler := session.NewHandler(manager, originPatterns(origins), maxUpload)

	r := mux.NewRouter()

	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Auth routes (public)
	r.HandleFunc("/auth/status", authHandler.Status).Methods("GET")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Image endpoints (public, only with the built-in store)
	if storeHandler != nil {
		r.HandleFunc("/images", storeHandler.Upload).Methods("POST", "OPTIONS")
		r.HandleFunc("/images/{imageId}", storeHandler.Serve).Methods("GET")
		r.HandleFunc("/images/{imageId}", storeHandler.Delete).Methods("DELETE")
	}

	// WebSocket endpoint; browsers cannot set headers here, so the
	// token rides in the query string.
	r.HandleFunc("/ws/session/{sessionId}", func(w http.ResponseWriter, req *http.Request) {
		if authService.Enabled() {
			token := req.URL.Query().Get("token")
			if token == "" {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}
			if err := authService.ValidateToken(token); err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
		}
		sessionHandler.WebSocket(w, req)
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/sessions", sessionHandler.Create).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}", sessionHandler.Close).Methods("DELETE")
	api.HandleFunc("/sessions/{sessionId}/detect", sessionHandler.Detect).Methods("POST")

	api.HandleFunc("/bundles", bundleHandler.List).Methods("GET")
	api.HandleFunc("/bundles", bundleHandler.Save).Methods("POST")
	api.HandleFunc("/bundles/{bundleId}", bundleHandler.Get).Methods("GET")
	api.HandleFunc("/bundles/{bundleId}", bundleHandler.Delete).Methods("DELETE")
	api.HandleFunc("/bundles/{bundleId}/download", bundleHandler.Download).Methods("GET")

	return &Server{router: r, sessions: manager}, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Shutdown closes every live session.
func (s *Server) Shutdown() {
	s.sessions.Shutdown()
}

type localUploader struct {
	store *imagestore.Handler
}

func (u *localUploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	resp, err := u.store.Save(name, r)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// originPatterns reduces configured origins to the host patterns the
// websocket accept check expects.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "http://")
		o = strings.TrimPrefix(o, "https://")
		patterns = append(patterns, o)
	}
	return patterns
}
