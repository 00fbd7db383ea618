// Package mockbackend is a minimal stand-in for the real discovery
// backend: mock authentication plus a seeded catalog, just enough REST
// surface for the sync core to run end to end. It deliberately mirrors
// the real backend's quirks: list endpoints answer {count, results}
// while search answers bare arrays, and profile updates echo only the
// fields they were sent.
package mockbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campusorient/discovery-sync/config"
	"github.com/campusorient/discovery-sync/internal/domain/model"
)

type contextKey string

const userIDKey contextKey = "mockbackend.user_id"

// Server wires the mock backend's routes over an in-memory store.
type Server struct {
	cfg    config.MockBackendConfig
	store  *Store
	logger *slog.Logger
}

// New builds a server around a fresh store.
func New(cfg config.MockBackendConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, store: NewStore(), logger: logger}
}

// Store exposes the dataset for seeding in tests.
func (s *Server) Store() *Store { return s.store }

// Router assembles the REST surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
	}

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)

	r.Get("/universities/", s.handleListUniversities)
	r.Get("/universities/{id}/", s.handleGetUniversity)
	r.Get("/programs/", s.handleListPrograms)
	r.Get("/programs/{id}/", s.handleGetProgram)
	r.Get("/search/global", s.handleGlobalSearch)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/profile", s.handleGetProfile)
		r.Patch("/auth/profile/update", s.handleUpdateProfile)
		r.Put("/auth/profile/update", s.handleUpdateProfile)
		r.Post("/auth/profile/transcript-upload", s.handleTranscriptUpload)
		r.Delete("/auth/profile/transcript-delete", s.handleTranscriptDelete)
	})

	return r
}

// issueToken signs an HS256 access token for the user.
func (s *Server) issueToken(u model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(u.ID, 10),
		"email": u.Email,
		"role":  u.Role,
		"exp":   time.Now().Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// requireAuth verifies the bearer token and stashes the user id.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			s.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", errors.New("missing bearer token")
	}
	return header[len(prefix):], nil
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"message": message})
}

func (s *Server) respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	s.respondJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
}
