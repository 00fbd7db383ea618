package mockbackend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username             string `json:"username"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		// Same answer for unknown user and bad password.
		s.respondError(w, http.StatusBadRequest, "Invalid credentials")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("issue token failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "this field is required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must have a minimum of 8 characters"
	}
	if req.Password != req.PasswordConfirmation {
		fields["password_confirmation"] = "does not match"
	}
	if len(fields) > 0 {
		s.respondFieldErrors(w, fields)
		return
	}

	username := req.Username
	if username == "" {
		username = strings.SplitN(req.Email, "@", 2)[0]
	}

	user, err := s.store.CreateUser(model.User{
		Username:  username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      model.RoleUser,
	}, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			s.respondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		s.logger.Error("create user failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	token, err := s.issueToken(user)
	if err != nil {
		s.logger.Error("issue token failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"access_token": token,
		"user":         user,
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(userIDFrom(r.Context()))
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	s.respondJSON(w, http.StatusOK, user)
}
