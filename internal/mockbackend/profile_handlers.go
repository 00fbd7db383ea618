package mockbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// Patchable top-level keys; anything else in the body is dropped.
var patchableTopLevel = map[string]bool{
	"first_name":         true,
	"last_name":          true,
	"profile":            true,
	"saved_programs":     true,
	"saved_universities": true,
}

// handleUpdateProfile applies a partial patch and, like the real
// backend, echoes back only the submitted fields plus identity. The
// partial echo is load-bearing: it is exactly what the client-side
// reconciliation exists to cope with.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for k := range patch {
		if !patchableTopLevel[k] {
			delete(patch, k)
		}
	}
	if name, present := patch["first_name"]; present {
		if str, _ := name.(string); str == "" {
			s.respondFieldErrors(w, map[string]string{"first_name": "must not be empty"})
			return
		}
	}

	user, err := s.store.ApplyUserPatch(userIDFrom(r.Context()), patch)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	echo := map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
	raw, _ := json.Marshal(user)
	var full map[string]any
	_ = json.Unmarshal(raw, &full)
	for k := range patch {
		echo[k] = full[k]
	}

	s.respondJSON(w, http.StatusOK, echo)
}

func (s *Server) handleTranscriptUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondFieldErrors(w, map[string]string{"file": "this field is required"})
		return
	}
	defer func() { _ = file.Close() }()

	userID := userIDFrom(r.Context())
	user, err := s.store.GetUser(userID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	desc := model.TranscriptFile{
		Name:       header.Filename,
		Type:       header.Header.Get("Content-Type"),
		Size:       header.Size,
		URL:        fmt.Sprintf("/media/transcripts/%d/%s_%s", userID, uuid.NewString(), header.Filename),
		UploadedAt: time.Now().UTC(),
	}

	if user.Profile == nil {
		user.Profile = &model.Profile{}
	}
	user.Profile.TranscriptFiles = append(user.Profile.TranscriptFiles, desc)
	if err = s.store.SetUser(user); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	// Only the new file goes back, never the full list.
	s.respondJSON(w, http.StatusCreated, map[string]any{"file": desc})
}

func (s *Server) handleTranscriptDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileURL string `json:"file_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileURL == "" {
		s.respondFieldErrors(w, map[string]string{"file_url": "this field is required"})
		return
	}

	user, err := s.store.GetUser(userIDFrom(r.Context()))
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	found := false
	if user.Profile != nil {
		kept := user.Profile.TranscriptFiles[:0]
		for _, f := range user.Profile.TranscriptFiles {
			if f.URL == req.FileURL {
				found = true
				continue
			}
			kept = append(kept, f)
		}
		user.Profile.TranscriptFiles = kept
	}
	if !found {
		s.respondError(w, http.StatusNotFound, "File not found")
		return
	}

	if err = s.store.SetUser(user); err != nil {
		s.respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "File deleted"})
}
