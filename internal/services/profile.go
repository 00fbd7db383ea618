package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// ProfileService speaks the authenticated profile endpoints. It is the
// wire half of the reconciliation engine: it moves bytes and classifies
// failures, while all merge logic lives with the engine.
type ProfileService struct {
	client *api.Client
	logger *slog.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(client *api.Client, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{client: client, logger: logger}
}

// FetchProfile returns the server's current view of the user.
func (s *ProfileService) FetchProfile(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := s.client.Get(ctx, "/auth/profile", nil, &out); err != nil {
		s.logger.ErrorContext(ctx, "fetch profile failed",
			"error", err, "error_class", api.Classify(err))
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends a partial patch with the requested verb and
// returns the raw response body. The echo may be partial; the caller
// merges it, so the undecoded JSON is what matters here.
func (s *ProfileService) UpdateProfile(ctx context.Context, patch model.ProfilePatch, method string) (json.RawMessage, error) {
	var raw json.RawMessage
	var err error
	switch method {
	case http.MethodPatch:
		err = s.client.Patch(ctx, "/auth/profile/update", patch, &raw)
	case http.MethodPut:
		err = s.client.Put(ctx, "/auth/profile/update", patch, &raw)
	default:
		return nil, errors.New("unsupported profile update method: " + method)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "update profile failed",
			"method", method, "error", err, "error_class", api.Classify(err))
		return nil, err
	}
	return raw, nil
}

// UploadTranscript streams one file to the transcript endpoint and
// returns the descriptor of the stored copy. The response carries only
// the new file, never the full list.
func (s *ProfileService) UploadTranscript(ctx context.Context, filename string, r io.Reader) (*model.TranscriptFile, error) {
	var out struct {
		File model.TranscriptFile `json:"file"`
	}
	if err := s.client.PostMultipart(ctx, "/auth/profile/transcript-upload", "file", filename, r, &out); err != nil {
		s.logger.ErrorContext(ctx, "upload transcript failed",
			"file", filename, "error", err, "error_class", api.Classify(err))
		return nil, err
	}
	return &out.File, nil
}

// DeleteTranscript removes the file identified by its URL.
func (s *ProfileService) DeleteTranscript(ctx context.Context, fileURL string) error {
	body := map[string]string{"file_url": fileURL}
	if err := s.client.Delete(ctx, "/auth/profile/transcript-delete", body, nil); err != nil {
		s.logger.ErrorContext(ctx, "delete transcript failed",
			"file_url", fileURL, "error", err, "error_class", api.Classify(err))
		return err
	}
	return nil
}
