package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// UniversityService wraps the universities collection.
type UniversityService struct {
	client *api.Client
	logger *slog.Logger
}

// NewUniversityService constructs a UniversityService.
func NewUniversityService(client *api.Client, logger *slog.Logger) *UniversityService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UniversityService{client: client, logger: logger}
}

// List returns one page of universities matching the params.
func (s *UniversityService) List(ctx context.Context, p ListParams) (model.Page[model.University], error) {
	p = p.withDefaults()

	var raw json.RawMessage
	if err := s.client.Get(ctx, "/universities/", p.values(), &raw); err != nil {
		s.logger.ErrorContext(ctx, "list universities failed",
			"error", err, "error_class", api.Classify(err))
		return model.Page[model.University]{}, err
	}

	page, err := decodePage[model.University](raw, p.Page, p.Limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "normalize universities payload failed", "error", err)
		return model.Page[model.University]{}, err
	}
	return page, nil
}

// GetByID fetches one university. A backend 404 surfaces as
// *api.NotFoundError so the caller can distinguish "not found" from
// "error".
func (s *UniversityService) GetByID(ctx context.Context, id int64) (*model.University, error) {
	if id <= 0 {
		return nil, fmt.Errorf("university id must be positive, got %d", id)
	}

	var out model.University
	if err := s.client.Get(ctx, fmt.Sprintf("/universities/%d/", id), nil, &out); err != nil {
		s.logger.ErrorContext(ctx, "get university failed",
			"id", id, "error", err, "error_class", api.Classify(err))
		return nil, err
	}
	return &out, nil
}
