package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/campusorient/discovery-sync/internal/api"
	"github.com/campusorient/discovery-sync/internal/domain/model"
)

// ProgramService wraps the programs collection.
type ProgramService struct {
	client *api.Client
	logger *slog.Logger
}

// NewProgramService constructs a ProgramService.
func NewProgramService(client *api.Client, logger *slog.Logger) *ProgramService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgramService{client: client, logger: logger}
}

// List returns one page of programs matching the params.
func (s *ProgramService) List(ctx context.Context, p ListParams) (model.Page[model.Program], error) {
	p = p.withDefaults()

	var raw json.RawMessage
	if err := s.client.Get(ctx, "/programs/", p.values(), &raw); err != nil {
		s.logger.ErrorContext(ctx, "list programs failed",
			"error", err, "error_class", api.Classify(err))
		return model.Page[model.Program]{}, err
	}

	page, err := decodePage[model.Program](raw, p.Page, p.Limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "normalize programs payload failed", "error", err)
		return model.Page[model.Program]{}, err
	}
	return page, nil
}

// GetByID fetches one program; 404 surfaces as *api.NotFoundError.
func (s *ProgramService) GetByID(ctx context.Context, id int64) (*model.Program, error) {
	if id <= 0 {
		return nil, fmt.Errorf("program id must be positive, got %d", id)
	}

	var out model.Program
	if err := s.client.Get(ctx, fmt.Sprintf("/programs/%d/", id), nil, &out); err != nil {
		s.logger.ErrorContext(ctx, "get program failed",
			"id", id, "error", err, "error_class", api.Classify(err))
		return nil, err
	}
	return &out, nil
}
