package service

import (
	"context"
	"errors"
	"sync"

	experienceserrors "experia/internal/experiences/errors"
	"experia/internal/experiences/repository"
	"experia/pkg/config"
	apperrors "experia/pkg/errors"
	"experia/pkg/model"
	"experia/pkg/sanitizer"
)

type ExperienceService interface {
	GetByID(ctx context.Context, id string) (*model.Experience, error)
	GetAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Experience, int64, error)
}

type experienceService struct {
	repo repository.ExperienceRepository
	cfg  *config.Config
}

func NewExperienceService(repo repository.ExperienceRepository, cfg *config.Config) ExperienceService {
	return &experienceService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *experienceService) GetByID(ctx context.Context, id string) (*model.Experience, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Experience ID cannot be empty")
	}

	exp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, experienceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Experience", id)
		}
		if errors.Is(err, experienceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid experience ID format")
		}
		s.cfg.Log.Error("Failed to get experience by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve experience", err)
	}

	return exp, nil
}

// GetAll lists experiences, optionally filtered by a case-insensitive
// title or location search. The list query and its count run
// concurrently against the same filter.
func (s *experienceService) GetAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Experience, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)
	search = sanitizer.TrimAndNormalize(search)

	var count int64
	var experiences []*model.Experience
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		if search == "" {
			count, err = s.repo.Count(ctx)
		} else {
			count, err = s.repo.CountSearch(ctx, search)
		}
		if err != nil {
			s.cfg.Log.Error("Failed to count experiences", "search", search, "error", err)
			errCount = apperrors.Internal("Failed to count experiences", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		if search == "" {
			experiences, err = s.repo.FindAll(ctx, limit, offset)
		} else {
			experiences, err = s.repo.Search(ctx, search, limit, offset)
		}
		if err != nil {
			s.cfg.Log.Error("Failed to get experiences",
				"search", search,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve experiences", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return experiences, count, nil
}
