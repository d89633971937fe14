package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	experienceserrors "experia/internal/experiences/errors"
	"experia/pkg/config"
	apperrors "experia/pkg/errors"
	"experia/pkg/logger"
	"experia/pkg/model"

	mongotx "experia/pkg/db/mongo"
)

type mockExperienceRepository struct {
	createFunc              func(ctx context.Context, exp *model.Experience) error
	findByIDFunc            func(ctx context.Context, id string) (*model.Experience, error)
	findAllFunc             func(ctx context.Context, limit int, offset int64) ([]*model.Experience, error)
	searchFunc              func(ctx context.Context, query string, limit int, offset int64) ([]*model.Experience, error)
	countFunc               func(ctx context.Context) (int64, error)
	countSearchFunc         func(ctx context.Context, query string) (int64, error)
	materializeSlotFunc     func(ctx context.Context, id, date, timeSlot string, capacity int) error
	incrementSlotBookedFunc func(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error
	executeTransactionFunc  func(ctx context.Context, fn mongotx.TransactionFunc) error
}

func (m *mockExperienceRepository) Create(ctx context.Context, exp *model.Experience) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, exp)
	}
	return nil
}

func (m *mockExperienceRepository) FindByID(ctx context.Context, id string) (*model.Experience, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, experienceserrors.ErrNotFound
}

func (m *mockExperienceRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Experience, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Experience{}, nil
}

func (m *mockExperienceRepository) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Experience, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query, limit, offset)
	}
	return []*model.Experience{}, nil
}

func (m *mockExperienceRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockExperienceRepository) CountSearch(ctx context.Context, query string) (int64, error) {
	if m.countSearchFunc != nil {
		return m.countSearchFunc(ctx, query)
	}
	return 0, nil
}

func (m *mockExperienceRepository) MaterializeSlot(ctx context.Context, id, date, timeSlot string, capacity int) error {
	if m.materializeSlotFunc != nil {
		return m.materializeSlotFunc(ctx, id, date, timeSlot, capacity)
	}
	return nil
}

func (m *mockExperienceRepository) IncrementSlotBooked(ctx context.Context, id, date, timeSlot string, prevBooked, quantity int) error {
	if m.incrementSlotBookedFunc != nil {
		return m.incrementSlotBookedFunc(ctx, id, date, timeSlot, prevBooked, quantity)
	}
	return nil
}

func (m *mockExperienceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if m.executeTransactionFunc != nil {
		return m.executeTransactionFunc(ctx, fn)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "info",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func TestGetByID_NotFound(t *testing.T) {
	mockRepo := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return nil, fmt.Errorf("%w: %s", experienceserrors.ErrNotFound, id)
		},
	}

	service := &experienceService{repo: mockRepo, cfg: testConfig()}

	_, err := service.GetByID(context.Background(), "64f1b2a3c4d5e6f7a8b9c0d1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	mockRepo := &mockExperienceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Experience, error) {
			return nil, fmt.Errorf("%w: %s", experienceserrors.ErrInvalidID, id)
		},
	}

	service := &experienceService{repo: mockRepo, cfg: testConfig()}

	_, err := service.GetByID(context.Background(), "not-an-object-id")
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestGetByID_EmptyID(t *testing.T) {
	service := &experienceService{repo: &mockExperienceRepository{}, cfg: testConfig()}

	_, err := service.GetByID(context.Background(), "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestGetAll_ConcurrentCountAndFind(t *testing.T) {
	mockRepo := &mockExperienceRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Experience, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Experience{
				{ID: "1", Title: "Desert Safari"},
			}, nil
		},
	}

	service := &experienceService{repo: mockRepo, cfg: testConfig()}

	for i := 0; i < 20; i++ {
		experiences, count, err := service.GetAll(context.Background(), "", 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(experiences) != 1 {
			t.Errorf("iteration %d: expected 1 experience, got %d", i, len(experiences))
		}
	}
}

func TestGetAll_SearchUsesSearchQueries(t *testing.T) {
	var searchedQuery, countedQuery string
	mockRepo := &mockExperienceRepository{
		searchFunc: func(ctx context.Context, query string, limit int, offset int64) ([]*model.Experience, error) {
			searchedQuery = query
			return []*model.Experience{{ID: "1", Title: "Kayaking in Goa"}}, nil
		},
		countSearchFunc: func(ctx context.Context, query string) (int64, error) {
			countedQuery = query
			return 1, nil
		},
	}

	service := &experienceService{repo: mockRepo, cfg: testConfig()}

	experiences, count, err := service.GetAll(context.Background(), "  kayaking  ", 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(experiences) != 1 {
		t.Fatalf("expected single result, got count=%d len=%d", count, len(experiences))
	}
	if searchedQuery != "kayaking" {
		t.Errorf("expected normalized search query 'kayaking', got %q", searchedQuery)
	}
	if countedQuery != searchedQuery {
		t.Errorf("count and find used different queries: %q vs %q", countedQuery, searchedQuery)
	}
}

func TestGetAll_CountFailure(t *testing.T) {
	mockRepo := &mockExperienceRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection reset")
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Experience, error) {
			return []*model.Experience{}, nil
		},
	}

	service := &experienceService{repo: mockRepo, cfg: testConfig()}

	_, _, err := service.GetAll(context.Background(), "", 10, 0)
	if err == nil {
		t.Fatal("expected error when count fails")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInternal {
		t.Errorf("expected internal AppError, got %v", err)
	}
}

func TestGetAll_NormalizesPagination(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	mockRepo := &mockExperienceRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Experience, error) {
			gotLimit = limit
			gotOffset = offset
			return []*model.Experience{}, nil
		},
	}

	service := &experienceService{repo: mockRepo, cfg: testConfig()}

	_, _, err := service.GetAll(context.Background(), "", -5, -100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 {
		t.Errorf("expected limit normalized to 10, got %d", gotLimit)
	}
	if gotOffset != 0 {
		t.Errorf("expected offset normalized to 0, got %d", gotOffset)
	}
}
