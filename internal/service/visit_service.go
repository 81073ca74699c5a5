package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SergeiKhy/visit-tracker/internal/models"
	"github.com/SergeiKhy/visit-tracker/internal/repository"
	"github.com/google/uuid"
)

// VisitService интерфейс сервиса посещений
type VisitService interface {
	CreateVisit(ctx context.Context, input *models.CreateVisitInput) (*models.Visit, error)
	GetVisitsByURL(ctx context.Context, url string, limit, offset int) (*models.VisitList, error)
	GetLatestVisit(ctx context.Context, url string) (*models.Visit, error)
	GetAllVisits(ctx context.Context, limit, offset int) (*models.VisitList, error)
}

// visitService реализация сервиса посещений
type visitService struct {
	visitRepo repository.VisitRepository
}

// NewVisitService создаёт новый экземпляр сервиса
func NewVisitService(visitRepo repository.VisitRepository) VisitService {
	return &visitService{visitRepo: visitRepo}
}

// CreateVisit сохраняет новое посещение. Если время визита не передано,
// подставляется текущее серверное время. created_at ставится всегда.
func (s *visitService) CreateVisit(ctx context.Context, input *models.CreateVisitInput) (*models.Visit, error) {
	now := time.Now().UTC()

	visitedAt := now
	if input.DatetimeVisited != nil {
		visitedAt = *input.DatetimeVisited
	}

	visit := &models.Visit{
		ID:              uuid.New(),
		URL:             input.URL,
		DatetimeVisited: visitedAt,
		LinkCount:       input.LinkCount,
		WordCount:       input.WordCount,
		ImageCount:      input.ImageCount,
		CreatedAt:       now,
	}

	if err := s.visitRepo.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}

	return visit, nil
}

// GetVisitsByURL возвращает страницу посещений для точного совпадения URL
// и общее количество записей по этому URL
func (s *visitService) GetVisitsByURL(ctx context.Context, url string, limit, offset int) (*models.VisitList, error) {
	visits, err := s.visitRepo.ListByURL(ctx, url, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.visitRepo.CountByURL(ctx, url)
	if err != nil {
		return nil, err
	}

	return &models.VisitList{Visits: visits, Total: total}, nil
}

// GetLatestVisit возвращает самое свежее посещение URL.
// Отсутствие записи отдаётся как repository.ErrVisitNotFound.
func (s *visitService) GetLatestVisit(ctx context.Context, url string) (*models.Visit, error) {
	return s.visitRepo.LatestByURL(ctx, url)
}

// GetAllVisits возвращает страницу посещений по всем URL
func (s *visitService) GetAllVisits(ctx context.Context, limit, offset int) (*models.VisitList, error) {
	visits, err := s.visitRepo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.visitRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	return &models.VisitList{Visits: visits, Total: total}, nil
}
