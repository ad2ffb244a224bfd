package employee

import (
	"context"
	"log/slog"
)

// Repository defines the data access methods for the employee directory
type Repository interface {
	GetByID(id int64) (*Employee, error)
	List(filter ListFilter) ([]*Employee, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	return s.repo.List(filter)
}
