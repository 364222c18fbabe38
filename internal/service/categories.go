package service

import (
	"context"

	"github.com/alessandrolsdev/controle-financeiro-api/internal/core"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/log"
	"github.com/alessandrolsdev/controle-financeiro-api/internal/storage"
)

// CategoryService manages the global category catalog. Categories are shared
// by all users, any authenticated account may manage them.
type CategoryService struct {
	repo   *storage.Repository
	logger *log.Logger
}

func NewCategoryService(repo *storage.Repository, logger *log.Logger) *CategoryService {
	return &CategoryService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentService),
	}
}

func (s *CategoryService) Create(ctx context.Context, c *core.Category) (*core.Category, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Category created",
		log.FieldCategoryID, c.ID,
		log.FieldCategoryName, c.Name,
		log.FieldCategoryType, string(c.Type))
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*core.Category, error) {
	return s.repo.GetCategory(ctx, id)
}

func (s *CategoryService) Update(ctx context.Context, id int64, upd storage.CategoryUpdate) (*core.Category, error) {
	// Validate the merged state, not just the changed fields, so a partial
	// update can never leave an invalid category behind.
	current, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	merged := *current
	if upd.Name != nil {
		merged.Name = *upd.Name
	}
	if upd.Type != nil {
		merged.Type = *upd.Type
	}
	if upd.Color != nil {
		merged.Color = *upd.Color
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.UpdateCategory(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Category updated", log.FieldCategoryID, id)
	return c, nil
}

// Delete removes a category. A category still referenced by transactions
// cannot be removed and surfaces as core.ErrCategoryInUse.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	return nil
}
