package services

import (
	"context"
	"errors"

	"restaurant/entity"
	"restaurant/repository"

	"gorm.io/gorm"
)

type MenuService struct {
	Repo *repository.MenuRepository
}

func NewMenuService(repo *repository.MenuRepository) *MenuService {
	return &MenuService{Repo: repo}
}

func (s *MenuService) Categories(ctx context.Context) ([]entity.Category, error) {
	return s.Repo.ListActiveCategories(ctx)
}

func (s *MenuService) Items(ctx context.Context) ([]entity.MenuItem, error) {
	return s.Repo.ListItems(ctx)
}

func (s *MenuService) Item(ctx context.Context, id uint) (*entity.MenuItem, error) {
	item, err := s.Repo.FindItem(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuItemNotFound
	}
	return item, err
}
