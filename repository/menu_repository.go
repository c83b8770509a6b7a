package repository

import (
	"context"

	"restaurant/entity"

	"gorm.io/gorm"
)

type MenuRepository struct {
	DB *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{DB: db}
}

// ListActiveCategories returns active categories ordered by name.
func (r *MenuRepository) ListActiveCategories(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name").
		Find(&out).Error
	return out, err
}

// ListItems returns every menu item ordered by category then name.
func (r *MenuRepository) ListItems(ctx context.Context) ([]entity.MenuItem, error) {
	var out []entity.MenuItem
	err := r.DB.WithContext(ctx).
		Order("category_id").Order("name").
		Find(&out).Error
	return out, err
}

func (r *MenuRepository) FindItem(ctx context.Context, id uint) (*entity.MenuItem, error) {
	var item entity.MenuItem
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItemsByIDs loads the given items keyed by id; missing ids are simply absent.
func (r *MenuRepository) FindItemsByIDs(ctx context.Context, ids []uint) (map[uint]entity.MenuItem, error) {
	out := make(map[uint]entity.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []entity.MenuItem
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}
