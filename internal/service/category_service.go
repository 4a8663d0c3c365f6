package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"secondhand/internal/auth"
	"secondhand/internal/cache"
	"secondhand/internal/errors"
	"secondhand/internal/model"
	"secondhand/internal/repository"
)

const (
	categoryCacheKey = "categories:all"
	categoryCacheTTL = 5 * time.Minute
)

// CategoryService handles category administration. Category names are not
// required to be unique; the original system allowed duplicates and that
// behavior is kept as a documented decision.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Create(ctx context.Context, caller auth.Principal, name, description string) (*model.Category, error)
	Update(ctx context.Context, caller auth.Principal, id uuid.UUID, name, description string) (*model.Category, error)
	Delete(ctx context.Context, caller auth.Principal, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        *cache.Client
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache *cache.Client,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
	}
}

// List returns all categories with caching.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	if data, _ := s.cache.Get(ctx, categoryCacheKey); data != nil {
		var cached []model.Category
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(categories); err == nil {
		_ = s.cache.Set(ctx, categoryCacheKey, payload, categoryCacheTTL)
	}

	return categories, nil
}

// Get retrieves a single category by ID.
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Create validates and persists a new category. Admin only.
func (s *categoryService) Create(ctx context.Context, caller auth.Principal, name, description string) (*model.Category, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}
	if err := validateCategory(name, description); err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Description: description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	_ = s.cache.Delete(ctx, categoryCacheKey)

	return category, nil
}

// Update validates and applies edits to a category. Admin only.
func (s *categoryService) Update(ctx context.Context, caller auth.Principal, id uuid.UUID, name, description string) (*model.Category, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}

	if err := validateCategory(name, description); err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = description
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	_ = s.cache.Delete(ctx, categoryCacheKey)

	return category, nil
}

// Delete removes a category unless any product still references it. Admin
// only. The reference check and the delete are not one transaction; a listing
// created in between slips through, which is accepted for this scope.
func (s *categoryService) Delete(ctx context.Context, caller auth.Principal, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return errors.ErrForbidden
	}

	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCategoryNotFound
		}
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if count > 0 {
		return errors.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	_ = s.cache.Delete(ctx, categoryCacheKey)

	return nil
}

func validateCategory(name, description string) error {
	ve := &errors.ValidationError{}

	if strings.TrimSpace(name) == "" {
		ve.Add("name", "category name is required")
	} else if utf8.RuneCountInString(name) > 100 {
		ve.Add("name", "name cannot exceed 100 characters")
	}

	if utf8.RuneCountInString(description) > 500 {
		ve.Add("description", "description cannot exceed 500 characters")
	}

	if !ve.Empty() {
		return ve
	}
	return nil
}
