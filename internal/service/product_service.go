package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"secondhand/internal/auth"
	"secondhand/internal/cache"
	"secondhand/internal/errors"
	"secondhand/internal/model"
	"secondhand/internal/repository"
	"secondhand/internal/storage"
)

const (
	productCacheTTL = 5 * time.Minute
	// maxImageSize caps uploads at 5 MB.
	maxImageSize = 5 << 20
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

var maxPrice = decimal.NewFromInt(1_000_000)

// ProductInput carries the client-editable fields of a listing. The owner is
// deliberately absent: it always comes from the authenticated caller.
type ProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
}

// ImageUpload is an uploaded image file as received from the client.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductService handles catalog operations over listings.
type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error)
	Latest(ctx context.Context, limit int) ([]model.Product, error)
	Create(ctx context.Context, caller auth.Principal, input ProductInput, image *ImageUpload) (*model.Product, error)
	Update(ctx context.Context, caller auth.Principal, id uuid.UUID, input ProductInput, image *ImageUpload) (*model.Product, error)
	Delete(ctx context.Context, caller auth.Principal, id uuid.UUID) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	store        storage.Store
	cache        *cache.Client
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	store storage.Store,
	cache *cache.Client,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		store:        store,
		cache:        cache,
	}
}

func (s *productService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id.String())
}

// List returns listings matching the filter, newest first.
func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	return s.productRepo.List(ctx, filter)
}

// Get retrieves a single listing by ID with caching.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, productCacheTTL)
	}

	return product, nil
}

// ListByOwner returns the owner's listings, newest first.
func (s *productService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.ListByOwner(ctx, ownerID)
}

// Latest returns the newest listings up to limit, for the landing page.
func (s *productService) Latest(ctx context.Context, limit int) ([]model.Product, error) {
	return s.productRepo.ListRecent(ctx, limit)
}

// Create validates and persists a new listing owned by the caller. The owner
// id is taken from the principal, never from the input.
func (s *productService) Create(ctx context.Context, caller auth.Principal, input ProductInput, image *ImageUpload) (*model.Product, error) {
	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	imagePath := ""
	if image != nil {
		path, err := s.store.Save(image.Data, filepath.Ext(image.Filename))
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		imagePath = path
	}

	product := &model.Product{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		UserID:      caller.UserID,
		ImagePath:   imagePath,
		UploadDate:  time.Now(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		// Never leave an image on disk for a listing that was not persisted.
		if imagePath != "" {
			_ = s.store.Delete(imagePath)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// Update validates and applies edits to a listing. Only the owner or an admin
// may edit. The upload date is never changed here, and without a new image the
// existing image path stays untouched.
func (s *productService) Update(ctx context.Context, caller auth.Principal, id uuid.UUID, input ProductInput, image *ImageUpload) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}

	if existing.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	if err := s.validateInput(ctx, input); err != nil {
		return nil, err
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	oldPath := existing.ImagePath
	newPath := ""
	if image != nil {
		// The new file must be fully written before the old one may go away.
		newPath, err = s.store.Save(image.Data, filepath.Ext(image.Filename))
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		existing.ImagePath = newPath
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Price = input.Price
	existing.CategoryID = input.CategoryID

	if err := s.productRepo.Update(ctx, existing); err != nil {
		if newPath != "" {
			_ = s.store.Delete(newPath)
		}
		// The record may have been deleted underneath us; report not-found
		// rather than an opaque failure.
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	if newPath != "" && oldPath != "" {
		_ = s.store.Delete(oldPath)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))

	return existing, nil
}

// Delete removes a listing and its image file. Only the owner or an admin may
// delete.
func (s *productService) Delete(ctx context.Context, caller auth.Principal, id uuid.UUID) error {
	existing, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrProductNotFound
		}
		return err
	}

	if existing.UserID != caller.UserID && !caller.IsAdmin() {
		return errors.ErrForbidden
	}

	if existing.ImagePath != "" {
		if err := s.store.Delete(existing.ImagePath); err != nil {
			return fmt.Errorf("delete image: %w", err)
		}
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))

	return nil
}

// validateInput enforces the listing field constraints and that the category
// exists.
func (s *productService) validateInput(ctx context.Context, input ProductInput) error {
	ve := &errors.ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		ve.Add("title", "title is required")
	} else if utf8.RuneCountInString(input.Title) > 200 {
		ve.Add("title", "title cannot exceed 200 characters")
	}

	if strings.TrimSpace(input.Description) == "" {
		ve.Add("description", "description is required")
	} else if utf8.RuneCountInString(input.Description) > 2000 {
		ve.Add("description", "description cannot exceed 2000 characters")
	}

	if !input.Price.IsPositive() || input.Price.GreaterThan(maxPrice) {
		ve.Add("price", "price must be between 0.01 and 1,000,000")
	} else if input.Price.Exponent() < -2 {
		ve.Add("price", "price cannot have more than two decimal places")
	}

	if input.CategoryID == uuid.Nil {
		ve.Add("category_id", "category is required")
	} else if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			ve.Add("category_id", "unknown category")
		} else {
			return err
		}
	}

	if !ve.Empty() {
		return ve
	}
	return nil
}

// validateImage enforces the upload limits. A nil image is valid (no change).
func validateImage(image *ImageUpload) error {
	if image == nil {
		return nil
	}

	ve := &errors.ValidationError{}
	if len(image.Data) == 0 {
		ve.Add("image", "image file is empty")
	} else if len(image.Data) > maxImageSize {
		ve.Add("image", "file size must be less than 5MB")
	}

	ext := strings.ToLower(filepath.Ext(image.Filename))
	if !allowedImageExts[ext] {
		ve.Add("image", "only image files are allowed (jpg, jpeg, png, gif)")
	}

	if !ve.Empty() {
		return ve
	}
	return nil
}
