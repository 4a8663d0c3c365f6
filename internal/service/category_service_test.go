package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"secondhand/internal/errors"
	"secondhand/internal/model"
)

func TestCategoryService_Create_AdminOnly(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	_, err := svc.Create(context.Background(), userCaller(), "Electronics", "")

	assert.ErrorIs(t, err, errors.ErrForbidden)
	categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCategoryService_Create(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)
	categoryRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	category, err := svc.Create(context.Background(), adminCaller(), "Electronics", "Gadgets and devices")

	assert.NoError(t, err)
	assert.Equal(t, "Electronics", category.Name)
	assert.Equal(t, "Gadgets and devices", category.Description)
	categoryRepo.AssertExpectations(t)
}

func TestCategoryService_Create_Validation(t *testing.T) {
	tests := []struct {
		name        string
		catName     string
		description string
		field       string
	}{
		{"blank name", "   ", "", "name"},
		{"name too long", strings.Repeat("x", 101), "", "name"},
		{"description too long", "Books", strings.Repeat("x", 501), "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categoryRepo := new(MockCategoryRepository)
			productRepo := new(MockProductRepository)

			svc := NewCategoryService(categoryRepo, productRepo, nil)
			_, err := svc.Create(context.Background(), adminCaller(), tt.catName, tt.description)

			var ve *errors.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCategoryService_Create_DuplicateNameAllowed(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)
	categoryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	_, err := svc.Create(context.Background(), adminCaller(), "Books", "")
	assert.NoError(t, err)
	_, err = svc.Create(context.Background(), adminCaller(), "Books", "")
	assert.NoError(t, err)

	categoryRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestCategoryService_Update_NotFound(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	missing := uuid.New()
	categoryRepo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	_, err := svc.Update(context.Background(), adminCaller(), missing, "Books", "")

	assert.ErrorIs(t, err, errors.ErrCategoryNotFound)
}

func TestCategoryService_Update(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	existing := &model.Category{ID: uuid.New(), Name: "Old", Description: "old description"}
	categoryRepo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	categoryRepo.On("Update", mock.Anything, existing).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	category, err := svc.Update(context.Background(), adminCaller(), existing.ID, "New", "new description")

	assert.NoError(t, err)
	assert.Equal(t, "New", category.Name)
	assert.Equal(t, "new description", category.Description)
	categoryRepo.AssertExpectations(t)
}

func TestCategoryService_Update_DeletedMidWrite(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	existing := &model.Category{ID: uuid.New(), Name: "Old"}
	categoryRepo.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)
	categoryRepo.On("Update", mock.Anything, mock.Anything).Return(gorm.ErrRecordNotFound)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	_, err := svc.Update(context.Background(), adminCaller(), existing.ID, "New", "")

	assert.ErrorIs(t, err, errors.ErrCategoryNotFound)
}

func TestCategoryService_Create_NameLengthCountsRunes(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)
	categoryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewCategoryService(categoryRepo, productRepo, nil)

	_, err := svc.Create(context.Background(), adminCaller(), strings.Repeat("é", 100), "")
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), adminCaller(), strings.Repeat("é", 101), "")
	var ve *errors.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "name")
}

func TestCategoryService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		expectErr error
	}{
		{"empty category is removed", 0, nil},
		{"category with listings is kept", 3, errors.ErrCategoryInUse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categoryRepo := new(MockCategoryRepository)
			productRepo := new(MockProductRepository)

			id := uuid.New()
			categoryRepo.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id, Name: "Books"}, nil)
			productRepo.On("CountByCategory", mock.Anything, id).Return(tt.count, nil)
			categoryRepo.On("Delete", mock.Anything, id).Return(nil)

			svc := NewCategoryService(categoryRepo, productRepo, nil)
			err := svc.Delete(context.Background(), adminCaller(), id)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				categoryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				categoryRepo.AssertCalled(t, "Delete", mock.Anything, id)
			}
		})
	}
}

func TestCategoryService_Delete_NonAdmin(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	err := svc.Delete(context.Background(), userCaller(), uuid.New())

	assert.ErrorIs(t, err, errors.ErrForbidden)
	categoryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCategoryService_Get_NotFound(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	missing := uuid.New()
	categoryRepo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	_, err := svc.Get(context.Background(), missing)

	assert.ErrorIs(t, err, errors.ErrCategoryNotFound)
}

func TestCategoryService_List(t *testing.T) {
	categoryRepo := new(MockCategoryRepository)
	productRepo := new(MockProductRepository)

	categories := []model.Category{
		{ID: uuid.New(), Name: "Books"},
		{ID: uuid.New(), Name: "Electronics"},
	}
	categoryRepo.On("List", mock.Anything).Return(categories, nil)

	svc := NewCategoryService(categoryRepo, productRepo, nil)
	got, err := svc.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, got, 2)
}
