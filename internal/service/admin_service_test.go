package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"secondhand/internal/errors"
	"secondhand/internal/model"
)

func newAdminFixture() (*adminService, *MockUserRepository, *MockRoleRepository, *MockProductRepository, *MockCategoryRepository) {
	userRepo := new(MockUserRepository)
	roleRepo := new(MockRoleRepository)
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	svc := NewAdminService(userRepo, roleRepo, productRepo, categoryRepo).(*adminService)
	return svc, userRepo, roleRepo, productRepo, categoryRepo
}

func TestAdminService_NonAdminRejectedEverywhere(t *testing.T) {
	svc, userRepo, _, _, _ := newAdminFixture()
	caller := userCaller()
	ctx := context.Background()
	target := uuid.New()

	_, err := svc.ListUsers(ctx, caller)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.GetUserDetails(ctx, caller, target)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.ToggleLockout(ctx, caller, target)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.ToggleAdminRole(ctx, caller, target)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	_, err = svc.Stats(ctx, caller)
	assert.ErrorIs(t, err, errors.ErrForbidden)

	userRepo.AssertNotCalled(t, "List", mock.Anything)
	userRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAdminService_ListUsers(t *testing.T) {
	svc, userRepo, _, _, _ := newAdminFixture()

	past := time.Now().Add(-time.Hour)
	users := []model.User{
		{
			ID:       uuid.New(),
			Email:    "alice@example.com",
			FullName: "Alice",
			Roles:    []model.Role{{Name: model.RoleAdmin}, {Name: model.RoleUser}},
		},
		{
			ID:             uuid.New(),
			Email:          "bob@example.com",
			FullName:       "Bob",
			LockoutEnabled: true,
			LockoutEnd:     &lockoutForever,
			Roles:          []model.Role{{Name: model.RoleUser}},
		},
		{
			ID:             uuid.New(),
			Email:          "carol@example.com",
			FullName:       "Carol",
			LockoutEnabled: true,
			LockoutEnd:     &past,
			Roles:          []model.Role{{Name: model.RoleUser}},
		},
	}
	userRepo.On("List", mock.Anything).Return(users, nil)

	summaries, err := svc.ListUsers(context.Background(), adminCaller())

	assert.NoError(t, err)
	assert.Len(t, summaries, 3)
	assert.Equal(t, []string{model.RoleAdmin, model.RoleUser}, summaries[0].Roles)
	assert.False(t, summaries[0].IsLockedOut)
	assert.True(t, summaries[1].IsLockedOut)
	// An expired lockout window no longer counts as locked.
	assert.False(t, summaries[2].IsLockedOut)
}

func TestAdminService_GetUserDetails(t *testing.T) {
	svc, userRepo, _, productRepo, _ := newAdminFixture()

	user := &model.User{
		ID:       uuid.New(),
		Email:    "alice@example.com",
		FullName: "Alice",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Roles:    []model.Role{{Name: model.RoleUser}},
	}
	products := []model.Product{{ID: uuid.New(), Title: "Bike", UserID: user.ID}}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	productRepo.On("ListByOwner", mock.Anything, user.ID).Return(products, nil)

	details, err := svc.GetUserDetails(context.Background(), adminCaller(), user.ID)

	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", details.Email)
	assert.Equal(t, "555-0100", details.Phone)
	assert.Len(t, details.Products, 1)
}

func TestAdminService_GetUserDetails_NotFound(t *testing.T) {
	svc, userRepo, _, _, _ := newAdminFixture()

	missing := uuid.New()
	userRepo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetUserDetails(context.Background(), adminCaller(), missing)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestAdminService_ToggleLockout_Locks(t *testing.T) {
	svc, userRepo, _, _, _ := newAdminFixture()

	user := &model.User{ID: uuid.New(), Email: "bob@example.com"}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("UpdateLockout", mock.Anything, user.ID, true, mock.AnythingOfType("*time.Time")).Return(nil)

	summary, err := svc.ToggleLockout(context.Background(), adminCaller(), user.ID)

	assert.NoError(t, err)
	assert.True(t, summary.IsLockedOut)
	assert.NotNil(t, user.LockoutEnd)
	assert.Equal(t, lockoutForever, *user.LockoutEnd)
	userRepo.AssertExpectations(t)
}

func TestAdminService_ToggleLockout_TwiceRestoresState(t *testing.T) {
	svc, userRepo, _, _, _ := newAdminFixture()

	user := &model.User{ID: uuid.New(), Email: "bob@example.com"}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("UpdateLockout", mock.Anything, user.ID, true, mock.Anything).Return(nil)
	userRepo.On("UpdateLockout", mock.Anything, user.ID, false, (*time.Time)(nil)).Return(nil)

	first, err := svc.ToggleLockout(context.Background(), adminCaller(), user.ID)
	assert.NoError(t, err)
	assert.True(t, first.IsLockedOut)

	second, err := svc.ToggleLockout(context.Background(), adminCaller(), user.ID)
	assert.NoError(t, err)
	assert.False(t, second.IsLockedOut)
	assert.False(t, user.LockoutEnabled)
	assert.Nil(t, user.LockoutEnd)
}

func TestAdminService_ToggleAdminRole_Grants(t *testing.T) {
	svc, userRepo, roleRepo, _, _ := newAdminFixture()

	user := &model.User{
		ID:    uuid.New(),
		Email: "bob@example.com",
		Roles: []model.Role{{Name: model.RoleUser}},
	}
	adminRole := &model.Role{ID: uuid.New(), Name: model.RoleAdmin}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	roleRepo.On("FindByName", mock.Anything, model.RoleAdmin).Return(adminRole, nil)
	userRepo.On("AddRole", mock.Anything, user, adminRole).Return(nil)

	summary, err := svc.ToggleAdminRole(context.Background(), adminCaller(), user.ID)

	assert.NoError(t, err)
	assert.Contains(t, summary.Roles, model.RoleAdmin)
	userRepo.AssertNotCalled(t, "RemoveRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_ToggleAdminRole_Revokes(t *testing.T) {
	svc, userRepo, roleRepo, _, _ := newAdminFixture()

	user := &model.User{
		ID:    uuid.New(),
		Email: "alice@example.com",
		Roles: []model.Role{{Name: model.RoleAdmin}, {Name: model.RoleUser}},
	}
	adminRole := &model.Role{ID: uuid.New(), Name: model.RoleAdmin}
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	roleRepo.On("FindByName", mock.Anything, model.RoleAdmin).Return(adminRole, nil)
	userRepo.On("RemoveRole", mock.Anything, user, adminRole).Return(nil)

	summary, err := svc.ToggleAdminRole(context.Background(), adminCaller(), user.ID)

	assert.NoError(t, err)
	assert.NotContains(t, summary.Roles, model.RoleAdmin)
	assert.Contains(t, summary.Roles, model.RoleUser)
	userRepo.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminService_Stats(t *testing.T) {
	svc, userRepo, _, productRepo, categoryRepo := newAdminFixture()

	recent := []model.Product{{ID: uuid.New(), Title: "Chair"}}
	userRepo.On("Count", mock.Anything).Return(int64(42), nil)
	productRepo.On("Count", mock.Anything).Return(int64(130), nil)
	categoryRepo.On("Count", mock.Anything).Return(int64(7), nil)
	productRepo.On("ListRecent", mock.Anything, 10).Return(recent, nil)

	stats, err := svc.Stats(context.Background(), adminCaller())

	assert.NoError(t, err)
	assert.Equal(t, int64(42), stats.TotalUsers)
	assert.Equal(t, int64(130), stats.TotalProducts)
	assert.Equal(t, int64(7), stats.TotalCategories)
	assert.Len(t, stats.RecentProducts, 1)
}
