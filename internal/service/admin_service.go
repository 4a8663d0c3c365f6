package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"secondhand/internal/auth"
	"secondhand/internal/errors"
	"secondhand/internal/model"
	"secondhand/internal/repository"
)

// lockoutForever is the expiry used when an admin locks an account: far enough
// out to be effectively permanent until the admin unlocks it again.
var lockoutForever = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// UserSummary is a moderation-view row for one user.
type UserSummary struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Roles       []string  `json:"roles"`
	IsLockedOut bool      `json:"is_locked_out"`
}

// UserDetails is the full moderation view of one user including their listings.
type UserDetails struct {
	UserSummary
	Phone    string          `json:"phone,omitempty"`
	Address  string          `json:"address,omitempty"`
	Products []model.Product `json:"products"`
}

// DashboardStats summarizes the marketplace for the admin dashboard.
type DashboardStats struct {
	TotalUsers      int64           `json:"total_users"`
	TotalProducts   int64           `json:"total_products"`
	TotalCategories int64           `json:"total_categories"`
	RecentProducts  []model.Product `json:"recent_products"`
}

// AdminService handles user moderation. Every operation requires the Admin
// role on the caller.
type AdminService interface {
	ListUsers(ctx context.Context, caller auth.Principal) ([]UserSummary, error)
	GetUserDetails(ctx context.Context, caller auth.Principal, userID uuid.UUID) (*UserDetails, error)
	ToggleLockout(ctx context.Context, caller auth.Principal, userID uuid.UUID) (*UserSummary, error)
	ToggleAdminRole(ctx context.Context, caller auth.Principal, userID uuid.UUID) (*UserSummary, error)
	Stats(ctx context.Context, caller auth.Principal) (*DashboardStats, error)
}

type adminService struct {
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewAdminService creates a new admin service.
func NewAdminService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) AdminService {
	return &adminService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func summarize(user *model.User) UserSummary {
	return UserSummary{
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		Roles:       user.RoleNames(),
		IsLockedOut: user.IsLockedOut(),
	}
}

// ListUsers returns every user with roles and computed lockout status.
func (s *adminService) ListUsers(ctx context.Context, caller auth.Principal) ([]UserSummary, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	summaries := make([]UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, summarize(&users[i]))
	}
	return summaries, nil
}

// GetUserDetails returns one user's profile, roles, lockout status and
// listings with categories.
func (s *adminService) GetUserDetails(ctx context.Context, caller auth.Principal, userID uuid.UUID) (*UserDetails, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	products, err := s.productRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user products: %w", err)
	}

	return &UserDetails{
		UserSummary: summarize(user),
		Phone:       user.Phone,
		Address:     user.Address,
		Products:    products,
	}, nil
}

// ToggleLockout flips the lockout-enabled flag. Enabling sets the expiry to
// the effectively-infinite future; disabling clears it. Applying it twice
// returns the account to its original state.
func (s *adminService) ToggleLockout(ctx context.Context, caller auth.Principal, userID uuid.UUID) (*UserSummary, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	user.LockoutEnabled = !user.LockoutEnabled
	if user.LockoutEnabled {
		end := lockoutForever
		user.LockoutEnd = &end
	} else {
		user.LockoutEnd = nil
	}

	if err := s.userRepo.UpdateLockout(ctx, userID, user.LockoutEnabled, user.LockoutEnd); err != nil {
		return nil, fmt.Errorf("update lockout: %w", err)
	}

	summary := summarize(user)
	return &summary, nil
}

// ToggleAdminRole grants the Admin role if the user lacks it, else revokes it.
// There is no safeguard against revoking the last admin; the original system
// had none either.
func (s *adminService) ToggleAdminRole(ctx context.Context, caller auth.Principal, userID uuid.UUID) (*UserSummary, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, err
	}

	adminRole, err := s.roleRepo.FindByName(ctx, model.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("find admin role: %w", err)
	}

	if user.HasRole(model.RoleAdmin) {
		if err := s.userRepo.RemoveRole(ctx, user, adminRole); err != nil {
			return nil, fmt.Errorf("remove admin role: %w", err)
		}
		kept := user.Roles[:0]
		for _, r := range user.Roles {
			if r.Name != model.RoleAdmin {
				kept = append(kept, r)
			}
		}
		user.Roles = kept
	} else {
		if err := s.userRepo.AddRole(ctx, user, adminRole); err != nil {
			return nil, fmt.Errorf("add admin role: %w", err)
		}
		user.Roles = append(user.Roles, *adminRole)
	}

	summary := summarize(user)
	return &summary, nil
}

// Stats returns marketplace totals and the ten most recent listings.
func (s *adminService) Stats(ctx context.Context, caller auth.Principal) (*DashboardStats, error) {
	if !caller.IsAdmin() {
		return nil, errors.ErrForbidden
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	categories, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	recent, err := s.productRepo.ListRecent(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}

	return &DashboardStats{
		TotalUsers:      users,
		TotalProducts:   products,
		TotalCategories: categories,
		RecentProducts:  recent,
	}, nil
}
