// Package bootstrap seeds the reference data the marketplace cannot run
// without: the two role rows and one admin account. It runs once before the
// server starts taking traffic and is idempotent.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"secondhand/internal/model"
	"secondhand/internal/repository"
)

const bcryptCost = 10

// Run ensures the Admin and User roles exist and that one admin account with
// the configured credentials exists and holds the Admin role.
func Run(ctx context.Context, userRepo repository.UserRepository, roleRepo repository.RoleRepository, adminEmail, adminPassword string) error {
	for _, name := range []string{model.RoleAdmin, model.RoleUser} {
		if _, err := roleRepo.FindByName(ctx, name); err != nil {
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("find role %s: %w", name, err)
			}
			if err := roleRepo.Create(ctx, &model.Role{Name: name}); err != nil {
				return fmt.Errorf("create role %s: %w", name, err)
			}
			log.Printf("bootstrap: created role %s", name)
		}
	}

	if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("find admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	adminRole, err := roleRepo.FindByName(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FullName:     "System Admin",
		Roles:        []model.Role{*adminRole},
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin account: %w", err)
	}
	log.Printf("bootstrap: created admin account %s", adminEmail)

	return nil
}
