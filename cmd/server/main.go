package main

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"secondhand/docs"
	"secondhand/internal/auth"
	"secondhand/internal/bootstrap"
	"secondhand/internal/cache"
	"secondhand/internal/config"
	"secondhand/internal/db"
	"secondhand/internal/handler"
	"secondhand/internal/model"
	"secondhand/internal/repository"
	"secondhand/internal/router"
	"secondhand/internal/service"
	"secondhand/internal/storage"
)

// @title Secondhand Marketplace API
// @version 1.0
// @description Classifieds marketplace API: listings with images, categories, and admin moderation.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Product{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	store := storage.NewLocalStore(cfg.UploadDir)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	// Seed roles and the bootstrap admin before taking traffic
	if err := bootstrap.Run(context.Background(), userRepo, roleRepo, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, jwtService, tokenStore)
	productService := service.NewProductService(productRepo, categoryRepo, store, cacheClient)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, cacheClient)
	adminService := service.NewAdminService(userRepo, roleRepo, productRepo, categoryRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	adminHandler := handler.NewAdminHandler(adminService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		productHandler,
		categoryHandler,
		adminHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
