// Command seed loads a small set of demo categories for local development.
// It is safe to run repeatedly: categories are matched by name and only
// missing ones are created.
package main

import (
	"context"
	"log"

	"secondhand/internal/config"
	"secondhand/internal/db"
	"secondhand/internal/model"
	"secondhand/internal/repository"
)

var demoCategories = []model.Category{
	{Name: "Electronics", Description: "Phones, laptops, cameras and other gadgets"},
	{Name: "Furniture", Description: "Tables, chairs, sofas and home furnishings"},
	{Name: "Clothing", Description: "Secondhand apparel and accessories"},
	{Name: "Books", Description: "Used books, textbooks and comics"},
	{Name: "Sports", Description: "Sporting goods and outdoor equipment"},
	{Name: "Toys", Description: "Toys, games and hobby items"},
	{Name: "Other", Description: "Everything that fits nowhere else"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.Category{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	categoryRepo := repository.NewCategoryRepository(gormDB)

	existing, err := categoryRepo.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list categories: %v", err)
	}
	present := make(map[string]bool, len(existing))
	for _, c := range existing {
		present[c.Name] = true
	}

	created := 0
	for i := range demoCategories {
		if present[demoCategories[i].Name] {
			continue
		}
		if err := categoryRepo.Create(ctx, &demoCategories[i]); err != nil {
			log.Fatalf("Failed to create category %q: %v", demoCategories[i].Name, err)
		}
		created++
	}

	log.Printf("Seed completed: %d categories created, %d already present", created, len(present))
}
