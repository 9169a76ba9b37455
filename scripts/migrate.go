package main

import (
	"log"

	"charity-run-backend/internal/config"
	"charity-run-backend/internal/models"
	"charity-run-backend/internal/repositories"
	"charity-run-backend/internal/utils"
	"charity-run-backend/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Load configuration
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// Initialize database
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// Run migrations
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
	log.Println("✅ Database migrations completed successfully")

	if err := seedCategories(db); err != nil {
		log.Fatalf("Failed to seed categories: %v", err)
	}
	if err := seedJerseys(db); err != nil {
		log.Fatalf("Failed to seed jersey options: %v", err)
	}
	if err := createDefaultAdmin(db); err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}

	log.Println("🎉 Migration process completed!")
}

func intPtr(v int) *int { return &v }

func seedCategories(db *gorm.DB) error {
	categories := []models.RaceCategory{
		{
			Name:              "3km Fun Run",
			BasePrice:         150000,
			EarlyBirdPrice:    130000,
			EarlyBirdCapacity: 20,
			Tier1Price:        140000, Tier1Min: 10, Tier1Max: intPtr(29),
			Tier2Price: 130000, Tier2Min: 30, Tier2Max: intPtr(59),
			Tier3Price: 120000, Tier3Min: 60,
			BundlePrice: intPtr(500000), BundleSize: intPtr(4),
		},
		{
			Name:              "5km Charity Run",
			BasePrice:         200000,
			EarlyBirdPrice:    170000,
			EarlyBirdCapacity: 50,
			Tier1Price:        190000, Tier1Min: 10, Tier1Max: intPtr(29),
			Tier2Price: 180000, Tier2Min: 30, Tier2Max: intPtr(59),
			Tier3Price: 170000, Tier3Min: 60,
		},
		{
			Name:              "10km Charity Run",
			BasePrice:         250000,
			EarlyBirdPrice:    220000,
			EarlyBirdCapacity: 50,
			Tier1Price:        240000, Tier1Min: 10, Tier1Max: intPtr(29),
			Tier2Price: 230000, Tier2Min: 30, Tier2Max: intPtr(59),
			Tier3Price: 220000, Tier3Min: 60,
		},
	}

	for _, cat := range categories {
		var existing models.RaceCategory
		if err := db.Where("name = ?", cat.Name).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&cat).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded category %s", cat.Name)
	}
	return nil
}

func seedJerseys(db *gorm.DB) error {
	jerseys := []models.JerseyOption{
		{Size: "S", Type: "adult"},
		{Size: "M", Type: "adult"},
		{Size: "L", Type: "adult"},
		{Size: "XL", Type: "adult"},
		{Size: "XXL", Type: "adult", Price: 20000, IsExtraSize: true},
		{Size: "XXXL", Type: "adult", Price: 30000, IsExtraSize: true},
		{Size: "Kids-S", Type: "kids"},
		{Size: "Kids-M", Type: "kids"},
		{Size: "Kids-L", Type: "kids"},
	}

	for _, jersey := range jerseys {
		var existing models.JerseyOption
		if err := db.Where("size = ?", jersey.Size).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&jersey).Error; err != nil {
			return err
		}
	}
	log.Println("✅ Seeded jersey options")
	return nil
}

func createDefaultAdmin(db *gorm.DB) error {
	adminEmail := "admin@charityrun.local"
	adminPassword := "admin12345"

	var existingAdmin models.User
	if err := db.Where("email = ?", adminEmail).First(&existingAdmin).Error; err == nil {
		log.Println("ℹ️  Default admin user already exists")
		return nil
	}

	hashedPassword, err := utils.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:     "Committee Admin",
		Email:    adminEmail,
		Password: hashedPassword,
		Role:     "admin",
	}

	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Default admin user created: %s", adminEmail)
	return nil
}
