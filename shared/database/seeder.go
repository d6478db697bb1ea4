package database

import (
	"log"

	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database/models"
	utils "quoteflow-backend/shared/utils/auth"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	unitsCreated, err := seedSalesUnits()
	if err != nil {
		return err
	}

	if unitsCreated > 0 {
		log.Printf("✅ Database seeding completed (%d sales units created)", unitsCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	// Create super admin from config
	if err := CreateSuperAdminFromConfig(); err != nil {
		return err
	}

	return nil
}

// seedSalesUnits creates default sales units
func seedSalesUnits() (int, error) {
	units := []models.SalesUnit{
		{Name: "Worldwide", Slug: "worldwide", IsDefault: true},
		{Name: "EMEA", Slug: "emea"},
		{Name: "Americas", Slug: "americas"},
		{Name: "APAC", Slug: "apac"},
	}

	created := 0
	for _, unit := range units {
		var existing models.SalesUnit
		err := DB.Where("slug = ?", unit.Slug).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := DB.Create(&unit).Error; err != nil {
				return created, err
			}
			created++
		} else if err != nil {
			return created, err
		}
	}

	return created, nil
}

// CreateSuperAdminFromConfig ensures the super admin user exists
func CreateSuperAdminFromConfig() error {
	cfg := config.GetConfig()

	var existing models.User
	err := DB.Where("email = ?", cfg.SuperAdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hashed, err := utils.HashPassword(cfg.SuperAdminPassword)
	if err != nil {
		return err
	}

	var defaultUnit models.SalesUnit
	if err := DB.Where("is_default = ?", true).First(&defaultUnit).Error; err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	admin := models.User{
		Email:     cfg.SuperAdminEmail,
		Password:  hashed,
		FirstName: "Super",
		LastName:  "Admin",
		Status:    models.UserStatusActive,
		Role:      "admin",
	}
	if defaultUnit.ID != uuid.Nil {
		admin.SalesUnitID = &defaultUnit.ID
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Super admin created: %s", cfg.SuperAdminEmail)
	return nil
}
