package seeders

import (
	"os"

	"cargo-portal/constants"
	"cargo-portal/logger"
	userModel "cargo-portal/models/user"
	"cargo-portal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SeedAdminUser creates the initial admin account when no admin exists yet.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD; without them the
// seeder is a no-op so a fresh database can still boot.
func SeedAdminUser(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warning("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seeder")
		return nil
	}

	var count int64
	if err := db.Model(&userModel.User{}).Where("role = ?", constants.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := userModel.User{
		Uuid:        uuid.NewString(),
		Email:       email,
		DisplayName: "Administrator",
		Role:        constants.RoleAdmin,
		Password:    hashed,
		IsActive:    true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Success("Seeded initial admin user: " + email)
	return nil
}
