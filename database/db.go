package database

import (
	"fmt"
	"os"

	"cargo-portal/logger"
	companyModel "cargo-portal/models/company"
	documentModel "cargo-portal/models/document"
	logModel "cargo-portal/models/log"
	shipmentModel "cargo-portal/models/shipment"
	userModel "cargo-portal/models/user"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection with auto migration and indexing
func InitDB() (*gorm.DB, error) {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Error("Error loading .env file", err)
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	database := os.Getenv("DB_DATABASE")
	user := os.Getenv("DB_USERNAME")
	password := os.Getenv("DB_PASSWORD")
	sslmode := os.Getenv("DB_SSLMODE")

	if sslmode == "" {
		sslmode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, database, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Error("Failed to connect to the database", err)
		return nil, err
	}
	logger.Success("Successfully connected to the database")

	if err := autoMigrate(); err != nil {
		logger.Error("Failed to run migrations", err)
		return nil, err
	}
	logger.Success("All migrations completed successfully")

	if err := createIndexes(); err != nil {
		logger.Error("Failed to create indexes", err)
		return nil, err
	}
	logger.Success("All indexes created successfully")

	return DB, nil
}

// autoMigrate runs auto migration for all models in dependency order.
func autoMigrate() error {
	// Stage 1: models without foreign keys
	stage1Models := []interface{}{
		&companyModel.Company{},
	}

	for _, model := range stage1Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 2: models depending on Stage 1
	stage2Models := []interface{}{
		&userModel.User{},
		&shipmentModel.Shipment{},
	}

	for _, model := range stage2Models {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	// Stage 3: remaining models
	remainingModels := []interface{}{
		&shipmentModel.StatusEvent{},
		&documentModel.Document{},
		&logModel.Log{},
	}

	for _, model := range remainingModels {
		if err := DB.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

// createIndexes creates additional indexes for better performance
func createIndexes() error {
	// User indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_uuid ON users(uuid)").Error; err != nil {
		return fmt.Errorf("failed to create user uuid index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)").Error; err != nil {
		return fmt.Errorf("failed to create user email index: %w", err)
	}

	// Company indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_companies_code ON companies(code)").Error; err != nil {
		return fmt.Errorf("failed to create company code index: %w", err)
	}

	// Shipment indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_shipments_company_id ON shipments(company_id)").Error; err != nil {
		return fmt.Errorf("failed to create shipment company_id index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_shipments_status ON shipments(status)").Error; err != nil {
		return fmt.Errorf("failed to create shipment status index: %w", err)
	}
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_shipments_created_at ON shipments(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create shipment created_at index: %w", err)
	}

	// Status event indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_shipment_status_events_shipment_id ON shipment_status_events(shipment_id)").Error; err != nil {
		return fmt.Errorf("failed to create status event shipment_id index: %w", err)
	}

	// Log indexes
	if err := DB.Exec("CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)").Error; err != nil {
		return fmt.Errorf("failed to create log created_at index: %w", err)
	}

	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
