package notifier

import (
	"context"
	"errors"

	companyModel "cargo-portal/models/company"
	"cargo-portal/types"

	"gorm.io/gorm"
)

// GormCompanySource resolves company contact emails from the database.
type GormCompanySource struct {
	DB *gorm.DB
}

func (s *GormCompanySource) ContactEmail(ctx context.Context, companyID uint) (string, error) {
	var c companyModel.Company
	err := s.DB.WithContext(ctx).First(&c, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", types.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.ContactEmail, nil
}
