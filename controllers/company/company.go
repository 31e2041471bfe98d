package company

import (
	"errors"
	"strings"

	"cargo-portal/logger"
	companyModel "cargo-portal/models/company"
	"cargo-portal/types"
	companyTypes "cargo-portal/types/company"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CompanyController handles company administration.
type CompanyController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewCompanyController creates a new company controller
func NewCompanyController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *CompanyController {
	return &CompanyController{
		DB:     db,
		Logger: asyncLogger,
	}
}

// Index lists all companies, including deactivated ones.
func (cc *CompanyController) Index(c *fiber.Ctx) error {
	var companies []companyModel.Company
	if err := cc.DB.Order("name asc").Find(&companies).Error; err != nil {
		logger.Error("Failed to list companies", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    companies,
	})
}

// Assignable lists active companies only; deactivated companies are hidden
// from assignment without touching their existing shipments.
func (cc *CompanyController) Assignable(c *fiber.Ctx) error {
	var companies []companyModel.Company
	if err := cc.DB.Where("is_active = ?", true).Order("name asc").Find(&companies).Error; err != nil {
		logger.Error("Failed to list assignable companies", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    companies,
	})
}

// Store creates a company.
func (cc *CompanyController) Store(c *fiber.Ctx) error {
	var req companyTypes.CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	req.Code = strings.TrimSpace(strings.ToLower(req.Code))
	if req.Name == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "name and code are required",
		})
	}

	var existing companyModel.Company
	err := cc.DB.Where("code = ?", req.Code).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "A company with this code already exists",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Database error while checking company code", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	comp := companyModel.Company{
		Name:         req.Name,
		Code:         req.Code,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}
	if err := cc.DB.Create(&comp).Error; err != nil {
		logger.Error("Failed to create company", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create company",
		})
	}

	logger.Success("Company created: " + comp.Code)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Company created successfully",
		Data:    comp,
	})
}

// Deactivate hides a company from assignable lists. Nothing cascades: its
// users and shipments stay in place.
func (cc *CompanyController) Deactivate(c *fiber.Ctx) error {
	var comp companyModel.Company
	err := cc.DB.First(&comp, c.Params("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: types.UserMessage(types.ErrNotFound),
		})
	}
	if err != nil {
		logger.Error("Failed to load company", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	comp.IsActive = false
	if err := cc.DB.Save(&comp).Error; err != nil {
		logger.Error("Failed to deactivate company", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to deactivate company",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Company deactivated",
		Data:    comp,
	})
}
