package auth

import (
	"errors"
	"strings"
	"time"

	"cargo-portal/constants"
	"cargo-portal/logger"
	companyModel "cargo-portal/models/company"
	userModel "cargo-portal/models/user"
	"cargo-portal/services/identity"
	"cargo-portal/services/policy"
	"cargo-portal/types"
	authTypes "cargo-portal/types/auth"
	"cargo-portal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthController handles registration, login and session lifecycle.
type AuthController struct {
	DB       *gorm.DB
	Resolver *identity.Resolver
	Logger   *logger.AsyncLogger
}

// NewAuthController creates a new auth controller
func NewAuthController(db *gorm.DB, resolver *identity.Resolver, asyncLogger *logger.AsyncLogger) *AuthController {
	return &AuthController{
		DB:       db,
		Resolver: resolver,
		Logger:   asyncLogger,
	}
}

// Register creates a company user. The first user registering a new company
// code creates the company as well. Admin accounts are seeded, never
// self-registered; role is fixed here at creation.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req authTypes.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.CompanyCode = strings.TrimSpace(strings.ToLower(req.CompanyCode))
	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.CompanyCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "email, password, display_name and company_code are required",
		})
	}

	var existing userModel.User
	err := ac.DB.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return c.Status(fiber.StatusConflict).JSON(types.ApiResponse{
			Status:  fiber.StatusConflict,
			Message: "An account with this email already exists",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Database error while checking existing user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	var created userModel.User

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		var comp companyModel.Company
		err := tx.Where("code = ?", req.CompanyCode).First(&comp).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// First user of a new company code creates the company.
			comp = companyModel.Company{
				Name:         req.CompanyName,
				Code:         req.CompanyCode,
				ContactEmail: req.ContactEmail,
				IsActive:     true,
			}
			if comp.Name == "" {
				comp.Name = req.CompanyCode
			}
			if err := tx.Create(&comp).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		created = userModel.User{
			Uuid:        uuid.NewString(),
			Email:       req.Email,
			DisplayName: req.DisplayName,
			Role:        constants.RoleCompanyUser,
			Password:    hashed,
			CompanyID:   &comp.ID,
			IsActive:    true,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		logger.Error("Failed to register user", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to register user",
		})
	}

	logger.Success("Registered user " + created.Email)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Registration successful",
		Data:    created,
	})
}

// Login verifies the credentials and issues the session token.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	var u userModel.User
	err := ac.DB.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !utils.CheckPassword(u.Password, req.Password)) {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}
	if err != nil {
		logger.Error("Database error during login", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}
	if !u.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: types.UserMessage(types.ErrInactive),
		})
	}

	token, err := utils.SignSessionToken(u.Uuid)
	if err != nil {
		logger.Error("Failed to sign session token", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	// Warm the resolver snapshot for this session.
	id, err := ac.Resolver.Resolve(c.Context(), u.Uuid)
	if err != nil {
		return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
			Status:  types.HTTPStatus(err),
			Message: types.UserMessage(err),
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	logger.Success("User logged in: " + u.Email)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   token,
		Data:    id,
	})
}

// LogOut clears the session cookie and the resolver snapshot.
func (ac *AuthController) LogOut(c *fiber.Ctx) error {
	if id, ok := c.Locals("identity").(*identity.Identity); ok && id != nil {
		ac.Resolver.Forget(id.UID)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "session",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Logged out",
	})
}

// Profile returns the resolved identity for the current session, plus the
// shipment fields this role may edit so the frontend can enable the right
// inputs.
func (ac *AuthController) Profile(c *fiber.Ctx) error {
	id, _ := c.Locals("identity").(*identity.Identity)
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data: fiber.Map{
			"identity":       id,
			"mutable_fields": policy.MutableFields(id.Role),
		},
	})
}

// Refresh re-resolves the identity against the user record, surfacing
// admin-side deactivation or company reassignment mid-session.
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	id, _ := c.Locals("identity").(*identity.Identity)
	refreshed, err := ac.Resolver.Refresh(c.Context(), id)
	if err != nil {
		return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
			Status:  types.HTTPStatus(err),
			Message: types.UserMessage(err),
		})
	}
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    refreshed,
	})
}
