package document

import (
	"io"

	"cargo-portal/logger"
	"cargo-portal/middleware"
	documentModel "cargo-portal/models/document"
	"cargo-portal/services/docparse"
	"cargo-portal/services/policy"
	"cargo-portal/services/shipmentstore"
	"cargo-portal/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DocumentController manages document metadata attached to shipments.
type DocumentController struct {
	DB     *gorm.DB
	Store  shipmentstore.Store
	Logger *logger.AsyncLogger
}

// NewDocumentController creates a new document controller
func NewDocumentController(db *gorm.DB, store shipmentstore.Store, asyncLogger *logger.AsyncLogger) *DocumentController {
	return &DocumentController{
		DB:     db,
		Store:  store,
		Logger: asyncLogger,
	}
}

// attachRequest is the metadata payload for attaching a document.
type attachRequest struct {
	FileName string `json:"file_name"`
	Type     string `json:"type"`
	URL      string `json:"url"`
}

// Attach records document metadata on a shipment. Edit rights on the
// shipment gate the attachment.
func (dc *DocumentController) Attach(c *fiber.Ctx) error {
	var req attachRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.FileName == "" || req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "file_name and url are required",
		})
	}
	if req.Type == "" {
		req.Type = documentModel.TypeOther
	}

	id := middleware.IdentityFromCtx(c)
	record, err := dc.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
			Status:  types.HTTPStatus(err),
			Message: types.UserMessage(err),
		})
	}
	if !policy.CanEditShipment(id, record) {
		return c.Status(fiber.StatusForbidden).JSON(types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: types.UserMessage(types.ErrForbidden),
		})
	}

	doc := documentModel.Document{
		ShipmentID: record.ID,
		FileName:   req.FileName,
		Type:       req.Type,
		UploadedBy: id.UID,
		URL:        req.URL,
		IsActive:   true,
	}
	if err := dc.DB.Create(&doc).Error; err != nil {
		logger.Error("Failed to attach document", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to attach document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Document attached",
		Data:    doc,
	})
}

// Index lists active documents for a shipment the caller can see.
func (dc *DocumentController) Index(c *fiber.Ctx) error {
	id := middleware.IdentityFromCtx(c)
	record, err := dc.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
			Status:  types.HTTPStatus(err),
			Message: types.UserMessage(err),
		})
	}
	if !policy.CanViewShipment(id, record) {
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: types.UserMessage(types.ErrNotFound),
		})
	}

	var docs []documentModel.Document
	err = dc.DB.Where("shipment_id = ? AND is_active = ?", record.ID, true).
		Order("created_at desc").
		Find(&docs).Error
	if err != nil {
		logger.Error("Failed to list documents", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    docs,
	})
}

// Parse runs bill-of-lading extraction on an uploaded document and returns
// the suggested shipment fields. Nothing is persisted here.
func (dc *DocumentController) Parse(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Document file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded document", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	docBytes, err := io.ReadAll(file)
	if err != nil {
		logger.Error("Failed to read uploaded document", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	extracted, err := docparse.ExtractFromDocument(c.Context(), docBytes, mimeType)
	if err != nil {
		logger.Error("Document extraction failed", err)
		return c.Status(fiber.StatusBadGateway).JSON(types.ApiResponse{
			Status:  fiber.StatusBadGateway,
			Message: "Document extraction failed",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    extracted,
	})
}
