package shipment

import (
	"errors"
	"sort"
	"strings"

	"cargo-portal/logger"
	"cargo-portal/middleware"
	companyModel "cargo-portal/models/company"
	shipmentModel "cargo-portal/models/shipment"
	"cargo-portal/services/sheetbridge"
	"cargo-portal/services/shipment_event"
	"cargo-portal/services/shipmentstore"
	"cargo-portal/types"
	shipmentTypes "cargo-portal/types/shipment"
	"cargo-portal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ShipmentController handles shipment-related HTTP requests. All mutations
// go through the store adapter; the controller never writes rows itself.
type ShipmentController struct {
	DB       *gorm.DB
	Store    shipmentstore.Store
	Importer *sheetbridge.Importer
	Logger   *logger.AsyncLogger
}

// NewShipmentController creates a new shipment controller
func NewShipmentController(db *gorm.DB, store shipmentstore.Store, asyncLogger *logger.AsyncLogger) *ShipmentController {
	return &ShipmentController{
		DB:       db,
		Store:    store,
		Importer: sheetbridge.NewImporter(store),
		Logger:   asyncLogger,
	}
}

// Create registers a new shipment.
func (sc *ShipmentController) Create(c *fiber.Ctx) error {
	var draft shipmentModel.Draft
	if err := c.BodyParser(&draft); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	id := middleware.IdentityFromCtx(c)

	if draft.CompanyID != nil {
		if err := sc.checkAssignableCompany(*draft.CompanyID); err != nil {
			return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
				Status:  types.HTTPStatus(err),
				Message: types.UserMessage(err),
			})
		}
	}

	created, err := sc.Store.Create(c.Context(), id, draft)
	if err != nil {
		return sc.mutationError(c, "Failed to create shipment", err)
	}

	logger.Success("Shipment created: " + created.ID)
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Shipment created successfully",
		Data:    created,
	})
}

// Update applies a field patch to a shipment.
func (sc *ShipmentController) Update(c *fiber.Ctx) error {
	var patch shipmentModel.Patch
	if err := c.BodyParser(&patch); err != nil {
		logger.Error("Failed to parse request body", err)
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	id := middleware.IdentityFromCtx(c)
	updated, err := sc.Store.Update(c.Context(), id, c.Params("id"), patch)
	if err != nil {
		return sc.mutationError(c, "Failed to update shipment", err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Shipment updated successfully",
		Data:    updated,
	})
}

// ChangeStatus transitions a shipment's lifecycle state.
func (sc *ShipmentController) ChangeStatus(c *fiber.Ctx) error {
	var req shipmentTypes.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	status := shipmentModel.Status(strings.ToLower(req.Status))
	patch := shipmentModel.Patch{Status: &status}

	id := middleware.IdentityFromCtx(c)
	updated, err := sc.Store.Update(c.Context(), id, c.Params("id"), patch)
	if err != nil {
		return sc.mutationError(c, "Failed to change status", err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Status updated successfully",
		Data:    updated,
	})
}

// AssignCompany attaches a shipment to a company, or detaches it when
// company_id is null. Visibility for all subscribed clients follows the
// commit atomically.
func (sc *ShipmentController) AssignCompany(c *fiber.Ctx) error {
	var req shipmentTypes.AssignCompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	patch := shipmentModel.Patch{}
	if req.CompanyID == nil {
		patch.ClearCompany = true
	} else {
		if err := sc.checkAssignableCompany(*req.CompanyID); err != nil {
			return c.Status(types.HTTPStatus(err)).JSON(types.ApiResponse{
				Status:  types.HTTPStatus(err),
				Message: types.UserMessage(err),
			})
		}
		patch.CompanyID = req.CompanyID
	}

	id := middleware.IdentityFromCtx(c)
	updated, err := sc.Store.Update(c.Context(), id, c.Params("id"), patch)
	if err != nil {
		return sc.mutationError(c, "Failed to assign company", err)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Company assignment updated",
		Data:    updated,
	})
}

// Show returns one shipment the caller is allowed to see.
func (sc *ShipmentController) Show(c *fiber.Ctx) error {
	id := middleware.IdentityFromCtx(c)
	record, err := sc.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sc.mutationError(c, "Failed to load shipment", err)
	}

	// Scope check: outside the caller's visibility a record simply does
	// not exist.
	if !id.IsAdmin() {
		visible := id.CompanyID != nil && record.CompanyID != nil && *record.CompanyID == *id.CompanyID
		if !visible {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: types.UserMessage(types.ErrNotFound),
			})
		}
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    record,
	})
}

// Index returns the caller-scoped shipment list with the user-driven view
// filters applied. The filters are presentation concerns layered on top of
// the snapshot; the underlying ordering stays created_at desc.
func (sc *ShipmentController) Index(c *fiber.Ctx) error {
	var query shipmentTypes.ListQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid query parameters",
		})
	}

	id := middleware.IdentityFromCtx(c)
	records, err := sc.Store.List(c.Context(), id)
	if err != nil {
		return sc.mutationError(c, "Failed to list shipments", err)
	}

	filtered, err := applyViewFilters(records, query)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    filtered,
	})
}

// History returns the status transition trail for a shipment.
func (sc *ShipmentController) History(c *fiber.Ctx) error {
	id := middleware.IdentityFromCtx(c)
	record, err := sc.Store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return sc.mutationError(c, "Failed to load shipment", err)
	}
	if !id.IsAdmin() {
		visible := id.CompanyID != nil && record.CompanyID != nil && *record.CompanyID == *id.CompanyID
		if !visible {
			return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
				Status:  fiber.StatusNotFound,
				Message: types.UserMessage(types.ErrNotFound),
			})
		}
	}

	events, err := shipment_event.History(sc.DB, record.ID)
	if err != nil {
		logger.Error("Failed to load status history", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Database error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "OK",
		Data:    events,
	})
}

// ImportCSV ingests a spreadsheet export. Every row is replayed through the
// policy-gated store adapter.
func (sc *ShipmentController) ImportCSV(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "CSV file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded CSV", err)
		return c.Status(fiber.StatusInternalServerError).JSON(types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	defer file.Close()

	rows, err := sheetbridge.ParseCSV(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	id := middleware.IdentityFromCtx(c)
	result := sc.Importer.Import(c.Context(), id, rows)

	logger.Success("Spreadsheet import finished")
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Import finished",
		Data:    result,
	})
}

func (sc *ShipmentController) mutationError(c *fiber.Ctx, logMsg string, err error) error {
	logger.Error(logMsg, err)
	status := types.HTTPStatus(err)
	message := types.UserMessage(err)

	var conflict *types.ConflictError
	if errors.As(err, &conflict) {
		message = message + " (" + strings.Join(conflict.Fields, ", ") + ")"
	}

	return c.Status(status).JSON(types.ApiResponse{
		Status:  status,
		Message: message,
	})
}

func (sc *ShipmentController) checkAssignableCompany(companyID uint) error {
	var comp companyModel.Company
	err := sc.DB.First(&comp, companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !comp.IsActive {
		return types.NewConflictError("company_id")
	}
	return nil
}

// applyViewFilters applies search, date range and explicit sort to a copy
// of the snapshot.
func applyViewFilters(records []shipmentModel.Shipment, query shipmentTypes.ListQuery) ([]shipmentModel.Shipment, error) {
	out := records

	if query.Search != "" {
		needle := strings.ToLower(query.Search)
		filtered := make([]shipmentModel.Shipment, 0, len(out))
		for _, r := range out {
			haystack := strings.ToLower(strings.Join([]string{
				r.ClientName, r.OperatorName, r.Origin, r.Destination,
				r.BLNumber, r.Carrier, r.BookingRef,
			}, " "))
			if strings.Contains(haystack, needle) {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}

	if query.DepartureFrom != "" || query.DepartureTo != "" {
		start, end, err := utils.ParseDateRange(query.DepartureFrom, query.DepartureTo)
		if err != nil {
			return nil, err
		}
		filtered := make([]shipmentModel.Shipment, 0, len(out))
		for _, r := range out {
			if r.PlannedDeparture == nil {
				continue
			}
			if start != nil && r.PlannedDeparture.Before(*start) {
				continue
			}
			if end != nil && r.PlannedDeparture.After(*end) {
				continue
			}
			filtered = append(filtered, r)
		}
		out = filtered
	}

	switch query.SortKey {
	case "", "created_at":
		// adapter ordering, leave as is
	case "client_name":
		sorted := make([]shipmentModel.Shipment, len(out))
		copy(sorted, out)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ClientName < sorted[j].ClientName
		})
		out = sorted
	case "planned_departure":
		sorted := make([]shipmentModel.Shipment, len(out))
		copy(sorted, out)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].PlannedDeparture, sorted[j].PlannedDeparture
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.Before(*b)
			}
		})
		out = sorted
	default:
		return nil, errors.New("unknown sort_key: " + query.SortKey)
	}

	return out, nil
}
