package routes

import (
	"os"

	authController "cargo-portal/controllers/auth"
	companyController "cargo-portal/controllers/company"
	documentController "cargo-portal/controllers/document"
	shipmentController "cargo-portal/controllers/shipment"
	streamController "cargo-portal/controllers/stream"
	"cargo-portal/httpServices/mailer"
	"cargo-portal/logger"
	"cargo-portal/middleware"
	"cargo-portal/services/identity"
	"cargo-portal/services/notifier"
	"cargo-portal/services/shipmentstore"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	resolver := identity.NewResolver(&identity.GormUserSource{DB: db})
	store := shipmentstore.NewGormStore(db)

	// Notifications hang off the store's post-commit hook; a failed send
	// can never fail the mutation that triggered it.
	mailClient := mailer.NewClient(os.Getenv("MAIL_RELAY_URL"))
	notifier.New(mailClient, &notifier.GormCompanySource{DB: db}).Attach(store)

	asyncLogger := logger.NewAsyncLogger(db)
	auth := authController.NewAuthController(db, resolver, asyncLogger)
	shipments := shipmentController.NewShipmentController(db, store, asyncLogger)
	companies := companyController.NewCompanyController(db, asyncLogger)
	documents := documentController.NewDocumentController(db, store, asyncLogger)
	streams := streamController.NewStreamController(store, resolver)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	app.Use(middleware.RequestLogger(asyncLogger))

	/*=============================================================================
	| Public Routes
	===============================================================================*/
	api := app.Group("/api")
	api.Post("/login", auth.Login)
	api.Post("/register", auth.Register)

	/*=============================================================================
	| Session Routes
	===============================================================================*/
	session := api.Group("/auth").Use(middleware.RequireSession(resolver))
	session.Post("/logout", auth.LogOut)
	session.Get("/profile", auth.Profile)
	session.Post("/refresh", auth.Refresh)

	/*=============================================================================
	| Shipment Routes
	===============================================================================*/
	shipmentGroup := api.Group("/shipments").Use(middleware.RequireSession(resolver))

	shipmentGroup.Get("/", shipments.Index)
	shipmentGroup.Get("/:id", shipments.Show)
	shipmentGroup.Get("/:id/history", shipments.History)
	shipmentGroup.Patch("/:id", shipments.Update)

	shipmentGroup.Post("/", middleware.RequireAdmin(), shipments.Create)
	shipmentGroup.Post("/import", middleware.RequireAdmin(), shipments.ImportCSV)
	shipmentGroup.Put("/:id/status", middleware.RequireAdmin(), shipments.ChangeStatus)
	shipmentGroup.Put("/:id/company", middleware.RequireAdmin(), shipments.AssignCompany)

	/*=============================================================================
	| Document Routes
	===============================================================================*/
	documentGroup := api.Group("/shipments/:id/documents").Use(middleware.RequireSession(resolver))
	documentGroup.Get("/", documents.Index)
	documentGroup.Post("/", documents.Attach)

	api.Post("/documents/parse", middleware.RequireSession(resolver), middleware.RequireAdmin(), documents.Parse)

	/*=============================================================================
	| Company Routes
	===============================================================================*/
	companyGroup := api.Group("/companies").Use(middleware.RequireSession(resolver), middleware.RequireAdmin())
	companyGroup.Get("/", companies.Index)
	companyGroup.Get("/assignable", companies.Assignable)
	companyGroup.Post("/", companies.Store)
	companyGroup.Put("/:id/deactivate", companies.Deactivate)

	/*=============================================================================
	| Live Stream
	===============================================================================*/
	ws := app.Group("/ws").Use(middleware.RequireSession(resolver), streams.Upgrade)
	ws.Get("/shipments", streams.Shipments())
}
