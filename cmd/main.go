package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/oumiche/impact-auto-plus-sub004/internal/access"
	"github.com/oumiche/impact-auto-plus-sub004/internal/handler"
	"github.com/oumiche/impact-auto-plus-sub004/internal/middleware"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/config"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/database"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/jwtutil"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting fleet service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Upload directory for attachments
	handler.InitUploads(cfg.Upload)

	// Tenant resolver backed by the membership table
	resolver := access.NewResolver(access.NewGormMembershipStore(database.GetDB()))

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login_check", handler.Login)
	auth.POST("/register", handler.Register)
	// historical client path for the same login exchange
	e.POST("/api/login_check", handler.Login)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Session and account management
	apiAuth := api.Group("/auth")
	apiAuth.GET("/me", handler.Me)
	apiAuth.POST("/change-password", handler.ChangePassword)

	// Tenant listing and selection - no tenant context needed
	tenants := api.Group("/tenants")
	tenants.GET("", handler.ListUserTenants)
	tenants.GET("/:id", handler.GetTenant)

	tenantAuth := api.Group("/tenant-auth")
	tenantAuth.POST("/switch", handler.SwitchTenant)
	tenantAuth.POST("/primary", handler.SetPrimaryTenant)

	// Tenant-scoped resources - every route below resolves an authorization
	// context from the tenant hint before the handler runs
	scoped := api.Group("", middleware.TenantContext(resolver))

	garages := scoped.Group("/garages/admin")
	garages.GET("", handler.ListGarages)
	garages.POST("", handler.CreateGarage)
	garages.GET("/:id", handler.GetGarage)
	garages.PUT("/:id", handler.UpdateGarage)
	garages.DELETE("/:id", handler.DeleteGarage)

	vehicles := scoped.Group("/vehicles/admin")
	vehicles.GET("", handler.ListVehicles)
	vehicles.POST("", handler.CreateVehicle)
	vehicles.GET("/:id", handler.GetVehicle)
	vehicles.PUT("/:id", handler.UpdateVehicle)
	vehicles.DELETE("/:id", handler.DeleteVehicle)

	vehicleCategories := scoped.Group("/vehicle-categories/admin")
	vehicleCategories.GET("", handler.ListVehicleCategories)
	vehicleCategories.POST("", handler.CreateVehicleCategory)
	vehicleCategories.GET("/:id", handler.GetVehicleCategory)
	vehicleCategories.PUT("/:id", handler.UpdateVehicleCategory)
	vehicleCategories.DELETE("/:id", handler.DeleteVehicleCategory)

	vehicleColors := scoped.Group("/vehicle-colors/admin")
	vehicleColors.GET("", handler.ListVehicleColors)
	vehicleColors.POST("", handler.CreateVehicleColor)
	vehicleColors.GET("/:id", handler.GetVehicleColor)
	vehicleColors.PUT("/:id", handler.UpdateVehicleColor)
	vehicleColors.DELETE("/:id", handler.DeleteVehicleColor)

	interventionTypes := scoped.Group("/intervention-types/admin")
	interventionTypes.GET("", handler.ListInterventionTypes)
	interventionTypes.POST("", handler.CreateInterventionType)
	interventionTypes.GET("/:id", handler.GetInterventionType)
	interventionTypes.PUT("/:id", handler.UpdateInterventionType)
	interventionTypes.DELETE("/:id", handler.DeleteInterventionType)

	suppliers := scoped.Group("/suppliers/admin")
	suppliers.GET("", handler.ListSuppliers)
	suppliers.POST("", handler.CreateSupplier)
	suppliers.GET("/:id", handler.GetSupplier)
	suppliers.PUT("/:id", handler.UpdateSupplier)
	suppliers.DELETE("/:id", handler.DeleteSupplier)

	supplyCategories := scoped.Group("/supply-categories/admin")
	supplyCategories.GET("", handler.ListSupplyCategories)
	supplyCategories.POST("", handler.CreateSupplyCategory)
	supplyCategories.GET("/:id", handler.GetSupplyCategory)
	supplyCategories.PUT("/:id", handler.UpdateSupplyCategory)
	supplyCategories.DELETE("/:id", handler.DeleteSupplyCategory)

	supplies := scoped.Group("/supplies/admin")
	supplies.GET("", handler.ListSupplies)
	supplies.POST("", handler.CreateSupply)
	supplies.GET("/:id", handler.GetSupply)
	supplies.PUT("/:id", handler.UpdateSupply)
	supplies.DELETE("/:id", handler.DeleteSupply)

	collaborators := scoped.Group("/collaborators/admin")
	collaborators.GET("", handler.ListCollaborators)
	collaborators.POST("", handler.CreateCollaborator)
	collaborators.GET("/:id", handler.GetCollaborator)
	collaborators.PUT("/:id", handler.UpdateCollaborator)
	collaborators.DELETE("/:id", handler.DeleteCollaborator)

	assignments := scoped.Group("/vehicle-assignments/admin")
	assignments.GET("", handler.ListAssignments)
	assignments.POST("", handler.CreateAssignment)
	assignments.GET("/:id", handler.GetAssignment)
	assignments.PUT("/:id/return", handler.ReturnAssignment)
	assignments.POST("/:id/return", handler.ReturnAssignment)
	assignments.DELETE("/:id", handler.DeleteAssignment)

	receptions := scoped.Group("/reception-reports/admin")
	receptions.GET("", handler.ListReceptionReports)
	receptions.POST("", handler.CreateReceptionReport)
	receptions.GET("/:id", handler.GetReceptionReport)
	receptions.PUT("/:id", handler.UpdateReceptionReport)
	receptions.DELETE("/:id", handler.DeleteReceptionReport)

	alerts := scoped.Group("/alerts/admin")
	alerts.GET("", handler.ListAlerts)
	alerts.POST("", handler.CreateAlert)
	alerts.GET("/:id", handler.GetAlert)
	alerts.PUT("/:id/read", handler.MarkAlertRead)
	alerts.PUT("/read-all", handler.MarkAllAlertsRead)
	alerts.DELETE("/:id", handler.DeleteAlert)

	parameters := scoped.Group("/system-parameters/admin")
	parameters.GET("", handler.ListSystemParameters)
	parameters.POST("", handler.CreateSystemParameter)
	parameters.GET("/key/:key", handler.GetSystemParameter)
	parameters.GET("/:id", handler.GetSystemParameterByID)
	parameters.PUT("/:id", handler.UpdateSystemParameter)
	parameters.DELETE("/:id", handler.DeleteSystemParameter)

	reports := scoped.Group("/reports")
	reports.GET("/dashboard", handler.Dashboard)
	reports.GET("/admin", handler.ListReports)
	reports.POST("/admin", handler.CreateReport)
	reports.GET("/admin/:id", handler.GetReport)
	reports.PUT("/admin/:id", handler.UpdateReport)
	reports.DELETE("/admin/:id", handler.DeleteReport)
	reports.GET("/admin/:id/data", handler.GetReportData)

	attachments := scoped.Group("/attachments/admin")
	attachments.GET("", handler.ListAttachments)
	attachments.POST("", handler.UploadAttachment)
	attachments.DELETE("/:id", handler.DeleteAttachment)

	// Stored files are served outside /api but still require the JWT and a
	// resolved tenant
	uploads := e.Group("/uploads", middleware.AuthMiddleware, middleware.TenantContext(resolver))
	uploads.GET("/:entityType/:entityId/:fileName", handler.ServeAttachment)

	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
