package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/database"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

// VehicleRequest defines the structure for vehicle creation/update requests
type VehicleRequest struct {
	PlateNumber string `json:"plate_number"`
	VIN         string `json:"vin"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Mileage     int    `json:"mileage"`
	Status      string `json:"status"`
	CategoryID  *uint  `json:"category_id,omitempty"`
	ColorID     *uint  `json:"color_id,omitempty"`
	GarageID    *uint  `json:"garage_id,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// CreateVehicle creates a new vehicle attached to the resolved tenant
func CreateVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicles", "create")

	ac, err := requireCapability(c, model.ResourceVehicles, model.ActionCreate)
	if err != nil {
		return err
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}
	if req.PlateNumber == "" {
		return response.BadRequest(c, "plate_number is required")
	}

	// Plate number is unique per tenant
	var count int64
	database.GetDB().Model(&model.Vehicle{}).
		Where("plate_number = ? AND tenant_id = ?", req.PlateNumber, ac.TenantID()).
		Count(&count)
	if count > 0 {
		return response.Conflict(c, "vehicle with this plate number already exists for this tenant")
	}

	// A referenced garage must belong to the same tenant
	if req.GarageID != nil {
		var garage model.Garage
		if result := database.GetDB().Where("id = ? AND tenant_id = ?", *req.GarageID, ac.TenantID()).First(&garage); result.Error != nil {
			return response.BadRequest(c, "garage not found for this tenant")
		}
	}

	status := req.Status
	if status == "" {
		status = model.VehicleStatusAvailable
	}

	vehicle := model.Vehicle{
		TenantID:    ac.TenantID(),
		PlateNumber: req.PlateNumber,
		VIN:         req.VIN,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Mileage:     req.Mileage,
		Status:      status,
		CategoryID:  req.CategoryID,
		ColorID:     req.ColorID,
		GarageID:    req.GarageID,
		IsActive:    req.IsActive,
		CreatedBy:   ac.UserID,
		UpdatedBy:   ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&vehicle); result.Error != nil {
		log.Error("Failed to create vehicle", zap.Error(result.Error))
		return response.Internal(c)
	}

	go updateVehicleCount(ac.TenantID())

	log.Info("Vehicle created",
		zap.Uint("id", vehicle.ID),
		zap.String("plate_number", vehicle.PlateNumber),
		zap.Uint("tenant_id", vehicle.TenantID))
	return response.Created(c, vehicle)
}

// GetVehicle retrieves a vehicle by ID for the resolved tenant
func GetVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicles", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid vehicle ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var vehicle model.Vehicle
	result := database.GetDB().
		Preload("Category").Preload("Color").Preload("Garage").
		Where("id = ? AND tenant_id = ?", id, ac.TenantID()).
		First(&vehicle)
	if result.Error != nil {
		log.Warn("Vehicle not found", zap.Uint("vehicle_id", id), zap.Uint("tenant_id", ac.TenantID()))
		return response.NotFound(c, "vehicle not found")
	}

	return response.OK(c, vehicle)
}

// ListVehicles retrieves vehicles for the resolved tenant with filters
func ListVehicles(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicles", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.Vehicle{}).Where("tenant_id = ?", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("plate_number ILIKE ? OR brand ILIKE ? OR model ILIKE ? OR vin ILIKE ?",
			pattern, pattern, pattern, pattern)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if garage := c.QueryParam("garage"); garage != "" {
		query = query.Where("garage_id = ?", garage)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var vehicles []model.Vehicle
	result := query.
		Preload("Category").Preload("Color").Preload("Garage").
		Order("created_at desc").Limit(limit).Offset(offset).
		Find(&vehicles)
	if result.Error != nil {
		log.Error("Failed to retrieve vehicles", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, vehicles, response.NewPagination(page, limit, total))
}

// UpdateVehicle updates an existing vehicle after validating tenant ownership
func UpdateVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicles", "update")

	ac, err := requireCapability(c, model.ResourceVehicles, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid vehicle ID")
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}

	var vehicle model.Vehicle
	if result := database.GetDB().Where("id = ?", id).First(&vehicle); result.Error != nil {
		return response.NotFound(c, "vehicle not found")
	}

	if !ac.OwnsEntity(&vehicle) {
		log.Warn("Cross-tenant vehicle update blocked",
			zap.Uint("vehicle_id", id),
			zap.Uint("vehicle_tenant", vehicle.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	if req.PlateNumber != "" && req.PlateNumber != vehicle.PlateNumber {
		var count int64
		database.GetDB().Model(&model.Vehicle{}).
			Where("plate_number = ? AND id != ? AND tenant_id = ?", req.PlateNumber, id, ac.TenantID()).
			Count(&count)
		if count > 0 {
			return response.Conflict(c, "vehicle with this plate number already exists for this tenant")
		}
		vehicle.PlateNumber = req.PlateNumber
	}

	vehicle.VIN = req.VIN
	vehicle.Brand = req.Brand
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.Mileage = req.Mileage
	if req.Status != "" {
		vehicle.Status = req.Status
	}
	vehicle.CategoryID = req.CategoryID
	vehicle.ColorID = req.ColorID
	vehicle.GarageID = req.GarageID
	vehicle.IsActive = req.IsActive
	vehicle.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&vehicle); result.Error != nil {
		log.Error("Failed to update vehicle", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Vehicle updated", zap.Uint("id", vehicle.ID), zap.Uint("tenant_id", vehicle.TenantID))
	return response.OK(c, vehicle)
}

// DeleteVehicle soft-deletes a vehicle after validating tenant ownership
func DeleteVehicle(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicles", "delete")

	ac, err := requireCapability(c, model.ResourceVehicles, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid vehicle ID")
	}

	var vehicle model.Vehicle
	if result := database.GetDB().Where("id = ?", id).First(&vehicle); result.Error != nil {
		return response.NotFound(c, "vehicle not found")
	}

	if !ac.OwnsEntity(&vehicle) {
		log.Warn("Cross-tenant vehicle delete blocked",
			zap.Uint("vehicle_id", id),
			zap.Uint("vehicle_tenant", vehicle.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&vehicle); result.Error != nil {
		log.Error("Failed to delete vehicle", zap.Error(result.Error))
		return response.Internal(c)
	}

	go updateVehicleCount(ac.TenantID())

	log.Info("Vehicle deleted", zap.Uint("id", id), zap.Uint("tenant_id", vehicle.TenantID))
	return response.Message(c, http.StatusOK, "vehicle deleted successfully")
}

// updateVehicleCount refreshes the per-tenant vehicle gauge
func updateVehicleCount(tenantID uint) {
	var tenantName string
	database.GetDB().Table("tenants").
		Select("name").
		Where("id = ?", tenantID).
		Row().Scan(&tenantName)

	var count int64
	database.GetDB().Model(&model.Vehicle{}).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Count(&count)

	prometheus.UpdateVehiclesPerTenant(tenantID, tenantName, int(count))
}
