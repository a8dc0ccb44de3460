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

// GarageRequest defines the structure for garage creation/update requests
type GarageRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Capacity int    `json:"capacity"`
	IsActive bool   `json:"is_active"`
}

// CreateGarage creates a new garage attached to the resolved tenant
func CreateGarage(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("garages", "create")

	ac, err := requireCapability(c, model.ResourceGarages, model.ActionCreate)
	if err != nil {
		return err
	}

	var req GarageRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}
	if req.Name == "" || req.Code == "" {
		return response.BadRequest(c, "name and code are required")
	}

	// Code is unique per tenant
	var count int64
	database.GetDB().Model(&model.Garage{}).
		Where("code = ? AND tenant_id = ?", req.Code, ac.TenantID()).
		Count(&count)
	if count > 0 {
		log.Warn("Garage code already exists for tenant",
			zap.String("code", req.Code),
			zap.Uint("tenant_id", ac.TenantID()))
		return response.Conflict(c, "garage with this code already exists for this tenant")
	}

	garage := model.Garage{
		TenantID:  ac.TenantID(),
		Name:      req.Name,
		Code:      req.Code,
		Address:   req.Address,
		City:      req.City,
		Phone:     req.Phone,
		Email:     req.Email,
		Capacity:  req.Capacity,
		IsActive:  req.IsActive,
		CreatedBy: ac.UserID,
		UpdatedBy: ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&garage); result.Error != nil {
		log.Error("Failed to create garage", zap.Error(result.Error))
		return response.Internal(c)
	}
	garage.Tenant = ac.Tenant()

	log.Info("Garage created",
		zap.Uint("id", garage.ID),
		zap.String("code", garage.Code),
		zap.Uint("tenant_id", garage.TenantID))
	return response.Created(c, garage)
}

// GetGarage retrieves a garage by ID for the resolved tenant
func GetGarage(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("garages", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid garage ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var garage model.Garage
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, ac.TenantID()).First(&garage)
	if result.Error != nil {
		log.Warn("Garage not found", zap.Uint("garage_id", id), zap.Uint("tenant_id", ac.TenantID()))
		return response.NotFound(c, "garage not found")
	}

	return response.OK(c, garage)
}

// ListGarages retrieves garages for the resolved tenant with pagination
func ListGarages(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("garages", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.Garage{}).Where("tenant_id = ?", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR city ILIKE ?", pattern, pattern, pattern)
	}
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var garages []model.Garage
	result := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&garages)
	if result.Error != nil {
		log.Error("Failed to retrieve garages", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, garages, response.NewPagination(page, limit, total))
}

// UpdateGarage updates an existing garage after validating tenant ownership
func UpdateGarage(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("garages", "update")

	ac, err := requireCapability(c, model.ResourceGarages, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid garage ID")
	}

	var req GarageRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}

	var garage model.Garage
	if result := database.GetDB().Where("id = ?", id).First(&garage); result.Error != nil {
		return response.NotFound(c, "garage not found")
	}

	if !ac.OwnsEntity(&garage) {
		log.Warn("Cross-tenant garage update blocked",
			zap.Uint("garage_id", id),
			zap.Uint("garage_tenant", garage.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	if req.Code != "" && req.Code != garage.Code {
		var count int64
		database.GetDB().Model(&model.Garage{}).
			Where("code = ? AND id != ? AND tenant_id = ?", req.Code, id, ac.TenantID()).
			Count(&count)
		if count > 0 {
			return response.Conflict(c, "garage with this code already exists for this tenant")
		}
		garage.Code = req.Code
	}

	garage.Name = req.Name
	garage.Address = req.Address
	garage.City = req.City
	garage.Phone = req.Phone
	garage.Email = req.Email
	garage.Capacity = req.Capacity
	garage.IsActive = req.IsActive
	garage.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&garage); result.Error != nil {
		log.Error("Failed to update garage", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Garage updated", zap.Uint("id", garage.ID), zap.Uint("tenant_id", garage.TenantID))
	return response.OK(c, garage)
}

// DeleteGarage soft-deletes a garage after validating tenant ownership
func DeleteGarage(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("garages", "delete")

	ac, err := requireCapability(c, model.ResourceGarages, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid garage ID")
	}

	var garage model.Garage
	if result := database.GetDB().Where("id = ?", id).First(&garage); result.Error != nil {
		return response.NotFound(c, "garage not found")
	}

	if !ac.OwnsEntity(&garage) {
		log.Warn("Cross-tenant garage delete blocked",
			zap.Uint("garage_id", id),
			zap.Uint("garage_tenant", garage.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&garage); result.Error != nil {
		log.Error("Failed to delete garage", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Garage deleted", zap.Uint("id", id), zap.Uint("tenant_id", garage.TenantID))
	return response.Message(c, http.StatusOK, "garage deleted successfully")
}
