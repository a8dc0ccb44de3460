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

// SupplyCategoryRequest defines supply category creation/update requests
type SupplyCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// CreateSupplyCategory creates a supply category for the resolved tenant
func CreateSupplyCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supply_categories", "create")

	ac, err := requireCapability(c, model.ResourceSupplyCategories, model.ActionCreate)
	if err != nil {
		return err
	}

	var req SupplyCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	category := model.SupplyCategory{
		TenantID:    ac.TenantID(),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&category); result.Error != nil {
		log.Error("Failed to create supply category", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supply category created", zap.Uint("id", category.ID), zap.Uint("tenant_id", category.TenantID))
	return response.Created(c, category)
}

// GetSupplyCategory retrieves a supply category by ID for the resolved tenant
func GetSupplyCategory(c echo.Context) error {
	prometheus.RecordResourceOperation("supply_categories", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid category ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var category model.SupplyCategory
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, ac.TenantID()).First(&category)
	if result.Error != nil {
		return response.NotFound(c, "supply category not found")
	}

	return response.OK(c, category)
}

// ListSupplyCategories retrieves supply categories for the resolved tenant
func ListSupplyCategories(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supply_categories", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.SupplyCategory{}).Where("tenant_id = ?", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var categories []model.SupplyCategory
	result := query.Order("name asc").Limit(limit).Offset(offset).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve supply categories", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, categories, response.NewPagination(page, limit, total))
}

// UpdateSupplyCategory updates a supply category after validating ownership
func UpdateSupplyCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supply_categories", "update")

	ac, err := requireCapability(c, model.ResourceSupplyCategories, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid category ID")
	}

	var req SupplyCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}

	var category model.SupplyCategory
	if result := database.GetDB().Where("id = ?", id).First(&category); result.Error != nil {
		return response.NotFound(c, "supply category not found")
	}

	if !ac.OwnsEntity(&category) {
		log.Warn("Cross-tenant supply category update blocked",
			zap.Uint("category_id", id),
			zap.Uint("category_tenant", category.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	category.Name = req.Name
	category.Description = req.Description
	category.IsActive = req.IsActive

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&category); result.Error != nil {
		log.Error("Failed to update supply category", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.OK(c, category)
}

// DeleteSupplyCategory soft-deletes a supply category after validating ownership
func DeleteSupplyCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supply_categories", "delete")

	ac, err := requireCapability(c, model.ResourceSupplyCategories, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid category ID")
	}

	var category model.SupplyCategory
	if result := database.GetDB().Where("id = ?", id).First(&category); result.Error != nil {
		return response.NotFound(c, "supply category not found")
	}

	if !ac.OwnsEntity(&category) {
		log.Warn("Cross-tenant supply category delete blocked",
			zap.Uint("category_id", id),
			zap.Uint("category_tenant", category.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	// Refuse deletion while supplies still reference the category
	var inUse int64
	database.GetDB().Model(&model.Supply{}).Where("category_id = ?", id).Count(&inUse)
	if inUse > 0 {
		return response.Conflict(c, "supply category is still referenced by supplies")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&category); result.Error != nil {
		log.Error("Failed to delete supply category", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.Message(c, http.StatusOK, "supply category deleted successfully")
}
