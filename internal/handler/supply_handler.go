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

// SupplyRequest defines the structure for supply creation/update requests
type SupplyRequest struct {
	Name        string  `json:"name"`
	Reference   string  `json:"reference"`
	Description string  `json:"description"`
	CategoryID  uint    `json:"category_id"`
	SupplierID  *uint   `json:"supplier_id,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	IsActive    bool    `json:"is_active"`
}

// CreateSupply creates a new supply item for the resolved tenant
func CreateSupply(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supplies", "create")

	ac, err := requireCapability(c, model.ResourceSupplies, model.ActionCreate)
	if err != nil {
		return err
	}

	var req SupplyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}
	if req.Name == "" || req.Reference == "" || req.CategoryID == 0 {
		return response.BadRequest(c, "name, reference and category_id are required")
	}
	if req.UnitPrice < 0 || req.Quantity < 0 {
		return response.BadRequest(c, "unit_price and quantity must not be negative")
	}

	// Category must belong to the same tenant
	var category model.SupplyCategory
	if result := database.GetDB().Where("id = ? AND tenant_id = ?", req.CategoryID, ac.TenantID()).First(&category); result.Error != nil {
		return response.BadRequest(c, "supply category not found for this tenant")
	}

	// A referenced supplier must belong to the same tenant
	if req.SupplierID != nil {
		var supplier model.Supplier
		if result := database.GetDB().Where("id = ? AND tenant_id = ?", *req.SupplierID, ac.TenantID()).First(&supplier); result.Error != nil {
			return response.BadRequest(c, "supplier not found for this tenant")
		}
	}

	// Reference is unique per tenant
	var count int64
	database.GetDB().Model(&model.Supply{}).
		Where("reference = ? AND tenant_id = ?", req.Reference, ac.TenantID()).
		Count(&count)
	if count > 0 {
		return response.Conflict(c, "supply with this reference already exists for this tenant")
	}

	supply := model.Supply{
		TenantID:    ac.TenantID(),
		CategoryID:  req.CategoryID,
		SupplierID:  req.SupplierID,
		Name:        req.Name,
		Reference:   req.Reference,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Quantity:    req.Quantity,
		IsActive:    req.IsActive,
		CreatedBy:   ac.UserID,
		UpdatedBy:   ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&supply); result.Error != nil {
		log.Error("Failed to create supply", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supply created",
		zap.Uint("id", supply.ID),
		zap.String("reference", supply.Reference),
		zap.Uint("tenant_id", supply.TenantID))
	return response.Created(c, supply)
}

// GetSupply retrieves a supply by ID for the resolved tenant
func GetSupply(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supplies", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid supply ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var supply model.Supply
	result := database.GetDB().
		Preload("Category").Preload("Supplier").
		Where("id = ? AND tenant_id = ?", id, ac.TenantID()).
		First(&supply)
	if result.Error != nil {
		log.Warn("Supply not found", zap.Uint("supply_id", id), zap.Uint("tenant_id", ac.TenantID()))
		return response.NotFound(c, "supply not found")
	}

	return response.OK(c, supply)
}

// ListSupplies retrieves supplies for the resolved tenant with filters
func ListSupplies(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supplies", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.Supply{}).Where("tenant_id = ?", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR reference ILIKE ?", pattern, pattern)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category_id = ?", category)
	}
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var supplies []model.Supply
	result := query.
		Preload("Category").Preload("Supplier").
		Order("created_at desc").Limit(limit).Offset(offset).
		Find(&supplies)
	if result.Error != nil {
		log.Error("Failed to retrieve supplies", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, supplies, response.NewPagination(page, limit, total))
}

// UpdateSupply updates an existing supply after validating tenant ownership
func UpdateSupply(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supplies", "update")

	ac, err := requireCapability(c, model.ResourceSupplies, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid supply ID")
	}

	var req SupplyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}
	if req.UnitPrice < 0 || req.Quantity < 0 {
		return response.BadRequest(c, "unit_price and quantity must not be negative")
	}

	var supply model.Supply
	if result := database.GetDB().Where("id = ?", id).First(&supply); result.Error != nil {
		return response.NotFound(c, "supply not found")
	}

	if !ac.OwnsEntity(&supply) {
		log.Warn("Cross-tenant supply update blocked",
			zap.Uint("supply_id", id),
			zap.Uint("supply_tenant", supply.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	if req.Reference != "" && req.Reference != supply.Reference {
		var count int64
		database.GetDB().Model(&model.Supply{}).
			Where("reference = ? AND id != ? AND tenant_id = ?", req.Reference, id, ac.TenantID()).
			Count(&count)
		if count > 0 {
			return response.Conflict(c, "supply with this reference already exists for this tenant")
		}
		supply.Reference = req.Reference
	}

	if req.CategoryID != 0 && req.CategoryID != supply.CategoryID {
		var category model.SupplyCategory
		if result := database.GetDB().Where("id = ? AND tenant_id = ?", req.CategoryID, ac.TenantID()).First(&category); result.Error != nil {
			return response.BadRequest(c, "supply category not found for this tenant")
		}
		supply.CategoryID = req.CategoryID
	}

	supply.Name = req.Name
	supply.Description = req.Description
	supply.SupplierID = req.SupplierID
	supply.UnitPrice = req.UnitPrice
	supply.Quantity = req.Quantity
	supply.IsActive = req.IsActive
	supply.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&supply); result.Error != nil {
		log.Error("Failed to update supply", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supply updated", zap.Uint("id", supply.ID), zap.Uint("tenant_id", supply.TenantID))
	return response.OK(c, supply)
}

// DeleteSupply soft-deletes a supply after validating tenant ownership
func DeleteSupply(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("supplies", "delete")

	ac, err := requireCapability(c, model.ResourceSupplies, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid supply ID")
	}

	var supply model.Supply
	if result := database.GetDB().Where("id = ?", id).First(&supply); result.Error != nil {
		return response.NotFound(c, "supply not found")
	}

	if !ac.OwnsEntity(&supply) {
		log.Warn("Cross-tenant supply delete blocked",
			zap.Uint("supply_id", id),
			zap.Uint("supply_tenant", supply.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&supply); result.Error != nil {
		log.Error("Failed to delete supply", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supply deleted", zap.Uint("id", id), zap.Uint("tenant_id", supply.TenantID))
	return response.Message(c, http.StatusOK, "supply deleted successfully")
}
