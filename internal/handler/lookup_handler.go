package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/oumiche/impact-auto-plus-sub004/internal/access"
	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/database"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

// LookupRequest covers the shared shape of lookup-table rows
type LookupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HexCode     string `json:"hex_code"`
	IsActive    bool   `json:"is_active"`
}

// lookupScope limits a query to rows visible to the tenant: its own rows plus
// global rows (tenant_id is null)
func lookupScope(db *gorm.DB, ac *access.Context) *gorm.DB {
	return db.Where("tenant_id = ? OR tenant_id IS NULL", ac.TenantID())
}

// lookupOwned reports whether a lookup row may be mutated: global rows are
// read-only through the API, tenant rows require ownership
func lookupOwned(ac *access.Context, tenantID *uint) bool {
	return tenantID != nil && ac.Owns(*tenantID)
}

// --- vehicle categories ---

func CreateVehicleCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_categories", "create")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionCreate)
	if err != nil {
		return err
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	tenantID := ac.TenantID()
	category := model.VehicleCategory{
		TenantID:    &tenantID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&category); result.Error != nil {
		log.Error("Failed to create vehicle category", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Created(c, category)
}

func GetVehicleCategory(c echo.Context) error {
	prometheus.RecordResourceOperation("vehicle_categories", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid category ID")
	}

	var category model.VehicleCategory
	result := lookupScope(database.GetDB(), ac).Where("id = ?", id).First(&category)
	if result.Error != nil {
		return response.NotFound(c, "vehicle category not found")
	}
	return response.OK(c, category)
}

func ListVehicleCategories(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_categories", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := lookupScope(database.GetDB().Model(&model.VehicleCategory{}), ac)
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var categories []model.VehicleCategory
	if result := query.Order("name asc").Limit(limit).Offset(offset).Find(&categories); result.Error != nil {
		log.Error("Failed to retrieve vehicle categories", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, categories, response.NewPagination(page, limit, total))
}

func UpdateVehicleCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_categories", "update")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid category ID")
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}

	var category model.VehicleCategory
	if result := database.GetDB().Where("id = ?", id).First(&category); result.Error != nil {
		return response.NotFound(c, "vehicle category not found")
	}
	if !lookupOwned(ac, category.TenantID) {
		log.Warn("Lookup row not owned by tenant", zap.Uint("id", id))
		return response.EntityAccessError(c)
	}

	category.Name = req.Name
	category.Description = req.Description
	category.IsActive = req.IsActive

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&category); result.Error != nil {
		log.Error("Failed to update vehicle category", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, category)
}

func DeleteVehicleCategory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_categories", "delete")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid category ID")
	}

	var category model.VehicleCategory
	if result := database.GetDB().Where("id = ?", id).First(&category); result.Error != nil {
		return response.NotFound(c, "vehicle category not found")
	}
	if !lookupOwned(ac, category.TenantID) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&category); result.Error != nil {
		log.Error("Failed to delete vehicle category", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "vehicle category deleted successfully")
}

// --- vehicle colors ---

func CreateVehicleColor(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_colors", "create")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionCreate)
	if err != nil {
		return err
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	tenantID := ac.TenantID()
	color := model.VehicleColor{
		TenantID: &tenantID,
		Name:     req.Name,
		HexCode:  req.HexCode,
		IsActive: req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&color); result.Error != nil {
		log.Error("Failed to create vehicle color", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Created(c, color)
}

func GetVehicleColor(c echo.Context) error {
	prometheus.RecordResourceOperation("vehicle_colors", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid color ID")
	}

	var color model.VehicleColor
	result := lookupScope(database.GetDB(), ac).Where("id = ?", id).First(&color)
	if result.Error != nil {
		return response.NotFound(c, "vehicle color not found")
	}
	return response.OK(c, color)
}

func ListVehicleColors(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_colors", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := lookupScope(database.GetDB().Model(&model.VehicleColor{}), ac)
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var colors []model.VehicleColor
	if result := query.Order("name asc").Limit(limit).Offset(offset).Find(&colors); result.Error != nil {
		log.Error("Failed to retrieve vehicle colors", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, colors, response.NewPagination(page, limit, total))
}

func UpdateVehicleColor(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_colors", "update")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid color ID")
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}

	var color model.VehicleColor
	if result := database.GetDB().Where("id = ?", id).First(&color); result.Error != nil {
		return response.NotFound(c, "vehicle color not found")
	}
	if !lookupOwned(ac, color.TenantID) {
		return response.EntityAccessError(c)
	}

	color.Name = req.Name
	color.HexCode = req.HexCode
	color.IsActive = req.IsActive

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&color); result.Error != nil {
		log.Error("Failed to update vehicle color", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, color)
}

func DeleteVehicleColor(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_colors", "delete")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid color ID")
	}

	var color model.VehicleColor
	if result := database.GetDB().Where("id = ?", id).First(&color); result.Error != nil {
		return response.NotFound(c, "vehicle color not found")
	}
	if !lookupOwned(ac, color.TenantID) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&color); result.Error != nil {
		log.Error("Failed to delete vehicle color", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "vehicle color deleted successfully")
}

// --- intervention types ---

func CreateInterventionType(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("intervention_types", "create")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionCreate)
	if err != nil {
		return err
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.Name == "" {
		return response.BadRequest(c, "name is required")
	}

	tenantID := ac.TenantID()
	interventionType := model.InterventionType{
		TenantID:    &tenantID,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&interventionType); result.Error != nil {
		log.Error("Failed to create intervention type", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Created(c, interventionType)
}

func GetInterventionType(c echo.Context) error {
	prometheus.RecordResourceOperation("intervention_types", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid intervention type ID")
	}

	var interventionType model.InterventionType
	result := lookupScope(database.GetDB(), ac).Where("id = ?", id).First(&interventionType)
	if result.Error != nil {
		return response.NotFound(c, "intervention type not found")
	}
	return response.OK(c, interventionType)
}

func ListInterventionTypes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("intervention_types", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := lookupScope(database.GetDB().Model(&model.InterventionType{}), ac)
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var types []model.InterventionType
	if result := query.Order("name asc").Limit(limit).Offset(offset).Find(&types); result.Error != nil {
		log.Error("Failed to retrieve intervention types", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, types, response.NewPagination(page, limit, total))
}

func UpdateInterventionType(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("intervention_types", "update")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid intervention type ID")
	}

	var req LookupRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}

	var interventionType model.InterventionType
	if result := database.GetDB().Where("id = ?", id).First(&interventionType); result.Error != nil {
		return response.NotFound(c, "intervention type not found")
	}
	if !lookupOwned(ac, interventionType.TenantID) {
		return response.EntityAccessError(c)
	}

	interventionType.Name = req.Name
	interventionType.Description = req.Description
	interventionType.IsActive = req.IsActive

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&interventionType); result.Error != nil {
		log.Error("Failed to update intervention type", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, interventionType)
}

func DeleteInterventionType(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("intervention_types", "delete")

	ac, err := requireCapability(c, model.ResourceLookups, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid intervention type ID")
	}

	var interventionType model.InterventionType
	if result := database.GetDB().Where("id = ?", id).First(&interventionType); result.Error != nil {
		return response.NotFound(c, "intervention type not found")
	}
	if !lookupOwned(ac, interventionType.TenantID) {
		return response.EntityAccessError(c)
	}

	var inUse int64
	database.GetDB().Model(&model.InterventionReceptionReport{}).
		Where("intervention_type_id = ?", id).
		Count(&inUse)
	if inUse > 0 {
		return response.Conflict(c, "intervention type is still referenced by reception reports")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&interventionType); result.Error != nil {
		log.Error("Failed to delete intervention type", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "intervention type deleted successfully")
}
