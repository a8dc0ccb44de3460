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

// SystemParameterRequest is the payload for creating or updating a parameter
type SystemParameterRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

func CreateSystemParameter(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("system_parameters", "create")

	ac, err := requireCapability(c, model.ResourceParameters, model.ActionCreate)
	if err != nil {
		return err
	}

	var req SystemParameterRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.Key == "" {
		return response.BadRequest(c, "key is required")
	}

	db := database.GetDB()
	tenantID := ac.TenantID()

	var existing model.SystemParameter
	if result := db.Where("tenant_id = ? AND key = ?", tenantID, req.Key).First(&existing); result.Error == nil {
		return response.Conflict(c, "parameter key already exists for this tenant")
	}

	param := model.SystemParameter{
		TenantID:    &tenantID,
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&param); result.Error != nil {
		log.Error("Failed to create system parameter", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Created(c, param)
}

func GetSystemParameterByID(c echo.Context) error {
	prometheus.RecordResourceOperation("system_parameters", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid parameter ID")
	}

	var param model.SystemParameter
	result := database.GetDB().
		Where("id = ? AND (tenant_id = ? OR tenant_id IS NULL)", id, ac.TenantID()).
		First(&param)
	if result.Error != nil {
		return response.NotFound(c, "parameter not found")
	}
	return response.OK(c, param)
}

// GetSystemParameter resolves a key for the tenant: the tenant override wins,
// otherwise the global row is returned
func GetSystemParameter(c echo.Context) error {
	prometheus.RecordResourceOperation("system_parameters", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	key := c.Param("key")
	if key == "" {
		return response.BadRequest(c, "parameter key is required")
	}

	db := database.GetDB()
	var param model.SystemParameter
	if result := db.Where("tenant_id = ? AND key = ?", ac.TenantID(), key).First(&param); result.Error == nil {
		return response.OK(c, param)
	}
	if result := db.Where("tenant_id IS NULL AND key = ?", key).First(&param); result.Error == nil {
		return response.OK(c, param)
	}
	return response.NotFound(c, "parameter not found")
}

func ListSystemParameters(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("system_parameters", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := database.GetDB().Model(&model.SystemParameter{}).
		Where("tenant_id = ? OR tenant_id IS NULL", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("key ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var params []model.SystemParameter
	if result := query.Order("key asc").Limit(limit).Offset(offset).Find(&params); result.Error != nil {
		log.Error("Failed to retrieve system parameters", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, params, response.NewPagination(page, limit, total))
}

func UpdateSystemParameter(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("system_parameters", "update")

	ac, err := requireCapability(c, model.ResourceParameters, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid parameter ID")
	}

	var req SystemParameterRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}

	var param model.SystemParameter
	if result := database.GetDB().Where("id = ?", id).First(&param); result.Error != nil {
		return response.NotFound(c, "parameter not found")
	}
	if param.TenantID == nil || !ac.Owns(*param.TenantID) {
		// global parameters are read-only through the tenant API
		return response.EntityAccessError(c)
	}

	param.Value = req.Value
	if req.Description != "" {
		param.Description = req.Description
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&param); result.Error != nil {
		log.Error("Failed to update system parameter", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, param)
}

func DeleteSystemParameter(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("system_parameters", "delete")

	ac, err := requireCapability(c, model.ResourceParameters, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid parameter ID")
	}

	var param model.SystemParameter
	if result := database.GetDB().Where("id = ?", id).First(&param); result.Error != nil {
		return response.NotFound(c, "parameter not found")
	}
	if param.TenantID == nil || !ac.Owns(*param.TenantID) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&param); result.Error != nil {
		log.Error("Failed to delete system parameter", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "parameter deleted successfully")
}
