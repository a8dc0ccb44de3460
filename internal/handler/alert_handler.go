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

// AlertRequest is the payload for creating or updating an alert
type AlertRequest struct {
	VehicleID *uint  `json:"vehicle_id"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

func (r *AlertRequest) validate() string {
	if r.Type == "" {
		return "type is required"
	}
	if r.Title == "" {
		return "title is required"
	}
	switch r.Severity {
	case "", model.AlertSeverityInfo, model.AlertSeverityWarning, model.AlertSeverityCritical:
		return ""
	default:
		return "invalid severity"
	}
}

func CreateAlert(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("alerts", "create")

	ac, err := requireCapability(c, model.ResourceAlerts, model.ActionCreate)
	if err != nil {
		return err
	}

	var req AlertRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	db := database.GetDB()
	if req.VehicleID != nil {
		var vehicle model.Vehicle
		if result := db.Where("id = ? AND tenant_id = ?", *req.VehicleID, ac.TenantID()).First(&vehicle); result.Error != nil {
			return response.BadRequest(c, "vehicle not found in tenant")
		}
	}

	severity := req.Severity
	if severity == "" {
		severity = model.AlertSeverityInfo
	}

	alert := model.Alert{
		TenantID:  ac.TenantID(),
		VehicleID: req.VehicleID,
		Type:      req.Type,
		Severity:  severity,
		Title:     req.Title,
		Message:   req.Message,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&alert); result.Error != nil {
		log.Error("Failed to create alert", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Created(c, alert)
}

func GetAlert(c echo.Context) error {
	prometheus.RecordResourceOperation("alerts", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid alert ID")
	}

	var alert model.Alert
	result := database.GetDB().
		Where("id = ? AND tenant_id = ?", id, ac.TenantID()).
		First(&alert)
	if result.Error != nil {
		return response.NotFound(c, "alert not found")
	}
	return response.OK(c, alert)
}

func ListAlerts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("alerts", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := database.GetDB().Model(&model.Alert{}).Where("tenant_id = ?", ac.TenantID())

	if severity := c.QueryParam("severity"); severity != "" {
		query = query.Where("severity = ?", severity)
	}
	if unread := c.QueryParam("unread"); unread == "true" {
		query = query.Where("is_read = ?", false)
	}
	if vehicleID := c.QueryParam("vehicle_id"); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}

	var total int64
	query.Count(&total)

	var alerts []model.Alert
	if result := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&alerts); result.Error != nil {
		log.Error("Failed to retrieve alerts", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, alerts, response.NewPagination(page, limit, total))
}

// MarkAlertRead flips the read flag on a single alert
func MarkAlertRead(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("alerts", "mark_read")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid alert ID")
	}

	var alert model.Alert
	if result := database.GetDB().Where("id = ?", id).First(&alert); result.Error != nil {
		return response.NotFound(c, "alert not found")
	}
	if !ac.OwnsEntity(&alert) {
		return response.EntityAccessError(c)
	}

	alert.IsRead = true
	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&alert); result.Error != nil {
		log.Error("Failed to mark alert as read", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, alert)
}

// MarkAllAlertsRead flips the read flag on every unread alert of the tenant
func MarkAllAlertsRead(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("alerts", "mark_all_read")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	result := database.GetDB().Model(&model.Alert{}).
		Where("tenant_id = ? AND is_read = ?", ac.TenantID(), false).
		Update("is_read", true)
	if result.Error != nil {
		log.Error("Failed to mark alerts as read", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, echo.Map{"updated": result.RowsAffected})
}

func DeleteAlert(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("alerts", "delete")

	ac, err := requireCapability(c, model.ResourceAlerts, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid alert ID")
	}

	var alert model.Alert
	if result := database.GetDB().Where("id = ?", id).First(&alert); result.Error != nil {
		return response.NotFound(c, "alert not found")
	}
	if !ac.OwnsEntity(&alert) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&alert); result.Error != nil {
		log.Error("Failed to delete alert", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "alert deleted successfully")
}
