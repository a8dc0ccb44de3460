package handler

import (
	"encoding/json"
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

// ReportRequest is the payload for creating or updating a report definition
type ReportRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Parameters    string `json:"parameters"`
	CacheDuration int    `json:"cache_duration"`
}

func (r *ReportRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	switch r.Type {
	case model.ReportTypeDashboard, model.ReportTypeFleetStatus, model.ReportTypeSupplyStock:
		return ""
	default:
		return "invalid report type"
	}
}

func CreateReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reports", "create")

	ac, err := requireCapability(c, model.ResourceReports, model.ActionCreate)
	if err != nil {
		return err
	}

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	cacheDuration := req.CacheDuration
	if cacheDuration <= 0 {
		cacheDuration = 300
	}
	parameters := req.Parameters
	if parameters == "" {
		parameters = "{}"
	}

	report := model.Report{
		TenantID:      ac.TenantID(),
		Name:          req.Name,
		Type:          req.Type,
		Parameters:    parameters,
		CacheDuration: cacheDuration,
		CreatedBy:     ac.UserID,
		UpdatedBy:     ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&report); result.Error != nil {
		log.Error("Failed to create report", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Created(c, report)
}

func GetReport(c echo.Context) error {
	prometheus.RecordResourceOperation("reports", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	var report model.Report
	result := database.GetDB().
		Where("id = ? AND tenant_id = ?", id, ac.TenantID()).
		First(&report)
	if result.Error != nil {
		return response.NotFound(c, "report not found")
	}
	return response.OK(c, report)
}

func ListReports(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reports", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := database.GetDB().Model(&model.Report{}).Where("tenant_id = ?", ac.TenantID())
	if reportType := c.QueryParam("type"); reportType != "" {
		query = query.Where("type = ?", reportType)
	}
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var reports []model.Report
	if result := query.Order("name asc").Limit(limit).Offset(offset).Find(&reports); result.Error != nil {
		log.Error("Failed to retrieve reports", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, reports, response.NewPagination(page, limit, total))
}

func UpdateReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reports", "update")

	ac, err := requireCapability(c, model.ResourceReports, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	var report model.Report
	if result := database.GetDB().Where("id = ?", id).First(&report); result.Error != nil {
		return response.NotFound(c, "report not found")
	}
	if !ac.OwnsEntity(&report) {
		return response.EntityAccessError(c)
	}

	report.Name = req.Name
	report.Type = req.Type
	if req.Parameters != "" {
		report.Parameters = req.Parameters
	}
	if req.CacheDuration > 0 {
		report.CacheDuration = req.CacheDuration
	}
	// definition changed, drop the cached payload
	report.CachedData = ""
	report.CacheExpiresAt = nil
	report.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&report); result.Error != nil {
		log.Error("Failed to update report", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, report)
}

func DeleteReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reports", "delete")

	ac, err := requireCapability(c, model.ResourceReports, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	var report model.Report
	if result := database.GetDB().Where("id = ?", id).First(&report); result.Error != nil {
		return response.NotFound(c, "report not found")
	}
	if !ac.OwnsEntity(&report) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&report); result.Error != nil {
		log.Error("Failed to delete report", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "report deleted successfully")
}

// GetReportData returns the report's generated payload, regenerating it when
// the cached copy has expired
func GetReportData(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reports", "data")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	db := database.GetDB()
	var report model.Report
	result := db.Where("id = ? AND tenant_id = ?", id, ac.TenantID()).First(&report)
	if result.Error != nil {
		return response.NotFound(c, "report not found")
	}

	now := time.Now()
	if report.CacheValid(now) {
		return response.OK(c, echo.Map{
			"report_id": report.ID,
			"type":      report.Type,
			"cached":    true,
			"data":      json.RawMessage(report.CachedData),
		})
	}

	data, err := generateReportData(db, ac, report.Type)
	if err != nil {
		log.Error("Failed to generate report data", zap.Error(err), zap.String("type", report.Type))
		return response.Internal(c)
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Error("Failed to encode report data", zap.Error(err))
		return response.Internal(c)
	}

	report.StampCache(string(payload), now)
	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Save(&report); result.Error != nil {
		log.Error("Failed to persist report cache", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.OK(c, echo.Map{
		"report_id": report.ID,
		"type":      report.Type,
		"cached":    false,
		"data":      data,
	})
}

// Dashboard returns live fleet counters for the resolved tenant without
// requiring a stored report definition
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reports", "dashboard")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	data, err := generateReportData(database.GetDB(), ac, model.ReportTypeDashboard)
	if err != nil {
		log.Error("Failed to build dashboard", zap.Error(err))
		return response.Internal(c)
	}
	return response.OK(c, data)
}

func generateReportData(db *gorm.DB, ac *access.Context, reportType string) (echo.Map, error) {
	switch reportType {
	case model.ReportTypeFleetStatus:
		return fleetStatusData(db, ac.TenantID())
	case model.ReportTypeSupplyStock:
		return supplyStockData(db, ac.TenantID())
	default:
		return dashboardData(db, ac.TenantID())
	}
}

func dashboardData(db *gorm.DB, tenantID uint) (echo.Map, error) {
	var vehicleTotal, vehiclesAssigned, garageTotal int64
	var collaboratorTotal, activeAssignments, unreadAlerts, openReceptions int64

	if err := db.Model(&model.Vehicle{}).Where("tenant_id = ?", tenantID).Count(&vehicleTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Vehicle{}).
		Where("tenant_id = ? AND status = ?", tenantID, model.VehicleStatusAssigned).
		Count(&vehiclesAssigned).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Garage{}).Where("tenant_id = ?", tenantID).Count(&garageTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Collaborator{}).Where("tenant_id = ?", tenantID).Count(&collaboratorTotal).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.VehicleAssignment{}).
		Where("tenant_id = ? AND status = ?", tenantID, model.AssignmentStatusActive).
		Count(&activeAssignments).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Alert{}).
		Where("tenant_id = ? AND is_read = ?", tenantID, false).
		Count(&unreadAlerts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.InterventionReceptionReport{}).
		Where("tenant_id = ? AND status <> ?", tenantID, model.ReceptionStatusValidated).
		Count(&openReceptions).Error; err != nil {
		return nil, err
	}

	return echo.Map{
		"vehicles": echo.Map{
			"total":     vehicleTotal,
			"assigned":  vehiclesAssigned,
			"available": vehicleTotal - vehiclesAssigned,
		},
		"garages":            garageTotal,
		"collaborators":      collaboratorTotal,
		"active_assignments": activeAssignments,
		"unread_alerts":      unreadAlerts,
		"open_receptions":    openReceptions,
		"generated_at":       time.Now().UTC(),
	}, nil
}

func fleetStatusData(db *gorm.DB, tenantID uint) (echo.Map, error) {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var counts []statusCount
	err := db.Model(&model.Vehicle{}).
		Select("status, count(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return echo.Map{
		"by_status":    counts,
		"generated_at": time.Now().UTC(),
	}, nil
}

func supplyStockData(db *gorm.DB, tenantID uint) (echo.Map, error) {
	type categoryCount struct {
		CategoryID uint  `json:"category_id"`
		Count      int64 `json:"count"`
	}
	var counts []categoryCount
	err := db.Model(&model.Supply{}).
		Select("category_id, count(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("category_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	var total int64
	if err := db.Model(&model.Supply{}).Where("tenant_id = ?", tenantID).Count(&total).Error; err != nil {
		return nil, err
	}
	return echo.Map{
		"total":        total,
		"by_category":  counts,
		"generated_at": time.Now().UTC(),
	}, nil
}
