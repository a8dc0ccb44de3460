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

// ReceptionReportRequest is the payload for creating or updating a reception report
type ReceptionReportRequest struct {
	VehicleID          uint       `json:"vehicle_id"`
	InterventionTypeID uint       `json:"intervention_type_id"`
	GarageID           *uint      `json:"garage_id"`
	Summary            string     `json:"summary"`
	Findings           string     `json:"findings"`
	Odometer           int        `json:"odometer"`
	Status             string     `json:"status"`
	ReceivedAt         *time.Time `json:"received_at"`
}

func (r *ReceptionReportRequest) validate() string {
	if r.VehicleID == 0 {
		return "vehicle_id is required"
	}
	if r.InterventionTypeID == 0 {
		return "intervention_type_id is required"
	}
	if r.Odometer < 0 {
		return "odometer cannot be negative"
	}
	switch r.Status {
	case "", model.ReceptionStatusDraft, model.ReceptionStatusSubmitted, model.ReceptionStatusValidated:
		return ""
	default:
		return "invalid status"
	}
}

func CreateReceptionReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reception_reports", "create")

	ac, err := requireCapability(c, model.ResourceInterventions, model.ActionCreate)
	if err != nil {
		return err
	}

	var req ReceptionReportRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	db := database.GetDB()

	// both referenced entities must live in the resolved tenant
	var vehicle model.Vehicle
	if result := db.Where("id = ? AND tenant_id = ?", req.VehicleID, ac.TenantID()).First(&vehicle); result.Error != nil {
		return response.BadRequest(c, "vehicle not found in tenant")
	}
	var interventionType model.InterventionType
	if result := db.Where("id = ? AND (tenant_id = ? OR tenant_id IS NULL)", req.InterventionTypeID, ac.TenantID()).First(&interventionType); result.Error != nil {
		return response.BadRequest(c, "intervention type not found in tenant")
	}
	if req.GarageID != nil {
		var garage model.Garage
		if result := db.Where("id = ? AND tenant_id = ?", *req.GarageID, ac.TenantID()).First(&garage); result.Error != nil {
			return response.BadRequest(c, "garage not found in tenant")
		}
	}

	receivedAt := time.Now()
	if req.ReceivedAt != nil {
		receivedAt = *req.ReceivedAt
	}
	status := req.Status
	if status == "" {
		status = model.ReceptionStatusDraft
	}

	report := model.InterventionReceptionReport{
		TenantID:           ac.TenantID(),
		VehicleID:          req.VehicleID,
		InterventionTypeID: req.InterventionTypeID,
		GarageID:           req.GarageID,
		Summary:            req.Summary,
		Findings:           req.Findings,
		Odometer:           req.Odometer,
		Status:             status,
		ReceivedAt:         receivedAt,
		CreatedBy:          ac.UserID,
		UpdatedBy:          ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := db.Create(&report); result.Error != nil {
		log.Error("Failed to create reception report", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Reception report created",
		zap.Uint("report_id", report.ID),
		zap.Uint("vehicle_id", report.VehicleID),
		zap.Uint("tenant_id", ac.TenantID()))
	return response.Created(c, report)
}

func GetReceptionReport(c echo.Context) error {
	prometheus.RecordResourceOperation("reception_reports", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	var report model.InterventionReceptionReport
	result := database.GetDB().
		Preload("Vehicle").Preload("InterventionType").Preload("Garage").
		Where("id = ? AND tenant_id = ?", id, ac.TenantID()).
		First(&report)
	if result.Error != nil {
		return response.NotFound(c, "reception report not found")
	}
	return response.OK(c, report)
}

func ListReceptionReports(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reception_reports", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)
	query := database.GetDB().Model(&model.InterventionReceptionReport{}).
		Where("tenant_id = ?", ac.TenantID())

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if vehicleID := c.QueryParam("vehicle_id"); vehicleID != "" {
		query = query.Where("vehicle_id = ?", vehicleID)
	}
	if search := c.QueryParam("search"); search != "" {
		query = query.Where("summary ILIKE ? OR findings ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var reports []model.InterventionReceptionReport
	result := query.Preload("Vehicle").Preload("InterventionType").
		Order("received_at desc").Limit(limit).Offset(offset).
		Find(&reports)
	if result.Error != nil {
		log.Error("Failed to retrieve reception reports", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.List(c, reports, response.NewPagination(page, limit, total))
}

func UpdateReceptionReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reception_reports", "update")

	ac, err := requireCapability(c, model.ResourceInterventions, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	var req ReceptionReportRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	db := database.GetDB()

	var report model.InterventionReceptionReport
	if result := db.Where("id = ?", id).First(&report); result.Error != nil {
		return response.NotFound(c, "reception report not found")
	}
	if !ac.OwnsEntity(&report) {
		log.Warn("Reception report belongs to another tenant",
			zap.Uint("report_id", report.ID),
			zap.Uint("owner_tenant", report.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}
	if report.Status == model.ReceptionStatusValidated {
		return response.Conflict(c, "validated reports cannot be modified")
	}

	report.VehicleID = req.VehicleID
	report.InterventionTypeID = req.InterventionTypeID
	report.GarageID = req.GarageID
	report.Summary = req.Summary
	report.Findings = req.Findings
	report.Odometer = req.Odometer
	if req.Status != "" {
		report.Status = req.Status
	}
	if req.ReceivedAt != nil {
		report.ReceivedAt = *req.ReceivedAt
	}
	report.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := db.Save(&report); result.Error != nil {
		log.Error("Failed to update reception report", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, report)
}

func DeleteReceptionReport(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("reception_reports", "delete")

	ac, err := requireCapability(c, model.ResourceInterventions, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid report ID")
	}

	var report model.InterventionReceptionReport
	if result := database.GetDB().Where("id = ?", id).First(&report); result.Error != nil {
		return response.NotFound(c, "reception report not found")
	}
	if !ac.OwnsEntity(&report) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&report); result.Error != nil {
		log.Error("Failed to delete reception report", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.Message(c, http.StatusOK, "reception report deleted successfully")
}
