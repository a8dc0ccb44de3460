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

// AssignmentRequest defines vehicle assignment creation requests
type AssignmentRequest struct {
	VehicleID      uint   `json:"vehicle_id"`
	CollaboratorID uint   `json:"collaborator_id"`
	Notes          string `json:"notes"`
}

// CreateAssignment assigns a vehicle to a collaborator within the resolved tenant
func CreateAssignment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_assignments", "create")

	ac, err := requireCapability(c, model.ResourceAssignments, model.ActionCreate)
	if err != nil {
		return err
	}

	var req AssignmentRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.VehicleID == 0 || req.CollaboratorID == 0 {
		return response.BadRequest(c, "vehicle_id and collaborator_id are required")
	}

	// Both sides of the assignment must belong to the resolved tenant
	var vehicle model.Vehicle
	if result := database.GetDB().Where("id = ? AND tenant_id = ?", req.VehicleID, ac.TenantID()).First(&vehicle); result.Error != nil {
		return response.BadRequest(c, "vehicle not found for this tenant")
	}
	var collaborator model.Collaborator
	if result := database.GetDB().Where("id = ? AND tenant_id = ?", req.CollaboratorID, ac.TenantID()).First(&collaborator); result.Error != nil {
		return response.BadRequest(c, "collaborator not found for this tenant")
	}

	// One active assignment per vehicle
	var active int64
	database.GetDB().Model(&model.VehicleAssignment{}).
		Where("vehicle_id = ? AND status = ?", req.VehicleID, model.AssignmentStatusActive).
		Count(&active)
	if active > 0 {
		return response.Conflict(c, "vehicle already has an active assignment")
	}

	assignment := model.VehicleAssignment{
		TenantID:       ac.TenantID(),
		VehicleID:      req.VehicleID,
		CollaboratorID: req.CollaboratorID,
		Status:         model.AssignmentStatusActive,
		AssignedAt:     time.Now(),
		Notes:          req.Notes,
		CreatedBy:      ac.UserID,
		UpdatedBy:      ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return response.Internal(c)
	}

	if result := tx.Create(&assignment); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to create assignment", zap.Error(result.Error))
		return response.Internal(c)
	}

	if err := tx.Model(&vehicle).Update("status", model.VehicleStatusAssigned).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to update vehicle status", zap.Error(err))
		return response.Internal(c)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return response.Internal(c)
	}

	log.Info("Vehicle assigned",
		zap.Uint("assignment_id", assignment.ID),
		zap.Uint("vehicle_id", req.VehicleID),
		zap.Uint("collaborator_id", req.CollaboratorID))
	return response.Created(c, assignment)
}

// GetAssignment retrieves an assignment by ID for the resolved tenant
func GetAssignment(c echo.Context) error {
	prometheus.RecordResourceOperation("vehicle_assignments", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid assignment ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var assignment model.VehicleAssignment
	result := database.GetDB().
		Preload("Vehicle").Preload("Collaborator").
		Where("id = ? AND tenant_id = ?", id, ac.TenantID()).
		First(&assignment)
	if result.Error != nil {
		return response.NotFound(c, "assignment not found")
	}

	return response.OK(c, assignment)
}

// ListAssignments retrieves assignments for the resolved tenant
func ListAssignments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_assignments", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.VehicleAssignment{}).Where("tenant_id = ?", ac.TenantID())
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if vehicle := c.QueryParam("vehicle"); vehicle != "" {
		query = query.Where("vehicle_id = ?", vehicle)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var assignments []model.VehicleAssignment
	result := query.
		Preload("Vehicle").Preload("Collaborator").
		Order("assigned_at desc").Limit(limit).Offset(offset).
		Find(&assignments)
	if result.Error != nil {
		log.Error("Failed to retrieve assignments", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, assignments, response.NewPagination(page, limit, total))
}

// ReturnAssignment closes an active assignment and releases the vehicle
func ReturnAssignment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_assignments", "return")

	ac, err := requireCapability(c, model.ResourceAssignments, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid assignment ID")
	}

	var assignment model.VehicleAssignment
	if result := database.GetDB().Where("id = ?", id).First(&assignment); result.Error != nil {
		return response.NotFound(c, "assignment not found")
	}

	if !ac.OwnsEntity(&assignment) {
		log.Warn("Cross-tenant assignment return blocked",
			zap.Uint("assignment_id", id),
			zap.Uint("assignment_tenant", assignment.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	if assignment.Status != model.AssignmentStatusActive {
		return response.Conflict(c, "assignment is not active")
	}

	now := time.Now()
	assignment.Status = model.AssignmentStatusReturned
	assignment.ReturnedAt = &now
	assignment.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	tx := database.GetDB().Begin()
	if tx.Error != nil {
		log.Error("Failed to begin transaction", zap.Error(tx.Error))
		return response.Internal(c)
	}

	if result := tx.Save(&assignment); result.Error != nil {
		tx.Rollback()
		log.Error("Failed to close assignment", zap.Error(result.Error))
		return response.Internal(c)
	}

	if err := tx.Model(&model.Vehicle{}).
		Where("id = ?", assignment.VehicleID).
		Update("status", model.VehicleStatusAvailable).Error; err != nil {
		tx.Rollback()
		log.Error("Failed to release vehicle", zap.Error(err))
		return response.Internal(c)
	}

	if err := tx.Commit().Error; err != nil {
		log.Error("Failed to commit transaction", zap.Error(err))
		return response.Internal(c)
	}

	log.Info("Assignment returned",
		zap.Uint("assignment_id", assignment.ID),
		zap.Uint("vehicle_id", assignment.VehicleID))
	return response.OK(c, assignment)
}

// DeleteAssignment soft-deletes an assignment after validating tenant ownership
func DeleteAssignment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("vehicle_assignments", "delete")

	ac, err := requireCapability(c, model.ResourceAssignments, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid assignment ID")
	}

	var assignment model.VehicleAssignment
	if result := database.GetDB().Where("id = ?", id).First(&assignment); result.Error != nil {
		return response.NotFound(c, "assignment not found")
	}

	if !ac.OwnsEntity(&assignment) {
		log.Warn("Cross-tenant assignment delete blocked",
			zap.Uint("assignment_id", id),
			zap.Uint("assignment_tenant", assignment.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&assignment); result.Error != nil {
		log.Error("Failed to delete assignment", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.Message(c, http.StatusOK, "assignment deleted successfully")
}
