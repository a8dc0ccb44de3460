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

// CollaboratorRequest defines collaborator creation/update requests
type CollaboratorRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	Position      string `json:"position"`
	IsActive      bool   `json:"is_active"`
}

// CreateCollaborator creates a collaborator for the resolved tenant
func CreateCollaborator(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("collaborators", "create")

	ac, err := requireCapability(c, model.ResourceCollaborators, model.ActionCreate)
	if err != nil {
		return err
	}

	var req CollaboratorRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}
	if req.FirstName == "" || req.LastName == "" {
		return response.BadRequest(c, "first_name and last_name are required")
	}

	collaborator := model.Collaborator{
		TenantID:      ac.TenantID(),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		Position:      req.Position,
		IsActive:      req.IsActive,
		CreatedBy:     ac.UserID,
		UpdatedBy:     ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&collaborator); result.Error != nil {
		log.Error("Failed to create collaborator", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Collaborator created", zap.Uint("id", collaborator.ID), zap.Uint("tenant_id", collaborator.TenantID))
	return response.Created(c, collaborator)
}

// GetCollaborator retrieves a collaborator by ID for the resolved tenant
func GetCollaborator(c echo.Context) error {
	prometheus.RecordResourceOperation("collaborators", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid collaborator ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var collaborator model.Collaborator
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, ac.TenantID()).First(&collaborator)
	if result.Error != nil {
		return response.NotFound(c, "collaborator not found")
	}

	return response.OK(c, collaborator)
}

// ListCollaborators retrieves collaborators for the resolved tenant
func ListCollaborators(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("collaborators", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.Collaborator{}).Where("tenant_id = ?", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern)
	}
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var collaborators []model.Collaborator
	result := query.Order("last_name asc, first_name asc").Limit(limit).Offset(offset).Find(&collaborators)
	if result.Error != nil {
		log.Error("Failed to retrieve collaborators", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, collaborators, response.NewPagination(page, limit, total))
}

// UpdateCollaborator updates a collaborator after validating tenant ownership
func UpdateCollaborator(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("collaborators", "update")

	ac, err := requireCapability(c, model.ResourceCollaborators, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid collaborator ID")
	}

	var req CollaboratorRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "invalid request data")
	}

	var collaborator model.Collaborator
	if result := database.GetDB().Where("id = ?", id).First(&collaborator); result.Error != nil {
		return response.NotFound(c, "collaborator not found")
	}

	if !ac.OwnsEntity(&collaborator) {
		log.Warn("Cross-tenant collaborator update blocked",
			zap.Uint("collaborator_id", id),
			zap.Uint("collaborator_tenant", collaborator.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	collaborator.FirstName = req.FirstName
	collaborator.LastName = req.LastName
	collaborator.Email = req.Email
	collaborator.Phone = req.Phone
	collaborator.LicenseNumber = req.LicenseNumber
	collaborator.Position = req.Position
	collaborator.IsActive = req.IsActive
	collaborator.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&collaborator); result.Error != nil {
		log.Error("Failed to update collaborator", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.OK(c, collaborator)
}

// DeleteCollaborator soft-deletes a collaborator after validating tenant ownership
func DeleteCollaborator(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("collaborators", "delete")

	ac, err := requireCapability(c, model.ResourceCollaborators, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid collaborator ID")
	}

	var collaborator model.Collaborator
	if result := database.GetDB().Where("id = ?", id).First(&collaborator); result.Error != nil {
		return response.NotFound(c, "collaborator not found")
	}

	if !ac.OwnsEntity(&collaborator) {
		log.Warn("Cross-tenant collaborator delete blocked",
			zap.Uint("collaborator_id", id),
			zap.Uint("collaborator_tenant", collaborator.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	// Refuse deletion while an active assignment references the collaborator
	var active int64
	database.GetDB().Model(&model.VehicleAssignment{}).
		Where("collaborator_id = ? AND status = ?", id, model.AssignmentStatusActive).
		Count(&active)
	if active > 0 {
		return response.Conflict(c, "collaborator still has active vehicle assignments")
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&collaborator); result.Error != nil {
		log.Error("Failed to delete collaborator", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.Message(c, http.StatusOK, "collaborator deleted successfully")
}
