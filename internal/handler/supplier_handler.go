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

// SupplierRequest defines the structure for supplier creation/update requests
type SupplierRequest struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	Country       string `json:"country"`
	TaxID         string `json:"tax_id"`
	PaymentTerms  string `json:"payment_terms"`
	Notes         string `json:"notes"`
	IsActive      bool   `json:"is_active"`
	Rating        int    `json:"rating"`
}

func (r *SupplierRequest) validate() string {
	if r.Name == "" || r.Code == "" {
		return "name and code are required"
	}
	if r.Rating < 0 || r.Rating > 5 {
		return "rating must be between 0 and 5"
	}
	return ""
}

// CreateSupplier creates a new supplier for the resolved tenant
func CreateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("suppliers", "create")

	ac, err := requireCapability(c, model.ResourceSuppliers, model.ActionCreate)
	if err != nil {
		return err
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	// Code is unique per tenant
	var count int64
	database.GetDB().Model(&model.Supplier{}).
		Where("code = ? AND tenant_id = ?", req.Code, ac.TenantID()).
		Count(&count)
	if count > 0 {
		log.Warn("Supplier code already exists for tenant",
			zap.String("code", req.Code),
			zap.Uint("tenant_id", ac.TenantID()))
		return response.Conflict(c, "supplier with this code already exists for this tenant")
	}

	supplier := model.Supplier{
		TenantID:      ac.TenantID(),
		Name:          req.Name,
		Code:          req.Code,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		Country:       req.Country,
		TaxID:         req.TaxID,
		PaymentTerms:  req.PaymentTerms,
		Notes:         req.Notes,
		IsActive:      req.IsActive,
		Rating:        req.Rating,
		CreatedBy:     ac.UserID,
		UpdatedBy:     ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&supplier); result.Error != nil {
		log.Error("Failed to create supplier", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supplier created",
		zap.Uint("id", supplier.ID),
		zap.String("code", supplier.Code),
		zap.Uint("tenant_id", supplier.TenantID))
	return response.Created(c, supplier)
}

// GetSupplier retrieves a supplier by ID for the resolved tenant
func GetSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("suppliers", "get")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid supplier ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var supplier model.Supplier
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, ac.TenantID()).First(&supplier)
	if result.Error != nil {
		log.Warn("Supplier not found", zap.Uint("supplier_id", id), zap.Uint("tenant_id", ac.TenantID()))
		return response.NotFound(c, "supplier not found")
	}

	return response.OK(c, supplier)
}

// ListSuppliers retrieves suppliers for the resolved tenant with filters
func ListSuppliers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("suppliers", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	page, limit, offset := response.PageParams(c)

	query := database.GetDB().Model(&model.Supplier{}).Where("tenant_id = ?", ac.TenantID())
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR contact_person ILIKE ?", pattern, pattern, pattern)
	}
	if isActive := c.QueryParam("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var total int64
	query.Count(&total)

	var suppliers []model.Supplier
	result := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&suppliers)
	if result.Error != nil {
		log.Error("Failed to retrieve suppliers", zap.Error(result.Error))
		return response.Internal(c)
	}

	return response.List(c, suppliers, response.NewPagination(page, limit, total))
}

// UpdateSupplier updates an existing supplier after validating tenant ownership
func UpdateSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("suppliers", "update")

	ac, err := requireCapability(c, model.ResourceSuppliers, model.ActionUpdate)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid supplier ID")
	}

	var req SupplierRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return response.BadRequest(c, "invalid request data")
	}
	if msg := req.validate(); msg != "" {
		return response.BadRequest(c, msg)
	}

	var supplier model.Supplier
	if result := database.GetDB().Where("id = ?", id).First(&supplier); result.Error != nil {
		return response.NotFound(c, "supplier not found")
	}

	if !ac.OwnsEntity(&supplier) {
		log.Warn("Cross-tenant supplier update blocked",
			zap.Uint("supplier_id", id),
			zap.Uint("supplier_tenant", supplier.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	if req.Code != supplier.Code {
		var count int64
		database.GetDB().Model(&model.Supplier{}).
			Where("code = ? AND id != ? AND tenant_id = ?", req.Code, id, ac.TenantID()).
			Count(&count)
		if count > 0 {
			return response.Conflict(c, "supplier with this code already exists for this tenant")
		}
	}

	supplier.Name = req.Name
	supplier.Code = req.Code
	supplier.ContactPerson = req.ContactPerson
	supplier.Email = req.Email
	supplier.Phone = req.Phone
	supplier.Address = req.Address
	supplier.City = req.City
	supplier.Country = req.Country
	supplier.TaxID = req.TaxID
	supplier.PaymentTerms = req.PaymentTerms
	supplier.Notes = req.Notes
	supplier.IsActive = req.IsActive
	supplier.Rating = req.Rating
	supplier.UpdatedBy = ac.UserID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&supplier); result.Error != nil {
		log.Error("Failed to update supplier", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supplier updated", zap.Uint("id", supplier.ID), zap.Uint("tenant_id", supplier.TenantID))
	return response.OK(c, supplier)
}

// DeleteSupplier soft-deletes a supplier after validating tenant ownership
func DeleteSupplier(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("suppliers", "delete")

	ac, err := requireCapability(c, model.ResourceSuppliers, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid supplier ID")
	}

	var supplier model.Supplier
	if result := database.GetDB().Where("id = ?", id).First(&supplier); result.Error != nil {
		return response.NotFound(c, "supplier not found")
	}

	if !ac.OwnsEntity(&supplier) {
		log.Warn("Cross-tenant supplier delete blocked",
			zap.Uint("supplier_id", id),
			zap.Uint("supplier_tenant", supplier.TenantID),
			zap.Uint("request_tenant", ac.TenantID()))
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&supplier); result.Error != nil {
		log.Error("Failed to delete supplier", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Supplier deleted", zap.Uint("id", id), zap.Uint("tenant_id", supplier.TenantID))
	return response.Message(c, http.StatusOK, "supplier deleted successfully")
}
