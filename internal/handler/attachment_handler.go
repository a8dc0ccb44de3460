package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/oumiche/impact-auto-plus-sub004/internal/model"
	"github.com/oumiche/impact-auto-plus-sub004/internal/response"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/config"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/database"
	"github.com/oumiche/impact-auto-plus-sub004/pkg/logger"
	"github.com/oumiche/impact-auto-plus-sub004/prometheus"
)

var uploadCfg config.UploadConfig

// InitUploads stores the upload configuration for attachment handling
func InitUploads(cfg config.UploadConfig) {
	uploadCfg = cfg
}

// attachmentTables maps allowed entity types to their table for tenant checks
var attachmentTables = map[string]string{
	"vehicles":          "vehicles",
	"garages":           "garages",
	"suppliers":         "suppliers",
	"supplies":          "supplies",
	"collaborators":     "collaborators",
	"reception_reports": "intervention_reception_reports",
}

// entityInTenant verifies the target entity exists and belongs to the tenant
func entityInTenant(entityType string, entityID, tenantID uint) (bool, error) {
	table, ok := attachmentTables[entityType]
	if !ok {
		return false, fmt.Errorf("unsupported entity type %q", entityType)
	}
	var count int64
	err := database.GetDB().Table(table).
		Where("id = ? AND tenant_id = ? AND deleted_at IS NULL", entityID, tenantID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func UploadAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("attachments", "upload")

	ac, err := requireCapability(c, model.ResourceAttachments, model.ActionCreate)
	if err != nil {
		return err
	}

	entityType := c.FormValue("entity_type")
	rawID, parseErr := strconv.ParseUint(c.FormValue("entity_id"), 10, 32)
	if parseErr != nil || rawID == 0 {
		return response.BadRequest(c, "invalid entity ID")
	}
	entityID := uint(rawID)
	if _, ok := attachmentTables[entityType]; !ok {
		return response.BadRequest(c, "unsupported entity type")
	}

	ok, err := entityInTenant(entityType, entityID, ac.TenantID())
	if err != nil {
		log.Error("Failed to verify attachment target", zap.Error(err))
		return response.Internal(c)
	}
	if !ok {
		return response.NotFound(c, "target entity not found")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}
	if fileHeader.Size > uploadCfg.MaxSizeBytes {
		return response.BadRequest(c, "file exceeds the maximum allowed size")
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return response.Internal(c)
	}
	defer src.Close()

	// sniff the content type from the first bytes rather than trusting the client
	head := make([]byte, 512)
	n, _ := io.ReadFull(src, head)
	mimeType := http.DetectContentType(head[:n])
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		log.Error("Failed to rewind uploaded file", zap.Error(err))
		return response.Internal(c)
	}

	fileName := filepath.Base(fileHeader.Filename)
	storedName := uuid.New().String() + strings.ToLower(filepath.Ext(fileName))
	dir := filepath.Join(uploadCfg.Dir, entityType, fmt.Sprint(entityID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.Error(err))
		return response.Internal(c)
	}

	storedPath := filepath.Join(dir, storedName)
	dst, err := os.Create(storedPath)
	if err != nil {
		log.Error("Failed to create stored file", zap.Error(err))
		return response.Internal(c)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(storedPath)
		log.Error("Failed to write uploaded file", zap.Error(err))
		return response.Internal(c)
	}

	attachment := model.Attachment{
		TenantID:   ac.TenantID(),
		EntityType: entityType,
		EntityID:   entityID,
		FileName:   fileName,
		StoredPath: storedPath,
		MimeType:   mimeType,
		SizeBytes:  written,
		UploadedBy: ac.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&attachment); result.Error != nil {
		os.Remove(storedPath)
		log.Error("Failed to record attachment", zap.Error(result.Error))
		return response.Internal(c)
	}

	log.Info("Attachment uploaded",
		zap.Uint("attachment_id", attachment.ID),
		zap.String("entity_type", entityType),
		zap.Uint("entity_id", entityID),
		zap.Int64("size", written))
	return response.Created(c, attachment)
}

func ListAttachments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("attachments", "list")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	entityType := c.QueryParam("entity_type")
	entityID, parseErr := strconv.ParseUint(c.QueryParam("entity_id"), 10, 32)
	if entityType == "" || parseErr != nil {
		return response.BadRequest(c, "entity_type and entity_id are required")
	}

	var attachments []model.Attachment
	result := database.GetDB().
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ?", ac.TenantID(), entityType, entityID).
		Order("created_at desc").
		Find(&attachments)
	if result.Error != nil {
		log.Error("Failed to retrieve attachments", zap.Error(result.Error))
		return response.Internal(c)
	}
	return response.OK(c, attachments)
}

// ServeAttachment streams a stored file by its original name, scoped to the
// resolved tenant
func ServeAttachment(c echo.Context) error {
	prometheus.RecordResourceOperation("attachments", "serve")

	ac, err := requireAccess(c)
	if err != nil {
		return err
	}

	entityType := c.Param("entityType")
	entityID, parseErr := idParamNamed(c, "entityId")
	if parseErr != nil {
		return response.BadRequest(c, "invalid entity ID")
	}
	fileName := filepath.Base(c.Param("fileName"))

	var attachment model.Attachment
	result := database.GetDB().
		Where("tenant_id = ? AND entity_type = ? AND entity_id = ? AND file_name = ?",
			ac.TenantID(), entityType, entityID, fileName).
		Order("created_at desc").
		First(&attachment)
	if result.Error != nil {
		return response.NotFound(c, "attachment not found")
	}

	f, err := os.Open(attachment.StoredPath)
	if err != nil {
		logger.FromContext(c).Error("Failed to open stored attachment",
			zap.Error(err), zap.Uint("attachment_id", attachment.ID))
		return response.NotFound(c, "attachment not found")
	}
	defer f.Close()

	c.Response().Header().Set("Cache-Control", "private, max-age=3600")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("inline; filename=%q", attachment.FileName))
	return c.Stream(http.StatusOK, attachment.MimeType, f)
}

func DeleteAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordResourceOperation("attachments", "delete")

	ac, err := requireCapability(c, model.ResourceAttachments, model.ActionDelete)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return response.BadRequest(c, "invalid attachment ID")
	}

	var attachment model.Attachment
	if result := database.GetDB().Where("id = ?", id).First(&attachment); result.Error != nil {
		return response.NotFound(c, "attachment not found")
	}
	if !ac.OwnsEntity(&attachment) {
		return response.EntityAccessError(c)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&attachment); result.Error != nil {
		log.Error("Failed to delete attachment", zap.Error(result.Error))
		return response.Internal(c)
	}
	if err := os.Remove(attachment.StoredPath); err != nil && !os.IsNotExist(err) {
		log.Warn("Failed to remove stored file", zap.Error(err), zap.String("path", attachment.StoredPath))
	}
	return response.Message(c, http.StatusOK, "attachment deleted successfully")
}
