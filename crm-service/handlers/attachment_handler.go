package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"quoteflow-backend/crm-service/services"
	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/database/models/crm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttachmentResponse represents attachment metadata for API responses
type AttachmentResponse struct {
	ID           uuid.UUID `json:"id"`
	EntityKind   string    `json:"entity_kind"`
	EntityID     uuid.UUID `json:"entity_id"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	OwnerID      uuid.UUID `json:"owner_id"`
	CreatedAt    string    `json:"created_at"`
}

func toAttachmentResponse(att crm.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:           att.ID,
		EntityKind:   att.EntityKind,
		EntityID:     att.EntityID,
		FileName:     att.FileName,
		OriginalName: att.OriginalName,
		FileSize:     att.FileSize,
		MimeType:     att.MimeType,
		OwnerID:      att.OwnerID,
		CreatedAt:    att.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// isAllowedAttachmentType checks the extension against the configured whitelist
func isAllowedAttachmentType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range strings.Split(config.GetConfig().AttachmentAllowedTypes, ",") {
		if ext == strings.TrimSpace(allowed) {
			return true
		}
	}
	return false
}

// UploadAttachment uploads a file and links it to an entity
// @Summary Upload an attachment
// @Description Upload a file and link it polymorphically to a company, opportunity, asset or quote
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param entity_kind formData string true "Entity kind (company, opportunity, asset, worldwide_quote)"
// @Param entity_id formData string true "Entity ID" format(uuid)
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created attachment"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /attachments [post]
func UploadAttachment(ctx *gin.Context) {
	entityKind := ctx.PostForm("entity_kind")
	if !models.IsKnownEntityKind(entityKind) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid entity kind",
			"message": fmt.Sprintf("Unknown entity kind: %s", entityKind),
		})
		return
	}

	entityID, err := uuid.Parse(ctx.PostForm("entity_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid entity ID format",
			"message": err.Error(),
		})
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "File is required",
			"message": err.Error(),
		})
		return
	}
	defer file.Close()

	if !isAllowedAttachmentType(header.Filename) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "File type not allowed",
			"message": fmt.Sprintf("File type of %s is not in the allowed list", header.Filename),
		})
		return
	}

	ownerID, exists := ctx.Get("userID")
	if !exists {
		ctx.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	// Hash while buffering for upload
	hasher := sha256.New()
	content, err := io.ReadAll(io.TeeReader(file, hasher))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to read file",
			"message": err.Error(),
		})
		return
	}

	minioService, err := services.NewMinIOService()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Storage service unavailable",
			"message": err.Error(),
		})
		return
	}

	objectKey := fmt.Sprintf("%s/%s/%s%s", entityKind, entityID, uuid.New(), filepath.Ext(header.Filename))

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := minioService.UploadObject(context.Background(), objectKey, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to store file",
			"message": err.Error(),
		})
		return
	}

	attachment := crm.Attachment{
		EntityKind:   entityKind,
		EntityID:     entityID,
		FileName:     filepath.Base(objectKey),
		OriginalName: header.Filename,
		FileSize:     int64(len(content)),
		MimeType:     contentType,
		Checksum:     hex.EncodeToString(hasher.Sum(nil)),
		BucketName:   minioService.GetBucketName(),
		ObjectKey:    objectKey,
		OwnerID:      ownerID.(uuid.UUID),
	}

	if err := database.DB.Create(&attachment).Error; err != nil {
		// Cleanup the stored object when the metadata write fails
		_ = minioService.DeleteObject(context.Background(), objectKey)
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save attachment",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    toAttachmentResponse(attachment),
	})
}

// GetAttachments lists attachments of an entity
// @Summary List attachments for an entity
// @Tags attachments
// @Accept json
// @Produce json
// @Param entity_kind query string true "Entity kind"
// @Param entity_id query string true "Entity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /attachments [get]
func GetAttachments(ctx *gin.Context) {
	entityKind := ctx.Query("entity_kind")
	if !models.IsKnownEntityKind(entityKind) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid entity kind",
			"message": fmt.Sprintf("Unknown entity kind: %s", entityKind),
		})
		return
	}

	entityID, err := uuid.Parse(ctx.Query("entity_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid entity ID format",
			"message": err.Error(),
		})
		return
	}

	var attachments []crm.Attachment
	if err := database.DB.
		Where("entity_kind = ? AND entity_id = ?", entityKind, entityID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve attachments",
			"message": err.Error(),
		})
		return
	}

	var responses []AttachmentResponse
	for _, att := range attachments {
		responses = append(responses, toAttachmentResponse(att))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    responses,
	})
}

// DownloadAttachment streams an attachment's payload
// @Summary Download an attachment
// @Tags attachments
// @Produce application/octet-stream
// @Param id path string true "Attachment ID" format(uuid)
// @Security BearerAuth
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Attachment not found"
// @Router /attachments/{id}/download [get]
func DownloadAttachment(ctx *gin.Context) {
	attachmentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid attachment ID format",
			"message": err.Error(),
		})
		return
	}

	var attachment crm.Attachment
	if err := database.DB.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Attachment not found",
				"message": "Attachment with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve attachment",
			"message": err.Error(),
		})
		return
	}

	minioService, err := services.NewMinIOService()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Storage service unavailable",
			"message": err.Error(),
		})
		return
	}

	reader, err := minioService.DownloadObject(context.Background(), attachment.ObjectKey)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to download attachment",
			"message": err.Error(),
		})
		return
	}
	defer reader.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.OriginalName))
	ctx.Header("Content-Type", attachment.MimeType)
	ctx.Status(http.StatusOK)
	_, _ = io.Copy(ctx.Writer, reader)
}

// DeleteAttachment deletes an attachment and its stored payload
// @Summary Delete an attachment
// @Tags attachments
// @Accept json
// @Produce json
// @Param id path string true "Attachment ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Attachment deleted"
// @Failure 404 {object} map[string]string "Attachment not found"
// @Router /attachments/{id} [delete]
func DeleteAttachment(ctx *gin.Context) {
	attachmentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid attachment ID format",
			"message": err.Error(),
		})
		return
	}

	var attachment crm.Attachment
	if err := database.DB.First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Attachment not found",
				"message": "Attachment with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve attachment",
			"message": err.Error(),
		})
		return
	}

	if err := database.DB.Delete(&attachment).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete attachment",
			"message": err.Error(),
		})
		return
	}

	if minioService, err := services.NewMinIOService(); err == nil {
		_ = minioService.DeleteObject(context.Background(), attachment.ObjectKey)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Attachment deleted successfully",
	})
}
