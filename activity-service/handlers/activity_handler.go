package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"quoteflow-backend/activity-service/services"
	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models/activity"
	"quoteflow-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OwnershipChangeRequest is the event payload posted by crm-service after a
// completed transfer
type OwnershipChangeRequest struct {
	EntityKind string           `json:"entity_kind" binding:"required"`
	EntityID   string           `json:"entity_id" binding:"required"`
	OldOwnerID string           `json:"old_owner_id" binding:"required"`
	NewOwnerID string           `json:"new_owner_id" binding:"required"`
	Cascaded   bool             `json:"cascaded"`
	Counts     map[string]int64 `json:"counts"`
	ActorID    string           `json:"actor_id"`
	Timestamp  string           `json:"timestamp"`
}

// RecordOwnershipChange stores an ownership change event and notifies both owners
// @Summary Record an ownership change
// @Description Persist an ownership change audit record and push notifications to the old and new owner
// @Tags activity
// @Accept json
// @Produce json
// @Param event body OwnershipChangeRequest true "Ownership change event"
// @Success 201 {object} map[string]interface{} "Recorded change"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /activity/ownership-changes [post]
func RecordOwnershipChange(ctx *gin.Context) {
	var req OwnershipChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"message": err.Error(),
		})
		return
	}

	entityID, err := uuid.Parse(req.EntityID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid entity ID format",
			"message": err.Error(),
		})
		return
	}

	oldOwnerID, err := uuid.Parse(req.OldOwnerID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid old owner ID format",
			"message": err.Error(),
		})
		return
	}

	newOwnerID, err := uuid.Parse(req.NewOwnerID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid new owner ID format",
			"message": err.Error(),
		})
		return
	}

	var actorID *uuid.UUID
	if req.ActorID != "" {
		if parsed, err := uuid.Parse(req.ActorID); err == nil {
			actorID = &parsed
		}
	}

	countsJSON := ""
	if len(req.Counts) > 0 {
		if data, err := json.Marshal(req.Counts); err == nil {
			countsJSON = string(data)
		}
	}

	change := activity.OwnershipChange{
		EntityKind: req.EntityKind,
		EntityID:   entityID,
		OldOwnerID: oldOwnerID,
		NewOwnerID: newOwnerID,
		Cascaded:   req.Cascaded,
		Counts:     countsJSON,
		ActorID:    actorID,
	}

	if err := database.DB.Create(&change).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to record ownership change",
			"message": err.Error(),
		})
		return
	}

	notifyOwners(&change)

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    change,
	})
}

// notifyOwners creates a notification row per owner and pushes it over
// WebSocket when the owner is connected
func notifyOwners(change *activity.OwnershipChange) {
	wsm := services.GetWebSocketManager()

	notifications := []activity.Notification{
		{
			UserID:     &change.OldOwnerID,
			Type:       "ownership_transferred",
			Level:      activity.NotificationLevelWarning,
			Title:      "Ownership transferred",
			Message:    fmt.Sprintf("Your %s was transferred to another owner", change.EntityKind),
			EntityKind: change.EntityKind,
			EntityID:   &change.EntityID,
		},
		{
			UserID:     &change.NewOwnerID,
			Type:       "ownership_received",
			Level:      activity.NotificationLevelSuccess,
			Title:      "Ownership received",
			Message:    fmt.Sprintf("You are now the owner of a %s", change.EntityKind),
			EntityKind: change.EntityKind,
			EntityID:   &change.EntityID,
		},
	}

	for i := range notifications {
		n := &notifications[i]
		if err := database.DB.Create(n).Error; err != nil {
			log.Printf("❌ Failed to save notification for user %s: %v", n.UserID, err)
			continue
		}

		msg := &activity.WebSocketMessage{
			Type:       n.Type,
			Level:      n.Level,
			Title:      n.Title,
			Message:    n.Message,
			Timestamp:  time.Now(),
			EntityKind: n.EntityKind,
			EntityID:   n.EntityID,
			UserID:     n.UserID,
		}
		if err := wsm.SendToUser(n.UserID.String(), msg); err != nil {
			// Owner not connected, they will see the stored notification later
			continue
		}
	}
}

// GetOwnershipChanges lists recorded ownership changes
// @Summary List ownership changes
// @Description Get ownership change audit records with pagination and filtering
// @Tags activity
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param filters[entity_kind] query string false "Filter by entity kind"
// @Param filters[new_owner_id] query string false "Filter by new owner"
// @Success 200 {object} map[string]interface{}
// @Router /activity/ownership-changes [get]
func GetOwnershipChanges(ctx *gin.Context) {
	params := query.ParseQueryParams(ctx)

	allowedFields := map[string]string{
		"entity_kind":  "entity_kind",
		"entity_id":    "entity_id",
		"old_owner_id": "old_owner_id",
		"new_owner_id": "new_owner_id",
	}

	dbQuery := database.DB.Model(&activity.OwnershipChange{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFields)

	var total int64
	dbQuery.Count(&total)

	var changes []activity.OwnershipChange
	if err := query.ApplyPagination(dbQuery.Order("created_at DESC"), params.Page, params.Limit).Find(&changes).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve ownership changes",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       changes,
		"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
	})
}

// GetNotifications lists notifications for a user
// @Summary List notifications for a user
// @Tags activity
// @Accept json
// @Produce json
// @Param user_id path string true "User ID" format(uuid)
// @Success 200 {object} map[string]interface{}
// @Router /activity/notifications/{user_id} [get]
func GetNotifications(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("user_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid user ID format",
			"message": err.Error(),
		})
		return
	}

	var notifications []activity.Notification
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve notifications",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    notifications,
	})
}

// MarkNotificationRead marks a notification as read
// @Summary Mark a notification as read
// @Tags activity
// @Accept json
// @Produce json
// @Param id path string true "Notification ID" format(uuid)
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Notification not found"
// @Router /activity/notifications/{id}/read [patch]
func MarkNotificationRead(ctx *gin.Context) {
	notificationID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid notification ID format",
			"message": err.Error(),
		})
		return
	}

	now := time.Now()
	result := database.DB.Model(&activity.Notification{}).
		Where("id = ?", notificationID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": &now,
		})
	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update notification",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Notification not found",
			"message": "Notification with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification marked as read",
	})
}
