package handlers

import (
	"errors"
	"log"
	"net/http"

	"quoteflow-backend/crm-service/services"
	"quoteflow-backend/shared/clients"
	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/utils/permission"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChangeOwnershipRequest represents request body for ownership transfer
type ChangeOwnershipRequest struct {
	OwnerID                         uuid.UUID  `json:"owner_id" binding:"required"`
	SalesUnitID                     *uuid.UUID `json:"sales_unit_id"`
	TransferLinkedRecordsToNewOwner bool       `json:"transfer_linked_records_to_new_owner"`
	KeepOriginalOwnerAsEditor       bool       `json:"keep_original_owner_as_editor"`
	TransferAttachedQuoteToNewOwner bool       `json:"transfer_attached_quote_to_new_owner"`
	VersionOwnership                bool       `json:"version_ownership"`
	VersionID                       *uuid.UUID `json:"version_id"`
}

var activityClient *clients.ActivityClient

func getActivityClient() *clients.ActivityClient {
	if activityClient == nil {
		activityClient = clients.NewActivityClient()
	}
	return activityClient
}

// ChangeCompanyOwnership transfers company ownership
// @Summary Change company ownership
// @Description Reassign a company to a new owner, optionally cascading across its linked records
// @Tags companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Param request body ChangeOwnershipRequest true "Ownership transfer options"
// @Security BearerAuth
// @Success 204 "Ownership changed"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Entity is system-protected"
// @Failure 404 {object} map[string]string "Entity or owner not found"
// @Failure 409 {object} map[string]string "Concurrent ownership change"
// @Router /companies/{id}/ownership [patch]
func ChangeCompanyOwnership(ctx *gin.Context) {
	changeOwnership(ctx, models.EntityKindCompany)
}

// ChangeOpportunityOwnership transfers opportunity ownership
// @Summary Change opportunity ownership
// @Description Reassign an opportunity to a new owner, optionally cascading across its linked records
// @Tags opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID" format(uuid)
// @Param request body ChangeOwnershipRequest true "Ownership transfer options"
// @Security BearerAuth
// @Success 204 "Ownership changed"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Entity is system-protected"
// @Failure 404 {object} map[string]string "Entity or owner not found"
// @Failure 409 {object} map[string]string "Concurrent ownership change"
// @Router /opportunities/{id}/ownership [patch]
func ChangeOpportunityOwnership(ctx *gin.Context) {
	changeOwnership(ctx, models.EntityKindOpportunity)
}

// ChangeAssetOwnership transfers asset ownership
// @Summary Change asset ownership
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Param request body ChangeOwnershipRequest true "Ownership transfer options"
// @Security BearerAuth
// @Success 204 "Ownership changed"
// @Failure 404 {object} map[string]string "Entity or owner not found"
// @Router /assets/{id}/ownership [patch]
func ChangeAssetOwnership(ctx *gin.Context) {
	changeOwnership(ctx, models.EntityKindAsset)
}

// ChangeQuoteOwnership transfers worldwide quote ownership
// @Summary Change quote ownership
// @Description Reassign a quote (or a single version of it) to a new owner
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body ChangeOwnershipRequest true "Ownership transfer options"
// @Security BearerAuth
// @Success 204 "Ownership changed"
// @Failure 404 {object} map[string]string "Entity or owner not found"
// @Failure 409 {object} map[string]string "Concurrent ownership change"
// @Router /quotes/{id}/ownership [patch]
func ChangeQuoteOwnership(ctx *gin.Context) {
	changeOwnership(ctx, models.EntityKindQuote)
}

// changeOwnership runs one transfer and maps the service errors onto the HTTP
// surface. Capability checks happened at the gateway; the domain invariants
// are re-validated by the service regardless.
func changeOwnership(ctx *gin.Context, kind string) {
	entityID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid entity ID format",
			"message": err.Error(),
		})
		return
	}

	var req ChangeOwnershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	transferReq := &services.TransferRequest{
		EntityKind:                kind,
		EntityID:                  entityID,
		NewOwnerID:                req.OwnerID,
		NewSalesUnitID:            req.SalesUnitID,
		TransferLinkedRecords:     req.TransferLinkedRecordsToNewOwner,
		KeepOriginalOwnerAsEditor: req.KeepOriginalOwnerAsEditor,
		TransferAttachedQuote:     req.TransferAttachedQuoteToNewOwner,
	}

	if kind == models.EntityKindQuote && req.VersionOwnership {
		transferReq.VersionScope = services.VersionScopeVersion
		transferReq.VersionID = req.VersionID
	}

	if actorID, exists := ctx.Get("userID"); exists {
		if id, ok := actorID.(uuid.UUID); ok {
			transferReq.ActorID = id
		}
	}

	service := services.NewOwnershipService(database.DB)
	result, err := service.Transfer(ctx.Request.Context(), transferReq)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrInvalidOwner):
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Entity or owner not found",
				"message": err.Error(),
			})
		case errors.Is(err, services.ErrProtectedEntity):
			ctx.JSON(http.StatusForbidden, gin.H{
				"error":   "Entity is system-protected",
				"message": err.Error(),
			})
		case errors.Is(err, services.ErrConflict):
			ctx.JSON(http.StatusConflict, gin.H{
				"error":   "Concurrent ownership change",
				"message": err.Error(),
			})
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to change ownership",
				"message": err.Error(),
			})
		}
		return
	}

	// Post-commit side effects: event for the audit trail, cache drop so both
	// owners observe the new permission surface. Failures here never undo the
	// committed transfer.
	permission.InvalidateEntityAccess(result.EntityKind, result.EntityID)

	event := clients.OwnershipChangedEvent{
		EntityKind: result.EntityKind,
		EntityID:   result.EntityID.String(),
		OldOwnerID: result.OldOwnerID.String(),
		NewOwnerID: result.NewOwnerID.String(),
		Cascaded:   result.Cascaded,
		Counts:     result.Counts,
	}
	if transferReq.ActorID != uuid.Nil {
		event.ActorID = transferReq.ActorID.String()
	}
	if err := getActivityClient().PublishOwnershipChanged(event); err != nil {
		log.Printf("⚠️ Failed to publish ownership change event: %v", err)
	}

	ctx.Status(http.StatusNoContent)
}
