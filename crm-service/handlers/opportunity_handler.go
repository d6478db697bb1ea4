package handlers

import (
	"net/http"
	"time"

	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpportunityResponse represents opportunity data for API responses
type OpportunityResponse struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	Stage            string     `json:"stage"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	CloseDate        *time.Time `json:"close_date"`
	PrimaryAccountID *uuid.UUID `json:"primary_account_id"`
	EndUserID        *uuid.UUID `json:"end_user_id"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	SalesUnitID      *uuid.UUID `json:"sales_unit_id"`
	CreatedAt        string     `json:"created_at"`
	UpdatedAt        string     `json:"updated_at"`
}

// CreateOpportunityRequest represents request body for creating an opportunity
type CreateOpportunityRequest struct {
	Name             string     `json:"name" binding:"required"`
	Status           string     `json:"status"`
	Stage            string     `json:"stage"`
	Amount           float64    `json:"amount"`
	Currency         string     `json:"currency"`
	CloseDate        *time.Time `json:"close_date"`
	PrimaryAccountID *uuid.UUID `json:"primary_account_id"`
	EndUserID        *uuid.UUID `json:"end_user_id"`
	OwnerID          uuid.UUID  `json:"owner_id" binding:"required"`
	SalesUnitID      *uuid.UUID `json:"sales_unit_id"`
}

// UpdateOpportunityRequest represents request body for updating an opportunity
type UpdateOpportunityRequest struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Stage       string     `json:"stage"`
	Amount      *float64   `json:"amount"`
	CloseDate   *time.Time `json:"close_date"`
	SalesUnitID *uuid.UUID `json:"sales_unit_id"`
}

func toOpportunityResponse(opp models.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:               opp.ID,
		Name:             opp.Name,
		Status:           opp.Status,
		Stage:            opp.Stage,
		Amount:           opp.Amount,
		Currency:         opp.Currency,
		CloseDate:        opp.CloseDate,
		PrimaryAccountID: opp.PrimaryAccountID,
		EndUserID:        opp.EndUserID,
		OwnerID:          opp.OwnerID,
		SalesUnitID:      opp.SalesUnitID,
		CreatedAt:        opp.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:        opp.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetOpportunities retrieves all opportunities with pagination and filtering
// @Summary Get all opportunities
// @Tags opportunities
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name"
// @Param filters[status] query string false "Filter by status (OPEN, WON, LOST)"
// @Param filters[owner_id] query string false "Filter by owner ID"
// @Param filters[primary_account_id] query string false "Filter by primary account ID"
// @Param sort[field] query string false "Sort field (name, status, amount, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /opportunities [get]
func GetOpportunities(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"status":             "status",
		"stage":              "stage",
		"owner_id":           "owner_id",
		"sales_unit_id":      "sales_unit_id",
		"primary_account_id": "primary_account_id",
		"end_user_id":        "end_user_id",
	}

	allowedSortFields := map[string]string{
		"name":       "name",
		"status":     "status",
		"amount":     "amount",
		"close_date": "close_date",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	searchFields := []string{"name"}

	dbQuery := db.Model(&models.Opportunity{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count opportunities",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var opportunities []models.Opportunity
	if err := dbQuery.Find(&opportunities).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve opportunities",
			"message": err.Error(),
		})
		return
	}

	var oppResponses []OpportunityResponse
	for _, opp := range opportunities {
		oppResponses = append(oppResponses, toOpportunityResponse(opp))
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      oppResponses,
			"pagination": pagination,
		},
	})
}

// GetOpportunity retrieves a single opportunity by ID
// @Summary Get opportunity by ID
// @Tags opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Opportunity not found"
// @Router /opportunities/{id} [get]
func GetOpportunity(ctx *gin.Context) {
	oppID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid opportunity ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var opp models.Opportunity
	if err := db.First(&opp, "id = ?", oppID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Opportunity not found",
				"message": "Opportunity with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve opportunity",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toOpportunityResponse(opp),
	})
}

// CreateOpportunity creates a new opportunity
// @Summary Create a new opportunity
// @Tags opportunities
// @Accept json
// @Produce json
// @Param opportunity body CreateOpportunityRequest true "Opportunity information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created opportunity"
// @Failure 400 {object} map[string]string "Invalid request data or owner not found"
// @Router /opportunities [post]
func CreateOpportunity(ctx *gin.Context) {
	var req CreateOpportunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var owner models.User
	if err := db.First(&owner, "id = ?", req.OwnerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Owner not found",
				"message": "The specified owner does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate owner",
			"message": err.Error(),
		})
		return
	}

	if req.Status == "" {
		req.Status = models.OpportunityStatusOpen
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	opp := models.Opportunity{
		Name:             req.Name,
		Status:           req.Status,
		Stage:            req.Stage,
		Amount:           req.Amount,
		Currency:         req.Currency,
		CloseDate:        req.CloseDate,
		PrimaryAccountID: req.PrimaryAccountID,
		EndUserID:        req.EndUserID,
		OwnerID:          req.OwnerID,
		SalesUnitID:      req.SalesUnitID,
	}

	if err := db.Create(&opp).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create opportunity",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    toOpportunityResponse(opp),
	})
}

// UpdateOpportunity updates an existing opportunity
// @Summary Update an opportunity
// @Tags opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID" format(uuid)
// @Param opportunity body UpdateOpportunityRequest true "Opportunity information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated opportunity"
// @Failure 404 {object} map[string]string "Opportunity not found"
// @Router /opportunities/{id} [put]
func UpdateOpportunity(ctx *gin.Context) {
	oppID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid opportunity ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateOpportunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var opp models.Opportunity
	if err := db.First(&opp, "id = ?", oppID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Opportunity not found",
				"message": "Opportunity with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve opportunity",
			"message": err.Error(),
		})
		return
	}

	if req.Name != "" {
		opp.Name = req.Name
	}
	if req.Status != "" {
		opp.Status = req.Status
	}
	if req.Stage != "" {
		opp.Stage = req.Stage
	}
	if req.Amount != nil {
		opp.Amount = *req.Amount
	}
	if req.CloseDate != nil {
		opp.CloseDate = req.CloseDate
	}
	if req.SalesUnitID != nil {
		opp.SalesUnitID = req.SalesUnitID
	}

	if err := db.Save(&opp).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update opportunity",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toOpportunityResponse(opp),
	})
}

// DeleteOpportunity deletes an opportunity
// @Summary Delete an opportunity
// @Tags opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Opportunity deleted"
// @Failure 404 {object} map[string]string "Opportunity not found"
// @Router /opportunities/{id} [delete]
func DeleteOpportunity(ctx *gin.Context) {
	oppID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid opportunity ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	result := db.Delete(&models.Opportunity{}, "id = ?", oppID)
	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete opportunity",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Opportunity not found",
			"message": "Opportunity with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Opportunity deleted successfully",
	})
}
