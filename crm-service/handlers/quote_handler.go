package handlers

import (
	"net/http"

	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/utils/query"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteResponse represents quote data for API responses
type QuoteResponse struct {
	ID            uuid.UUID  `json:"id"`
	QuoteNumber   int        `json:"quote_number"`
	OpportunityID uuid.UUID  `json:"opportunity_id"`
	Submitted     bool       `json:"submitted"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	SalesUnitID   *uuid.UUID `json:"sales_unit_id"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

// QuoteVersionResponse represents a quote version for API responses
type QuoteVersionResponse struct {
	ID           uuid.UUID `json:"id"`
	QuoteID      uuid.UUID `json:"quote_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Sequence     int       `json:"sequence"`
	Completeness int       `json:"completeness"`
	Note         string    `json:"note"`
	CreatedAt    string    `json:"created_at"`
}

// CreateQuoteRequest represents request body for creating a quote
type CreateQuoteRequest struct {
	OpportunityID uuid.UUID  `json:"opportunity_id" binding:"required"`
	OwnerID       uuid.UUID  `json:"owner_id" binding:"required"`
	SalesUnitID   *uuid.UUID `json:"sales_unit_id"`
}

func toQuoteResponse(quote models.WorldwideQuote) QuoteResponse {
	return QuoteResponse{
		ID:            quote.ID,
		QuoteNumber:   quote.QuoteNumber,
		OpportunityID: quote.OpportunityID,
		Submitted:     quote.Submitted,
		OwnerID:       quote.OwnerID,
		SalesUnitID:   quote.SalesUnitID,
		CreatedAt:     quote.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     quote.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetQuotes retrieves all quotes with pagination and filtering
// @Summary Get all worldwide quotes
// @Tags quotes
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param filters[owner_id] query string false "Filter by owner ID"
// @Param filters[opportunity_id] query string false "Filter by opportunity ID"
// @Param filters[submitted] query string false "Filter by submitted state"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /quotes [get]
func GetQuotes(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"owner_id":       "owner_id",
		"sales_unit_id":  "sales_unit_id",
		"opportunity_id": "opportunity_id",
		"submitted":      "submitted",
	}

	allowedSortFields := map[string]string{
		"quote_number": "quote_number",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	}

	dbQuery := db.Model(&models.WorldwideQuote{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count quotes",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var quotes []models.WorldwideQuote
	if err := dbQuery.Find(&quotes).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve quotes",
			"message": err.Error(),
		})
		return
	}

	var quoteResponses []QuoteResponse
	for _, quote := range quotes {
		quoteResponses = append(quoteResponses, toQuoteResponse(quote))
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      quoteResponses,
			"pagination": pagination,
		},
	})
}

// GetQuote retrieves a single quote by ID
// @Summary Get quote by ID
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Quote not found"
// @Router /quotes/{id} [get]
func GetQuote(ctx *gin.Context) {
	quoteID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid quote ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var quote models.WorldwideQuote
	if err := db.First(&quote, "id = ?", quoteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Quote not found",
				"message": "Quote with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve quote",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toQuoteResponse(quote),
	})
}

// GetQuoteVersions lists a quote's versions ordered by owner and sequence
// @Summary Get quote versions
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Quote not found"
// @Router /quotes/{id}/versions [get]
func GetQuoteVersions(ctx *gin.Context) {
	quoteID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid quote ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var quote models.WorldwideQuote
	if err := db.First(&quote, "id = ?", quoteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Quote not found",
				"message": "Quote with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve quote",
			"message": err.Error(),
		})
		return
	}

	var versions []models.QuoteVersion
	if err := db.Where("quote_id = ?", quoteID).
		Order("owner_id").Order("sequence ASC").
		Find(&versions).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve quote versions",
			"message": err.Error(),
		})
		return
	}

	var versionResponses []QuoteVersionResponse
	for _, version := range versions {
		versionResponses = append(versionResponses, QuoteVersionResponse{
			ID:           version.ID,
			QuoteID:      version.QuoteID,
			OwnerID:      version.OwnerID,
			Sequence:     version.Sequence,
			Completeness: version.Completeness,
			Note:         version.Note,
			CreatedAt:    version.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    versionResponses,
	})
}

// CreateQuote creates a new quote with an initial version
// @Summary Create a new worldwide quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body CreateQuoteRequest true "Quote information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created quote"
// @Failure 400 {object} map[string]string "Invalid request data or opportunity/owner not found"
// @Router /quotes [post]
func CreateQuote(ctx *gin.Context) {
	var req CreateQuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var opp models.Opportunity
	if err := db.First(&opp, "id = ?", req.OpportunityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Opportunity not found",
				"message": "The specified opportunity does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to validate opportunity",
			"message": err.Error(),
		})
		return
	}

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

	quote := models.WorldwideQuote{
		OpportunityID: req.OpportunityID,
		OwnerID:       req.OwnerID,
		SalesUnitID:   req.SalesUnitID,
	}

	// Quote and its initial version are created as one unit
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		version := models.QuoteVersion{
			QuoteID:  quote.ID,
			OwnerID:  req.OwnerID,
			Sequence: 0,
		}
		if err := tx.Create(&version).Error; err != nil {
			return err
		}
		return tx.Model(&quote).Update("active_version_id", version.ID).Error
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create quote",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    toQuoteResponse(quote),
	})
}
