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

// AssetResponse represents asset data for API responses
type AssetResponse struct {
	ID            uuid.UUID  `json:"id"`
	SerialNumber  string     `json:"serial_number"`
	ProductNumber string     `json:"product_number"`
	ProductName   string     `json:"product_name"`
	Vendor        string     `json:"vendor"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	CompanyID     *uuid.UUID `json:"company_id"`
	AddressID     *uuid.UUID `json:"address_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	CreatedAt     string     `json:"created_at"`
	UpdatedAt     string     `json:"updated_at"`
}

// CreateAssetRequest represents request body for creating an asset
type CreateAssetRequest struct {
	SerialNumber  string     `json:"serial_number" binding:"required"`
	ProductNumber string     `json:"product_number"`
	ProductName   string     `json:"product_name"`
	Vendor        string     `json:"vendor"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	CompanyID     *uuid.UUID `json:"company_id"`
	AddressID     *uuid.UUID `json:"address_id"`
	OwnerID       uuid.UUID  `json:"owner_id" binding:"required"`
}

func toAssetResponse(asset models.Asset) AssetResponse {
	return AssetResponse{
		ID:            asset.ID,
		SerialNumber:  asset.SerialNumber,
		ProductNumber: asset.ProductNumber,
		ProductName:   asset.ProductName,
		Vendor:        asset.Vendor,
		ExpiryDate:    asset.ExpiryDate,
		CompanyID:     asset.CompanyID,
		AddressID:     asset.AddressID,
		OwnerID:       asset.OwnerID,
		CreatedAt:     asset.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     asset.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetAssets retrieves all assets with pagination and filtering
// @Summary Get all assets
// @Tags assets
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across serial and product fields"
// @Param filters[owner_id] query string false "Filter by owner ID"
// @Param filters[company_id] query string false "Filter by company ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /assets [get]
func GetAssets(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"owner_id":   "owner_id",
		"company_id": "company_id",
		"vendor":     "vendor",
	}

	allowedSortFields := map[string]string{
		"serial_number": "serial_number",
		"product_name":  "product_name",
		"vendor":        "vendor",
		"expiry_date":   "expiry_date",
		"created_at":    "created_at",
	}

	searchFields := []string{"serial_number", "product_number", "product_name"}

	dbQuery := db.Model(&models.Asset{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count assets",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var assets []models.Asset
	if err := dbQuery.Find(&assets).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve assets",
			"message": err.Error(),
		})
		return
	}

	var assetResponses []AssetResponse
	for _, asset := range assets {
		assetResponses = append(assetResponses, toAssetResponse(asset))
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      assetResponses,
			"pagination": pagination,
		},
	})
}

// GetAsset retrieves a single asset by ID
// @Summary Get asset by ID
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Asset not found"
// @Router /assets/{id} [get]
func GetAsset(ctx *gin.Context) {
	assetID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid asset ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var asset models.Asset
	if err := db.First(&asset, "id = ?", assetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Asset not found",
				"message": "Asset with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve asset",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toAssetResponse(asset),
	})
}

// CreateAsset creates a new asset
// @Summary Create a new asset
// @Tags assets
// @Accept json
// @Produce json
// @Param asset body CreateAssetRequest true "Asset information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created asset"
// @Failure 400 {object} map[string]string "Invalid request data or owner not found"
// @Router /assets [post]
func CreateAsset(ctx *gin.Context) {
	var req CreateAssetRequest
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

	asset := models.Asset{
		SerialNumber:  req.SerialNumber,
		ProductNumber: req.ProductNumber,
		ProductName:   req.ProductName,
		Vendor:        req.Vendor,
		ExpiryDate:    req.ExpiryDate,
		CompanyID:     req.CompanyID,
		AddressID:     req.AddressID,
		OwnerID:       req.OwnerID,
	}

	if err := db.Create(&asset).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create asset",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    toAssetResponse(asset),
	})
}

// DeleteAsset deletes an asset
// @Summary Delete an asset
// @Tags assets
// @Accept json
// @Produce json
// @Param id path string true "Asset ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Asset deleted"
// @Failure 404 {object} map[string]string "Asset not found"
// @Router /assets/{id} [delete]
func DeleteAsset(ctx *gin.Context) {
	assetID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid asset ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	result := db.Delete(&models.Asset{}, "id = ?", assetID)
	if result.Error != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete asset",
			"message": result.Error.Error(),
		})
		return
	}
	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Asset not found",
			"message": "Asset with the given ID does not exist",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asset deleted successfully",
	})
}
