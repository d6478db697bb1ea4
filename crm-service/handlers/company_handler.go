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

// CompanyResponse represents company data for API responses
type CompanyResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	VAT         string     `json:"vat"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	Flags       int        `json:"flags"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	SalesUnitID *uuid.UUID `json:"sales_unit_id"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// CreateCompanyRequest represents request body for creating a company
type CreateCompanyRequest struct {
	Name        string     `json:"name" binding:"required"`
	VAT         string     `json:"vat"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	OwnerID     uuid.UUID  `json:"owner_id" binding:"required"`
	SalesUnitID *uuid.UUID `json:"sales_unit_id"`
}

// UpdateCompanyRequest represents request body for updating a company
type UpdateCompanyRequest struct {
	Name        string     `json:"name"`
	VAT         string     `json:"vat"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	SalesUnitID *uuid.UUID `json:"sales_unit_id"`
}

func toCompanyResponse(company models.Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID,
		Name:        company.Name,
		VAT:         company.VAT,
		Email:       company.Email,
		Phone:       company.Phone,
		Category:    company.Category,
		Status:      company.Status,
		Flags:       company.Flags,
		OwnerID:     company.OwnerID,
		SalesUnitID: company.SalesUnitID,
		CreatedAt:   company.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   company.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// GetCompanies retrieves all companies with pagination and filtering
// @Summary Get all companies
// @Description Get all companies with pagination, filtering, sorting and search
// @Tags companies
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name, vat and email"
// @Param filters[status] query string false "Filter by status (ACTIVE, INACTIVE)"
// @Param filters[owner_id] query string false "Filter by owner ID"
// @Param filters[sales_unit_id] query string false "Filter by sales unit ID"
// @Param sort[field] query string false "Sort field (name, status, created_at, updated_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string "Server error"
// @Router /companies [get]
func GetCompanies(ctx *gin.Context) {
	db := database.DB

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"status":        "status",
		"category":      "category",
		"owner_id":      "owner_id",
		"sales_unit_id": "sales_unit_id",
	}

	allowedSortFields := map[string]string{
		"name":       "name",
		"status":     "status",
		"category":   "category",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}

	searchFields := []string{"name", "vat", "email"}

	dbQuery := db.Model(&models.Company{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to count companies",
			"message": err.Error(),
		})
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var companies []models.Company
	if err := dbQuery.Find(&companies).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve companies",
			"message": err.Error(),
		})
		return
	}

	var companyResponses []CompanyResponse
	for _, company := range companies {
		companyResponses = append(companyResponses, toCompanyResponse(company))
	}

	pagination := query.BuildPaginationResponse(params.Page, params.Limit, total)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      companyResponses,
			"pagination": pagination,
		},
	})
}

// GetCompany retrieves a single company by ID
// @Summary Get company by ID
// @Tags companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid company ID format"
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id} [get]
func GetCompany(ctx *gin.Context) {
	companyID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid company ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var company models.Company
	if err := db.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Company not found",
				"message": "Company with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve company",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toCompanyResponse(company),
	})
}

// CreateCompany creates a new company
// @Summary Create a new company
// @Tags companies
// @Accept json
// @Produce json
// @Param company body CreateCompanyRequest true "Company information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{} "Created company"
// @Failure 400 {object} map[string]string "Invalid request data or owner not found"
// @Router /companies [post]
func CreateCompany(ctx *gin.Context) {
	var req CreateCompanyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	// Check if owner exists
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
		req.Status = models.CompanyStatusActive
	}

	company := models.Company{
		Name:        req.Name,
		VAT:         req.VAT,
		Email:       req.Email,
		Phone:       req.Phone,
		Category:    req.Category,
		Status:      req.Status,
		OwnerID:     req.OwnerID,
		SalesUnitID: req.SalesUnitID,
	}

	if err := db.Create(&company).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create company",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    toCompanyResponse(company),
	})
}

// UpdateCompany updates an existing company
// @Summary Update a company
// @Tags companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Param company body UpdateCompanyRequest true "Company information"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Updated company"
// @Failure 403 {object} map[string]string "Company is system-protected"
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id} [put]
func UpdateCompany(ctx *gin.Context) {
	companyID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid company ID format",
			"message": err.Error(),
		})
		return
	}

	var req UpdateCompanyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var company models.Company
	if err := db.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Company not found",
				"message": "Company with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve company",
			"message": err.Error(),
		})
		return
	}

	if company.IsSystem() {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "Company is system-protected",
			"message": "System-defined companies cannot be modified",
		})
		return
	}

	if req.Name != "" {
		company.Name = req.Name
	}
	if req.VAT != "" {
		company.VAT = req.VAT
	}
	if req.Email != "" {
		company.Email = req.Email
	}
	if req.Phone != "" {
		company.Phone = req.Phone
	}
	if req.Category != "" {
		company.Category = req.Category
	}
	if req.Status != "" {
		company.Status = req.Status
	}
	if req.SalesUnitID != nil {
		company.SalesUnitID = req.SalesUnitID
	}

	if err := db.Save(&company).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update company",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    toCompanyResponse(company),
	})
}

// DeleteCompany deletes a company
// @Summary Delete a company
// @Tags companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]string "Company deleted"
// @Failure 403 {object} map[string]string "Company is system-protected"
// @Failure 404 {object} map[string]string "Company not found"
// @Router /companies/{id} [delete]
func DeleteCompany(ctx *gin.Context) {
	companyID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid company ID format",
			"message": err.Error(),
		})
		return
	}

	db := database.DB

	var company models.Company
	if err := db.First(&company, "id = ?", companyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "Company not found",
				"message": "Company with the given ID does not exist",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve company",
			"message": err.Error(),
		})
		return
	}

	if company.IsSystem() {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "Company is system-protected",
			"message": "System-defined companies cannot be deleted",
		})
		return
	}

	if err := db.Delete(&company).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete company",
			"message": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Company deleted successfully",
	})
}
