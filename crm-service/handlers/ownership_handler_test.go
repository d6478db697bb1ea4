package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quoteflow-backend/shared/config"
	"quoteflow-backend/shared/database"
	"quoteflow-backend/shared/database/models"
)

func setupHandlerTest(t *testing.T) *gin.Engine {
	t.Helper()

	config.LoadConfig()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.MigratedModels()...))
	database.DB = db

	router := gin.New()
	router.PATCH("/api/companies/:id/ownership", ChangeCompanyOwnership)
	return router
}

func createHandlerUser(t *testing.T, status string) *models.User {
	t.Helper()

	user := &models.User{
		Email:  fmt.Sprintf("%s@example.com", uuid.New()),
		Status: status,
		Role:   "sales",
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func patchOwnership(t *testing.T, router *gin.Engine, companyID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/api/companies/"+companyID+"/ownership", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestChangeCompanyOwnershipSucceeds(t *testing.T) {
	router := setupHandlerTest(t)
	oldOwner := createHandlerUser(t, models.UserStatusActive)
	newOwner := createHandlerUser(t, models.UserStatusActive)

	company := &models.Company{Name: "c", OwnerID: oldOwner.ID}
	require.NoError(t, database.DB.Create(company).Error)

	w := patchOwnership(t, router, company.ID.String(), gin.H{
		"owner_id": newOwner.ID,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	var reloaded models.Company
	require.NoError(t, database.DB.First(&reloaded, "id = ?", company.ID).Error)
	assert.Equal(t, newOwner.ID, reloaded.OwnerID)
}

func TestChangeCompanyOwnershipUnknownEntity(t *testing.T) {
	router := setupHandlerTest(t)
	newOwner := createHandlerUser(t, models.UserStatusActive)

	w := patchOwnership(t, router, uuid.NewString(), gin.H{
		"owner_id": newOwner.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeCompanyOwnershipInvalidOwner(t *testing.T) {
	router := setupHandlerTest(t)
	oldOwner := createHandlerUser(t, models.UserStatusActive)
	inactive := createHandlerUser(t, models.UserStatusInactive)

	company := &models.Company{Name: "c", OwnerID: oldOwner.ID}
	require.NoError(t, database.DB.Create(company).Error)

	w := patchOwnership(t, router, company.ID.String(), gin.H{
		"owner_id": inactive.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var reloaded models.Company
	require.NoError(t, database.DB.First(&reloaded, "id = ?", company.ID).Error)
	assert.Equal(t, oldOwner.ID, reloaded.OwnerID)
}

func TestChangeCompanyOwnershipProtected(t *testing.T) {
	router := setupHandlerTest(t)
	oldOwner := createHandlerUser(t, models.UserStatusActive)
	newOwner := createHandlerUser(t, models.UserStatusActive)

	company := &models.Company{Name: "house", Flags: models.CompanyFlagSystem, OwnerID: oldOwner.ID}
	require.NoError(t, database.DB.Create(company).Error)

	w := patchOwnership(t, router, company.ID.String(), gin.H{
		"owner_id": newOwner.ID,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChangeCompanyOwnershipBadRequest(t *testing.T) {
	router := setupHandlerTest(t)

	// Malformed entity ID
	w := patchOwnership(t, router, "not-a-uuid", gin.H{
		"owner_id": uuid.New(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing owner_id
	oldOwner := createHandlerUser(t, models.UserStatusActive)
	company := &models.Company{Name: "c", OwnerID: oldOwner.ID}
	require.NoError(t, database.DB.Create(company).Error)

	w = patchOwnership(t, router, company.ID.String(), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
