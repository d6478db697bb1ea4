package middleware

import (
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
	utils "quoteflow-backend/shared/utils/auth"
	"quoteflow-backend/shared/utils/permission"
)

func setupCapabilityTest(t *testing.T) *gin.Engine {
	t.Helper()

	config.LoadConfig()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Company{}, &models.SharingGrant{}))
	database.DB = db

	router := gin.New()
	router.PATCH("/api/companies/:id/ownership",
		RequireCapability(models.EntityKindCompany, permission.ActionChangeOwnership),
		func(c *gin.Context) { c.Status(http.StatusNoContent) },
	)
	return router
}

func createCapabilityUser(t *testing.T, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:  fmt.Sprintf("%s@example.com", uuid.New()),
		Status: models.UserStatusActive,
		Role:   role,
	}
	require.NoError(t, database.DB.Create(user).Error)
	return user
}

func patchWithToken(router *gin.Engine, companyID, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PATCH", "/api/companies/"+companyID+"/ownership", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireCapabilityAllowsOwner(t *testing.T) {
	router := setupCapabilityTest(t)
	owner := createCapabilityUser(t, "sales")
	company := &models.Company{Name: "c", OwnerID: owner.ID}
	require.NoError(t, database.DB.Create(company).Error)

	token, err := utils.GenerateJWT(owner.ID, owner.Email, owner.Role, nil)
	require.NoError(t, err)

	w := patchWithToken(router, company.ID.String(), token)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireCapabilityRejectsStranger(t *testing.T) {
	router := setupCapabilityTest(t)
	owner := createCapabilityUser(t, "sales")
	stranger := createCapabilityUser(t, "sales")
	company := &models.Company{Name: "c", OwnerID: owner.ID}
	require.NoError(t, database.DB.Create(company).Error)

	token, err := utils.GenerateJWT(stranger.ID, stranger.Email, stranger.Role, nil)
	require.NoError(t, err)

	w := patchWithToken(router, company.ID.String(), token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapabilityMissingEntityIs404(t *testing.T) {
	router := setupCapabilityTest(t)
	user := createCapabilityUser(t, "sales")

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, nil)
	require.NoError(t, err)

	w := patchWithToken(router, uuid.NewString(), token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRequireCapabilityWithoutToken(t *testing.T) {
	router := setupCapabilityTest(t)

	w := patchWithToken(router, uuid.NewString(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
