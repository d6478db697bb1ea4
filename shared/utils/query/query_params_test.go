package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testRecord struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:100"`
	Status string `gorm:"size:20"`
}

func newTestContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func newQueryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&testRecord{}))
	return db
}

func TestParseQueryParams(t *testing.T) {
	c := newTestContext(t, "page=3&limit=25&search=acme&filters[status]=ACTIVE&sort[field]=name&sort[order]=asc")

	params := ParseQueryParams(c)

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, "acme", params.Search)
	assert.Equal(t, "ACTIVE", params.Filters["status"])
	assert.Equal(t, "name", params.Sort.Field)
	assert.Equal(t, "asc", params.Sort.Order)
}

func TestParseQueryParamsDefaults(t *testing.T) {
	c := newTestContext(t, "")

	params := ParseQueryParams(c)

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "created_at", params.Sort.Field)
	assert.Equal(t, "desc", params.Sort.Order)
	assert.Empty(t, params.Filters)
}

func TestParseQueryParamsClampsLimit(t *testing.T) {
	c := newTestContext(t, "page=0&limit=5000")

	params := ParseQueryParams(c)

	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 100, params.Limit)
}

func TestApplyFiltersWhitelist(t *testing.T) {
	db := newQueryTestDB(t)
	require.NoError(t, db.Create(&testRecord{Name: "a", Status: "ACTIVE"}).Error)
	require.NoError(t, db.Create(&testRecord{Name: "b", Status: "INACTIVE"}).Error)

	allowed := map[string]string{"status": "status"}
	filters := map[string]string{
		"status": "ACTIVE",
		"name":   "b", // not whitelisted, must be ignored
	}

	var out []testRecord
	require.NoError(t, ApplyFilters(db.Model(&testRecord{}), filters, allowed).Find(&out).Error)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Name)
}

func TestApplySearch(t *testing.T) {
	db := newQueryTestDB(t)
	require.NoError(t, db.Create(&testRecord{Name: "Acme Industries"}).Error)
	require.NoError(t, db.Create(&testRecord{Name: "Globex"}).Error)

	var out []testRecord
	require.NoError(t, ApplySearch(db.Model(&testRecord{}), "acme", []string{"name"}).Find(&out).Error)
	require.Len(t, out, 1)
	assert.Equal(t, "Acme Industries", out[0].Name)
}

func TestApplyPagination(t *testing.T) {
	db := newQueryTestDB(t)
	for i := 0; i < 7; i++ {
		require.NoError(t, db.Create(&testRecord{Name: "r", Status: "ACTIVE"}).Error)
	}

	var out []testRecord
	require.NoError(t, ApplyPagination(db.Model(&testRecord{}), 2, 3).Find(&out).Error)
	assert.Len(t, out, 3)

	require.NoError(t, ApplyPagination(db.Model(&testRecord{}), 3, 3).Find(&out).Error)
	assert.Len(t, out, 1)
}

func TestBuildPaginationResponse(t *testing.T) {
	resp := BuildPaginationResponse(2, 10, 35)

	assert.Equal(t, int64(35), resp.Total)
	assert.Equal(t, int64(4), resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.True(t, resp.HasPrev)

	last := BuildPaginationResponse(4, 10, 35)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
}
