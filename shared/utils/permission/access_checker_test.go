package permission

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"quoteflow-backend/shared/database/models"
)

func setupAccessTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Company{}, &models.SharingGrant{}))
	return db
}

func createAccessUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	user := &models.User{
		Email:  fmt.Sprintf("%s@example.com", uuid.New()),
		Status: models.UserStatusActive,
		Role:   role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestOwnerHasFullAccess(t *testing.T) {
	db := setupAccessTestDB(t)
	owner := createAccessUser(t, db, "sales")
	company := &models.Company{Name: "c", OwnerID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	for _, action := range []string{ActionView, ActionUpdate, ActionDelete, ActionChangeOwnership} {
		allowed, err := CheckEntityAccess(db, owner.ID, models.EntityKindCompany, company.ID, action)
		require.NoError(t, err)
		assert.True(t, allowed, "owner should be allowed %s", action)
	}
}

func TestAdminBypassesOwnership(t *testing.T) {
	db := setupAccessTestDB(t)
	owner := createAccessUser(t, db, "sales")
	admin := createAccessUser(t, db, "admin")
	company := &models.Company{Name: "c", OwnerID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	allowed, err := CheckEntityAccess(db, admin.ID, models.EntityKindCompany, company.ID, ActionChangeOwnership)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestGrantHolderIsEditorOnly(t *testing.T) {
	db := setupAccessTestDB(t)
	owner := createAccessUser(t, db, "sales")
	former := createAccessUser(t, db, "sales")
	company := &models.Company{Name: "c", OwnerID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	require.NoError(t, db.Create(&models.SharingGrant{
		EntityKind: models.EntityKindCompany,
		EntityID:   company.ID,
		UserID:     former.ID,
	}).Error)

	for action, want := range map[string]bool{
		ActionView:            true,
		ActionUpdate:          true,
		ActionDelete:          false,
		ActionChangeOwnership: false,
	} {
		allowed, err := CheckEntityAccess(db, former.ID, models.EntityKindCompany, company.ID, action)
		require.NoError(t, err)
		assert.Equal(t, want, allowed, "grant holder action %s", action)
	}
}

func TestStrangerHasNoAccess(t *testing.T) {
	db := setupAccessTestDB(t)
	owner := createAccessUser(t, db, "sales")
	stranger := createAccessUser(t, db, "sales")
	company := &models.Company{Name: "c", OwnerID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	allowed, err := CheckEntityAccess(db, stranger.ID, models.EntityKindCompany, company.ID, ActionView)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestMissingEntityIsNotFound(t *testing.T) {
	db := setupAccessTestDB(t)
	user := createAccessUser(t, db, "sales")
	admin := createAccessUser(t, db, "admin")

	_, err := CheckEntityAccess(db, user.ID, models.EntityKindCompany, uuid.New(), ActionView)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	// admins get the same answer; a missing entity is not theirs either
	_, err = CheckEntityAccess(db, admin.ID, models.EntityKindCompany, uuid.New(), ActionChangeOwnership)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}

func TestUnknownKindIsAnError(t *testing.T) {
	db := setupAccessTestDB(t)
	user := createAccessUser(t, db, "sales")

	_, err := CheckEntityAccess(db, user.ID, "mystery", uuid.New(), ActionView)
	assert.Error(t, err)
}
