package permission

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quoteflow-backend/shared/database/models"
	"quoteflow-backend/shared/utils/cache"
)

// ErrEntityNotFound reports that the addressed root entity does not exist.
// Callers map it to 404 rather than treating the check as a denial.
var ErrEntityNotFound = errors.New("entity not found")

// Entity actions
const (
	ActionView            = "view"
	ActionUpdate          = "update"
	ActionDelete          = "delete"
	ActionChangeOwnership = "change-ownership"
)

// grantActions are the actions a sharing grant allows a former owner.
var grantActions = map[string]bool{
	ActionView:   true,
	ActionUpdate: true,
}

// tableForKind maps an entity kind to its table
var tableForKind = map[string]string{
	models.EntityKindCompany:     "companies",
	models.EntityKindOpportunity: "opportunities",
	models.EntityKindAsset:       "assets",
	models.EntityKindQuote:       "worldwide_quotes",
}

// CheckEntityAccess decides whether a user may perform an action on a root
// entity. Owners may do everything; sharing-grant holders may view and
// update; admins pass unconditionally. Decisions are cached; the cache is
// dropped for an entity whenever its ownership changes.
func CheckEntityAccess(db *gorm.DB, userID uuid.UUID, kind string, entityID uuid.UUID, action string) (bool, error) {
	table, ok := tableForKind[kind]
	if !ok {
		return false, fmt.Errorf("unknown entity kind: %s", kind)
	}

	if cm := cache.GetCacheManager(); cm != nil {
		if data, err := cm.GetAccessCache(userID.String(), kind, entityID.String(), action); err == nil && data != nil {
			return data.Allowed, nil
		}
	}

	allowed, foundAt, err := resolveAccess(db, userID, kind, table, entityID, action)
	if err != nil {
		return false, err
	}

	if cm := cache.GetCacheManager(); cm != nil {
		_ = cm.SetAccessCache(userID.String(), kind, entityID.String(), action, &cache.AccessCacheData{
			Allowed:  allowed,
			UserID:   userID.String(),
			Kind:     kind,
			EntityID: entityID.String(),
			Action:   action,
			FoundAt:  foundAt,
			CachedAt: time.Now().UTC(),
		})
	}

	return allowed, nil
}

func resolveAccess(db *gorm.DB, userID uuid.UUID, kind, table string, entityID uuid.UUID, action string) (bool, string, error) {
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, "", nil
		}
		return false, "", err
	}

	var row struct {
		OwnerID uuid.UUID
	}
	err := db.Table(table).Select("owner_id").Where("id = ?", entityID).Take(&row).Error
	if err == gorm.ErrRecordNotFound {
		return false, "", ErrEntityNotFound
	}
	if err != nil {
		return false, "", err
	}

	if user.Role == "admin" {
		return true, "admin", nil
	}

	if row.OwnerID == userID {
		return true, "owner", nil
	}

	if !grantActions[action] {
		return false, "", nil
	}

	var count int64
	err = db.Model(&models.SharingGrant{}).
		Where("entity_kind = ? AND entity_id = ? AND user_id = ?", kind, entityID, userID).
		Count(&count).Error
	if err != nil {
		return false, "", err
	}
	if count > 0 {
		return true, "grant", nil
	}

	return false, "", nil
}

// InvalidateEntityAccess drops cached decisions for an entity after its
// ownership (or sharing surface) changed.
func InvalidateEntityAccess(kind string, entityID uuid.UUID) {
	if cm := cache.GetCacheManager(); cm != nil {
		_ = cm.InvalidateEntity(kind, entityID.String())
	}
}
